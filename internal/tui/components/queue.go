package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/station/internal/player"
	"github.com/tessro/station/internal/tui/styles"
)

// Queue displays the playback queue with a movable cursor.
type Queue struct {
	offset int
	cursor int
	synced int // queue index the cursor last followed
}

// NewQueue creates a new Queue component
func NewQueue() *Queue {
	return &Queue{synced: -1}
}

// Down moves the cursor down.
func (q *Queue) Down(n int) {
	if q.cursor < n-1 {
		q.cursor++
	}
}

// Up moves the cursor up.
func (q *Queue) Up() {
	if q.cursor > 0 {
		q.cursor--
	}
}

// Cursor returns the selected queue position.
func (q *Queue) Cursor() int {
	return q.cursor
}

// Follow moves the cursor to the playing track when it changes.
func (q *Queue) Follow(index int) {
	if index != q.synced {
		q.synced = index
		q.cursor = max(index, 0)
	}
}

// Render renders the queue panel
func (q *Queue) Render(state player.QueueState, width, height int, focused bool) string {
	title := fmt.Sprintf("Queue (%d)", len(state.Tracks))

	var content string
	if len(state.Tracks) == 0 {
		content = styles.Muted.Render("Queue is empty")
	} else {
		content = q.renderQueue(state, width-4, height-4, focused)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, styles.PanelTitle(title, focused), "", content))
}

func (q *Queue) renderQueue(state player.QueueState, width, maxLines int, focused bool) string {
	tracks := state.Tracks
	q.cursor = max(0, min(q.cursor, len(tracks)-1))

	visible := max(maxLines-1, 1)
	if q.cursor < q.offset {
		q.offset = q.cursor
	}
	if q.cursor >= q.offset+visible {
		q.offset = q.cursor - visible + 1
	}
	q.offset = max(0, min(q.offset, len(tracks)-1))
	end := min(q.offset+visible, len(tracks))

	lines := make([]string, 0, end-q.offset+1)

	// "XX. " + marker + " - "
	const overhead = 9

	for i := q.offset; i < end; i++ {
		t := tracks[i]
		num := fmt.Sprintf("%2d.", i+1)
		title, artist := fit(t.Title, t.Artist.Name, width-overhead)

		var line string
		if i == state.Index {
			line = styles.Playing.Render(fmt.Sprintf("%s ▶ %s - %s", num, title, artist))
		} else {
			line = fmt.Sprintf("%s   %s - %s", styles.Dim.Render(num), title, styles.Muted.Render(artist))
		}
		if focused && i == q.cursor {
			line = styles.Selected.Render(line)
		}
		lines = append(lines, line)
	}

	if end < len(tracks) {
		lines = append(lines, styles.Dim.Render(fmt.Sprintf("    ... and %d more", len(tracks)-end)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// fit shortens title and artist to share available cells, giving the
// artist at least a third.
func fit(title, artist string, available int) (string, string) {
	tl, al := len([]rune(title)), len([]rune(artist))
	if tl+al <= available {
		return title, artist
	}
	minArtist := max(available/3, 8)
	if minArtist > available-8 {
		minArtist = available - 8
	}
	artistSpace := min(al, minArtist)
	return truncate(title, available-artistSpace), truncate(artist, artistSpace)
}
