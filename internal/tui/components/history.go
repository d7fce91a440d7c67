package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/tui/styles"
)

// LibraryTab selects what the library panel lists.
type LibraryTab int

const (
	TabRecent LibraryTab = iota
	TabFavorites
)

func (t LibraryTab) String() string {
	if t == TabFavorites {
		return "Favorites"
	}
	return "Recent"
}

// Library lists recently played tracks or favorites.
type Library struct {
	Tab    LibraryTab
	cursor int
	offset int
	now    func() time.Time
}

// NewLibrary creates a library panel on the recent tab.
func NewLibrary() *Library {
	return &Library{now: time.Now}
}

// Toggle switches tabs.
func (l *Library) Toggle() {
	l.Tab = 1 - l.Tab
	l.cursor, l.offset = 0, 0
}

func (l *Library) Down(n int) {
	if l.cursor < n-1 {
		l.cursor++
	}
}

func (l *Library) Up() {
	if l.cursor > 0 {
		l.cursor--
	}
}

// Cursor returns the selected row.
func (l *Library) Cursor() int { return l.cursor }

// Render draws the active tab. Recent entries carry their play time;
// favorites do not.
func (l *Library) Render(recent []core.HistoryEntry, favorites []core.Track, width, height int, focused bool) string {
	title := ""
	for _, tab := range []LibraryTab{TabRecent, TabFavorites} {
		if tab == l.Tab {
			title += styles.PanelTitle(tab.String(), focused)
		} else {
			title += styles.Dim.Render(" " + tab.String() + " ")
		}
	}

	var entries []core.HistoryEntry
	if l.Tab == TabFavorites {
		entries = make([]core.HistoryEntry, len(favorites))
		for i, t := range favorites {
			entries[i] = core.HistoryEntry{Track: t}
		}
	} else {
		entries = recent
	}

	var content string
	switch {
	case len(entries) == 0 && l.Tab == TabFavorites:
		content = styles.Muted.Render("No favorites yet. Press f while a track plays")
	case len(entries) == 0:
		content = styles.Muted.Render("Nothing played yet")
	default:
		content = l.renderEntries(entries, width-4, height-4, focused)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (l *Library) renderEntries(entries []core.HistoryEntry, width, maxLines int, focused bool) string {
	l.cursor = max(0, min(l.cursor, len(entries)-1))
	visible := max(maxLines, 1)
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+visible {
		l.offset = l.cursor - visible + 1
	}
	end := min(l.offset+visible, len(entries))

	lines := make([]string, 0, end-l.offset)
	for i := l.offset; i < end; i++ {
		e := entries[i]
		ago := ""
		if !e.PlayedAt.IsZero() {
			ago = humanize.RelTime(e.PlayedAt, l.now(), "ago", "from now")
		}

		// icon + spaces + " - " + time column
		available := width - 6 - len(ago)
		title, artist := fit(e.Track.Title, e.Track.Artist.Name, available)
		info := fmt.Sprintf("%s - %s", title, artist)
		pad := max(width-2-lipgloss.Width(info)-len(ago), 1)

		line := fmt.Sprintf("%s %s%*s%s", styles.Dim.Render("♪"), info, pad, "", styles.Dim.Render(ago))
		if focused && i == l.cursor {
			line = styles.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
