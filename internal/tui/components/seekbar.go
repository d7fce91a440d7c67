package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/station/internal/tui/styles"
)

// SeekBar is the clickable progress bar. Render records where the bar
// was drawn so mouse positions can be mapped back to track times.
type SeekBar struct {
	X, Y  int // screen cell of the first bar column
	Width int

	hover    int // bar column under the pointer, or -1
	dragging bool
}

// NewSeekBar returns a bar with no hover.
func NewSeekBar() *SeekBar {
	return &SeekBar{hover: -1}
}

// TimeAt maps column x of a bar width cells wide to a position in a
// track of the given duration. Columns outside the bar are clamped.
func (SeekBar) TimeAt(x, width int, duration time.Duration) time.Duration {
	if width <= 0 || duration <= 0 {
		return 0
	}
	frac := float64(max(0, min(x, width))) / float64(width)
	return time.Duration(frac * float64(duration))
}

// Contains reports whether screen cell (x, y) is on the bar.
func (b *SeekBar) Contains(x, y int) bool {
	return b.Width > 0 && y == b.Y && x >= b.X && x < b.X+b.Width
}

// Hover updates the hover column from a pointer position and returns
// the time under the pointer. While dragging, rows are ignored.
func (b *SeekBar) Hover(x, y int, duration time.Duration) (time.Duration, bool) {
	if !b.dragging && !b.Contains(x, y) {
		b.hover = -1
		return 0, false
	}
	b.hover = max(0, min(x-b.X, b.Width-1))
	return b.TimeAt(x-b.X, b.Width, duration), true
}

// Press starts a drag if (x, y) is on the bar.
func (b *SeekBar) Press(x, y int, duration time.Duration) (time.Duration, bool) {
	if !b.Contains(x, y) {
		return 0, false
	}
	b.dragging = true
	return b.Hover(x, y, duration)
}

// Release ends a drag and returns the time to seek to.
func (b *SeekBar) Release(x, y int, duration time.Duration) (time.Duration, bool) {
	if !b.dragging {
		return 0, false
	}
	t, _ := b.Hover(x, y, duration)
	b.dragging = false
	b.hover = -1
	return t, true
}

// Dragging reports whether a drag is in progress.
func (b *SeekBar) Dragging() bool { return b.dragging }

// Render draws the bar. With a hover column the hovered position is
// shown instead of the playhead.
func (b *SeekBar) Render(progress, duration time.Duration, width int) string {
	b.Width = width
	if width <= 0 {
		return ""
	}
	var percent float64
	if duration > 0 {
		percent = float64(progress) / float64(duration) * 100
	}
	if b.hover < 0 || b.hover >= width {
		return styles.Bar(percent, width, styles.Primary)
	}

	line := []rune(strings.Repeat("─", width))
	filled := int(percent / 100 * float64(width))
	for i := range min(filled, width) {
		line[i] = '━'
	}
	head := lipgloss.NewStyle().Foreground(styles.Accent).Render("●")
	return lipgloss.NewStyle().Foreground(styles.Primary).Render(string(line[:b.hover])) + head +
		styles.Dim.Render(string(line[b.hover+1:]))
}

// HoverLabel returns the time under the pointer, or "".
func (b *SeekBar) HoverLabel(duration time.Duration) string {
	if b.hover < 0 {
		return ""
	}
	return FormatDuration(b.TimeAt(b.hover, b.Width, duration))
}

// FormatDuration formats d as m:ss, or h:mm:ss past an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
