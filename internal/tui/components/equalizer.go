package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/tui/styles"
)

const faderColumn = 8

// Equalizer draws the five vertical faders. Like SeekBar it remembers
// where the tracks were drawn so clicks and drags map back to gains.
type Equalizer struct {
	Band int // selected band

	x, y, rows int
	dragging   int // band being dragged, or -1
}

// NewEqualizer creates an equalizer panel with the first band selected.
func NewEqualizer() *Equalizer {
	return &Equalizer{dragging: -1}
}

func (e *Equalizer) Left()  { e.Band = (e.Band + eq.Bands - 1) % eq.Bands }
func (e *Equalizer) Right() { e.Band = (e.Band + 1) % eq.Bands }

// Hit maps screen cell (x, y) to a band and the gain at that height.
func (e *Equalizer) Hit(x, y int) (band int, dB float64, ok bool) {
	if e.rows <= 0 || x < e.x || y < e.y || y >= e.y+e.rows {
		return 0, 0, false
	}
	band = (x - e.x) / faderColumn
	if band >= eq.Bands {
		return 0, 0, false
	}
	return band, e.fader().ValueAt(float64(y - e.y)), true
}

// Press starts dragging the fader under (x, y).
func (e *Equalizer) Press(x, y int) (int, float64, bool) {
	band, dB, ok := e.Hit(x, y)
	if ok {
		e.dragging = band
		e.Band = band
	}
	return band, dB, ok
}

// Drag returns the gain for the dragged fader at row y.
func (e *Equalizer) Drag(y int) (int, float64, bool) {
	if e.dragging < 0 || e.rows <= 0 {
		return 0, 0, false
	}
	return e.dragging, e.fader().ValueAt(float64(y - e.y)), true
}

// Release ends a drag.
func (e *Equalizer) Release() { e.dragging = -1 }

func (e *Equalizer) fader() eq.Fader {
	return eq.Fader{Height: float64(max(e.rows-1, 1))}
}

// Render draws the panel with its top-left corner at screen cell (x, y).
func (e *Equalizer) Render(gains [eq.Bands]float64, x, y, width, height int, focused bool) string {
	preset := "custom"
	if p, ok := matches(gains); ok {
		preset = p.String()
	}
	title := styles.PanelTitle("Equalizer", focused) + styles.Dim.Render(" "+preset)

	// title, blank, value row, label row, border
	e.rows = max(height-6, 3)
	e.x = x + 2
	e.y = y + 1 + 2

	f := e.fader()
	zero := int(math.Round(f.OffsetOf(0)))
	var b strings.Builder
	for row := range e.rows {
		for band := range eq.Bands {
			b.WriteString(e.cell(band, row, int(math.Round(f.OffsetOf(gains[band]))), zero, focused))
		}
		b.WriteString("\n")
	}
	for band := range eq.Bands {
		b.WriteString(center(fmt.Sprintf("%+.1f", gains[band]), faderColumn))
	}
	b.WriteString("\n")
	for band := range eq.Bands {
		label := center(eq.ShortLabels[band], faderColumn)
		if focused && band == e.Band {
			label = styles.Highlight.Render(label)
		} else {
			label = styles.Dim.Render(label)
		}
		b.WriteString(label)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", b.String()))
}

func (e *Equalizer) cell(band, row, knob, zero int, focused bool) string {
	var glyph string
	style := styles.Dim
	switch {
	case row == knob:
		glyph = "━━●━━"
		style = styles.Highlight
	case (row > knob && row <= zero) || (row < knob && row >= zero):
		glyph = "  ┃  "
		style = lipgloss.NewStyle().Foreground(styles.Primary)
	case row == zero:
		glyph = "  ┼  "
	default:
		glyph = "  │  "
	}
	if focused && band == e.Band && row == knob {
		style = lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)
	}
	return center(style.Render(glyph), faderColumn)
}

func matches(gains [eq.Bands]float64) (eq.Preset, bool) {
	for _, p := range eq.Presets {
		if p.Gains() == gains {
			return p, true
		}
	}
	return eq.PresetFlat, false
}

func center(s string, width int) string {
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
}
