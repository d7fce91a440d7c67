// Package spectrum turns analysis-tap frames into terminal graphics.
package spectrum

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Buckets is the number of frequency buckets drawn by the bar modes.
const Buckets = 64

// Eighth-height block glyphs, empty to full.
var blocks = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

var (
	flameCore = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4400"))
	flameMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8800"))
	flameTip  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))

	barLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a855f7"))
	barMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d946ef"))
	barHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#ec4899"))

	waveLine = lipgloss.NewStyle().Foreground(lipgloss.Color("#06b6d4")).Bold(true)
	waveFill = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6")).Faint(true)
)

// Downsample picks n evenly spaced values from data. Bucket i reads
// data[floor(i/n * len(data))].
func Downsample(data []byte, n int) []byte {
	out := make([]byte, n)
	if len(data) == 0 {
		return out
	}
	for i := range n {
		out[i] = data[i*len(data)/n]
	}
	return out
}

// Render draws one frame. The result depends only on its arguments.
func Render(mode Mode, data []byte, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	switch mode {
	case ModeWave:
		return renderWave(data, width, height)
	case ModeBars:
		return renderBars(Downsample(data, Buckets), width, height, barStyle)
	default:
		return renderBars(Downsample(data, Buckets), width, height, flameStyle)
	}
}

// flameStyle colors a cell by how far up its own bar it sits: red core,
// orange middle, yellow tip.
func flameStyle(cell, bar int, _ int) lipgloss.Style {
	frac := float64(cell) / float64(max(bar, 1))
	switch {
	case frac < 0.6:
		return flameCore
	case frac < 0.85:
		return flameMid
	default:
		return flameTip
	}
}

// barStyle colors a cell by its height in the frame.
func barStyle(cell, _ int, frame int) lipgloss.Style {
	frac := float64(cell) / float64(max(frame, 1))
	switch {
	case frac < 0.34:
		return barLow
	case frac < 0.67:
		return barMid
	default:
		return barHigh
	}
}

// renderBars draws one bar per column in eighth-cell steps. style gets
// the cell's offset, the bar's height and the frame height, all in
// eighths.
func renderBars(buckets []byte, width, height int, style func(cell, bar, frame int) lipgloss.Style) string {
	heights := make([]int, width)
	for c := range width {
		heights[c] = int(buckets[c*len(buckets)/width]) * height * 8 / 255
	}

	var sb strings.Builder
	for row := range height {
		base := (height - 1 - row) * 8
		for _, h := range heights {
			fill := max(0, min(h-base, 8))
			if fill == 0 {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteString(style(base, h, height*8).Render(blocks[fill]))
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func renderWave(data []byte, width, height int) string {
	if len(data) == 0 {
		data = []byte{0}
	}
	// Row of the curve in each column, 0 at the top.
	curve := make([]int, width)
	for c := range width {
		v := float64(data[c*len(data)/width]) / 255
		y := 0.5 + (v-0.5)*0.8
		curve[c] = max(0, min(height-1, int((1-y)*float64(height))))
	}

	var sb strings.Builder
	for row := range height {
		for c := range width {
			switch {
			case row == curve[c]:
				sb.WriteString(waveLine.Render("•"))
			case row > curve[c]:
				sb.WriteString(waveFill.Render("░"))
			default:
				sb.WriteByte(' ')
			}
		}
		if row < height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
