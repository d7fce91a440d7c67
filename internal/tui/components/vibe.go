package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/station/internal/tui/styles"
	"github.com/tessro/station/internal/vibe"
)

var sparks = []rune("▁▂▃▄▅▆▇█")

// VibeCard renders a track's vibe profile.
func VibeCard(p *vibe.Profile, cosigned bool, width, height int, focused bool) string {
	title := styles.PanelTitle("Vibe", focused)

	var content string
	if p == nil {
		content = styles.Muted.Render("Not analysed yet. Press V to analyse")
	} else {
		name := styles.Hex(p.Color).Bold(true).Render(p.Vibe)
		cosign := fmt.Sprintf("%d cosigns", p.Cosigns)
		if cosigned {
			cosign += " (you)"
		}
		content = lipgloss.JoinVertical(lipgloss.Left,
			name,
			styles.Muted.Render(fmt.Sprintf("%s tempo · %s", p.Tempo, p.Mood)),
			"energy "+styles.Bar(p.Energy, max(width-16, 8), lipgloss.Color(p.Color))+fmt.Sprintf(" %3.0f", p.Energy),
			"signature "+styles.Hex(p.Color).Render(Sparkline(p.Signature)),
			styles.Dim.Render(fmt.Sprintf("authenticity %d/100 · %s · analysed %s",
				p.Authenticity, cosign, humanize.Time(p.AnalyzedAt))),
		)
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

// Sparkline draws 0-100 values as block glyphs.
func Sparkline(values []int) string {
	var b strings.Builder
	for _, v := range values {
		v = max(0, min(v, 100))
		b.WriteRune(sparks[v*(len(sparks)-1)/100])
	}
	return b.String()
}
