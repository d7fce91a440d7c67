package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/station/internal/errors"
	"github.com/tessro/station/internal/spectrum"
	"github.com/tessro/station/internal/tui/components"
	"github.com/tessro/station/internal/tui/styles"
)

const (
	nowPlayingHeight = 11
	vibeHeight       = 9
)

// layout is the outer size of every panel, borders included.
type layout struct {
	leftWidth, rightWidth       int
	nowPlaying, spectrum, queue int
	equalizer, vibe, library    int
}

func (m Model) layout() layout {
	h := m.height - 1 // status bar
	l := layout{
		leftWidth:  m.width * 3 / 5,
		nowPlaying: nowPlayingHeight,
		vibe:       vibeHeight,
	}
	l.rightWidth = m.width - l.leftWidth
	l.spectrum = max(h*3/10, 6)
	l.queue = max(h-l.nowPlaying-l.spectrum, 4)
	l.equalizer = max(h*45/100, 12)
	l.library = max(h-l.equalizer-l.vibe, 4)
	return l
}

// View renders the model
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showSearch {
		return m.renderSearch()
	}

	l := m.layout()
	state := m.state

	nowPlaying := m.nowPlaying.Render(&state,
		components.NowPlayingInfo{Favorite: m.favorite, Following: m.following},
		0, 0, l.leftWidth-2, l.nowPlaying-2, m.focus == PanelNowPlaying)
	left := lipgloss.JoinVertical(lipgloss.Left,
		nowPlaying,
		m.renderSpectrum(l.leftWidth-2, l.spectrum-2),
		m.queueView.Render(m.queue, l.leftWidth-2, l.queue-2, m.focus == PanelQueue),
	)

	right := lipgloss.JoinVertical(lipgloss.Left,
		m.equalizer.Render(state.Bands, l.leftWidth, 0, l.rightWidth-2, l.equalizer-2, m.focus == PanelEqualizer),
		components.VibeCard(m.profile, m.cosigned, l.rightWidth-2, l.vibe-2, false),
		m.library.Render(m.recent, m.favorites, l.rightWidth-2, l.library-2, m.focus == PanelLibrary),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		m.renderStatusBar(),
	)
}

func (m Model) renderSpectrum(width, height int) string {
	title := styles.PanelTitle("Spectrum", false) + styles.Dim.Render(" "+m.mode.String())
	content := spectrum.Render(m.mode, m.frame, max(width-2, 1), max(height-2, 1))
	return styles.Panel(false).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (m Model) renderStatusBar() string {
	var line string
	switch {
	case m.lastError != nil:
		line = styles.Danger.Render("✗ " + m.lastError.Error())
		if s := errors.GetSuggestion(m.lastError); s != "" {
			line += styles.Dim.Render("  " + s)
		}
	case m.status != "":
		line = styles.Playing.Render(m.status)
	case m.loading:
		line = styles.Muted.Render("Loading tracks...")
	default:
		line = styles.Dim.Render("space play/pause · n/p skip · / search · T trending · R random · tab focus · ? help · q quit")
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(" " + line)
}

var helpSections = []struct {
	title string
	keys  [][2]string
}{
	{"Playback", [][2]string{
		{"space", "play / pause"},
		{"n / p", "next / previous"},
		{"[ / ]", "seek back / forward"},
		{"+ / -", "volume"},
		{"m", "mute"},
		{"s", "shuffle"},
		{"r", "cycle repeat"},
	}},
	{"Discover", [][2]string{
		{"/", "search (ctrl+t switches mode)"},
		{"T", "trending this week"},
		{"R", "random mix"},
		{"o", "open track in browser"},
	}},
	{"Library", [][2]string{
		{"f", "favorite track"},
		{"F", "follow artist"},
		{"t", "recent / favorites (library panel)"},
		{"a", "queue selected (library panel)"},
		{"x", "remove from queue (queue panel)"},
	}},
	{"Sound", [][2]string{
		{"e", "next equalizer preset"},
		{"h / l", "select band (equalizer panel)"},
		{"j / k", "adjust band (equalizer panel)"},
		{"0 / z", "reset band / all"},
		{"v", "visualizer mode"},
		{"V", "analyse vibe"},
		{"c", "cosign vibe"},
	}},
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Keyboard shortcuts"))
	b.WriteString("\n")
	for _, section := range helpSections {
		b.WriteString("\n")
		b.WriteString(styles.Highlight.Render(section.title))
		b.WriteString("\n")
		for _, k := range section.keys {
			fmt.Fprintf(&b, "  %s %s\n", styles.Label.Render(fmt.Sprintf("%-8s", k[0])), k[1])
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("tab cycles panels · mouse: click or drag the seek bar and faders · ? closes"))

	box := styles.Panel(true).Padding(1, 2).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderSearch() string {
	width := min(m.width-4, 80)

	var b strings.Builder
	b.WriteString(styles.Title.Render("Search "))
	for mode := range searchModeCount {
		label := " " + mode.String() + " "
		if mode == m.searchMode {
			b.WriteString(styles.Highlight.Render(label))
		} else {
			b.WriteString(styles.Dim.Render(label))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	maxResults := max(m.height-14, 3)
	switch {
	case m.searching:
		b.WriteString(styles.Muted.Render("Searching..."))
	case m.searchErr != nil:
		b.WriteString(styles.Danger.Render("✗ " + m.searchErr.Error()))
	case len(m.searchResults) == 0 && m.lastQuery != "":
		b.WriteString(styles.Muted.Render("No results"))
	default:
		start := max(0, m.searchCursor-maxResults+1)
		end := min(start+maxResults, len(m.searchResults))
		for i := start; i < end; i++ {
			r := m.searchResults[i]
			line := fmt.Sprintf("%s %s", r.Title, styles.Dim.Render(r.Subtitle))
			line = lipgloss.NewStyle().MaxWidth(width - 4).Render(line)
			if i == m.searchCursor {
				line = styles.Selected.Render("▸ " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.Dim.Render("enter play · ctrl+q queue · ctrl+t mode · esc close"))

	box := styles.Panel(true).Width(width).Padding(1, 2).Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
