package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/tui/styles"
)

// NowPlayingInfo is library state shown next to the track.
type NowPlayingInfo struct {
	Favorite  bool
	Following bool
}

// NowPlaying displays the current track and its seek bar.
type NowPlaying struct {
	Seek *SeekBar
}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{Seek: NewSeekBar()}
}

// seekRow is the content line holding the seek bar.
const seekRow = 6

// timeWidth pads the elapsed time so the bar starts at a fixed column.
const timeWidth = 7

// Render draws the panel with its top-left corner at screen cell
// (x, y). The position is used to place the seek bar for mouse input.
func (n *NowPlaying) Render(state *core.PlaybackState, info NowPlayingInfo, x, y, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if !state.HasTrack() {
		n.Seek.Width = 0
		content = styles.Muted.Render("Nothing queued. Press / to search or R for random tracks")
	} else {
		content = n.renderTrack(state, info, width-4)
		// border + padding
		n.Seek.X = x + 2 + timeWidth + 1
		n.Seek.Y = y + 1 + seekRow
	}

	return styles.Panel(focused).
		Width(width).
		Height(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content))
}

func (n *NowPlaying) renderTrack(state *core.PlaybackState, info NowPlayingInfo, width int) string {
	track := state.Track

	icon := styles.StatusIcon(state.IsPlaying)
	if state.State == core.StateLoading {
		icon = styles.Dim.Render("…")
	}
	name := styles.Title.Render(truncate(track.Title, width-6))
	if info.Favorite {
		name += " " + styles.Heart.Render("♥")
	}

	artist := track.Artist.Name
	if track.Artist.IsVerified {
		artist += " ✓"
	}
	if info.Following {
		artist += styles.Dim.Render(" (following)")
	}

	var meta []string
	if track.Genre != "" {
		meta = append(meta, track.Genre)
	}
	if track.Mood != "" {
		meta = append(meta, track.Mood)
	}
	meta = append(meta, humanize.Comma(int64(track.PlayCount))+" plays")

	duration := state.Duration
	if duration <= 0 {
		duration = track.Duration
	}
	barWidth := max(width-2*timeWidth-2, 10)
	progress := fmt.Sprintf("%*s %s %-*s",
		timeWidth, FormatDuration(state.Progress),
		n.Seek.Render(state.Progress, duration, barWidth),
		timeWidth, FormatDuration(duration))

	status := n.renderStatus(state)
	if label := n.Seek.HoverLabel(duration); label != "" {
		status = styles.Highlight.Render("seek to "+label) + "  " + status
	}
	if state.Error != "" {
		status = styles.Danger.Render(truncate(state.Error, width))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+name,
		"  "+styles.Subtitle.Render(truncate(artist, width-2)),
		"  "+styles.Dim.Render(truncate(strings.Join(meta, " · "), width-2)),
		"",
		progress,
		"",
		status,
	)
}

func (n *NowPlaying) renderStatus(state *core.PlaybackState) string {
	vol := fmt.Sprintf("🔊 %d%%", state.VolumePercent())
	if state.Muted {
		vol = "🔇 muted"
	}
	shuffle := styles.Dim.Render("shuffle off")
	if state.Shuffle {
		shuffle = styles.Playing.Render("shuffle on")
	}
	repeat := styles.Dim.Render("repeat " + state.Repeat.String())
	if state.Repeat != core.RepeatOff {
		repeat = styles.Playing.Render("repeat " + state.Repeat.String())
	}
	return styles.Muted.Render(vol) + "  " + shuffle + "  " + repeat
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
