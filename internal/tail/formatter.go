package tail

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/tessro/station/internal/core"
)

// Formatter renders playback events as terminal lines. A template, when
// set, replaces the default line layout.
type Formatter struct {
	emoji     bool
	timestamp bool
	tmpl      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji prefixes lines with an event emoji. On by default.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) { f.emoji = enabled }
}

// WithTimestamp prefixes lines with the wall-clock time.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) { f.timestamp = enabled }
}

// WithTemplate renders events through a text/template over the fields of
// templateData. An empty or unparsable template is ignored.
func WithTemplate(text string) FormatterOption {
	return func(f *Formatter) {
		if text == "" {
			return
		}
		if t, err := template.New("event").Parse(text); err == nil {
			f.tmpl = t
		}
	}
}

func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{emoji: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format renders e.
func (f *Formatter) Format(e Event) string {
	if f.tmpl != nil {
		if s, err := f.render(e); err == nil {
			return s
		}
	}
	return f.line(e)
}

func (f *Formatter) line(e Event) string {
	var b strings.Builder
	if f.timestamp {
		b.WriteString(e.Timestamp.Format("15:04:05 "))
	}
	if f.emoji {
		b.WriteString(e.Type.info().emoji + " ")
	}
	b.WriteString(describe(e))
	return b.String()
}

func (f *Formatter) render(e Event) (string, error) {
	data := templateData{
		Type:      e.Type.String(),
		Emoji:     e.Type.info().emoji,
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	if e.Current != nil {
		if t := e.Current.Track; t != nil {
			data.ID = t.ID
			data.Title = t.Title
			data.Artist = t.Artist.Name
			data.Handle = t.Artist.Handle
			data.Genre = t.Genre
		}
		data.State = e.Current.State.String()
		data.Volume = e.Current.VolumePercent()
		data.Repeat = e.Current.Repeat.String()
		data.Shuffle = e.Current.Shuffle
		data.Error = e.Current.Error
	}

	var buf bytes.Buffer
	if err := f.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	ID        string
	Title     string
	Artist    string
	Handle    string
	Genre     string
	State     string
	Volume    int
	Repeat    string
	Shuffle   bool
	Error     string
}

func trackName(s *core.PlaybackState) (string, bool) {
	if s == nil || s.Track == nil {
		return "", false
	}
	return s.Track.DisplayName(), true
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func describe(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if name, ok := trackName(e.Current); ok {
			return "Now playing: " + name
		}
		return "Track changed"

	case EventTrackComplete:
		if name, ok := trackName(e.Previous); ok {
			return "Finished: " + name
		}
		return "Track completed"

	case EventTrackSkip:
		if name, ok := trackName(e.Previous); ok {
			return "Skipped: " + name
		}
		return "Track skipped"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", e.Current.VolumePercent())
		}
		return "Volume changed"

	case EventMuteChange:
		if e.Current != nil && e.Current.Muted {
			return "Muted"
		}
		return "Unmuted"

	case EventEqualizerChange:
		if e.Current != nil {
			b := e.Current.Bands
			return fmt.Sprintf("EQ: %+.1f %+.1f %+.1f %+.1f %+.1f dB", b[0], b[1], b[2], b[3], b[4])
		}
		return "EQ changed"

	case EventShuffleChange:
		if e.Current != nil {
			return "Shuffle " + onOff(e.Current.Shuffle)
		}
		return "Shuffle changed"

	case EventRepeatChange:
		if e.Current != nil {
			return "Repeat " + e.Current.Repeat.String()
		}
		return "Repeat changed"

	case EventError:
		if e.Current != nil {
			return "Error: " + e.Current.Error
		}
		return "Error"

	default:
		return "Unknown event"
	}
}

type eventInfo struct {
	name  string
	emoji string
}

var events = [...]eventInfo{
	EventTrackChange:     {"track_change", "🎵"},
	EventTrackComplete:   {"track_complete", "✅"},
	EventTrackSkip:       {"track_skip", "⏭️"},
	EventPause:           {"pause", "⏸️"},
	EventResume:          {"resume", "▶️"},
	EventVolumeChange:    {"volume_change", "🔊"},
	EventMuteChange:      {"mute_change", "🔇"},
	EventEqualizerChange: {"eq_change", "🎚️"},
	EventShuffleChange:   {"shuffle_change", "🔀"},
	EventRepeatChange:    {"repeat_change", "🔁"},
	EventError:           {"error", "⚠️"},
}

func (t EventType) info() eventInfo {
	if t < 0 || int(t) >= len(events) {
		return eventInfo{"unknown", "❓"}
	}
	return events[t]
}

// String returns the snake_case event name used in JSON and templates.
func (t EventType) String() string { return t.info().name }
