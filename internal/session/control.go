package session

import (
	"time"

	"github.com/tessro/station/internal/config"
	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/player"
	"github.com/tessro/station/internal/remote"
	"github.com/tessro/station/internal/spectrum"
	"github.com/tessro/station/internal/tail"
)

var (
	_ remote.Controller = (*Session)(nil)
	_ tail.Source       = (*Session)(nil)
)

// Snapshot returns the merged transport and queue state.
func (s *Session) Snapshot() core.PlaybackState { return s.Player.Snapshot() }

// Queue returns a copy of the queue state.
func (s *Session) Queue() player.QueueState { return s.Player.Queue() }

func (s *Session) IsPlaying() bool          { return s.Audio.IsPlaying() }
func (s *Session) FrequencyBinCount() int   { return s.Audio.FrequencyBinCount() }
func (s *Session) FrequencyData(dst []byte) { s.Audio.FrequencyData(dst) }

func (s *Session) TogglePlay()                  { s.Audio.TogglePlay() }
func (s *Session) Next()                        { s.Player.Next() }
func (s *Session) Previous()                    { s.Player.Previous() }
func (s *Session) Jump(index int)               { s.Player.Jump(index) }
func (s *Session) Seek(pos time.Duration)       { s.Audio.Seek(pos) }
func (s *Session) SetVolume(v float64)          { s.Audio.SetVolume(v) }
func (s *Session) ToggleMute()                  { s.Audio.ToggleMute() }
func (s *Session) ToggleShuffle()               { s.Player.ToggleShuffle() }
func (s *Session) CycleRepeat()                 { s.Player.CycleRepeat() }
func (s *Session) SetBand(band int, dB float64) { s.EQ.SetBand(band, dB) }

// ApplyPreset sets every band and remembers the preset as the default.
// Callers persist the config themselves.
func (s *Session) ApplyPreset(p eq.Preset) {
	s.EQ.ApplyPreset(p)
	s.cfgMu.Lock()
	s.Config.Defaults.Preset = p.String()
	s.cfgMu.Unlock()
}

// SetVisualizer remembers the spectrum mode as the default. Callers
// persist the config themselves.
func (s *Session) SetVisualizer(m spectrum.Mode) {
	s.cfgMu.Lock()
	s.Config.Defaults.Visualizer = m.String()
	s.cfgMu.Unlock()
}

// Defaults returns a copy of the configured defaults.
func (s *Session) Defaults() config.DefaultsConfig {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	return s.Config.Defaults
}

// SetQueue replaces the queue. With shuffle on, the new tracks are
// shuffled too; the configured default turns shuffle on for the first
// queue.
func (s *Session) SetQueue(tracks []core.Track, start int) {
	s.Player.SetQueue(tracks, start)
	q := s.Player.Queue()
	switch {
	case q.Shuffle:
		s.Player.ToggleShuffle()
		s.Player.ToggleShuffle()
	case s.Defaults().Shuffle && !s.shuffleApplied():
		s.Player.ToggleShuffle()
	}
}

func (s *Session) shuffleApplied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	applied := s.shuffleDone
	s.shuffleDone = true
	return applied
}

// PlayTracks replaces the queue and starts the track at start.
func (s *Session) PlayTracks(tracks []core.Track, start int) {
	s.SetQueue(tracks, start)
	if cur, ok := s.Player.Current(); ok {
		s.Player.Select(cur)
	}
}

// ToggleFavorite flips the favorite flag of the current track.
func (s *Session) ToggleFavorite() (core.Track, bool, error) {
	cur, ok := s.Player.Current()
	if !ok {
		return core.Track{}, false, errNoTrack
	}
	fav, err := s.Library.ToggleFavorite(cur)
	return cur, fav, err
}

// ToggleFollow follows or unfollows the artist of the current track.
func (s *Session) ToggleFollow() (core.Artist, bool, error) {
	cur, ok := s.Player.Current()
	if !ok {
		return core.Artist{}, false, errNoTrack
	}
	following, err := s.Library.ToggleFollow(cur.Artist)
	return cur.Artist, following, err
}
