package tail

import (
	"context"
	"log/slog"
	"time"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/tessro/station/internal/core"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventVolumeChange
	EventMuteChange
	EventEqualizerChange
	EventShuffleChange
	EventRepeatChange
	EventError
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *core.PlaybackState
	Current   *core.PlaybackState
}

// Source reports the current playback state.
type Source interface {
	Snapshot() core.PlaybackState
}

// Watcher polls a source for state changes and emits events.
type Watcher struct {
	source   Source
	interval time.Duration
	events   chan Event
	done     chan struct{}
	logger   *slog.Logger
}

// NewWatcher creates a new state watcher.
func NewWatcher(source Source, interval time.Duration, logger *slog.Logger) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		source:   source,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	var prev *core.PlaybackState
	var prevHash uint64

	poll := func() {
		curr := w.source.Snapshot()
		h := fingerprint(&curr)
		// Progress is not hashed, so an unchanged hash means nothing to
		// report even while the track plays.
		if prev != nil && h == prevHash && h != 0 {
			prev = &curr
			return
		}
		for _, e := range diffStates(prev, &curr) {
			select {
			case w.events <- e:
			default:
				w.logger.Debug("tail event dropped", "type", e.Type.String())
			}
		}
		prev, prevHash = &curr, h
	}

	poll()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			poll()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

type stateKey struct {
	TrackID string
	State   core.TransportState
	Playing bool
	Volume  float64
	Muted   bool
	Bands   [5]float64
	Shuffle bool
	Repeat  core.RepeatMode
	Error   string
}

// fingerprint hashes the parts of s that produce events. It returns 0 if
// hashing fails, which forces a full diff.
func fingerprint(s *core.PlaybackState) uint64 {
	key := stateKey{
		State:   s.State,
		Playing: s.IsPlaying,
		Volume:  s.Volume,
		Muted:   s.Muted,
		Bands:   s.Bands,
		Shuffle: s.Shuffle,
		Repeat:  s.Repeat,
		Error:   s.Error,
	}
	if s.Track != nil {
		key.TrackID = s.Track.ID
	}
	h, err := hashstructure.Hash(key, hashstructure.FormatV2, nil)
	if err != nil {
		return 0
	}
	return h
}

// diffStates compares two states and returns detected events.
func diffStates(prev, curr *core.PlaybackState) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event
	add := func(t EventType) {
		events = append(events, Event{Type: t, Timestamp: now, Previous: prev, Current: curr})
	}

	// First poll - no previous state
	if prev == nil {
		if curr.HasTrack() {
			add(EventTrackChange)
		}
		return events
	}

	if trackChanged(prev, curr) {
		switch {
		case prev.HasTrack() && wasCompleted(prev):
			add(EventTrackComplete)
		case prev.HasTrack():
			add(EventTrackSkip)
		}
		if curr.HasTrack() {
			add(EventTrackChange)
		}
	}

	if prev.IsPlaying && !curr.IsPlaying {
		add(EventPause)
	} else if !prev.IsPlaying && curr.IsPlaying {
		add(EventResume)
	}

	if prev.Volume != curr.Volume {
		add(EventVolumeChange)
	}
	if prev.Muted != curr.Muted {
		add(EventMuteChange)
	}
	if prev.Bands != curr.Bands {
		add(EventEqualizerChange)
	}
	if prev.Shuffle != curr.Shuffle {
		add(EventShuffleChange)
	}
	if prev.Repeat != curr.Repeat {
		add(EventRepeatChange)
	}
	if curr.Error != "" && curr.Error != prev.Error {
		add(EventError)
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *core.PlaybackState) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Track.ID != curr.Track.ID
}

// wasCompleted returns true if the track likely completed naturally:
// it reached the end state or was polled at 95% or more of its length.
func wasCompleted(state *core.PlaybackState) bool {
	if state.State == core.StateEnded {
		return true
	}
	d := state.Duration
	if d == 0 && state.Track != nil {
		d = state.Track.Duration
	}
	if d == 0 {
		return false
	}
	return float64(state.Progress) >= float64(d)*0.95
}
