// Package player wires the queue to the audio controller: track
// selection, navigation, end-of-track advance and play history.
package player

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/tessro/station/internal/core"
)

// Transport is the audio controller as seen by the player.
type Transport interface {
	LoadTrack(ctx context.Context, track core.Track, resume bool)
	IsPlaying() bool
	Autoplay() bool
	Play()
	Stop()
	Restart()
	Snapshot() core.PlaybackState
	SetRepeatSource(fn func() core.RepeatMode)
	SetOnAdvance(fn func())
}

// Options configures a Player.
type Options struct {
	History core.History
	Logger  *slog.Logger
	Rand    *rand.Rand
}

// Player owns the queue and keeps the transport bound to its current
// track. It is safe for concurrent use.
type Player struct {
	ctx     context.Context
	audio   Transport
	history core.History
	log     *slog.Logger

	mu     sync.Mutex
	queue  *core.Queue
	loaded string
}

// QueueState is a read-only view of the queue.
type QueueState struct {
	Tracks  []core.Track    `json:"tracks"`
	Index   int             `json:"index"`
	Shuffle bool            `json:"shuffle"`
	Repeat  core.RepeatMode `json:"repeat"`
}

// Current returns the track at Index.
func (s QueueState) Current() (core.Track, bool) {
	if s.Index < 0 || s.Index >= len(s.Tracks) {
		return core.Track{}, false
	}
	return s.Tracks[s.Index], true
}

// New creates a player and registers its end-of-track hooks on audio.
// ctx bounds every stream load.
func New(ctx context.Context, audio Transport, opts Options) *Player {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	var qopts []core.QueueOption
	if opts.Rand != nil {
		qopts = append(qopts, core.WithRand(opts.Rand))
	}
	p := &Player{
		ctx:     ctx,
		audio:   audio,
		history: opts.History,
		log:     log.With("component", "player"),
		queue:   core.NewQueue(qopts...),
	}
	audio.SetRepeatSource(p.Repeat)
	audio.SetOnAdvance(p.advance)
	return p
}

// resumePolicy decides whether a track change keeps playing.
func (p *Player) resumePolicy() bool {
	return p.audio.IsPlaying() || p.audio.Autoplay()
}

// syncLocked loads the queue's current track if it differs from the one
// bound to the transport. It reports whether a load happened.
func (p *Player) syncLocked(resume bool) bool {
	cur, ok := p.queue.Current()
	if !ok {
		if p.loaded != "" {
			p.audio.Stop()
			p.loaded = ""
		}
		return false
	}
	if cur.ID == p.loaded {
		return false
	}
	p.loaded = cur.ID
	p.audio.LoadTrack(p.ctx, cur, resume)
	return true
}

func (p *Player) record(t core.Track) {
	if p.history == nil {
		return
	}
	if err := p.history.AddRecent(t); err != nil {
		p.log.Warn("record recently played", "track", t.ID, "error", err)
	}
}

// Select plays track, jumping to it if queued and appending it otherwise.
func (p *Player) Select(track core.Track) {
	p.mu.Lock()
	if i := p.queue.IndexOf(track.ID); i >= 0 {
		p.queue.Jump(i)
	} else {
		p.queue.Add(track)
		p.queue.Jump(p.queue.Len() - 1)
	}
	if !p.syncLocked(true) {
		p.audio.Play()
	}
	p.mu.Unlock()

	p.record(track)
}

// SetQueue replaces the queue and binds the start track. Playback
// continues only if it was already running or has autoplay permission.
func (p *Player) SetQueue(tracks []core.Track, start int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.SetQueue(tracks, start)
	p.syncLocked(p.resumePolicy())
}

// Next moves forward. With repeat-one the current track restarts. At
// the end of an unrepeated queue nothing moves and nothing is recorded.
func (p *Player) Next() (core.Track, bool) {
	p.mu.Lock()
	before := p.queue.Index()
	t, ok := p.queue.Next()
	restart := ok && p.queue.Repeat() == core.RepeatOne
	moved := ok && p.queue.Index() != before
	if ok && !p.syncLocked(p.resumePolicy()) && restart {
		p.audio.Restart()
	}
	p.mu.Unlock()

	if moved || restart {
		p.record(t)
	}
	return t, ok
}

// Previous moves back. At the start of an unrepeated queue it stays put
// without recording.
func (p *Player) Previous() (core.Track, bool) {
	p.mu.Lock()
	before := p.queue.Index()
	t, ok := p.queue.Previous()
	moved := ok && p.queue.Index() != before
	if ok {
		p.syncLocked(p.resumePolicy())
	}
	p.mu.Unlock()

	if moved {
		p.record(t)
	}
	return t, ok
}

// Jump moves to a queue position, clamped.
func (p *Player) Jump(index int) {
	p.mu.Lock()
	p.queue.Jump(index)
	t, ok := p.queue.Current()
	if ok {
		p.syncLocked(p.resumePolicy())
	}
	p.mu.Unlock()

	if ok {
		p.record(t)
	}
}

// Add appends a track to the queue.
func (p *Player) Add(track core.Track) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.Add(track)
	if p.loaded == "" {
		p.syncLocked(false)
	}
}

// Remove deletes a queue position. Removing the playing track binds
// whichever track the queue now points at.
func (p *Player) Remove(index int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.Remove(index)
	p.syncLocked(p.resumePolicy())
}

// ToggleShuffle flips shuffle; the current track keeps playing.
func (p *Player) ToggleShuffle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.ToggleShuffle()
	p.syncLocked(p.resumePolicy())
	return p.queue.Shuffled()
}

// SetRepeatMode sets the repeat mode.
func (p *Player) SetRepeatMode(m core.RepeatMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue.SetRepeatMode(m)
}

// CycleRepeat advances off, all, one and returns the new mode.
func (p *Player) CycleRepeat() core.RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	m := p.queue.Repeat().Next()
	p.queue.SetRepeatMode(m)
	return m
}

// Repeat returns the repeat mode.
func (p *Player) Repeat() core.RepeatMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Repeat()
}

// advance runs when the transport finishes a track and repeat-one is not
// active. An exhausted queue stops playback.
func (p *Player) advance() {
	p.mu.Lock()
	if p.queue.AtEnd() {
		p.audio.Stop()
		p.mu.Unlock()
		p.log.Debug("queue exhausted")
		return
	}
	t, ok := p.queue.Next()
	if ok && !p.syncLocked(true) {
		p.audio.Restart()
	}
	p.mu.Unlock()

	if ok {
		p.record(t)
	}
}

// Queue returns a copy of the queue state.
func (p *Player) Queue() QueueState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return QueueState{
		Tracks:  p.queue.Tracks(),
		Index:   p.queue.Index(),
		Shuffle: p.queue.Shuffled(),
		Repeat:  p.queue.Repeat(),
	}
}

// Current returns the queue's current track.
func (p *Player) Current() (core.Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Current()
}

// Snapshot merges transport and queue state.
func (p *Player) Snapshot() core.PlaybackState {
	s := p.audio.Snapshot()
	p.mu.Lock()
	s.Shuffle = p.queue.Shuffled()
	s.Repeat = p.queue.Repeat()
	p.mu.Unlock()
	return s
}

// WaitIdle polls until the transport leaves the loading state or timeout
// elapses. Headless callers use it before reading the first snapshot.
func (p *Player) WaitIdle(timeout time.Duration) core.PlaybackState {
	deadline := time.Now().Add(timeout)
	for {
		s := p.Snapshot()
		if s.State != core.StateLoading || time.Now().After(deadline) {
			return s
		}
		time.Sleep(50 * time.Millisecond)
	}
}
