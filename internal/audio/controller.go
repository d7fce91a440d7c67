package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/tessro/station/internal/core"
)

// DefaultSampleRate is the graph's output rate. Sources at other rates
// are resampled.
const DefaultSampleRate = beep.SampleRate(44100)

// EventType identifies a controller event.
type EventType int

const (
	EventLoading EventType = iota
	EventReady
	EventPlaying
	EventPaused
	EventEnded
	EventStopped
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventLoading:
		return "loading"
	case EventReady:
		return "ready"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventEnded:
		return "ended"
	case EventStopped:
		return "stopped"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after a transport change.
type Event struct {
	Type  EventType
	Track core.Track
	Err   error
}

// Options configures a Controller.
type Options struct {
	Output     Output
	Loader     Loader
	Resolver   core.StreamResolver
	SampleRate beep.SampleRate
	Volume     float64
	Logger     *slog.Logger
}

type source struct {
	stream beep.StreamSeekCloser
	format beep.Format
	played beep.Streamer
	token  uint64
}

func (s *source) duration() time.Duration {
	return s.format.SampleRate.D(s.stream.Len())
}

// Controller owns the single audio graph and the transport for the loaded
// track. Create exactly one per process and share it. All methods are
// safe for concurrent use; none of them return playback errors; failures
// are logged, kept in LastError and announced as EventError.
type Controller struct {
	out      Output
	loader   Loader
	resolver core.StreamResolver
	sr       beep.SampleRate
	log      *slog.Logger

	mu        sync.Mutex
	graph     *Graph
	src       *source
	track     *core.Track
	state     core.TransportState
	playing   bool
	wantPlay  bool
	autoplay  bool
	token     uint64
	cancel    context.CancelFunc
	bands     [BandCount]float64
	volume    float64
	muted     bool
	lastErr   error
	repeat    func() core.RepeatMode
	onAdvance func()
	listeners []func(Event)

	wg sync.WaitGroup
}

// New creates a controller. The graph is not built until the first
// playback intent.
func New(opts Options) *Controller {
	sr := opts.SampleRate
	if sr == 0 {
		sr = DefaultSampleRate
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		out:      opts.Output,
		loader:   opts.Loader,
		resolver: opts.Resolver,
		sr:       sr,
		log:      log.With("component", "audio"),
		volume:   clampVolume(opts.Volume),
	}
}

// SetRepeatSource sets the function consulted when a track ends.
func (c *Controller) SetRepeatSource(fn func() core.RepeatMode) {
	c.mu.Lock()
	c.repeat = fn
	c.mu.Unlock()
}

// SetOnAdvance sets the callback run when a track ends and repeat-one is
// not active.
func (c *Controller) SetOnAdvance(fn func()) {
	c.mu.Lock()
	c.onAdvance = fn
	c.mu.Unlock()
}

// AddListener registers fn for transport events. Listeners run on the
// goroutine that caused the event and must not block.
func (c *Controller) AddListener(fn func(Event)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

func (c *Controller) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	c.mu.Lock()
	ls := append([]func(Event){}, c.listeners...)
	c.mu.Unlock()
	for _, e := range events {
		for _, fn := range ls {
			fn(e)
		}
	}
}

// LoadTrack binds track as the current source. The position resets to
// zero and playback stops until the new stream is ready; when resume is
// true playback then starts. Any earlier load still in flight is
// cancelled and its result discarded.
func (c *Controller) LoadTrack(ctx context.Context, track core.Track, resume bool) {
	c.mu.Lock()
	c.token++
	token := c.token
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.releaseSourceLocked()
	c.track = &track
	c.state = core.StateLoading
	c.playing = false
	c.wantPlay = resume
	c.lastErr = nil
	c.mu.Unlock()

	c.log.Debug("loading track", "track", track.ID, "token", token, "resume", resume)
	c.emit(Event{Type: EventLoading, Track: track})

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		c.resolve(ctx, token, track)
	}()
}

func (c *Controller) resolve(ctx context.Context, token uint64, track core.Track) {
	stream, format, err := c.fetch(ctx, track)

	c.mu.Lock()
	if token != c.token {
		c.mu.Unlock()
		if stream != nil {
			stream.Close()
		}
		c.log.Debug("discarding stale load", "track", track.ID, "token", token)
		return
	}

	if err != nil {
		c.state = core.StateIdle
		c.lastErr = err
		c.mu.Unlock()
		c.log.Warn("stream resolution failed", "track", track.ID, "error", err)
		c.emit(Event{Type: EventError, Track: track, Err: err})
		return
	}

	var played beep.Streamer = stream
	if format.SampleRate != c.sr {
		played = beep.Resample(4, format.SampleRate, c.sr, stream)
	}
	c.src = &source{stream: stream, format: format, played: played, token: token}
	if c.graph != nil {
		c.out.Lock()
		c.graph.slot.bind(played, token)
		c.out.Unlock()
	}
	c.state = core.StatePaused

	events := []Event{{Type: EventReady, Track: track}}
	if c.wantPlay {
		events = append(events, c.startLocked())
	}
	c.mu.Unlock()
	c.emit(events...)
}

func (c *Controller) fetch(ctx context.Context, track core.Track) (beep.StreamSeekCloser, beep.Format, error) {
	if c.resolver == nil || c.loader == nil {
		return nil, beep.Format{}, errors.New("no stream resolver configured")
	}
	url, err := c.resolver.StreamURL(ctx, track)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("resolve stream: %w", err)
	}
	return c.loader.Load(ctx, url)
}

// releaseSourceLocked unbinds and closes the current source.
func (c *Controller) releaseSourceLocked() {
	if c.src == nil {
		return
	}
	c.out.Lock()
	if c.graph != nil {
		c.graph.slot.unbind()
	}
	c.src.stream.Close()
	c.out.Unlock()
	c.src = nil
}

// ensureGraphLocked builds the graph and starts the output on first use.
func (c *Controller) ensureGraphLocked() error {
	if c.graph != nil {
		return nil
	}
	g, err := newGraph(c.sr, c.bands, c.volume, c.muted)
	if err != nil {
		return err
	}
	g.slot.onEnd = c.sourceEnded
	if c.src != nil {
		g.slot.bind(c.src.played, c.src.token)
	}
	if err := c.out.Start(c.sr, g.Streamer()); err != nil {
		return err
	}
	c.graph = g
	c.log.Debug("audio graph started", "sample_rate", int(c.sr))
	return nil
}

// startLocked begins playback of the bound source. Failures leave the
// controller paused.
func (c *Controller) startLocked() Event {
	track := c.currentTrackLocked()
	if c.src == nil {
		return Event{Type: EventPaused, Track: track}
	}
	fail := func(err error) Event {
		c.playing = false
		c.state = core.StatePaused
		c.lastErr = err
		c.log.Warn("playback start failed", "track", track.ID, "error", err)
		return Event{Type: EventError, Track: track, Err: err}
	}
	if err := c.ensureGraphLocked(); err != nil {
		return fail(err)
	}
	if c.out.Suspended() {
		if err := c.out.Resume(); err != nil {
			return fail(fmt.Errorf("resume output: %w", err))
		}
	}

	c.out.Lock()
	if c.graph.slot.ended {
		if err := c.src.stream.Seek(0); err != nil {
			c.log.Debug("rewind failed", "error", err)
		}
		c.graph.slot.ended = false
	}
	c.graph.slot.paused = false
	c.out.Unlock()

	c.playing = true
	c.autoplay = true
	c.state = core.StatePlaying
	return Event{Type: EventPlaying, Track: track}
}

func (c *Controller) pauseLocked() Event {
	if c.graph != nil {
		c.out.Lock()
		c.graph.slot.paused = true
		c.out.Unlock()
	}
	c.playing = false
	if c.src != nil {
		c.state = core.StatePaused
	}
	return Event{Type: EventPaused, Track: c.currentTrackLocked()}
}

func (c *Controller) currentTrackLocked() core.Track {
	if c.track == nil {
		return core.Track{}
	}
	return *c.track
}

// TogglePlay pauses when playing and plays otherwise. During a load it
// toggles whether playback starts once the stream is ready.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	if err := c.ensureGraphLocked(); err != nil {
		c.lastErr = err
		c.mu.Unlock()
		c.log.Warn("audio output unavailable", "error", err)
		c.emit(Event{Type: EventError, Err: err})
		return
	}
	if c.out.Suspended() {
		if err := c.out.Resume(); err != nil {
			c.log.Debug("resume output failed", "error", err)
		}
	}

	var e Event
	switch {
	case c.state == core.StateLoading:
		c.wantPlay = !c.wantPlay
		c.mu.Unlock()
		return
	case c.playing:
		e = c.pauseLocked()
	default:
		e = c.startLocked()
	}
	c.mu.Unlock()
	c.emit(e)
}

// Play starts playback if a source is loaded and not already playing.
func (c *Controller) Play() {
	c.mu.Lock()
	if c.playing {
		c.mu.Unlock()
		return
	}
	if c.state == core.StateLoading {
		c.wantPlay = true
		c.mu.Unlock()
		return
	}
	e := c.startLocked()
	c.mu.Unlock()
	c.emit(e)
}

// Pause pauses playback.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.state == core.StateLoading {
		c.wantPlay = false
		c.mu.Unlock()
		return
	}
	if !c.playing {
		c.mu.Unlock()
		return
	}
	e := c.pauseLocked()
	c.mu.Unlock()
	c.emit(e)
}

// Seek moves the playback position, clamped to [0, duration].
func (c *Controller) Seek(pos time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil {
		return
	}
	pos = max(0, min(pos, c.src.duration()))
	n := min(c.src.format.SampleRate.N(pos), c.src.stream.Len())

	c.out.Lock()
	defer c.out.Unlock()
	if err := c.src.stream.Seek(n); err != nil {
		c.log.Debug("seek failed", "position", pos, "error", err)
		return
	}
	if c.graph != nil && n < c.src.stream.Len() {
		c.graph.slot.ended = false
	}
}

// Position returns the playback position within the current source.
func (c *Controller) Position() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *Controller) positionLocked() time.Duration {
	if c.src == nil {
		return 0
	}
	c.out.Lock()
	defer c.out.Unlock()
	return c.src.format.SampleRate.D(c.src.stream.Position())
}

// Duration returns the length of the current source, falling back to the
// catalog duration while loading.
func (c *Controller) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.durationLocked()
}

func (c *Controller) durationLocked() time.Duration {
	if c.src != nil {
		return c.src.duration()
	}
	if c.track != nil {
		return c.track.Duration
	}
	return 0
}

func clampVolume(v float64) float64 {
	return max(0, min(v, 1))
}

// SetVolume sets the output level in [0, 1].
func (c *Controller) SetVolume(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = clampVolume(v)
	if c.graph != nil {
		c.graph.gain.volume.Store(c.volume)
	}
}

// Volume returns the output level, ignoring mute.
func (c *Controller) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// ToggleMute flips the mute flag. The volume is kept.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = !c.muted
	if c.graph != nil {
		c.graph.gain.muted.Store(c.muted)
	}
}

// Muted reports whether output is muted.
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// SetBandGain sets one equalizer band, clamped to [MinGain, MaxGain].
// Out-of-range bands are ignored.
func (c *Controller) SetBandGain(band int, dB float64) {
	if band < 0 || band >= BandCount {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bands[band] = ClampGain(dB)
	if c.graph != nil {
		c.graph.bands[band].setGain(c.bands[band])
	}
}

// BandGain returns one band's gain, or 0 for an invalid band.
func (c *Controller) BandGain(band int) float64 {
	if band < 0 || band >= BandCount {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bands[band]
}

// BandGains returns all band gains.
func (c *Controller) BandGains() [BandCount]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bands
}

// sourceEnded is called by the slot with the output locked.
func (c *Controller) sourceEnded(token uint64) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.trackEnded(token)
	}()
}

func (c *Controller) trackEnded(token uint64) {
	c.mu.Lock()
	current := c.src != nil && c.src.token == token
	c.mu.Unlock()
	if !current {
		return
	}
	c.HandleTrackEnd()
}

// HandleTrackEnd runs end-of-track policy: repeat-one replays the track;
// otherwise the advance callback decides what plays next, and without one
// playback stops.
func (c *Controller) HandleTrackEnd() {
	c.mu.Lock()
	repeatFn, advance := c.repeat, c.onAdvance
	c.mu.Unlock()

	repeat := core.RepeatOff
	if repeatFn != nil {
		repeat = repeatFn()
	}

	c.mu.Lock()
	if c.src == nil {
		c.mu.Unlock()
		return
	}
	track := c.currentTrackLocked()
	c.playing = false
	c.state = core.StateEnded

	if repeat == core.RepeatOne {
		c.rewindLocked()
		e := c.startLocked()
		c.mu.Unlock()
		c.emit(Event{Type: EventEnded, Track: track}, e)
		return
	}

	if advance == nil {
		c.pauseSlotLocked()
		c.state = core.StateIdle
		c.mu.Unlock()
		c.emit(Event{Type: EventEnded, Track: track}, Event{Type: EventStopped, Track: track})
		return
	}
	c.pauseSlotLocked()
	c.mu.Unlock()

	c.emit(Event{Type: EventEnded, Track: track})
	advance()
}

func (c *Controller) pauseSlotLocked() {
	if c.graph == nil {
		return
	}
	c.out.Lock()
	c.graph.slot.paused = true
	c.out.Unlock()
}

func (c *Controller) rewindLocked() {
	if c.src == nil {
		return
	}
	c.out.Lock()
	defer c.out.Unlock()
	if err := c.src.stream.Seek(0); err != nil {
		c.log.Debug("rewind failed", "error", err)
	}
	if c.graph != nil {
		c.graph.slot.ended = false
	}
}

// Stop halts playback, rewinds the current source and returns to idle.
// A load in flight is abandoned.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == core.StateLoading {
		c.token++
		if c.cancel != nil {
			c.cancel()
		}
	}
	c.pauseSlotLocked()
	c.rewindLocked()
	c.playing = false
	c.wantPlay = false
	c.state = core.StateIdle
	track := c.currentTrackLocked()
	c.mu.Unlock()
	c.emit(Event{Type: EventStopped, Track: track})
}

// Restart rewinds the current track and plays it.
func (c *Controller) Restart() {
	c.mu.Lock()
	c.rewindLocked()
	e := c.startLocked()
	c.mu.Unlock()
	c.emit(e)
}

// IsPlaying reports whether audio is being produced.
func (c *Controller) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Autoplay reports whether playback has started successfully at least
// once, which is what allows later track changes to start by themselves.
func (c *Controller) Autoplay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoplay
}

// State returns the transport state.
func (c *Controller) State() core.TransportState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Track returns the loaded or loading track.
func (c *Controller) Track() (core.Track, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.track == nil {
		return core.Track{}, false
	}
	return *c.track, true
}

// LastError returns the most recent load or start failure.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// GraphBuilt reports whether the signal chain exists.
func (c *Controller) GraphBuilt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.graph != nil
}

// Snapshot returns the transport state. Queue fields are left zero.
func (c *Controller) Snapshot() core.PlaybackState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := core.PlaybackState{
		State:     c.state,
		IsPlaying: c.playing,
		Progress:  c.positionLocked(),
		Duration:  c.durationLocked(),
		Volume:    c.volume,
		Muted:     c.muted,
		Bands:     c.bands,
	}
	if c.track != nil {
		t := *c.track
		s.Track = &t
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}
	return s
}

// FrequencyData fills dst with byte spectrum data from the analysis tap,
// or zeros before the graph exists.
func (c *Controller) FrequencyData(dst []byte) {
	c.mu.Lock()
	g := c.graph
	c.mu.Unlock()
	if g == nil {
		clear(dst)
		return
	}
	g.analyser.ByteFrequencyData(dst)
}

// FrequencyBinCount returns the analysis tap resolution.
func (c *Controller) FrequencyBinCount() int {
	return FFTSize / 2
}

// Response returns the equalizer's combined response at freq in dB, or 0
// before the graph exists.
func (c *Controller) Response(freq float64) float64 {
	c.mu.Lock()
	g := c.graph
	c.mu.Unlock()
	if g == nil {
		return 0
	}
	return g.Response(freq)
}

// Wait blocks until in-flight loads and end-of-track handlers finish.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close abandons any load, releases the source and closes the output.
func (c *Controller) Close() error {
	c.mu.Lock()
	c.token++
	if c.cancel != nil {
		c.cancel()
	}
	c.releaseSourceLocked()
	c.playing = false
	c.state = core.StateIdle
	c.mu.Unlock()

	c.wg.Wait()
	if c.out == nil {
		return nil
	}
	return c.out.Close()
}
