package audio

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"

	"github.com/tessro/station/internal/core"
)

const testRate = beep.SampleRate(8000)

// fakeOutput runs the graph only when pumped.
type fakeOutput struct {
	mu        sync.Mutex
	s         beep.Streamer
	starts    int
	startErr  error
	suspended bool
	closed    bool
}

func (o *fakeOutput) Start(_ beep.SampleRate, s beep.Streamer) error {
	if o.startErr != nil {
		return o.startErr
	}
	o.starts++
	o.s = s
	return nil
}

func (o *fakeOutput) Lock()           { o.mu.Lock() }
func (o *fakeOutput) Unlock()         { o.mu.Unlock() }
func (o *fakeOutput) Suspend() error  { o.suspended = true; return nil }
func (o *fakeOutput) Resume() error   { o.suspended = false; return nil }
func (o *fakeOutput) Suspended() bool { return o.suspended }
func (o *fakeOutput) Close() error    { o.closed = true; return nil }

func (o *fakeOutput) pump(n int) [][2]float64 {
	buf := make([][2]float64, n)
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.s != nil {
		o.s.Stream(buf)
	}
	return buf
}

// memSource is a constant-level seekable stream.
type memSource struct {
	mu     sync.Mutex
	pos    int
	n      int
	closed bool
}

func (m *memSource) Stream(samples [][2]float64) (int, bool) {
	if m.pos >= m.n {
		return 0, false
	}
	k := min(len(samples), m.n-m.pos)
	for i := range k {
		samples[i] = [2]float64{0.5, 0.5}
	}
	m.pos += k
	return k, true
}

func (m *memSource) Err() error    { return nil }
func (m *memSource) Len() int      { return m.n }
func (m *memSource) Position() int { return m.pos }
func (m *memSource) Seek(p int) error {
	if p < 0 || p > m.n {
		return errors.New("seek out of range")
	}
	m.pos = p
	return nil
}
func (m *memSource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

func (m *memSource) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

type urlResolver struct{}

func (urlResolver) StreamURL(_ context.Context, t core.Track) (string, error) {
	if t.ID == "missing" {
		return "", errors.New("no host")
	}
	return "mem://" + t.ID, nil
}

// fakeLoader hands out memSources, optionally blocking on a gate.
type fakeLoader struct {
	mu      sync.Mutex
	length  int
	gates   map[string]chan struct{}
	sources map[string]*memSource
}

func newFakeLoader(length int) *fakeLoader {
	return &fakeLoader{
		length:  length,
		gates:   map[string]chan struct{}{},
		sources: map[string]*memSource{},
	}
}

func (l *fakeLoader) gate(url string) chan struct{} {
	ch := make(chan struct{})
	l.mu.Lock()
	l.gates[url] = ch
	l.mu.Unlock()
	return ch
}

func (l *fakeLoader) Load(ctx context.Context, url string) (beep.StreamSeekCloser, beep.Format, error) {
	l.mu.Lock()
	gate := l.gates[url]
	l.mu.Unlock()
	if gate != nil {
		<-gate
	}
	src := &memSource{n: l.length}
	l.mu.Lock()
	l.sources[url] = src
	l.mu.Unlock()
	return src, beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}, nil
}

func (l *fakeLoader) source(url string) *memSource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sources[url]
}

func newTestController(t *testing.T, length int) (*Controller, *fakeOutput, *fakeLoader) {
	t.Helper()
	out := &fakeOutput{}
	loader := newFakeLoader(length)
	c := New(Options{
		Output:     out,
		Loader:     loader,
		Resolver:   urlResolver{},
		SampleRate: testRate,
		Volume:     1,
	})
	t.Cleanup(func() { c.Close() })
	return c, out, loader
}

func TestLoadTrackResetsPositionAndStopsPlayback(t *testing.T) {
	c, out, _ := newTestController(t, int(testRate)*10)

	c.LoadTrack(context.Background(), core.Track{ID: "a"}, true)
	c.Wait()
	if !c.IsPlaying() {
		t.Fatalf("IsPlaying() = false after resume load, err = %v", c.LastError())
	}
	out.pump(4000)
	if c.Position() == 0 {
		t.Fatal("Position() = 0 after streaming")
	}

	c.LoadTrack(context.Background(), core.Track{ID: "b"}, false)
	if c.Position() != 0 {
		t.Errorf("Position() = %v right after LoadTrack, want 0", c.Position())
	}
	if c.IsPlaying() {
		t.Error("IsPlaying() = true right after LoadTrack")
	}
	if c.State() != core.StateLoading {
		t.Errorf("State() = %v, want loading", c.State())
	}

	c.Wait()
	if c.IsPlaying() {
		t.Error("IsPlaying() = true after non-resuming load")
	}
	if c.Position() != 0 {
		t.Errorf("Position() = %v after load, want 0", c.Position())
	}
	if c.State() != core.StatePaused {
		t.Errorf("State() = %v, want paused", c.State())
	}
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	c, _, loader := newTestController(t, 100)
	release := loader.gate("mem://slow")

	c.LoadTrack(context.Background(), core.Track{ID: "slow"}, true)
	c.LoadTrack(context.Background(), core.Track{ID: "fast"}, true)
	close(release)
	c.Wait()

	got, ok := c.Track()
	if !ok || got.ID != "fast" {
		t.Fatalf("Track() = %q, want fast", got.ID)
	}
	if !loader.source("mem://slow").isClosed() {
		t.Error("stale source was not closed")
	}
	if loader.source("mem://fast").isClosed() {
		t.Error("current source was closed")
	}
	if !c.IsPlaying() {
		t.Error("IsPlaying() = false, want the newer load to play")
	}
}

func TestGraphBuiltOnce(t *testing.T) {
	c, out, _ := newTestController(t, 100)
	if c.GraphBuilt() {
		t.Fatal("graph built before playback intent")
	}

	for _, id := range []string{"a", "b", "c"} {
		c.LoadTrack(context.Background(), core.Track{ID: id}, true)
		c.Wait()
	}
	c.TogglePlay()
	c.TogglePlay()

	if out.starts != 1 {
		t.Errorf("output started %d times, want 1", out.starts)
	}
}

func TestNonResumingLoadDoesNotBuildGraph(t *testing.T) {
	c, _, _ := newTestController(t, 100)
	c.LoadTrack(context.Background(), core.Track{ID: "a"}, false)
	c.Wait()
	if c.GraphBuilt() {
		t.Error("graph built by a load without playback intent")
	}
	c.TogglePlay()
	if !c.GraphBuilt() || !c.IsPlaying() {
		t.Error("TogglePlay did not build the graph and start playback")
	}
}

func TestStartFailureIsSwallowed(t *testing.T) {
	c, out, _ := newTestController(t, 100)
	out.startErr = errors.New("device busy")

	var events []EventType
	var mu sync.Mutex
	c.AddListener(func(e Event) {
		mu.Lock()
		events = append(events, e.Type)
		mu.Unlock()
	})

	c.LoadTrack(context.Background(), core.Track{ID: "a"}, true)
	c.Wait()

	if c.IsPlaying() {
		t.Error("IsPlaying() = true after start failure")
	}
	if c.LastError() == nil {
		t.Error("LastError() = nil after start failure")
	}
	if c.Autoplay() {
		t.Error("Autoplay() = true without a successful start")
	}
	mu.Lock()
	defer mu.Unlock()
	if events[len(events)-1] != EventError {
		t.Errorf("last event = %v, want error", events[len(events)-1])
	}
}

func TestResolutionFailure(t *testing.T) {
	c, _, _ := newTestController(t, 100)
	var gotErr error
	c.AddListener(func(e Event) {
		if e.Type == EventError {
			gotErr = e.Err
		}
	})

	c.LoadTrack(context.Background(), core.Track{ID: "missing"}, true)
	c.Wait()

	if gotErr == nil {
		t.Fatal("no error event for unresolvable track")
	}
	if c.State() != core.StateIdle {
		t.Errorf("State() = %v, want idle", c.State())
	}
	if c.IsPlaying() {
		t.Error("IsPlaying() = true")
	}
}

func TestTogglePlayDuringLoad(t *testing.T) {
	c, _, loader := newTestController(t, 100)
	release := loader.gate("mem://a")

	c.LoadTrack(context.Background(), core.Track{ID: "a"}, false)
	c.TogglePlay()
	close(release)
	c.Wait()

	if !c.IsPlaying() {
		t.Error("TogglePlay during load did not request playback")
	}
}

func TestSetBandGainOnlyAffectsBand(t *testing.T) {
	tests := []struct {
		band int
		gain float64
		want float64
	}{
		{0, 6, 6},
		{2, -3.5, -3.5},
		{4, 20, 12},
		{1, -40, -12},
	}

	for _, tt := range tests {
		c, _, _ := newTestController(t, 100)
		for i := range BandCount {
			c.SetBandGain(i, 1)
		}
		c.SetBandGain(tt.band, tt.gain)

		for i, g := range c.BandGains() {
			want := 1.0
			if i == tt.band {
				want = tt.want
			}
			if g != want {
				t.Errorf("SetBandGain(%d, %v): band %d = %v, want %v", tt.band, tt.gain, i, g, want)
			}
		}
	}
}

func TestSetBandGainIgnoresInvalidBand(t *testing.T) {
	c, _, _ := newTestController(t, 100)
	c.SetBandGain(-1, 5)
	c.SetBandGain(BandCount, 5)
	if c.BandGains() != [BandCount]float64{} {
		t.Errorf("BandGains() = %v, want all zero", c.BandGains())
	}
}

func TestBandGainsCarryIntoGraph(t *testing.T) {
	c, _, _ := newTestController(t, 100)
	c.SetBandGain(3, 7)
	c.LoadTrack(context.Background(), core.Track{ID: "a"}, true)
	c.Wait()

	if got := c.graph.bands[3].Gain(); got != 7 {
		t.Errorf("graph band 3 gain = %v, want 7", got)
	}
}

func TestVolumeAndMute(t *testing.T) {
	c, out, _ := newTestController(t, int(testRate))
	c.SetVolume(0.5)
	c.LoadTrack(context.Background(), core.Track{ID: "a"}, true)
	c.Wait()

	c.ToggleMute()
	if !c.Muted() || c.Volume() != 0.5 {
		t.Errorf("after mute: Muted() = %v, Volume() = %v", c.Muted(), c.Volume())
	}
	buf := out.pump(64)
	if buf[63][0] != 0 {
		t.Errorf("muted output sample = %v, want 0", buf[63][0])
	}

	c.ToggleMute()
	if c.Muted() || c.Volume() != 0.5 {
		t.Errorf("after unmute: Muted() = %v, Volume() = %v", c.Muted(), c.Volume())
	}

	c.SetVolume(3)
	if c.Volume() != 1 {
		t.Errorf("SetVolume(3) = %v, want 1", c.Volume())
	}
}

func TestSeekClamps(t *testing.T) {
	c, _, _ := newTestController(t, int(testRate)*4)
	c.LoadTrack(context.Background(), core.Track{ID: "a"}, false)
	c.Wait()

	c.Seek(2 * time.Second)
	if got := c.Position(); got != 2*time.Second {
		t.Errorf("Position() = %v, want 2s", got)
	}
	c.Seek(-time.Second)
	if got := c.Position(); got != 0 {
		t.Errorf("Position() = %v, want 0", got)
	}
	c.Seek(time.Hour)
	if got := c.Position(); got != 4*time.Second {
		t.Errorf("Position() = %v, want 4s", got)
	}
}

func TestTrackEndRepeatOneReplays(t *testing.T) {
	c, out, _ := newTestController(t, 100)
	c.SetRepeatSource(func() core.RepeatMode { return core.RepeatOne })
	advanced := false
	c.SetOnAdvance(func() { advanced = true })

	c.LoadTrack(context.Background(), core.Track{ID: "a"}, true)
	c.Wait()
	out.pump(200)
	c.Wait()

	if advanced {
		t.Error("advance called with repeat one")
	}
	if !c.IsPlaying() {
		t.Error("IsPlaying() = false after repeat-one replay")
	}
	if c.Position() != 0 {
		t.Errorf("Position() = %v, want 0", c.Position())
	}
}

func TestTrackEndAdvances(t *testing.T) {
	c, out, _ := newTestController(t, 100)
	var calls int
	c.SetOnAdvance(func() { calls++ })

	c.LoadTrack(context.Background(), core.Track{ID: "a"}, true)
	c.Wait()
	out.pump(200)
	c.Wait()
	out.pump(200)
	c.Wait()

	if calls != 1 {
		t.Errorf("advance called %d times, want 1", calls)
	}
	if c.State() != core.StateEnded {
		t.Errorf("State() = %v, want ended", c.State())
	}
}

func TestTrackEndWithoutAdvanceStops(t *testing.T) {
	c, out, _ := newTestController(t, 100)
	c.LoadTrack(context.Background(), core.Track{ID: "a"}, true)
	c.Wait()
	out.pump(200)
	c.Wait()

	if c.IsPlaying() {
		t.Error("IsPlaying() = true after end without advance")
	}
	if c.State() != core.StateIdle {
		t.Errorf("State() = %v, want idle", c.State())
	}
}

func TestStopAbandonsLoad(t *testing.T) {
	c, _, loader := newTestController(t, 100)
	release := loader.gate("mem://a")

	c.LoadTrack(context.Background(), core.Track{ID: "a"}, true)
	c.Stop()
	close(release)
	c.Wait()

	if c.IsPlaying() {
		t.Error("IsPlaying() = true after Stop during load")
	}
	if c.State() != core.StateIdle {
		t.Errorf("State() = %v, want idle", c.State())
	}
}

func TestFrequencyDataBeforeGraph(t *testing.T) {
	c, _, _ := newTestController(t, 100)
	buf := []byte{1, 2, 3}
	c.FrequencyData(buf)
	for i, b := range buf {
		if b != 0 {
			t.Errorf("buf[%d] = %d, want 0", i, b)
		}
	}
}

func TestSnapshot(t *testing.T) {
	c, _, _ := newTestController(t, int(testRate)*3)
	c.SetBandGain(0, 4)
	c.LoadTrack(context.Background(), core.Track{ID: "a", Title: "A"}, true)
	c.Wait()

	s := c.Snapshot()
	if !s.HasTrack() || s.Track.ID != "a" {
		t.Fatalf("Snapshot().Track = %v", s.Track)
	}
	if s.State != core.StatePlaying || !s.IsPlaying {
		t.Errorf("Snapshot() state = %v playing = %v", s.State, s.IsPlaying)
	}
	if s.Duration != 3*time.Second {
		t.Errorf("Snapshot().Duration = %v, want 3s", s.Duration)
	}
	if s.Bands[0] != 4 {
		t.Errorf("Snapshot().Bands[0] = %v, want 4", s.Bands[0])
	}
}
