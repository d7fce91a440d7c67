package tui

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep/v2"

	"github.com/tessro/station/internal/config"
	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/session"
	"github.com/tessro/station/internal/store"
)

type nullOutput struct{ mu sync.Mutex }

func (o *nullOutput) Start(beep.SampleRate, beep.Streamer) error { return nil }
func (o *nullOutput) Lock()                                      { o.mu.Lock() }
func (o *nullOutput) Unlock()                                    { o.mu.Unlock() }
func (o *nullOutput) Suspend() error                             { return nil }
func (o *nullOutput) Resume() error                              { return nil }
func (o *nullOutput) Suspended() bool                            { return false }
func (o *nullOutput) Close() error                               { return nil }

type silence struct{ pos int }

func (s *silence) Stream(samples [][2]float64) (int, bool) {
	clear(samples)
	s.pos += len(samples)
	return len(samples), true
}
func (s *silence) Err() error       { return nil }
func (s *silence) Len() int         { return 441000 }
func (s *silence) Position() int    { return s.pos }
func (s *silence) Seek(p int) error { s.pos = p; return nil }
func (s *silence) Close() error     { return nil }

type silentLoader struct{}

func (silentLoader) Load(context.Context, string) (beep.StreamSeekCloser, beep.Format, error) {
	return &silence{}, beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}, nil
}

func newModel(t *testing.T, configPath string) Model {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []string{srv.URL}})
	}))
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Catalog.DiscoveryURL = srv.URL
	sess, err := session.Open(context.Background(), session.Options{
		Config:    cfg,
		Store:     store.NewMemory(nil),
		Output:    &nullOutput{},
		Loader:    silentLoader{},
		Rand:      rand.New(rand.NewPCG(1, 2)),
		VibeDelay: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sess.Close() })

	m := NewModel(sess, Options{ConfigPath: configPath})
	m.width, m.height = 120, 40
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func sampleTracks(n int) []core.Track {
	out := make([]core.Track, n)
	for i := range n {
		id := string(rune('a' + i))
		out[i] = core.Track{ID: id, Title: "Song " + id, Duration: 3 * time.Minute,
			Artist: core.Artist{ID: "u" + id, Name: "Artist " + id}}
	}
	return out
}

func TestPlaybackKeys(t *testing.T) {
	m := newModel(t, "")
	m.sess.SetQueue(sampleTracks(3), 0)

	m = press(t, m, "s", "r")
	state := m.sess.Snapshot()
	if !state.Shuffle {
		t.Error("s did not enable shuffle")
	}
	if state.Repeat != core.RepeatAll {
		t.Errorf("r set repeat %v, want all", state.Repeat)
	}

	m = press(t, m, "m")
	if !m.sess.Snapshot().Muted {
		t.Error("m did not mute")
	}
}

func TestFocusCycles(t *testing.T) {
	m := newModel(t, "")
	for i := range int(panelCount) {
		if m.focus != Panel(i) {
			t.Fatalf("focus = %d after %d tabs", m.focus, i)
		}
		m = press(t, m, "tab")
	}
	if m.focus != PanelNowPlaying {
		t.Errorf("focus did not wrap: %d", m.focus)
	}
}

func TestEqualizerPanelKeys(t *testing.T) {
	m := newModel(t, "")
	m.focus = PanelEqualizer

	m = press(t, m, "l", "k", "k")
	if got := m.sess.EQ.Gain(1); got != 2*eq.Step {
		t.Errorf("band 1 = %v, want %v", got, 2*eq.Step)
	}
	m = press(t, m, "0")
	if got := m.sess.EQ.Gain(1); got != 0 {
		t.Errorf("band 1 after reset = %v", got)
	}
}

func TestPresetCyclePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	m := newModel(t, path)

	want := m.nextPreset()
	next, cmd := m.Update(key("e"))
	m = next.(Model)
	if got, _ := m.sess.EQ.Matches(); got != want {
		t.Fatalf("preset = %v, want %v", got, want)
	}
	if msg, ok := cmd().(statusMsg); !ok || !strings.Contains(string(msg), want.String()) {
		t.Errorf("cmd returned %#v", msg)
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.Preset != want.String() {
		t.Errorf("saved preset = %q, want %q", cfg.Defaults.Preset, want)
	}
}

func TestPresetCycleWithoutConfigPath(t *testing.T) {
	m := newModel(t, "")
	_, cmd := m.Update(key("e"))
	if _, ok := cmd().(statusMsg); !ok {
		t.Error("expected a status message")
	}
}

func TestVisualizerCyclePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	m := newModel(t, path)

	want := m.mode.Next()
	next, cmd := m.Update(key("v"))
	m = next.(Model)
	if m.mode != want {
		t.Fatalf("mode = %v, want %v", m.mode, want)
	}
	if _, ok := cmd().(statusMsg); !ok {
		t.Fatal("expected a status message")
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Defaults.Visualizer != want.String() {
		t.Errorf("saved visualizer = %q, want %q", cfg.Defaults.Visualizer, want)
	}
}

func TestPlayResultKeepsResultOrder(t *testing.T) {
	m := newModel(t, "")
	artist := core.Artist{ID: "u9", Name: "Someone"}
	tracks := sampleTracks(3)
	m.searchResults = append(trackResults(tracks[:1]),
		searchResult{Artist: &artist, Title: artist.Name})
	m.searchResults = append(m.searchResults, trackResults(tracks[1:])...)

	msg, ok := m.playResult(3)().(tracksMsg)
	if !ok {
		t.Fatal("expected tracksMsg")
	}
	if len(msg.tracks) != 3 || msg.start != 2 || !msg.play {
		t.Errorf("tracksMsg = %d tracks, start %d, play %v", len(msg.tracks), msg.start, msg.play)
	}

	next, _ := m.Update(msg)
	m = next.(Model)
	if cur, ok := m.sess.Player.Current(); !ok || cur.ID != "c" {
		t.Errorf("current = %v, %v; want c", cur.ID, ok)
	}
}

func TestLibraryEnterPlaysFavorites(t *testing.T) {
	m := newModel(t, "")
	m.favorites = sampleTracks(2)
	m.focus = PanelLibrary
	m = press(t, m, "t", "j", "enter")

	q := m.sess.Queue()
	if len(q.Tracks) != 2 || q.Index != 1 {
		t.Errorf("queue = %d tracks at %d", len(q.Tracks), q.Index)
	}
}

func TestSearchOverlay(t *testing.T) {
	m := newModel(t, "")
	m = press(t, m, "/")
	if !m.showSearch {
		t.Fatal("/ did not open search")
	}
	m = press(t, m, "q")
	if !m.showSearch || m.quitting || m.searchInput.Value() != "q" {
		t.Errorf("q inside search: open %v quitting %v value %q", m.showSearch, m.quitting, m.searchInput.Value())
	}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	m = next.(Model)
	if m.searchMode != SearchArtists {
		t.Errorf("mode = %v, want Artists", m.searchMode)
	}
	m = press(t, m, "esc")
	if m.showSearch {
		t.Error("esc did not close search")
	}
}

func TestStaleSearchResultsDropped(t *testing.T) {
	m := newModel(t, "")
	m.showSearch = true
	m.lastQuery = "new"
	next, _ := m.Update(searchResultsMsg{query: "old", results: trackResults(sampleTracks(2))})
	if got := next.(Model).searchResults; got != nil {
		t.Errorf("stale results applied: %d", len(got))
	}
}

func TestViewRenders(t *testing.T) {
	m := newModel(t, "")
	m.sess.SetQueue(sampleTracks(2), 0)
	next, _ := m.Update(stateMsg{state: m.sess.Snapshot(), queue: m.sess.Queue()})
	m = next.(Model)

	out := m.View()
	for _, want := range []string{"Now Playing", "Spectrum", "Queue", "Equalizer", "Vibe", "Recent", "Song a"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.showHelp = true
	if !strings.Contains(m.View(), "Keyboard shortcuts") {
		t.Error("help overlay not rendered")
	}
}
