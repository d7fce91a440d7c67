// Package tui is the interactive terminal player.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/player"
	"github.com/tessro/station/internal/session"
	"github.com/tessro/station/internal/spectrum"
	"github.com/tessro/station/internal/tui/components"
	"github.com/tessro/station/internal/tui/styles"
	"github.com/tessro/station/internal/vibe"
)

// Panel represents which panel is focused
type Panel int

const (
	PanelNowPlaying Panel = iota
	PanelQueue
	PanelEqualizer
	PanelLibrary
	panelCount
)

// SearchMode selects what the search overlay queries.
type SearchMode int

const (
	SearchTracks SearchMode = iota
	SearchArtists
	SearchGenre
	SearchTrending
	searchModeCount
)

func (m SearchMode) String() string {
	switch m {
	case SearchArtists:
		return "Artists"
	case SearchGenre:
		return "Genre"
	case SearchTrending:
		return "Trending"
	default:
		return "Tracks"
	}
}

type searchResult struct {
	Track    *core.Track
	Artist   *core.Artist
	Title    string
	Subtitle string
}

const (
	searchDebounce = 300 * time.Millisecond
	searchLimit    = 25
	messageTTL     = 5 * time.Second
	volumeStep     = 0.05
	seekStep       = 10 * time.Second
)

// Options configures the UI.
type Options struct {
	// ConfigPath receives the equalizer preset and visualizer when they
	// change. Empty disables persistence.
	ConfigPath    string
	Refresh       time.Duration
	FrameInterval time.Duration
	Visualizer    spectrum.Mode
	Theme         string
}

// Model is the main TUI model
type Model struct {
	sess   *session.Session
	opts   Options
	width  int
	height int
	focus  Panel

	// State
	state     core.PlaybackState
	queue     player.QueueState
	recent    []core.HistoryEntry
	favorites []core.Track
	favorite  bool
	following bool
	profile   *vibe.Profile
	cosigned  bool
	trackID   string

	// Components
	nowPlaying *components.NowPlaying
	queueView  *components.Queue
	library    *components.Library
	equalizer  *components.Equalizer

	animator *spectrum.Animator
	mode     spectrum.Mode
	frame    []byte

	// Overlays
	showHelp bool

	// Search state
	showSearch    bool
	searchInput   textinput.Model
	searchResults []searchResult
	searchCursor  int
	searchMode    SearchMode
	searching     bool
	lastQuery     string
	searchErr     error

	loading bool

	status       string
	lastError    error
	messageUntil time.Time

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(sess *session.Session, opts Options) Model {
	if opts.Refresh <= 0 {
		opts.Refresh = 500 * time.Millisecond
	}
	ti := textinput.New()
	ti.Placeholder = "Search tracks, artists, genres..."
	ti.CharLimit = 100
	ti.Width = 50

	return Model{
		sess:        sess,
		opts:        opts,
		focus:       PanelNowPlaying,
		nowPlaying:  components.NewNowPlaying(),
		queueView:   components.NewQueue(),
		library:     components.NewLibrary(),
		equalizer:   components.NewEqualizer(),
		animator:    &spectrum.Animator{Interval: opts.FrameInterval},
		mode:        opts.Visualizer,
		frame:       make([]byte, spectrum.Buckets),
		searchInput: ti,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tick(), m.fetchState(), m.fetchLibrary()}
	if len(m.sess.Queue().Tracks) == 0 {
		cmds = append(cmds, m.loadRandom())
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.expireMessage()
		cmds := []tea.Cmd{m.tick(), m.fetchState()}
		if m.profile == nil && m.trackID != "" {
			cmds = append(cmds, m.fetchVibe(m.trackID))
		}
		return m, tea.Batch(cmds...)

	case stateMsg:
		m.state = msg.state
		m.queue = msg.queue
		m.queueView.Follow(m.queue.Index)

		var cmds []tea.Cmd
		cmds = append(cmds, m.animator.Sync(m.state.IsPlaying))

		id := ""
		if m.state.Track != nil {
			id = m.state.Track.ID
		}
		if id != m.trackID {
			m.trackID = id
			m.profile = nil
			m.cosigned = false
			cmds = append(cmds, m.fetchLibrary())
		}
		return m, tea.Batch(cmds...)

	case spectrum.FrameMsg:
		ok, cmd := m.animator.Update(msg)
		if ok {
			data := make([]byte, m.sess.FrequencyBinCount())
			m.sess.FrequencyData(data)
			m.frame = data
		}
		return m, cmd

	case libraryMsg:
		if msg.err != nil {
			m.setError(msg.err)
		}
		m.recent = msg.recent
		m.favorites = msg.favorites
		m.favorite = msg.favorite
		m.following = msg.following
		if msg.trackID == m.trackID {
			m.profile = msg.profile
			m.cosigned = msg.cosigned
		}
		return m, nil

	case vibeMsg:
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		if msg.profile != nil && msg.profile.TrackID == m.trackID {
			m.profile = msg.profile
			m.cosigned = msg.cosigned
		}
		if msg.status != "" {
			m.setStatus(msg.status)
		}
		return m, nil

	case tracksMsg:
		m.loading = false
		if msg.err != nil {
			m.setError(msg.err)
			return m, nil
		}
		if len(msg.tracks) == 0 {
			m.setStatus("No tracks found")
			return m, nil
		}
		if msg.play {
			m.sess.PlayTracks(msg.tracks, msg.start)
		} else {
			m.sess.SetQueue(msg.tracks, msg.start)
		}
		m.setStatus(msg.status)
		return m, m.fetchState()

	case statusMsg:
		m.setStatus(string(msg))
		return m, tea.Batch(m.fetchState(), m.fetchLibrary())

	case errMsg:
		m.setError(msg.err)
		return m, nil

	case searchDebounceMsg:
		if msg.query == m.searchInput.Value() && msg.query != m.lastQuery {
			m.lastQuery = msg.query
			m.searching = true
			return m, m.doSearch(msg.query, m.searchMode)
		}

	case searchResultsMsg:
		if msg.query != m.lastQuery || msg.mode != m.searchMode {
			return m, nil
		}
		m.searching = false
		m.searchResults = msg.results
		m.searchErr = msg.err
		m.searchCursor = 0
		return m, nil
	}

	if m.showSearch {
		var inputCmd tea.Cmd
		m.searchInput, inputCmd = m.searchInput.Update(msg)
		return m, inputCmd
	}
	return m, nil
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.lastError = nil
	m.messageUntil = time.Now().Add(messageTTL)
}

func (m *Model) setError(err error) {
	m.lastError = err
	m.status = ""
	m.messageUntil = time.Now().Add(messageTTL)
}

func (m *Model) expireMessage() {
	if time.Now().After(m.messageUntil) {
		m.status = ""
		m.lastError = nil
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		m.animator.Stop()
		return m, tea.Quit
	}

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
		}
		return m, nil
	}

	if m.showSearch {
		return m.handleSearchKeyPress(msg)
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		m.animator.Stop()
		return m, tea.Quit
	case "?":
		m.showHelp = true
		return m, nil
	case "/":
		return m.openSearch(SearchTracks)
	case "T":
		model, cmd := m.openSearch(SearchTrending)
		return model, tea.Batch(cmd, m.doSearch("", SearchTrending))
	case "tab":
		m.focus = (m.focus + 1) % panelCount
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + panelCount - 1) % panelCount
		return m, nil
	}

	if model, cmd, ok := m.handlePanelKey(msg); ok {
		return model, cmd
	}

	switch msg.String() {
	case " ":
		m.sess.TogglePlay()
		return m, m.fetchState()
	case "n":
		m.sess.Next()
		return m, m.fetchState()
	case "p":
		m.sess.Previous()
		return m, m.fetchState()
	case "+", "=":
		m.sess.SetVolume(m.state.Volume + volumeStep)
		return m, m.fetchState()
	case "-", "_":
		m.sess.SetVolume(m.state.Volume - volumeStep)
		return m, m.fetchState()
	case "m":
		m.sess.ToggleMute()
		return m, m.fetchState()
	case "s":
		m.sess.ToggleShuffle()
		return m, m.fetchState()
	case "r":
		m.sess.CycleRepeat()
		return m, m.fetchState()
	case "[":
		m.sess.Seek(max(m.state.Progress-seekStep, 0))
		return m, m.fetchState()
	case "]":
		m.sess.Seek(m.state.Progress + seekStep)
		return m, m.fetchState()
	case "v":
		m.mode = m.mode.Next()
		m.sess.SetVisualizer(m.mode)
		return m, m.persist("defaults.visualizer", m.mode.String(), "Visualizer: "+m.mode.String())
	case "e":
		return m, m.applyPreset(m.nextPreset())
	case "f":
		return m, m.toggleFavorite()
	case "F":
		return m, m.toggleFollow()
	case "V":
		return m, m.analyze()
	case "c":
		return m, m.cosign()
	case "o":
		return m, m.openInBrowser()
	case "R":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.setStatus("Finding something new...")
		return m, m.loadRandom()
	}
	return m, nil
}

// handlePanelKey handles keys that belong to the focused panel.
func (m Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	key := msg.String()
	switch m.focus {
	case PanelQueue:
		switch key {
		case "j", "down":
			m.queueView.Down(len(m.queue.Tracks))
		case "k", "up":
			m.queueView.Up()
		case "enter":
			m.sess.Jump(m.queueView.Cursor())
			return m, m.fetchState(), true
		case "x", "delete":
			m.sess.Player.Remove(m.queueView.Cursor())
			return m, m.fetchState(), true
		default:
			return m, nil, false
		}
		return m, nil, true

	case PanelLibrary:
		list := m.libraryTracks()
		switch key {
		case "j", "down":
			m.library.Down(len(list))
		case "k", "up":
			m.library.Up()
		case "t":
			m.library.Toggle()
		case "enter":
			if len(list) > 0 {
				m.sess.PlayTracks(list, m.library.Cursor())
				return m, m.fetchState(), true
			}
		case "a":
			if c := m.library.Cursor(); c < len(list) {
				m.sess.Player.Add(list[c])
				m.setStatus("Queued " + list[c].Title)
				return m, m.fetchState(), true
			}
		default:
			return m, nil, false
		}
		return m, nil, true

	case PanelEqualizer:
		switch key {
		case "h", "left":
			m.equalizer.Left()
		case "l", "right":
			m.equalizer.Right()
		case "k", "up":
			m.sess.EQ.Nudge(m.equalizer.Band, 1)
			return m, m.fetchState(), true
		case "j", "down":
			m.sess.EQ.Nudge(m.equalizer.Band, -1)
			return m, m.fetchState(), true
		case "0":
			m.sess.SetBand(m.equalizer.Band, 0)
			return m, m.fetchState(), true
		case "z":
			return m, m.applyPreset(eq.PresetFlat), true
		default:
			return m, nil, false
		}
		return m, nil, true
	}
	return m, nil, false
}

func (m Model) libraryTracks() []core.Track {
	if m.library.Tab == components.TabFavorites {
		return m.favorites
	}
	tracks := make([]core.Track, len(m.recent))
	for i, e := range m.recent {
		tracks[i] = e.Track
	}
	return tracks
}

func (m Model) nextPreset() eq.Preset {
	cur, ok := m.sess.EQ.Matches()
	if !ok {
		return eq.Presets[0]
	}
	for i, p := range eq.Presets {
		if p == cur {
			return eq.Presets[(i+1)%len(eq.Presets)]
		}
	}
	return eq.Presets[0]
}

func (m Model) openSearch(mode SearchMode) (tea.Model, tea.Cmd) {
	m.showSearch = true
	m.searchInput.SetValue("")
	m.searchInput.Focus()
	m.searchResults = nil
	m.searchCursor = 0
	m.searchMode = mode
	m.lastQuery = ""
	m.searchErr = nil
	m.searching = mode == SearchTrending
	return m, textinput.Blink
}

func (m Model) handleSearchKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.String() {
	case "esc":
		m.showSearch = false
		m.searchInput.Blur()
		return m, nil

	case "enter":
		if m.searchCursor < len(m.searchResults) {
			m.showSearch = false
			m.searchInput.Blur()
			return m, m.playResult(m.searchCursor)
		}
		return m, nil

	case "up", "ctrl+p":
		if m.searchCursor > 0 {
			m.searchCursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
		return m, nil

	case "ctrl+t":
		m.searchMode = (m.searchMode + 1) % searchModeCount
		m.searchResults = nil
		m.searchCursor = 0
		q := m.searchInput.Value()
		m.lastQuery = q
		if q != "" || m.searchMode == SearchTrending {
			m.searching = true
			return m, m.doSearch(q, m.searchMode)
		}
		return m, nil

	case "ctrl+q":
		if m.searchCursor < len(m.searchResults) {
			if r := m.searchResults[m.searchCursor]; r.Track != nil {
				m.sess.Player.Add(*r.Track)
				m.setStatus("Queued " + r.Track.Title)
				return m, m.fetchState()
			}
		}
		return m, nil
	}

	var inputCmd tea.Cmd
	m.searchInput, inputCmd = m.searchInput.Update(msg)
	cmds = append(cmds, inputCmd)

	if q := m.searchInput.Value(); q != m.lastQuery {
		cmds = append(cmds, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{query: q}
		}))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || m.showSearch {
		return m, nil
	}
	duration := m.state.Duration

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.sess.SetVolume(m.state.Volume + volumeStep)
		return m, m.fetchState()
	case msg.Button == tea.MouseButtonWheelDown:
		m.sess.SetVolume(m.state.Volume - volumeStep)
		return m, m.fetchState()

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if _, ok := m.nowPlaying.Seek.Press(msg.X, msg.Y, duration); ok {
			m.focus = PanelNowPlaying
			return m, nil
		}
		if band, dB, ok := m.equalizer.Press(msg.X, msg.Y); ok {
			m.focus = PanelEqualizer
			m.sess.SetBand(band, dB)
			return m, m.fetchState()
		}

	case msg.Action == tea.MouseActionMotion:
		m.nowPlaying.Seek.Hover(msg.X, msg.Y, duration)
		if band, dB, ok := m.equalizer.Drag(msg.Y); ok {
			m.sess.SetBand(band, dB)
			return m, m.fetchState()
		}

	case msg.Action == tea.MouseActionRelease:
		m.equalizer.Release()
		if pos, ok := m.nowPlaying.Seek.Release(msg.X, msg.Y, duration); ok {
			m.sess.Seek(pos)
			return m, m.fetchState()
		}
	}
	return m, nil
}

// Run starts the TUI and blocks until the user quits.
func Run(sess *session.Session, opts Options) error {
	if opts.Theme != "" {
		styles.SetTheme(opts.Theme)
	}
	p := tea.NewProgram(NewModel(sess, opts), tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err := p.Run()
	return err
}
