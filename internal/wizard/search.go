package wizard

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/tui/styles"
)

// SearchType selects what the search wizard looks for.
type SearchType int

const (
	SearchTracks SearchType = iota
	SearchArtists
	SearchGenre
	searchTypeCount
)

var searchTabs = [searchTypeCount]string{"Tracks", "Artists", "Genre"}

func (t SearchType) String() string {
	if t < 0 || t >= searchTypeCount {
		return "Tracks"
	}
	return searchTabs[t]
}

// SearchResult is one row in the wizard. Exactly one of Track and
// Artist is set.
type SearchResult struct {
	Track    *core.Track
	Artist   *core.Artist
	Title    string
	Subtitle string
}

// TrackResult builds a result row for a track.
func TrackResult(t core.Track) SearchResult {
	sub := t.Artist.Name
	if t.Genre != "" {
		sub += " · " + t.Genre
	}
	return SearchResult{Track: &t, Title: t.Title, Subtitle: sub}
}

// ArtistResult builds a result row for an artist.
func ArtistResult(a core.Artist) SearchResult {
	sub := "@" + a.Handle
	if a.IsVerified {
		sub += " ✓"
	}
	return SearchResult{Artist: &a, Title: a.Name, Subtitle: sub}
}

// SearchFunc is a function that performs a search.
type SearchFunc func(query string, searchType SearchType) ([]SearchResult, error)

// SearchModel is the bubbletea model for the search wizard. Typing
// searches after a short pause; Tab changes what is searched.
type SearchModel struct {
	input      textinput.Model
	search     SearchFunc
	searchType SearchType
	debounce   time.Duration

	lastQuery string
	searching bool
	results   []SearchResult
	err       error
	cursor    int
	selected  *SearchResult

	height int
}

// NewSearchModel creates a new search wizard model. query prefills the
// input.
func NewSearchModel(search SearchFunc, query string) SearchModel {
	ti := textinput.New()
	ti.Placeholder = "Search the catalog..."
	ti.Prompt = "🔎 "
	ti.CharLimit = 100
	ti.Width = 50
	ti.SetValue(query)
	ti.Focus()

	return SearchModel{
		input:    ti,
		search:   search,
		debounce: 300 * time.Millisecond,
		height:   20,
	}
}

type debounceMsg struct {
	query string
}

type searchResultsMsg struct {
	query      string
	searchType SearchType
	results    []SearchResult
	err        error
}

func (m SearchModel) Init() tea.Cmd {
	q := m.input.Value()
	if q == "" {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, func() tea.Msg { return debounceMsg{query: q} })
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}

	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.input.Width = msg.Width - 4

	case debounceMsg:
		if msg.query != m.input.Value() || msg.query == m.lastQuery {
			return m, nil
		}
		return m.start(msg.query)

	case searchResultsMsg:
		if msg.query != m.lastQuery || msg.searchType != m.searchType {
			return m, nil
		}
		m.searching = false
		m.results, m.err, m.cursor = msg.results, msg.err, 0
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if q := m.input.Value(); q != m.lastQuery {
		wait := tea.Tick(m.debounce, func(time.Time) tea.Msg { return debounceMsg{query: q} })
		return m, tea.Batch(cmd, wait)
	}
	return m, cmd
}

func (m SearchModel) handleKey(msg tea.KeyMsg) (SearchModel, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit, true
	case "enter":
		if m.cursor >= len(m.results) {
			return m, nil, true
		}
		m.selected = &m.results[m.cursor]
		return m, tea.Quit, true
	case "up", "ctrl+p":
		m.cursor = max(m.cursor-1, 0)
		return m, nil, true
	case "down", "ctrl+n":
		m.cursor = max(min(m.cursor+1, len(m.results)-1), 0)
		return m, nil, true
	case "tab":
		m.searchType = (m.searchType + 1) % searchTypeCount
	case "shift+tab":
		m.searchType = (m.searchType + searchTypeCount - 1) % searchTypeCount
	default:
		return m, nil, false
	}

	m.results, m.cursor = nil, 0
	if q := m.input.Value(); q != "" {
		next, cmd := m.start(q)
		return next, cmd, true
	}
	return m, nil, true
}

// start runs the search for query with the current type. Results for an
// older query or type are dropped when they arrive.
func (m SearchModel) start(query string) (SearchModel, tea.Cmd) {
	m.lastQuery = query
	m.searching = true
	search, st := m.search, m.searchType
	return m, func() tea.Msg {
		results, err := search(query, st)
		return searchResultsMsg{query: query, searchType: st, results: results, err: err}
	}
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Highlight.Render("Search") + "\n\n")
	b.WriteString(m.input.View() + "\n\n")

	for i, tab := range searchTabs {
		style := lipgloss.NewStyle().Padding(0, 2)
		if SearchType(i) == m.searchType {
			style = style.Background(styles.Primary).Foreground(styles.Text)
		}
		b.WriteString(style.Render(tab))
	}
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.Danger.Render("Error: " + m.err.Error()))
	case m.searching:
		b.WriteString(styles.Muted.Render("Searching..."))
	case len(m.results) == 0 && m.input.Value() != "":
		b.WriteString(styles.Muted.Render("No results found"))
	default:
		limit := max(m.height-10, 5)
		for i, r := range m.results {
			if i == limit {
				b.WriteString(styles.Muted.Render("  ...and more") + "\n")
				break
			}
			line := r.Title
			if r.Subtitle != "" {
				line += " " + styles.Muted.Render(r.Subtitle)
			}
			if i == m.cursor {
				b.WriteString(styles.Selected.Render("▸ "+line) + "\n")
			} else {
				b.WriteString("  " + line + "\n")
			}
		}
	}

	b.WriteString("\n" + styles.Dim.Render("↑/↓ navigate • tab switch type • enter select • esc quit"))
	return b.String()
}

// Selected returns the selected result, or nil if none.
func (m SearchModel) Selected() *SearchResult {
	return m.selected
}

// RunSearch runs the search wizard and returns the selected result.
func RunSearch(search SearchFunc, query string) (*SearchResult, error) {
	final, err := tea.NewProgram(NewSearchModel(search, query), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(SearchModel).Selected(), nil
}
