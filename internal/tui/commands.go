package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/tessro/station/internal/audius"
	"github.com/tessro/station/internal/browser"
	"github.com/tessro/station/internal/config"
	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/errors"
	"github.com/tessro/station/internal/player"
	"github.com/tessro/station/internal/vibe"
)

const (
	requestTimeout = 15 * time.Second
	webURL         = "https://audius.co"
)

// Messages
type tickMsg time.Time

type stateMsg struct {
	state core.PlaybackState
	queue player.QueueState
}

type libraryMsg struct {
	trackID   string
	recent    []core.HistoryEntry
	favorites []core.Track
	favorite  bool
	following bool
	profile   *vibe.Profile
	cosigned  bool
	err       error
}

type vibeMsg struct {
	profile  *vibe.Profile
	cosigned bool
	status   string
	err      error
}

type tracksMsg struct {
	tracks []core.Track
	start  int
	play   bool
	status string
	err    error
}

type searchDebounceMsg struct {
	query string
}

type searchResultsMsg struct {
	query   string
	mode    SearchMode
	results []searchResult
	err     error
}

type statusMsg string

type errMsg struct{ err error }

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.opts.Refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) fetchState() tea.Cmd {
	return func() tea.Msg {
		return stateMsg{state: m.sess.Snapshot(), queue: m.sess.Queue()}
	}
}

// fetchLibrary loads everything the side panels show for the current
// track.
func (m Model) fetchLibrary() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		var msg libraryMsg
		var errs []error
		var err error

		msg.recent, err = sess.Library.Recent()
		errs = append(errs, err)
		msg.favorites, err = sess.Library.Favorites()
		errs = append(errs, err)

		if cur, ok := sess.Player.Current(); ok {
			msg.trackID = cur.ID
			msg.favorite, err = sess.Library.IsFavorite(cur.ID)
			errs = append(errs, err)
			msg.following, err = sess.Library.IsFollowing(cur.Artist.ID)
			errs = append(errs, err)

			p, found, err := sess.Vibes.Get(cur.ID)
			errs = append(errs, err)
			if found {
				msg.profile = &p
			}
			msg.cosigned, err = sess.Vibes.Cosigned(cur.ID)
			errs = append(errs, err)
		}
		msg.err = errors.Join(errs...)
		return msg
	}
}

// fetchVibe picks up a profile the session analysed in the background.
func (m Model) fetchVibe(trackID string) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		p, ok, err := sess.Vibes.Get(trackID)
		if err != nil || !ok {
			return nil
		}
		cosigned, _ := sess.Vibes.Cosigned(trackID)
		return vibeMsg{profile: &p, cosigned: cosigned}
	}
}

func (m Model) analyze() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		p, err := sess.Reanalyze()
		if err != nil {
			return vibeMsg{err: err}
		}
		return vibeMsg{profile: &p, status: "Vibe: " + p.Vibe}
	}
}

func (m Model) cosign() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		n, added, err := sess.Cosign()
		if err != nil {
			return errMsg{err}
		}
		if !added {
			return statusMsg("Already cosigned")
		}
		p, err := sess.Vibe()
		if err != nil {
			return errMsg{err}
		}
		return vibeMsg{profile: &p, cosigned: true, status: fmt.Sprintf("Cosigned (%d total)", n)}
	}
}

func (m Model) toggleFavorite() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		track, fav, err := sess.ToggleFavorite()
		if err != nil {
			return errMsg{err}
		}
		if fav {
			return statusMsg("♥ " + track.Title)
		}
		return statusMsg("Removed " + track.Title + " from favorites")
	}
}

func (m Model) toggleFollow() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		artist, following, err := sess.ToggleFollow()
		if err != nil {
			return errMsg{err}
		}
		if following {
			return statusMsg("Following " + artist.Name)
		}
		return statusMsg("Unfollowed " + artist.Name)
	}
}

// applyPreset sets the equalizer and saves the choice to the config file.
func (m Model) applyPreset(p eq.Preset) tea.Cmd {
	m.sess.ApplyPreset(p)
	return m.persist("defaults.preset", p.String(), "Equalizer: "+p.String())
}

// persist writes one config key to the config file, then reports status.
func (m Model) persist(key, value, status string) tea.Cmd {
	path := m.opts.ConfigPath
	return func() tea.Msg {
		if path != "" {
			err := config.Update(path, func(c *config.Config) error { return c.Set(key, value) })
			if err != nil {
				return errMsg{fmt.Errorf("save %s: %w", key, err)}
			}
		}
		return statusMsg(status)
	}
}

func (m Model) openInBrowser() tea.Cmd {
	track := m.state.Track
	return func() tea.Msg {
		if track == nil {
			return errMsg{errors.New("nothing is playing")}
		}
		url := webURL + track.Permalink
		if track.Permalink == "" {
			url = webURL + "/tracks/" + track.ID
		}
		if err := browser.Open(url); err != nil {
			return errMsg{err}
		}
		return statusMsg("Opened " + url)
	}
}

func (m Model) loadRandom() tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(sess.Context(), 2*requestTimeout)
		defer cancel()

		res, err := sess.Catalog.RandomTracks(ctx, audius.DefaultRandomLimit)
		if err != nil {
			return tracksMsg{err: err}
		}
		status := fmt.Sprintf("Loaded %s tracks", humanize.Comma(int64(len(res.Data))))
		if res.HasErrors() {
			sess.Logger().Warn("random tracks", "failed_sources", len(res.Errors), "error", res.Err())
			status += fmt.Sprintf(" (%d sources failed)", len(res.Errors))
		}
		return tracksMsg{tracks: res.Data, status: status}
	}
}

func (m Model) doSearch(query string, mode SearchMode) tea.Cmd {
	sess := m.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(sess.Context(), requestTimeout)
		defer cancel()

		msg := searchResultsMsg{query: query, mode: mode}
		var tracks []core.Track
		switch mode {
		case SearchArtists:
			if query == "" {
				return msg
			}
			artists, err := sess.Catalog.SearchUsers(ctx, query, searchLimit)
			if err != nil {
				msg.err = err
				return msg
			}
			for i := range artists {
				a := artists[i]
				sub := "@" + a.Handle + " · " + humanize.Comma(int64(a.Followers)) + " followers"
				if a.IsVerified {
					sub = "✓ " + sub
				}
				msg.results = append(msg.results, searchResult{Artist: &a, Title: a.Name, Subtitle: sub})
			}
			return msg
		case SearchGenre:
			if query == "" {
				return msg
			}
			tracks, msg.err = sess.Catalog.GenreDeep(ctx, query, searchLimit)
		case SearchTrending:
			tracks, msg.err = sess.Catalog.Trending(ctx, core.TimeWeek, query, searchLimit)
		default:
			if query == "" {
				return msg
			}
			tracks, msg.err = sess.Catalog.Search(ctx, query, searchLimit)
		}
		msg.results = trackResults(tracks)
		return msg
	}
}

func trackResults(tracks []core.Track) []searchResult {
	results := make([]searchResult, len(tracks))
	for i := range tracks {
		t := tracks[i]
		sub := t.Artist.Name
		if t.Genre != "" {
			sub += " · " + t.Genre
		}
		results[i] = searchResult{Track: &t, Title: t.Title, Subtitle: sub}
	}
	return results
}

// playResult plays the chosen search result. Track results replace the
// queue with every track in the list; artist results load the artist's
// tracks.
func (m Model) playResult(index int) tea.Cmd {
	r := m.searchResults[index]
	if r.Artist != nil {
		sess, artist := m.sess, *r.Artist
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(sess.Context(), requestTimeout)
			defer cancel()
			tracks, err := sess.Catalog.UserTracks(ctx, artist.ID, searchLimit)
			return tracksMsg{tracks: tracks, play: true, status: "Playing " + artist.Name, err: err}
		}
	}

	var tracks []core.Track
	start := 0
	for i, res := range m.searchResults {
		if res.Track == nil {
			continue
		}
		if i == index {
			start = len(tracks)
		}
		tracks = append(tracks, *res.Track)
	}
	return func() tea.Msg {
		return tracksMsg{tracks: tracks, start: start, play: true, status: "Playing " + r.Title}
	}
}
