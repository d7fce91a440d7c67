package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/session"
	"github.com/tessro/station/internal/wizard"
)

var (
	catalogLimit   int
	catalogPlay    bool
	searchArtists  bool
	searchInteract bool
	trendingTime   string
	trendingGenre  string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog",
	Long: `Search tracks or artists. Without a query, or with -i, opens the
interactive search where Tab switches between tracks, artists and genre.

Examples:
  station search "deep house"          # Track table
  station search --artists "odesza"    # Artist table
  station search "ambient" --play      # Play the results
  station search -i                    # Interactive search`,
	RunE: runSearch,
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show trending tracks",
	Long: `Show trending tracks for a time window.

Examples:
  station trending                        # This week
  station trending --time month --genre Electronic
  station trending --play`,
	Args: cobra.NoArgs,
	RunE: runTrending,
}

var genreCmd = &cobra.Command{
	Use:   "genre <name>",
	Short: "Deep genre mix",
	Long:  `Search plus monthly trending, filtered to the exact genre and sorted by plays.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGenre,
}

var artistCmd = &cobra.Command{
	Use:   "artist <id|query>",
	Short: "Show an artist and their tracks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runArtist,
}

func init() {
	searchCmd.Flags().BoolVar(&searchArtists, "artists", false, "Search artists instead of tracks")
	searchCmd.Flags().BoolVarP(&searchInteract, "interactive", "i", false, "Interactive search")
	trendingCmd.Flags().StringVar(&trendingTime, "time", "week", "Window: week, month, year or allTime")
	trendingCmd.Flags().StringVar(&trendingGenre, "genre", "", "Only this genre")

	for _, c := range []*cobra.Command{searchCmd, trendingCmd, genreCmd, artistCmd} {
		c.Flags().IntVarP(&catalogLimit, "limit", "n", defaultLimit, "Maximum number of results")
		c.Flags().BoolVar(&catalogPlay, "play", false, "Play the results")
		rootCmd.AddCommand(c)
	}
}

// catalogCtx bounds one catalog request by the configured timeout.
func catalogCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, cfg.Catalog.TimeoutDuration())
}

func searchFunc(ctx context.Context, sess *session.Session) wizard.SearchFunc {
	return func(query string, t wizard.SearchType) ([]wizard.SearchResult, error) {
		ctx, cancel := catalogCtx(ctx)
		defer cancel()

		var results []wizard.SearchResult
		switch t {
		case wizard.SearchArtists:
			artists, err := sess.Catalog.SearchUsers(ctx, query, catalogLimit)
			if err != nil {
				return nil, err
			}
			for _, a := range artists {
				results = append(results, wizard.ArtistResult(a))
			}
		default:
			var (
				tracks []core.Track
				err    error
			)
			if t == wizard.SearchGenre {
				tracks, err = sess.Catalog.GenreDeep(ctx, query, catalogLimit)
			} else {
				tracks, err = sess.Catalog.Search(ctx, query, catalogLimit)
			}
			if err != nil {
				return nil, err
			}
			for _, tr := range tracks {
				results = append(results, wizard.TrackResult(tr))
			}
		}
		return results, nil
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	query := strings.Join(args, " ")
	interactive := wizard.NewInteractive()
	interactive.SetSearchFunc(searchFunc(ctx, sess))

	if searchInteract || wizard.NeedsQuery(args) {
		if !interactive.CanInteract() {
			return fmt.Errorf("search query required")
		}
		res, err := interactive.PromptSearch(query)
		if err != nil || res == nil {
			return err
		}
		if res.Artist != nil {
			return showArtist(ctx, sess, *res.Artist)
		}
		return playHeadless(ctx, sess, []core.Track{*res.Track}, 0)
	}

	rctx, cancel := catalogCtx(ctx)
	defer cancel()

	if searchArtists {
		artists, err := sess.Catalog.SearchUsers(rctx, query, catalogLimit)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		return printArtists(os.Stdout, artists)
	}

	tracks, err := sess.Catalog.Search(rctx, query, catalogLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return listOrPlay(ctx, sess, tracks, fmt.Sprintf("Results for %q", query))
}

func runTrending(cmd *cobra.Command, args []string) error {
	period, ok := core.ParseTimeRange(trendingTime)
	if !ok {
		return fmt.Errorf("invalid time window %q (want week, month, year or allTime)", trendingTime)
	}

	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	rctx, cancel := catalogCtx(ctx)
	defer cancel()
	tracks, err := sess.Catalog.Trending(rctx, period, trendingGenre, catalogLimit)
	if err != nil {
		return fmt.Errorf("failed to load trending: %w", err)
	}
	return listOrPlay(ctx, sess, tracks, "Trending this "+string(period))
}

func runGenre(cmd *cobra.Command, args []string) error {
	genre := strings.Join(args, " ")

	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	rctx, cancel := catalogCtx(ctx)
	defer cancel()
	tracks, err := sess.Catalog.GenreDeep(rctx, genre, catalogLimit)
	if err != nil {
		return fmt.Errorf("failed to load genre: %w", err)
	}
	return listOrPlay(ctx, sess, tracks, genre)
}

func runArtist(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	arg := strings.Join(args, " ")
	rctx, cancel := catalogCtx(ctx)
	defer cancel()

	artist, err := sess.Catalog.User(rctx, arg)
	if err != nil {
		artists, serr := sess.Catalog.SearchUsers(rctx, arg, 1)
		if serr != nil {
			return fmt.Errorf("artist lookup failed: %w", serr)
		}
		if len(artists) == 0 {
			return fmt.Errorf("no artist found for '%s'", arg)
		}
		artist = artists[0]
	}
	return showArtist(ctx, sess, artist)
}

func showArtist(ctx context.Context, sess *session.Session, artist core.Artist) error {
	rctx, cancel := catalogCtx(ctx)
	tracks, err := sess.Catalog.UserTracks(rctx, artist.ID, catalogLimit)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to load tracks: %w", err)
	}

	if !jsonOut && !catalogPlay {
		if err := printArtists(os.Stdout, []core.Artist{artist}); err != nil {
			return err
		}
		if artist.Bio != "" {
			fmt.Println()
			fmt.Println(TruncateString(artist.Bio, 200))
		}
		fmt.Println()
	}
	return listOrPlay(ctx, sess, tracks, artist.Name)
}

// listOrPlay prints tracks, or with --play plays them, letting the user
// pick the first track when stdout is a terminal.
func listOrPlay(ctx context.Context, sess *session.Session, tracks []core.Track, title string) error {
	if !catalogPlay {
		return printTracks(os.Stdout, tracks)
	}
	if len(tracks) == 0 {
		return fmt.Errorf("no tracks found")
	}

	start, ok, err := wizard.NewInteractive().PromptTrack(title, tracks)
	if err != nil {
		return err
	}
	if !ok {
		start = 0
	}
	return playHeadless(ctx, sess, tracks, start)
}
