package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/session"
)

const defaultLimit = 50

var (
	playTrending bool
	playGenre    string
	playShuffle  bool
	playRepeat   string
	playPreset   string
	playLimit    int
	playRemote   bool
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Play without the UI and print playback events",
	Long: `Start headless playback and follow it in the terminal.
Without arguments, plays a random mix of trending and genre tracks.

Examples:
  station play                      # Random discovery mix
  station play "late night lofi"    # Search and play the results
  station play --genre Techno       # Deep genre mix
  station play --trending --shuffle # This week's trending, shuffled
  station play --preset bass-boost  # With an equalizer preset`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playTrending, "trending", false, "Play this week's trending tracks")
	playCmd.Flags().StringVar(&playGenre, "genre", "", "Play a deep genre mix")
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "Enable shuffle mode")
	playCmd.Flags().StringVar(&playRepeat, "repeat", "", "Repeat mode: off, all or one")
	playCmd.Flags().StringVar(&playPreset, "preset", "", "Equalizer preset")
	playCmd.Flags().IntVarP(&playLimit, "limit", "n", defaultLimit, "Number of tracks to queue")
	playCmd.Flags().BoolVar(&playRemote, "remote", false, "Serve the remote control while playing")
	addTailFlags(playCmd)
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if playShuffle {
		cfg.Defaults.Shuffle = true
	}
	if playRepeat != "" {
		cfg.Defaults.Repeat = playRepeat
	}
	if playPreset != "" {
		cfg.Defaults.Preset = playPreset
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Catalog.TimeoutDuration())
	tracks, err := resolvePlayTracks(ctx, sess, strings.Join(args, " "))
	cancel()
	if err != nil {
		return err
	}
	return playHeadless(cmd.Context(), sess, tracks, 0)
}

func resolvePlayTracks(ctx context.Context, sess *session.Session, query string) ([]core.Track, error) {
	var (
		tracks []core.Track
		err    error
	)
	switch {
	case query != "":
		tracks, err = sess.Catalog.Search(ctx, query, playLimit)
	case playGenre != "":
		tracks, err = sess.Catalog.GenreDeep(ctx, playGenre, playLimit)
	case playTrending:
		tracks, err = sess.Catalog.Trending(ctx, core.TimeWeek, "", playLimit)
	default:
		res, rerr := sess.Catalog.RandomTracks(ctx, playLimit)
		if err = rerr; err == nil {
			if res.HasErrors() {
				logger.Warn("random tracks", "failed_sources", len(res.Errors), "error", res.Err())
			}
			tracks = res.Data
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	if len(tracks) == 0 {
		if query != "" {
			return nil, fmt.Errorf("no results found for '%s'", query)
		}
		return nil, fmt.Errorf("no tracks found")
	}
	return tracks, nil
}

// playHeadless plays tracks from start and prints events until the
// queue runs out or the user interrupts.
func playHeadless(ctx context.Context, sess *session.Session, tracks []core.Track, start int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if playRemote || cfg.Remote.Enabled {
		startRemote(ctx, sess)
	}

	sess.PlayTracks(tracks, start)
	state := sess.Player.WaitIdle(cfg.Catalog.TimeoutDuration())
	if state.Error != "" && !jsonOut {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", state.Error)
	}
	if !jsonOut {
		fmt.Printf("▶ Queued %d tracks (Ctrl+C to stop)\n", len(tracks))
	}

	return follow(ctx, sess, os.Stdout, queueFinished(sess))
}
