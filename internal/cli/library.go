package cli

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/library"
	"github.com/tessro/station/internal/session"
	"github.com/tessro/station/internal/wizard"
)

var (
	libraryClear  bool
	libraryPlay   bool
	libraryForce  bool
	followsExport bool
	vibesPlay     string
	tipToken      string
	tipTipper     string
	tipTx         string
)

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"favs"},
	Short:   "List favorite tracks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrackList(cmd, "favorites", (*library.Library).Favorites, (*library.Library).ClearFavorites)
	},
}

var recentCmd = &cobra.Command{
	Use:     "recent",
	Aliases: []string{"history"},
	Short:   "List recently played tracks",
	RunE:    runRecent,
}

var followsCmd = &cobra.Command{
	Use:   "follows",
	Short: "List followed artists",
	RunE:  runFollows,
}

var tipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Show tip history",
	Long: `Show the local tip history. Tips are recorded here only; sending
them is done with your wallet.`,
	RunE: runTipsList,
}

var tipsAddCmd = &cobra.Command{
	Use:   "add <track-id> <amount>",
	Short: "Record a tip for a track",
	Args:  cobra.ExactArgs(2),
	RunE:  runTipsAdd,
}

var tipsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Totals by token and top artists",
	Args:  cobra.NoArgs,
	RunE:  runTipsStats,
}

var tipsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the tip history as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(sess *session.Session) error {
			data, err := sess.Library.ExportTips()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		})
	},
}

var vibesCmd = &cobra.Command{
	Use:   "vibes",
	Short: "Adaptive playlists from analysed tracks",
	Long: `Group the recently played and favorite tracks that have a vibe
profile into mood playlists.

Examples:
  station vibes                   # List playlists
  station vibes --play Chill      # Play one`,
	RunE: runVibes,
}

func init() {
	for _, c := range []*cobra.Command{favoritesCmd, recentCmd} {
		c.Flags().BoolVar(&libraryClear, "clear", false, "Clear the list")
		c.Flags().BoolVarP(&libraryForce, "yes", "y", false, "Do not ask before clearing")
		c.Flags().BoolVar(&libraryPlay, "play", false, "Play the list")
	}
	followsCmd.Flags().BoolVar(&followsExport, "export", false, "Print follows as JSON")
	vibesCmd.Flags().StringVar(&vibesPlay, "play", "", "Play the named playlist")

	tipsAddCmd.Flags().StringVar(&tipToken, "token", string(library.TokenAUDIO), "Token: ETH, AUDIO or BSTN")
	tipsAddCmd.Flags().StringVar(&tipTipper, "tipper", "", "Sending wallet address")
	tipsAddCmd.Flags().StringVar(&tipTx, "tx", "", "Transaction hash")
	tipsCmd.AddCommand(tipsAddCmd, tipsStatsCmd, tipsExportCmd)

	rootCmd.AddCommand(favoritesCmd, recentCmd, followsCmd, tipsCmd, vibesCmd)
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, fn func(*session.Session) error) error {
	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()
	return fn(sess)
}

// clearList asks before clearing unless --yes is set or stdin is not
// interactive, in which case --yes is required.
func clearList(what string, clear func() error) error {
	if !libraryForce {
		if !wizard.IsTerminal() {
			return fmt.Errorf("refusing to clear %s without --yes", what)
		}
		ok, err := wizard.ConfirmClear(what)
		if err != nil || !ok {
			return err
		}
	}
	if err := clear(); err != nil {
		return err
	}
	fmt.Printf("Cleared %s\n", what)
	return nil
}

func runTrackList(cmd *cobra.Command, what string, list func(*library.Library) ([]core.Track, error), clear func(*library.Library) error) error {
	return withSession(cmd, func(sess *session.Session) error {
		if libraryClear {
			return clearList(what, func() error { return clear(sess.Library) })
		}
		tracks, err := list(sess.Library)
		if err != nil {
			return err
		}
		if libraryPlay {
			if len(tracks) == 0 {
				return fmt.Errorf("no %s yet", what)
			}
			return playHeadless(cmd.Context(), sess, tracks, 0)
		}
		return printTracks(os.Stdout, tracks)
	})
}

func runRecent(cmd *cobra.Command, args []string) error {
	if libraryClear || libraryPlay {
		return runTrackList(cmd, "recently played", (*library.Library).RecentTracks, (*library.Library).ClearRecent)
	}
	return withSession(cmd, func(sess *session.Session) error {
		entries, err := sess.Library.Recent()
		if err != nil {
			return err
		}
		if JSONOutput() {
			return printJSON(entries)
		}
		if len(entries) == 0 {
			fmt.Println("Nothing played yet")
			return nil
		}
		t := NewTable("#", "TITLE", "ARTIST", "TIME", "PLAYED", "ID")
		for i, e := range entries {
			t.Row(
				strconv.Itoa(i+1),
				TruncateString(e.Track.Title, 40),
				TruncateString(e.Track.Artist.Name, 24),
				FormatDuration(e.Track.Duration),
				humanize.Time(e.PlayedAt),
				e.Track.ID,
			)
		}
		t.Flush()
		return nil
	})
}

func runFollows(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(sess *session.Session) error {
		if followsExport {
			data, err := sess.Library.ExportFollows()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}

		follows, err := sess.Library.Follows()
		if err != nil {
			return err
		}
		if JSONOutput() {
			return printJSON(follows)
		}
		if len(follows) == 0 {
			fmt.Println("Not following anyone yet (press F in the player)")
			return nil
		}
		t := NewTable("ARTIST", "HANDLE", "SINCE", "ID")
		for _, f := range follows {
			t.Row(TruncateString(f.ArtistName, 30), "@"+f.ArtistHandle, humanize.Time(f.FollowedAt), f.ArtistID)
		}
		t.Flush()
		return nil
	})
}

func runTipsList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(sess *session.Session) error {
		tips, err := sess.Library.Tips()
		if err != nil {
			return err
		}
		if JSONOutput() {
			return printJSON(tips)
		}
		if len(tips) == 0 {
			fmt.Println("No tips recorded")
			return nil
		}
		printTips(tips)
		return nil
	})
}

func printTips(tips []library.Tip) {
	t := NewTable("WHEN", "ARTIST", "TRACK", "AMOUNT", "TX")
	for _, tip := range tips {
		t.Row(
			humanize.Time(tip.Timestamp),
			TruncateString(tip.ArtistName, 24),
			TruncateString(tip.TrackTitle, 32),
			tip.Amount+" "+string(tip.Token),
			TruncateString(tip.TxHash, 14),
		)
	}
	t.Flush()
}

func runTipsAdd(cmd *cobra.Command, args []string) error {
	token, err := library.ParseToken(tipToken)
	if err != nil {
		return err
	}

	return withSession(cmd, func(sess *session.Session) error {
		ctx, cancel := catalogCtx(cmd.Context())
		defer cancel()
		track, err := sess.Catalog.Track(ctx, args[0])
		if err != nil {
			return err
		}

		tip, err := sess.Library.AddTip(library.TipRequest{
			Track:  track,
			Amount: args[1],
			Token:  token,
			Tipper: tipTipper,
			TxHash: tipTx,
		})
		if err != nil {
			return err
		}
		if JSONOutput() {
			return printJSON(tip)
		}
		fmt.Printf("💸 Recorded %s %s to %s for %q\n", tip.Amount, tip.Token, tip.ArtistName, tip.TrackTitle)
		return nil
	})
}

func runTipsStats(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(sess *session.Session) error {
		stats, err := sess.Library.TipStats()
		if err != nil {
			return err
		}
		if JSONOutput() {
			return printJSON(stats)
		}

		fmt.Printf("Tips: %d\n", stats.TotalTips)
		tokens := make([]string, 0, len(stats.TotalByToken))
		for tok := range stats.TotalByToken {
			tokens = append(tokens, string(tok))
		}
		sort.Strings(tokens)
		for _, tok := range tokens {
			fmt.Printf("  %-6s %s\n", tok, humanize.CommafWithDigits(stats.TotalByToken[library.Token(tok)], 4))
		}

		if len(stats.TopArtists) > 0 {
			fmt.Println()
			t := NewTable("ARTIST", "HANDLE", "TIPS", "TOTAL")
			for _, a := range stats.TopArtists {
				t.Row(
					TruncateString(a.ArtistName, 30),
					"@"+a.ArtistHandle,
					strconv.Itoa(a.TipCount),
					humanize.CommafWithDigits(a.TotalAmount, 4),
				)
			}
			t.Flush()
		}
		return nil
	})
}

func runVibes(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(sess *session.Session) error {
		playlists, err := sess.Playlists()
		if err != nil {
			return err
		}

		if vibesPlay != "" {
			for _, p := range playlists {
				if strings.EqualFold(p.Name, vibesPlay) || strings.EqualFold(p.Vibe, vibesPlay) {
					if len(p.Tracks) == 0 {
						return fmt.Errorf("playlist %q is empty", p.Name)
					}
					return playHeadless(cmd.Context(), sess, p.Tracks, 0)
				}
			}
			return fmt.Errorf("no playlist named %q", vibesPlay)
		}

		if JSONOutput() {
			return printJSON(playlists)
		}
		if len(playlists) == 0 {
			fmt.Println("No analysed tracks yet. Play something and press V to analyse it.")
			return nil
		}
		for i, p := range playlists {
			if i > 0 {
				fmt.Println()
			}
			fmt.Printf("%s %s (%d tracks)\n", p.Icon, p.Name, len(p.Tracks))
			if p.Description != "" {
				fmt.Printf("  %s\n", p.Description)
			}
			for _, tr := range p.Tracks[:min(len(p.Tracks), 5)] {
				fmt.Printf("  • %s\n", TruncateString(tr.DisplayName(), 60))
			}
			if rest := len(p.Tracks) - 5; rest > 0 {
				fmt.Printf("  ... and %d more\n", rest)
			}
		}
		return nil
	})
}
