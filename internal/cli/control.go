package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/remote"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Long:  `Pause the running player.`,
	RunE:  runPause,
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume playback",
	Long:  `Resume paused playback.`,
	RunE:  runResume,
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle play/pause",
	RunE:  runSimpleCommand("toggle", "⏯ Toggled playback"),
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to next track",
	Long:  `Skip to the next track in the queue.`,
	RunE:  runSimpleCommand("next", "⏭ Skipped to next track"),
}

var prevCmd = &cobra.Command{
	Use:   "prev",
	Short: "Go to previous track",
	Long:  `Go back to the previous track in the queue.`,
	RunE:  runSimpleCommand("previous", "⏮ Previous track"),
}

var restartCmd = &cobra.Command{
	Use:     "restart",
	Aliases: []string{"replay"},
	Short:   "Restart current track",
	Long:    `Restart the current track from the beginning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendAndReport(cmd.Context(), remote.Command{Type: "seek"}, "⏪ Restarted track")
	},
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Toggle mute",
	RunE:  runSimpleCommand("mute", "🔇 Toggled mute"),
}

var shuffleCmd = &cobra.Command{
	Use:   "shuffle",
	Short: "Toggle shuffle",
	RunE:  runSimpleCommand("shuffle", "🔀 Toggled shuffle"),
}

var repeatCmd = &cobra.Command{
	Use:   "repeat",
	Short: "Cycle repeat mode (off, all, one)",
	RunE:  runSimpleCommand("repeat", "🔁 Cycled repeat"),
}

var jumpCmd = &cobra.Command{
	Use:   "jump <position>",
	Short: "Play the queue entry at position (1-based)",
	Args:  cobra.ExactArgs(1),
	RunE:  runJump,
}

var seekCmd = &cobra.Command{
	Use:   "seek <position>",
	Short: "Seek within the current track",
	Long: `Seek to an absolute position or by a relative offset.

Examples:
  station seek 1:30   # Jump to 1 minute 30
  station seek 45     # Jump to 45 seconds
  station seek +10    # Forward 10 seconds
  station seek -10    # Back 10 seconds`,
	Args: cobra.ExactArgs(1),
	RunE: runSeek,
}

var (
	volumeUp   bool
	volumeDown bool
)

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Set or adjust volume",
	Long: `Set the playback volume (0-100) or adjust it up/down.

Examples:
  station volume 50      # Set volume to 50%
  station volume --up    # Increase volume by 10%
  station volume --down  # Decrease volume by 10%`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVolume,
}

var (
	eqBand int
	eqGain float64
)

var eqCmd = &cobra.Command{
	Use:   "eq [preset]",
	Short: "Apply an equalizer preset or set one band",
	Long: `Apply an equalizer preset, or set a single band with --band and --gain.

Presets: bass-boost, treble-boost, vocal, flat
Bands: 0=60 Hz, 1=250 Hz, 2=1 kHz, 3=4 kHz, 4=12 kHz

Examples:
  station eq bass-boost
  station eq --band 0 --gain 6`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEQ,
}

func init() {
	cmds := []*cobra.Command{
		pauseCmd, resumeCmd, toggleCmd, nextCmd, prevCmd, restartCmd,
		muteCmd, shuffleCmd, repeatCmd, jumpCmd, seekCmd, volumeCmd, eqCmd,
	}
	for _, c := range cmds {
		addAddrFlag(c)
		rootCmd.AddCommand(c)
	}
	volumeCmd.Flags().BoolVar(&volumeUp, "up", false, "Increase volume by 10%")
	volumeCmd.Flags().BoolVar(&volumeDown, "down", false, "Decrease volume by 10%")
	eqCmd.Flags().IntVar(&eqBand, "band", -1, "Band index to set (0-4)")
	eqCmd.Flags().Float64Var(&eqGain, "gain", 0, "Gain in dB for --band (-12 to 12)")
}

func addAddrFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&remoteAddr, "addr", "", "Address of the running station (default from config)")
}

func remoteClient() *remote.Client {
	return remote.NewClient(listenAddr())
}

func runSimpleCommand(kind, done string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return sendAndReport(cmd.Context(), remote.Command{Type: kind}, done)
	}
}

func sendAndReport(ctx context.Context, c remote.Command, done string) error {
	st, err := remoteClient().Send(ctx, c)
	if err != nil {
		return err
	}
	if JSONOutput() {
		return printJSON(st)
	}
	fmt.Println(done)
	return nil
}

func runPause(cmd *cobra.Command, args []string) error {
	return setPlaying(cmd.Context(), false)
}

func runResume(cmd *cobra.Command, args []string) error {
	return setPlaying(cmd.Context(), true)
}

// setPlaying toggles only when the player is not already in the wanted
// state.
func setPlaying(ctx context.Context, playing bool) error {
	client := remoteClient()
	st, err := client.State(ctx)
	if err != nil {
		return err
	}
	if st.Playback.IsPlaying != playing {
		if st, err = client.Send(ctx, remote.Command{Type: "toggle"}); err != nil {
			return err
		}
	}

	if JSONOutput() {
		return printJSON(st)
	}
	if playing {
		fmt.Println("▶ Resumed")
	} else {
		fmt.Println("⏸ Paused")
	}
	return nil
}

func runJump(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid queue position: %s", args[0])
	}
	return sendAndReport(cmd.Context(), remote.Command{Type: "jump", Index: n - 1},
		fmt.Sprintf("▶ Jumped to #%d", n))
}

func runSeek(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	arg := args[0]
	relative := strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-")

	offset, err := parsePosition(strings.TrimLeft(arg, "+-"))
	if err != nil {
		return err
	}

	target := offset
	if relative {
		st, err := remoteClient().State(ctx)
		if err != nil {
			return err
		}
		if strings.HasPrefix(arg, "-") {
			offset = -offset
		}
		target = max(st.Playback.Progress+offset, 0)
	}

	return sendAndReport(ctx, remote.Command{Type: "seek", Seconds: target.Seconds()},
		"⏩ Seeked to "+FormatDuration(target))
}

// parsePosition accepts seconds ("90") or clock notation ("1:30", "1:02:03").
func parsePosition(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid position: %s", s)
	}
	var total int
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid position: %s", s)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}

func runVolume(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client := remoteClient()

	st, err := client.State(ctx)
	if err != nil {
		return err
	}
	current := st.Playback.VolumePercent()

	if len(args) == 0 && !volumeUp && !volumeDown {
		if JSONOutput() {
			return printJSON(map[string]any{"volume": current, "muted": st.Playback.Muted})
		}
		fmt.Printf("🔊 Volume: %d%%\n", current)
		return nil
	}

	var target int
	switch {
	case len(args) > 0:
		val, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid volume level: %s", args[0])
		}
		if val < 0 || val > 100 {
			return fmt.Errorf("volume must be between 0 and 100")
		}
		target = val
	case volumeUp:
		target = min(current+10, 100)
	default:
		target = max(current-10, 0)
	}

	if _, err := client.Send(ctx, remote.Command{Type: "volume", Value: float64(target) / 100}); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]any{"volume": target, "previous": current})
	}
	fmt.Printf("🔊 Volume: %d%% (was %d%%)\n", target, current)
	return nil
}

func runEQ(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if eqBand >= 0 {
		if eqBand >= eq.Bands {
			return fmt.Errorf("band must be between 0 and %d", eq.Bands-1)
		}
		return sendAndReport(ctx, remote.Command{Type: "band", Band: eqBand, Value: eqGain},
			fmt.Sprintf("🎚 %s set to %+.0f dB", eq.Labels[eqBand], eq.Snap(eqGain)))
	}

	if len(args) == 0 {
		st, err := remoteClient().State(ctx)
		if err != nil {
			return err
		}
		if JSONOutput() {
			return printJSON(map[string]any{"bands": st.Playback.Bands})
		}
		t := NewTable("BAND", "GAIN")
		for i, g := range st.Playback.Bands {
			t.Row(eq.Labels[i], fmt.Sprintf("%+.0f dB", g))
		}
		t.Flush()
		return nil
	}

	p, err := eq.ParsePreset(args[0])
	if err != nil {
		return err
	}
	return sendAndReport(ctx, remote.Command{Type: "preset", Preset: p.String()},
		"🎚 Applied preset "+p.String())
}
