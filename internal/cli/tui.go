package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/station/internal/spectrum"
	"github.com/tessro/station/internal/tui"
)

var (
	tuiRefresh    int
	tuiVisualizer string
	tuiTheme      string
	tuiRemote     bool
)

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive player",
	Long: `Launch the interactive terminal player.

The player shows:
  • Now Playing - current track, seek bar, volume, shuffle and repeat
  • Spectrum - live analyser in flame, wave or bars mode
  • Queue - upcoming tracks
  • Equalizer - five bands with presets, mouse draggable
  • Vibe - the current track's vibe profile
  • Library - recently played and favorites

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Search
  Space        Play/Pause
  n / p        Next / previous track
  [ / ]        Seek
  +/-          Volume up/down
  e            Next equalizer preset
  v            Visualizer mode
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	addTUIFlags(tuiCmd)
	rootCmd.AddCommand(tuiCmd)
}

func addTUIFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "Refresh interval in milliseconds (default from config)")
	cmd.Flags().StringVar(&tuiVisualizer, "visualizer", "", "Visualizer mode: flame, wave or bars")
	cmd.Flags().StringVar(&tuiTheme, "theme", "", "Color theme: auto, dark or light")
	cmd.Flags().BoolVar(&tuiRemote, "remote", false, "Serve the remote control while the player runs")
}

func tuiOptions() (tui.Options, error) {
	refresh := cfg.TUI.RefreshInterval
	if tuiRefresh > 0 {
		refresh = tuiRefresh
	}
	visualizer := cfg.Defaults.Visualizer
	if tuiVisualizer != "" {
		visualizer = tuiVisualizer
	}
	mode, err := spectrum.ParseMode(visualizer)
	if err != nil {
		return tui.Options{}, err
	}
	theme := cfg.TUI.Theme
	if tuiTheme != "" {
		theme = tuiTheme
	}
	return tui.Options{
		ConfigPath:    configPath(),
		Refresh:       time.Duration(refresh) * time.Millisecond,
		FrameInterval: tuiFrameInterval(),
		Visualizer:    mode,
		Theme:         theme,
	}, nil
}

func tuiFrameInterval() time.Duration {
	return time.Duration(cfg.TUI.FrameInterval) * time.Millisecond
}

func runTUI(cmd *cobra.Command, args []string) error {
	opts, err := tuiOptions()
	if err != nil {
		return err
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	if tuiRemote || cfg.Remote.Enabled {
		startRemote(sess.Context(), sess)
	}
	return tui.Run(sess, opts)
}
