package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/remote"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current playback status",
	Long:  `Shows the playback state of the running station (ui, play --remote or remote).`,
	RunE:  runStatus,
}

func init() {
	addAddrFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := remoteClient().State(cmd.Context())
	if err != nil {
		return err
	}
	if JSONOutput() {
		return printJSON(st)
	}
	printStatus(st)
	return nil
}

func printStatus(st remote.StatePayload) {
	p := st.Playback
	if !p.HasTrack() {
		fmt.Println("No track playing")
		return
	}

	icon := "⏸"
	if p.IsPlaying {
		icon = "▶"
	}
	fmt.Printf("%s %s\n", icon, p.Track.Title)
	fmt.Printf("    %s", p.Track.Artist.Name)
	if p.Track.Genre != "" {
		fmt.Printf(" · %s", p.Track.Genre)
	}
	fmt.Println()

	fmt.Printf("    %s %s / %s\n",
		FormatProgress(p.Progress, p.Duration, 30),
		FormatDuration(p.Progress),
		FormatDuration(p.Duration))

	vol := fmt.Sprintf("🔊 %d%%", p.VolumePercent())
	if p.Muted {
		vol = "🔇 muted"
	}
	fmt.Printf("    %s  %s shuffle  repeat %s\n", vol, StatusIcon(p.Shuffle), p.Repeat)

	bands := make([]string, len(p.Bands))
	for i, g := range p.Bands {
		bands[i] = fmt.Sprintf("%s %+.0f", eq.ShortLabels[i], g)
	}
	fmt.Printf("    🎚 %s\n", strings.Join(bands, "  "))

	if n := len(st.Queue.Tracks); n > 0 {
		fmt.Printf("    Queue %d/%d\n", st.Queue.Index+1, n)
	}
	if p.Error != "" {
		fmt.Printf("    ⚠ %s\n", p.Error)
	}
}
