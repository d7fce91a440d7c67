package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var queueLimit int

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the playback queue",
	Long: `Show the queue of the running station, starting at the current track.
Use "station jump <position>" to play another entry.`,
	RunE: runQueueList,
}

func init() {
	queueCmd.Flags().IntVarP(&queueLimit, "limit", "l", 20, "Maximum number of tracks to show")
	addAddrFlag(queueCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, args []string) error {
	st, err := remoteClient().State(cmd.Context())
	if err != nil {
		return err
	}
	q := st.Queue

	if JSONOutput() {
		return printJSON(q)
	}
	if len(q.Tracks) == 0 {
		fmt.Println("Queue is empty")
		return nil
	}

	start := max(q.Index, 0)
	end := min(start+queueLimit, len(q.Tracks))

	t := NewTable("", "#", "TITLE", "ARTIST", "TIME")
	for i := start; i < end; i++ {
		tr := q.Tracks[i]
		t.Row(
			StatusIcon(i == q.Index),
			strconv.Itoa(i+1),
			TruncateString(tr.Title, 40),
			TruncateString(tr.Artist.Name, 24),
			FormatDuration(tr.Duration),
		)
	}
	t.Flush()

	if rest := len(q.Tracks) - end; rest > 0 {
		fmt.Printf("... and %d more\n", rest)
	}
	return nil
}
