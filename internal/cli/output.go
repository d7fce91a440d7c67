package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tessro/station/internal/core"
)

// Table provides a simple table formatter.
type Table struct {
	w *tabwriter.Writer
}

// NewTable creates a new table on stdout with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		t.Row(headers...)
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// StatusIcon returns an icon for the given boolean status.
func StatusIcon(active bool) string {
	if active {
		return "●"
	}
	return "○"
}

// TruncateString truncates s to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// FormatDuration formats d as m:ss or h:mm:ss.
func FormatDuration(d time.Duration) string {
	seconds := int(d / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatProgress formats a progress bar.
func FormatProgress(current, total time.Duration, width int) string {
	if total <= 0 {
		return strings.Repeat("─", width)
	}
	filled := int(float64(current) / float64(total) * float64(width))
	filled = max(0, min(filled, width))
	return strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTracks writes tracks as a numbered table, or as JSON with --json.
func printTracks(out io.Writer, tracks []core.Track) error {
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tracks)
	}
	if len(tracks) == 0 {
		fmt.Fprintln(out, "No tracks found")
		return nil
	}

	t := NewTableWriter(out, "#", "TITLE", "ARTIST", "GENRE", "TIME", "PLAYS", "ID")
	for i, tr := range tracks {
		t.Row(
			strconv.Itoa(i+1),
			TruncateString(tr.Title, 40),
			TruncateString(tr.Artist.Name, 24),
			TruncateString(tr.Genre, 14),
			FormatDuration(tr.Duration),
			humanize.Comma(int64(tr.PlayCount)),
			tr.ID,
		)
	}
	t.Flush()
	return nil
}

// printArtists writes artists as a table, or as JSON with --json.
func printArtists(out io.Writer, artists []core.Artist) error {
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(artists)
	}
	if len(artists) == 0 {
		fmt.Fprintln(out, "No artists found")
		return nil
	}

	t := NewTableWriter(out, "NAME", "HANDLE", "FOLLOWERS", "TRACKS", "ID")
	for _, a := range artists {
		name := a.Name
		if a.IsVerified {
			name += " ✓"
		}
		t.Row(
			TruncateString(name, 30),
			"@"+a.Handle,
			humanize.Comma(int64(a.Followers)),
			strconv.Itoa(a.TrackCount),
			a.ID,
		)
	}
	t.Flush()
	return nil
}
