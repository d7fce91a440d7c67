package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/session"
	"github.com/tessro/station/internal/tail"
)

var (
	tailNoEmoji   bool
	tailTimestamp bool
	tailFormat    string
	tailInterval  time.Duration
)

// addTailFlags registers the event output flags on commands that follow
// playback.
func addTailFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&tailNoEmoji, "no-emoji", false, "disable emoji output")
	cmd.Flags().BoolVarP(&tailTimestamp, "timestamp", "t", false, "show timestamps")
	cmd.Flags().StringVarP(&tailFormat, "format", "f", "", "custom format template")
	cmd.Flags().DurationVarP(&tailInterval, "interval", "i", 0, "poll interval (default from config)")
}

type eventJSON struct {
	Event string              `json:"event"`
	Time  time.Time           `json:"time"`
	State *core.PlaybackState `json:"state,omitempty"`
}

// follow prints playback events until ctx is done or, when done is not
// nil, until done reports true for the current state.
func follow(ctx context.Context, sess *session.Session, out io.Writer, done func(core.PlaybackState) bool) error {
	interval := tailInterval
	if interval <= 0 {
		interval = time.Duration(cfg.Tail.Interval) * time.Millisecond
	}

	formatter := tail.NewFormatter(
		tail.WithEmoji(!tailNoEmoji),
		tail.WithTimestamp(tailTimestamp),
		tail.WithTemplate(tailFormat),
	)
	emit := func(e tail.Event) {
		if jsonOut {
			_ = json.NewEncoder(out).Encode(eventJSON{Event: e.Type.String(), Time: e.Timestamp, State: e.Current})
			return
		}
		fmt.Fprintln(out, formatter.Format(e))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if state := sess.Snapshot(); state.HasTrack() {
		emit(tail.Event{Type: tail.EventTrackChange, Timestamp: time.Now(), Current: &state})
	}

	watcher := tail.NewWatcher(sess, interval, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			emit(event)

		case <-ticker.C:
			if done != nil && done(sess.Snapshot()) {
				return nil
			}

		case err := <-errCh:
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// queueFinished reports whether headless playback ran off the end of the
// queue.
func queueFinished(sess *session.Session) func(core.PlaybackState) bool {
	return func(s core.PlaybackState) bool {
		if s.IsPlaying || s.State == core.StateLoading || s.State == core.StatePaused {
			return false
		}
		q := sess.Queue()
		return len(q.Tracks) == 0 || (q.Index >= len(q.Tracks)-1 && q.Repeat == core.RepeatOff)
	}
}
