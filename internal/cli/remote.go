package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessro/station/internal/remote"
	"github.com/tessro/station/internal/session"
)

var (
	remoteAddr   string
	remoteRandom bool
)

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Run a headless player driven by the remote control",
	Long: `Start a player with no UI and serve the remote control API.

Clients connect to ws://<addr>/ws for state, events and live spectrum
frames, or use GET /api/state and POST /api/command. The control
commands (next, volume, eq, ...) and status talk to this server.

Examples:
  station remote                        # Serve on the configured address
  station remote --addr 0.0.0.0:7777    # Listen on the local network
  station remote --random               # Start with a discovery mix`,
	RunE: runRemote,
}

func init() {
	remoteCmd.Flags().StringVar(&remoteAddr, "addr", "", "Listen address (default from config)")
	remoteCmd.Flags().BoolVar(&remoteRandom, "random", false, "Queue a random discovery mix on start")
	addTailFlags(remoteCmd)
	rootCmd.AddCommand(remoteCmd)
}

func listenAddr() string {
	if remoteAddr != "" {
		return remoteAddr
	}
	return cfg.Remote.Addr
}

// startRemote serves the remote control for sess in the background until
// ctx is done.
func startRemote(ctx context.Context, sess *session.Session) {
	srv := remote.NewServer(sess, remote.Options{
		Addr:          listenAddr(),
		FrameInterval: tuiFrameInterval(),
		Logger:        logger,
	})
	go func() {
		if err := srv.Run(ctx); err != nil {
			logger.Error("remote server stopped", "error", err)
		}
	}()
}

func runRemote(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if remoteRandom {
		loadCtx, cancel := context.WithTimeout(ctx, cfg.Catalog.TimeoutDuration())
		res, err := sess.Catalog.RandomTracks(loadCtx, defaultLimit)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to load tracks: %w", err)
		}
		if res.HasErrors() {
			logger.Warn("random tracks", "failed_sources", len(res.Errors), "error", res.Err())
		}
		sess.PlayTracks(res.Data, 0)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := remote.NewServer(sess, remote.Options{
		Addr:          listenAddr(),
		FrameInterval: tuiFrameInterval(),
		Logger:        logger,
	})
	errCh := make(chan error, 1)
	go func() {
		err := srv.Run(ctx)
		cancel()
		errCh <- err
	}()

	if !jsonOut {
		fmt.Printf("Remote control on http://%s (Ctrl+C to stop)\n", listenAddr())
	}

	followErr := follow(ctx, sess, os.Stdout, nil)
	cancel()
	if err := <-errCh; err != nil {
		return err
	}
	return followErr
}
