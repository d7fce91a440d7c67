package cli

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// initLogging sends slog output to the configured log file so the
// alt-screen UI never gets log lines painted over it. --verbose forces
// debug level and, outside the UI, copies records to stderr.
func initLogging(ui bool) error {
	level := parseLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = io.Discard
	if path := cfg.Log.File; path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w = f
	}
	if verbose && !ui {
		w = io.MultiWriter(w, os.Stderr)
	}

	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	logger.Debug("starting station", "args", os.Args)
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
