package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/spectrum"
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Catalog.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("catalog: %w", err))
	}
	if err := c.Audio.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("audio: %w", err))
	}
	if err := c.Defaults.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("defaults: %w", err))
	}
	if err := c.Store.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := c.Remote.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("remote: %w", err))
	}
	if err := c.Tail.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tail: %w", err))
	}
	if err := c.TUI.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tui: %w", err))
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}

	return errors.Join(errs...)
}

// Validate checks CatalogConfig for errors.
func (c *CatalogConfig) Validate() error {
	if c.DiscoveryURL != "" {
		u, err := url.Parse(c.DiscoveryURL)
		if err != nil {
			return fmt.Errorf("invalid discovery_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid discovery_url: %s (must be http or https)", c.DiscoveryURL)
		}
	}
	if c.Timeout < 0 || c.HostTTL < 0 || c.ArtistTTL < 0 {
		return errors.New("timeout, host_ttl and artist_ttl must be non-negative")
	}
	return nil
}

// Validate checks AudioConfig for errors.
func (c *AudioConfig) Validate() error {
	if c.SampleRate != 0 && (c.SampleRate < 8000 || c.SampleRate > 192000) {
		return fmt.Errorf("invalid sample_rate: %d", c.SampleRate)
	}
	if c.BufferMS < 0 {
		return errors.New("buffer_ms must be non-negative")
	}
	if c.MaxStreamMB < 0 {
		return errors.New("max_stream_mb must be non-negative")
	}
	return nil
}

// Validate checks DefaultsConfig for errors.
func (c *DefaultsConfig) Validate() error {
	if c.Volume < 0 || c.Volume > 100 {
		return errors.New("volume must be between 0 and 100")
	}
	if c.Repeat != "" {
		if _, err := core.ParseRepeatMode(c.Repeat); err != nil {
			return err
		}
	}
	if c.Preset != "" {
		if _, err := eq.ParsePreset(c.Preset); err != nil {
			return err
		}
	}
	if c.Visualizer != "" {
		if _, err := spectrum.ParseMode(c.Visualizer); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks StoreConfig for errors.
func (c *StoreConfig) Validate() error {
	if c.VibeTTL < 0 {
		return errors.New("vibe_ttl must be non-negative")
	}
	return nil
}

// Validate checks RemoteConfig for errors.
func (c *RemoteConfig) Validate() error {
	if c.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("invalid addr: %w", err)
	}
	return nil
}

// Validate checks TailConfig for errors.
func (c *TailConfig) Validate() error {
	if c.Interval < 0 {
		return errors.New("interval must be non-negative")
	}
	return nil
}

// Validate checks TUIConfig for errors.
func (c *TUIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
		// valid
	default:
		return fmt.Errorf("invalid theme: %s (must be auto, dark, or light)", c.Theme)
	}
	if c.RefreshInterval < 0 || c.FrameInterval < 0 {
		return errors.New("refresh_interval and frame_interval must be non-negative")
	}
	return nil
}

// Validate checks LogConfig for errors.
func (c *LogConfig) Validate() error {
	switch c.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Level)
	}
	return nil
}
