package config

import (
	"os"
	"path/filepath"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			DiscoveryURL: "https://api.audius.co",
			AppName:      "station",
			Timeout:      30,
			HostTTL:      1800,
			ArtistTTL:    600,
		},
		Audio: AudioConfig{
			SampleRate:  44100,
			BufferMS:    100,
			MaxStreamMB: 64,
		},
		Defaults: DefaultsConfig{
			Volume:     70,
			Shuffle:    false,
			Repeat:     "off",
			Preset:     "flat",
			Visualizer: "flame",
		},
		Store: StoreConfig{
			Path:    filepath.Join(Dir(), "station.db"),
			VibeTTL: 168,
		},
		Remote: RemoteConfig{
			Addr: "127.0.0.1:7777",
		},
		Tail: TailConfig{
			Interval: 1000,
		},
		TUI: TUIConfig{
			Theme:           "auto",
			RefreshInterval: 500,
			FrameInterval:   50,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(Dir(), "station.log"),
		},
	}
}

// Dir returns the station configuration directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "station")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "station"
	}
	return filepath.Join(home, ".config", "station")
}

// DefaultPath is where `config init` writes a new file.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.toml")
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Catalog
	if c.Catalog.DiscoveryURL == "" {
		c.Catalog.DiscoveryURL = d.Catalog.DiscoveryURL
	}
	if c.Catalog.AppName == "" {
		c.Catalog.AppName = d.Catalog.AppName
	}
	if c.Catalog.Timeout == 0 {
		c.Catalog.Timeout = d.Catalog.Timeout
	}
	if c.Catalog.HostTTL == 0 {
		c.Catalog.HostTTL = d.Catalog.HostTTL
	}
	if c.Catalog.ArtistTTL == 0 {
		c.Catalog.ArtistTTL = d.Catalog.ArtistTTL
	}

	// Audio
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
	if c.Audio.BufferMS == 0 {
		c.Audio.BufferMS = d.Audio.BufferMS
	}
	if c.Audio.MaxStreamMB == 0 {
		c.Audio.MaxStreamMB = d.Audio.MaxStreamMB
	}

	// Defaults
	if c.Defaults.Volume == 0 {
		c.Defaults.Volume = d.Defaults.Volume
	}
	if c.Defaults.Repeat == "" {
		c.Defaults.Repeat = d.Defaults.Repeat
	}
	if c.Defaults.Preset == "" {
		c.Defaults.Preset = d.Defaults.Preset
	}
	if c.Defaults.Visualizer == "" {
		c.Defaults.Visualizer = d.Defaults.Visualizer
	}

	// Store
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}
	if c.Store.VibeTTL == 0 {
		c.Store.VibeTTL = d.Store.VibeTTL
	}

	// Remote
	if c.Remote.Addr == "" {
		c.Remote.Addr = d.Remote.Addr
	}

	// Tail
	if c.Tail.Interval == 0 {
		c.Tail.Interval = d.Tail.Interval
	}

	// TUI
	if c.TUI.Theme == "" {
		c.TUI.Theme = d.TUI.Theme
	}
	if c.TUI.RefreshInterval == 0 {
		c.TUI.RefreshInterval = d.TUI.RefreshInterval
	}
	if c.TUI.FrameInterval == 0 {
		c.TUI.FrameInterval = d.TUI.FrameInterval
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = d.Log.File
	}
}
