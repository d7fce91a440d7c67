package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog"`
	Audio    AudioConfig    `toml:"audio"`
	Defaults DefaultsConfig `toml:"defaults"`
	Store    StoreConfig    `toml:"store"`
	Remote   RemoteConfig   `toml:"remote"`
	Tail     TailConfig     `toml:"tail"`
	TUI      TUIConfig      `toml:"tui"`
	Log      LogConfig      `toml:"log"`
}

// CatalogConfig holds catalog API settings. Times are in seconds.
type CatalogConfig struct {
	DiscoveryURL string `toml:"discovery_url"`
	AppName      string `toml:"app_name"`
	Timeout      int    `toml:"timeout"`
	HostTTL      int    `toml:"host_ttl"`
	ArtistTTL    int    `toml:"artist_ttl"`
}

func (c CatalogConfig) TimeoutDuration() time.Duration   { return seconds(c.Timeout) }
func (c CatalogConfig) HostTTLDuration() time.Duration   { return seconds(c.HostTTL) }
func (c CatalogConfig) ArtistTTLDuration() time.Duration { return seconds(c.ArtistTTL) }

// AudioConfig holds local output settings.
type AudioConfig struct {
	SampleRate  int `toml:"sample_rate"`
	BufferMS    int `toml:"buffer_ms"`
	MaxStreamMB int `toml:"max_stream_mb"`
}

// Buffer returns the speaker buffer length.
func (c AudioConfig) Buffer() time.Duration {
	return time.Duration(c.BufferMS) * time.Millisecond
}

// MaxStreamBytes returns the download cap for one track.
func (c AudioConfig) MaxStreamBytes() int64 {
	return int64(c.MaxStreamMB) << 20
}

// DefaultsConfig holds default playback settings.
type DefaultsConfig struct {
	Volume     int    `toml:"volume"`
	Shuffle    bool   `toml:"shuffle"`
	Repeat     string `toml:"repeat"`
	Preset     string `toml:"preset"`
	Visualizer string `toml:"visualizer"`
}

// StoreConfig holds local library settings.
type StoreConfig struct {
	Path    string `toml:"path"`
	VibeTTL int    `toml:"vibe_ttl"` // hours
}

// VibeTTLDuration returns how long vibe profiles are cached.
func (c StoreConfig) VibeTTLDuration() time.Duration {
	return time.Duration(c.VibeTTL) * time.Hour
}

// RemoteConfig holds the websocket remote settings.
type RemoteConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// TailConfig holds settings for tail/follow mode.
type TailConfig struct {
	Interval int `toml:"interval"` // milliseconds
}

// TUIConfig holds terminal UI settings.
type TUIConfig struct {
	Theme           string `toml:"theme"`
	RefreshInterval int    `toml:"refresh_interval"` // milliseconds
	FrameInterval   int    `toml:"frame_interval"`   // milliseconds
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
