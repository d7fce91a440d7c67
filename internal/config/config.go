package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tessro/station/internal/errors"
)

// Load reads configuration from standard locations with environment overrides.
// Search order: ~/.stationrc, $XDG_CONFIG_HOME/station/config.toml
func Load() (*Config, error) {
	path := FindConfigFile()
	if path == "" {
		cfg := &Config{}
		cfg.ApplyDefaults()
		applyEnvOverrides(cfg)
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", errors.ErrInvalidConfig, path, err)
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// FindConfigFile returns the first existing config file path.
func FindConfigFile() string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".stationrc"))
	}
	paths = append(paths, DefaultPath())

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Save writes cfg to path as TOML, creating the parent directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// Update applies fn to the file at path as written, without environment
// overrides, validates the result and saves it. A missing file starts
// from defaults.
func Update(path string, fn func(*Config) error) error {
	c := Default()
	if _, err := toml.DecodeFile(path, c); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %s: %v", errors.ErrInvalidConfig, path, err)
	}
	c.ApplyDefaults()
	if err := fn(c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return c.Save(path)
}

// Set assigns value to the dotted key, e.g. "defaults.volume". The key
// names match the TOML file.
func (c *Config) Set(key, value string) error {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return fmt.Errorf("invalid key %q (want section.name)", key)
	}

	field, err := lookup(reflect.ValueOf(c).Elem(), section)
	if err != nil {
		return fmt.Errorf("unknown section %q", section)
	}
	field, err = lookup(field, name)
	if err != nil {
		return fmt.Errorf("unknown key %q", key)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", key, value)
		}
		field.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not a boolean", key, value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("%s: unsupported type %s", key, field.Kind())
	}
	return nil
}

// Get returns the value at the dotted key formatted as a string.
func (c *Config) Get(key string) (string, error) {
	section, name, ok := strings.Cut(key, ".")
	if !ok {
		return "", fmt.Errorf("invalid key %q (want section.name)", key)
	}
	field, err := lookup(reflect.ValueOf(c).Elem(), section)
	if err == nil {
		field, err = lookup(field, name)
	}
	if err != nil {
		return "", fmt.Errorf("unknown key %q", key)
	}
	return fmt.Sprint(field.Interface()), nil
}

func lookup(v reflect.Value, tag string) (reflect.Value, error) {
	t := v.Type()
	for i := range t.NumField() {
		if t.Field(i).Tag.Get("toml") == tag {
			return v.Field(i), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("no field %q", tag)
}

// applyEnvOverrides applies STATION_<SECTION>_<KEY> environment variables.
func applyEnvOverrides(cfg *Config) {
	root := reflect.ValueOf(cfg).Elem()
	rt := root.Type()
	for i := range rt.NumField() {
		section := rt.Field(i).Tag.Get("toml")
		sv := root.Field(i)
		st := sv.Type()
		for j := range st.NumField() {
			name := st.Field(j).Tag.Get("toml")
			env := "STATION_" + strings.ToUpper(section+"_"+name)
			if v, ok := os.LookupEnv(env); ok && v != "" {
				// Malformed values are ignored, leaving the file's value.
				_ = cfg.Set(section+"."+name, v)
			}
		}
	}
}
