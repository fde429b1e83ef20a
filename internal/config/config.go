package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone       = "UTC"
	defaultEventColor     = "#1e88e5"
	defaultHighlightColor = "#d32f2f"
	defaultWatchDebounce  = 250
)

// CalendarConfig describes a single local ICS file.
type CalendarConfig struct {
	// ID is an internal identifier used for event identity and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
	// Path is the ICS file on disk. Relative paths resolve against the
	// config file's directory.
	Path string `yaml:"path" json:"path"`
	// Color overrides DefaultColor for events of this calendar.
	Color string `yaml:"color,omitempty" json:"color,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA timezone month ranges are built in (e.g. "Asia/Seoul").
	Timezone string `yaml:"timezone" json:"timezone"`

	// DefaultColor is the "#rrggbb" color of events without a more specific one.
	DefaultColor string `yaml:"default_color" json:"default_color"`

	// HighlightColor is used for events matching HighlightRed.
	HighlightColor string `yaml:"highlight_color" json:"highlight_color"`

	// HighlightRed is a list of keywords that cause events to be rendered in HighlightColor.
	HighlightRed []string `yaml:"highlight_red" json:"highlight_red"`

	// WatchDebounceMs coalesces bursts of file events before a reload.
	WatchDebounceMs int `yaml:"watch_debounce_ms" json:"watch_debounce_ms"`

	// Calendars is the list of ICS files to show.
	Calendars []CalendarConfig `yaml:"calendars" json:"calendars"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:        defaultTimezone,
		DefaultColor:    defaultEventColor,
		HighlightColor:  defaultHighlightColor,
		HighlightRed:    []string{"holiday", "vacation", "important"},
		WatchDebounceMs: defaultWatchDebounce,
		Calendars:       []CalendarConfig{},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.DefaultColor == "" {
		c.DefaultColor = defaultEventColor
	}
	if c.HighlightColor == "" {
		c.HighlightColor = defaultHighlightColor
	}
	if c.HighlightRed == nil {
		c.HighlightRed = []string{"holiday", "vacation", "important"}
	}
	if c.WatchDebounceMs <= 0 {
		c.WatchDebounceMs = defaultWatchDebounce
	}
	if c.Calendars == nil {
		c.Calendars = []CalendarConfig{}
	}
	for i := range c.Calendars {
		if c.Calendars[i].ID == "" {
			c.Calendars[i].ID = fmt.Sprintf("cal%d", i+1)
		}
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// WatchDebounce returns WatchDebounceMs as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMs) * time.Millisecond
}

// ResolvePaths makes relative calendar paths absolute against the
// directory of configPath.
func (c *Config) ResolvePaths(configPath string) {
	base := filepath.Dir(configPath)
	for i := range c.Calendars {
		p := c.Calendars[i].Path
		if p != "" && !filepath.IsAbs(p) {
			c.Calendars[i].Path = filepath.Join(base, p)
		}
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
//   - resolve relative calendar paths
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.ResolvePaths(path)

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".weekcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
