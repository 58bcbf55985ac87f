// Package config resolves the configuration directory and loads
// config.toml through viper, with DUET_ environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/drake/duet/logging"
)

// Dir returns the duet configuration directory.
// Respects XDG_CONFIG_HOME on Unix, APPDATA on Windows.
func Dir() string {
	var base string

	if runtime.GOOS == "windows" {
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	} else {
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, _ := os.UserHomeDir()
			base = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(base, "duet")
}

// File returns the path to config.toml.
func File() string {
	return filepath.Join(Dir(), "config.toml")
}

// Config is the full configuration.
type Config struct {
	Window  WindowConfig   `mapstructure:"window" toml:"window"`
	Logging logging.Config `mapstructure:"logging" toml:"logging"`
	Queue   QueueConfig    `mapstructure:"queue" toml:"queue"`
	Style   StyleConfig    `mapstructure:"style" toml:"style"`

	// Debug enables the periodic statistics monitor.
	Debug         bool   `mapstructure:"debug" toml:"debug"`
	DebugInterval string `mapstructure:"debug_interval" toml:"debug_interval"`
}

type WindowConfig struct {
	Title string `mapstructure:"title" toml:"title"`
	// Width and Height bound the drawn area; 0 uses the terminal size.
	Width  int `mapstructure:"width" toml:"width"`
	Height int `mapstructure:"height" toml:"height"`
}

type QueueConfig struct {
	// Limit caps each queue's backlog, dropping the oldest entries; 0 is
	// unbounded.
	Limit int `mapstructure:"limit" toml:"limit"`
}

type StyleConfig struct {
	CacheSize int `mapstructure:"cache_size" toml:"cache_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Window:        WindowConfig{Title: "duet"},
		Logging:       logging.DefaultConfig(),
		Style:         StyleConfig{CacheSize: 256},
		DebugInterval: "5s",
	}
}

// DebugEvery returns the monitor interval, falling back to five seconds.
func (c Config) DebugEvery() time.Duration {
	d, err := time.ParseDuration(c.DebugInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// ErrInvalid is wrapped by validation failures.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width < 0 || c.Window.Height < 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d is negative", c.Window.Width, c.Window.Height))
	}
	if c.Queue.Limit < 0 {
		errs = append(errs, fmt.Errorf("queue.limit %d is negative", c.Queue.Limit))
	}
	if c.Style.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("style.cache_size %d must be positive", c.Style.CacheSize))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be console or json", c.Logging.Format))
	}
	if c.DebugInterval != "" {
		if _, err := time.ParseDuration(c.DebugInterval); err != nil {
			errs = append(errs, fmt.Errorf("debug_interval: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
