package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. DUET_LOGGING_LEVEL.
const EnvPrefix = "DUET"

// Manager loads the configuration and reloads it when the file changes.
type Manager struct {
	viper *viper.Viper
	path  string
	log   zerolog.Logger

	mu        sync.RWMutex
	config    Config
	callbacks []func(Config)
	watching  bool
}

// NewManager creates a manager for the file at path, or File() when path
// is empty.
func NewManager(path string) *Manager {
	if path == "" {
		path = File()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Manager{viper: v, path: path, log: zerolog.Nop(), config: Default()}
}

// SetLogger sets where reload problems are reported.
func (m *Manager) SetLogger(logger zerolog.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = logger.With().Str("component", "config").Logger()
}

// Path returns the config file path.
func (m *Manager) Path() string { return m.path }

// Load reads the file and environment. A missing file leaves the defaults
// in place.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setDefaults()
	if err := m.viper.ReadInConfig(); err != nil && !missing(err) {
		return fmt.Errorf("read config file %s: %w", m.path, err)
	}
	cfg, err := m.unmarshal()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

func missing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func (m *Manager) setDefaults() {
	d := Default()
	m.viper.SetDefault("window.title", d.Window.Title)
	m.viper.SetDefault("window.width", d.Window.Width)
	m.viper.SetDefault("window.height", d.Window.Height)
	m.viper.SetDefault("logging.level", d.Logging.Level)
	m.viper.SetDefault("logging.format", d.Logging.Format)
	m.viper.SetDefault("logging.file", d.Logging.File)
	m.viper.SetDefault("queue.limit", d.Queue.Limit)
	m.viper.SetDefault("style.cache_size", d.Style.CacheSize)
	m.viper.SetDefault("debug", d.Debug)
	m.viper.SetDefault("debug_interval", d.DebugInterval)
}

func (m *Manager) unmarshal() (Config, error) {
	var cfg Config
	if err := m.viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", m.path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", m.path, err)
	}
	return cfg, nil
}

// Config returns the current configuration.
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Set overrides one key, as command-line flags do. Keys use viper's dotted
// form ("logging.level").
func (m *Manager) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.viper.Set(key, value)
	cfg, err := m.unmarshal()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// OnChange registers a callback run after each successful reload.
func (m *Manager) OnChange(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Watch reloads the configuration when the file changes. It does nothing
// when the file does not exist.
func (m *Manager) Watch() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watching {
		return
	}
	if _, err := os.Stat(m.path); err != nil {
		m.log.Debug().Str("file", m.path).Msg("no config file to watch")
		return
	}

	m.viper.OnConfigChange(func(e fsnotify.Event) {
		m.mu.Lock()
		log := m.log
		log.Debug().Str("op", e.Op.String()).Str("file", e.Name).Msg("config change detected")

		cfg, err := m.unmarshal()
		if err != nil {
			m.mu.Unlock()
			log.Warn().Err(err).Msg("config reload failed, keeping previous values")
			return
		}
		m.config = cfg
		callbacks := append(([]func(Config))(nil), m.callbacks...)
		m.mu.Unlock()

		for _, fn := range callbacks {
			fn(cfg)
		}
	})
	m.viper.WatchConfig()
	m.watching = true
}

// ErrExists is returned by WriteDefault when the file is already there.
var ErrExists = errors.New("config file already exists")

// WriteDefault writes the default configuration as TOML. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w (use --force to overwrite)", path, ErrExists)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("# duet configuration. Environment variables override these values,\n")
	buf.WriteString("# e.g. DUET_LOGGING_LEVEL=debug.\n\n")
	if err := toml.NewEncoder(&buf).Encode(Default()); err != nil {
		return fmt.Errorf("encode default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
