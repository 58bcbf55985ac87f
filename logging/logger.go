// Package logging builds the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level  string `mapstructure:"level" toml:"level"`
	Format string `mapstructure:"format" toml:"format"` // "console" or "json"
	// File is the log destination: "" for the default file in the config
	// directory, "-" for stderr.
	File string `mapstructure:"file" toml:"file"`
}

// DefaultFile is the log file name used when Config.File is empty.
const DefaultFile = "duet.log"

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "console"}
}

// ParseLevel maps trace, debug, info, warn and error. Anything else is
// info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Level is a minimum log level that can change while the logger is in use.
type Level struct {
	v atomic.Int32
}

func NewLevel(l zerolog.Level) *Level {
	lv := &Level{}
	lv.Set(l)
	return lv
}

func (l *Level) Set(level zerolog.Level) { l.v.Store(int32(level)) }
func (l *Level) Get() zerolog.Level      { return zerolog.Level(l.v.Load()) }

// New creates a logger writing to w. The returned Level controls
// filtering and may be changed later, for example on config reload.
func New(cfg Config, w io.Writer) (zerolog.Logger, *Level) {
	level := NewLevel(ParseLevel(cfg.Level))

	out := w
	if cfg.Format != "json" {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	}

	logger := zerolog.New(&filter{w: out, level: level}).
		Level(zerolog.TraceLevel).
		With().
		Timestamp().
		Logger()
	return logger, level
}

// filter drops events below the current level.
type filter struct {
	w     io.Writer
	level *Level
}

func (f *filter) Write(p []byte) (int, error) { return f.w.Write(p) }

func (f *filter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < f.level.Get() && l != zerolog.NoLevel {
		return len(p), nil
	}
	return f.w.Write(p)
}

// OpenFile opens the log destination named by file. dir is used for the
// default file. Closing the result never closes stderr.
func OpenFile(file, dir string) (io.WriteCloser, error) {
	switch file {
	case "-":
		return nopCloser{os.Stderr}, nil
	case "":
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		file = filepath.Join(dir, DefaultFile)
	}
	return os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
