package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirRespectsXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses APPDATA")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", "duet"), Dir())
	assert.Equal(t, filepath.Join("/tmp/xdg", "duet", "config.toml"), File())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, m.Load())
	assert.Equal(t, Default(), m.Config())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
debug = true
debug_interval = "250ms"

[window]
title = "demo"
width = 40

[logging]
level = "debug"
format = "json"

[queue]
limit = 100
`), 0o644))

	m := NewManager(path)
	require.NoError(t, m.Load())
	cfg := m.Config()

	assert.Equal(t, "demo", cfg.Window.Title)
	assert.Equal(t, 40, cfg.Window.Width)
	assert.Equal(t, 0, cfg.Window.Height)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 100, cfg.Queue.Limit)
	assert.Equal(t, 256, cfg.Style.CacheSize)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 250*time.Millisecond, cfg.DebugEvery())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DUET_LOGGING_LEVEL", "error")
	t.Setenv("DUET_WINDOW_TITLE", "from env")

	m := NewManager(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, m.Load())
	assert.Equal(t, "error", m.Config().Logging.Level)
	assert.Equal(t, "from env", m.Config().Window.Title)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[window\n"), 0o644))
	assert.Error(t, NewManager(broken).Load())

	negative := filepath.Join(dir, "negative.toml")
	require.NoError(t, os.WriteFile(negative, []byte("[queue]\nlimit = -1\n"), 0o644))
	assert.ErrorIs(t, NewManager(negative).Load(), ErrInvalid)
}

func TestSetOverridesKey(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, m.Load())

	require.NoError(t, m.Set("logging.level", "trace"))
	assert.Equal(t, "trace", m.Config().Logging.Level)

	assert.ErrorIs(t, m.Set("logging.format", "xml"), ErrInvalid)
	assert.Equal(t, "console", m.Config().Logging.Format)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	require.NoError(t, WriteDefault(path, false))

	m := NewManager(path)
	require.NoError(t, m.Load())
	assert.Equal(t, Default(), m.Config())

	assert.ErrorIs(t, WriteDefault(path, false), ErrExists)
	assert.NoError(t, WriteDefault(path, true))
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"info\"\n"), 0o644))

	m := NewManager(path)
	require.NoError(t, m.Load())

	changed := make(chan Config, 4)
	m.OnChange(func(c Config) { changed <- c })
	m.Watch()

	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644))

	// A rewrite can surface as a truncate then a write.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Logging.Level != "debug" {
				continue
			}
			assert.Equal(t, "debug", m.Config().Logging.Level)
			return
		case <-deadline:
			t.Fatal("no reload after file change")
		}
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	bad := Default()
	bad.Window.Width = -1
	bad.Style.CacheSize = 0
	bad.DebugInterval = "soon"
	err := bad.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "cache_size")
	assert.Contains(t, err.Error(), "debug_interval")
}
