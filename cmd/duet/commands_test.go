package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drake/duet/config"
	"github.com/drake/duet/script"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootRequiresOneScript(t *testing.T) {
	out, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, out, "Usage:")

	_, err = execute(t, "a.lua", "b.lua")
	assert.Error(t, err)
}

func TestRootRejectsMissingScript(t *testing.T) {
	_, err := execute(t, filepath.Join(t.TempDir(), "nope.lua"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRootRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.py")
	require.NoError(t, os.WriteFile(path, []byte("print('hi')"), 0o644))

	_, err := execute(t, path)
	assert.ErrorIs(t, err, script.ErrUnknownLanguage)
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema")
	require.NoError(t, err)

	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "duet event", schema["title"])
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	out, err := execute(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = execute(t, "--config", path, "config", "init")
	assert.ErrorIs(t, err, config.ErrExists)

	_, err = execute(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
}
