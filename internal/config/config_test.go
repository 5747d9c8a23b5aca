package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultHistoryLimit, s.HistoryLimit)
	assert.Equal(t, DefaultLogLevel, s.LogLevel)
	assert.Equal(t, DefaultMaxConcurrency, s.MaxConcurrency)
	assert.False(t, s.SaveSecret)
	assert.NotEmpty(t, s.DeviceName)
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
device_name = "laptop"
save_secret = true
history_limit = 5
log_format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "laptop", s.DeviceName)
	assert.True(t, s.SaveSecret)
	assert.Equal(t, 5, s.HistoryLimit)
	assert.Equal(t, "json", s.LogFormat)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultMaxConcurrency, s.MaxConcurrency)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")

	s, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("device_name = "), 0600))
	_, err := Load(broken)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("max_concurrency = 0"), 0600))
	_, err = Load(invalid)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	s := Defaults()
	s.DeviceName = "desk"
	s.SaveSecret = true
	require.NoError(t, Save(path, s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestDefaultPathFromEnv(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/custom.toml")

	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.toml", p)
}

func TestCreateKeepsExistingFile(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := filepath.Join(t.TempDir(), "config.toml")

	first := Defaults()
	first.DeviceName = "first"
	require.NoError(t, Create(path, first))

	second := Defaults()
	second.DeviceName = "second"
	assert.ErrorIs(t, Create(path, second), ErrExists)

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "first", loaded.DeviceName)
}
