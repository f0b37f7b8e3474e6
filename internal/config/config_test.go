package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultModel, cfg.Model)
	assert.True(t, cfg.EnableContext)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultBatchDelay, cfg.BatchDelay)
	assert.Nil(t, cfg.DefaultPriority)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
tracker:
  endpoint: https://tracker.example.com/api
  api_key: file-key
defaults:
  team: ENG
  priority: 2
context:
  enabled: false
cache:
  ttl: 10m
batch:
  delay: 1s
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://tracker.example.com/api", cfg.TrackerEndpoint)
	assert.Equal(t, "file-key", cfg.TrackerAPIKey)
	assert.Equal(t, "ENG", cfg.DefaultTeam)
	require.NotNil(t, cfg.DefaultPriority)
	assert.Equal(t, 2, *cfg.DefaultPriority)
	assert.False(t, cfg.EnableContext)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, time.Second, cfg.BatchDelay)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "tracker:\n  api_key: file-key\n")
	t.Setenv("GLINT_TRACKER_API_KEY", "env-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-env-key")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.TrackerAPIKey)
	assert.Equal(t, "anthropic-env-key", cfg.AnthropicAPIKey)
}

func TestLoadBadPriority(t *testing.T) {
	path := writeConfig(t, "defaults:\n  priority: 9\n")

	_, err := LoadFile(path)
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "defaults.priority", cfgErr.Key)
}

func TestSetAndGetValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, SetValue(path, "tracker.api_key", "secret"))
	require.NoError(t, SetValue(path, "defaults.priority", "2"))
	require.NoError(t, SetValue(path, "context.enabled", "false"))

	got, ok, err := GetValue(path, "tracker.api_key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "secret", got)

	// Values round-trip typed through Load.
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.DefaultPriority)
	assert.Equal(t, 2, *cfg.DefaultPriority)
	assert.False(t, cfg.EnableContext)

	_, ok, err = GetValue(path, "no.such.key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetValuePreservesSiblings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SetValue(path, "tracker.api_key", "secret"))
	require.NoError(t, SetValue(path, "tracker.endpoint", "https://x.example.com"))

	got, ok, err := GetValue(path, "tracker.api_key")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "secret", got)
}
