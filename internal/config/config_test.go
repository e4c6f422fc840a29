package config

import (
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

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Recorder.Tick)
	assert.Equal(t, 50, cfg.Waveform.Buckets)
	assert.Equal(t, 10*time.Minute, cfg.Store.MaxAge)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "mealdiary://strava", cfg.Strava.RedirectURL)

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "session.token"), cfg.Auth.TokenFile)
	assert.Equal(t, filepath.Join(dir, "cache.db"), cfg.Store.Path)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://diary.example.com
  timeout: 5s
auth:
  user_id: user_123
  token_file: /tmp/tok
store:
  path: /tmp/cache.db
  max_age: 2m
waveform:
  buckets: 32
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://diary.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "user_123", cfg.Auth.UserID)
	assert.Equal(t, "/tmp/tok", cfg.Auth.TokenFile)
	assert.Equal(t, 2*time.Minute, cfg.Store.MaxAge)
	assert.Equal(t, 32, cfg.Waveform.Buckets)
	// untouched keys keep their defaults
	assert.Equal(t, 100*time.Millisecond, cfg.Recorder.Tick)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "api:\n  base_url: https://file.example.com\n")
	t.Setenv("MEALDIARY_API_BASE_URL", "https://env.example.com")
	t.Setenv("MEALDIARY_AUTH_USER_ID", "from-env")
	t.Setenv("MEALDIARY_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, "from-env", cfg.Auth.UserID)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_Invalid(t *testing.T) {
	path := writeConfig(t, "waveform:\n  buckets: 0\nlog:\n  format: xml\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waveform.buckets")
	assert.Contains(t, err.Error(), "xml")
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "api: [unterminated\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api.base_url", envKey("MEALDIARY_API_BASE_URL"))
	assert.Equal(t, "store.path", envKey("MEALDIARY_STORE_PATH"))
	assert.Equal(t, "strava.client_secret", envKey("MEALDIARY_STRAVA_CLIENT_SECRET"))
	assert.Equal(t, "debug", envKey("MEALDIARY_DEBUG"))
}
