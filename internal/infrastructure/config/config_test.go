package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Browser config
	assert.Equal(t, "about:blank", cfg.Browser.InitialURL)
	assert.Zero(t, cfg.Browser.MaxHistoryEntries, "history is unbounded unless configured")
	assert.True(t, cfg.Browser.ReloadKeepsFragmentOnNoStore)
	assert.False(t, cfg.Browser.AllowFileScheme)

	// Fetch and sandbox config
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout.Std())
	assert.Equal(t, 5*time.Second, cfg.Sandbox.Timeout.Std())
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                          "9000",
		"HOST":                          "127.0.0.1",
		"LOG_LEVEL":                     "debug",
		"LOG_DEV":                       "true",
		"RATE_LIMIT_RPS":                "500",
		"RATE_LIMIT_ENABLED":            "false",
		"BROWSER_MAX_HISTORY":           "5",
		"BROWSER_BLOCKED":               "*.ads.test/**,tracker.test/**",
		"BROWSER_RELOAD_KEEPS_FRAGMENT": "false",
		"FETCH_TIMEOUT":                 "2s",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst, "unset values keep their defaults")
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.Browser.MaxHistoryEntries)
	assert.Equal(t, []string{"*.ads.test/**", "tracker.test/**"}, cfg.Browser.BlockedPatterns)
	assert.False(t, cfg.Browser.ReloadKeepsFragmentOnNoStore)
	assert.Equal(t, 2*time.Second, cfg.Fetch.Timeout.Std())
}

func TestLoadInvalidEnvironment(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")
	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout.Std())
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navigator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
browser:
  initial_url: https://example.com/
  max_history_entries: 10
  blocked_patterns:
    - "*.ads.test/**"
fetch:
  timeout: 3s
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "https://example.com/", cfg.Browser.InitialURL)
	assert.Equal(t, 10, cfg.Browser.MaxHistoryEntries)
	assert.Equal(t, []string{"*.ads.test/**"}, cfg.Browser.BlockedPatterns)
	assert.Equal(t, 3*time.Second, cfg.Fetch.Timeout.Std())
}

func TestLoadFileTOMLWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navigator.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "7100"

[sandbox]
timeout = "250ms"
pool_size = 2
`), 0o600))
	t.Setenv("PORT", "7200")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7200", cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 250*time.Millisecond, cfg.Sandbox.Timeout.Std())
	assert.Equal(t, 2, cfg.Sandbox.PoolSize)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "navigator.ini")
	require.NoError(t, os.WriteFile(path, []byte("x=1"), 0o600))
	_, err = LoadFile(path)
	assert.ErrorContains(t, err, "unsupported config format")
}
