package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c360studio/boardctl/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:3000", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.API.BaseURL = "not a url"
	assert.Error(t, cfg.Validate())

	cfg = config.DefaultConfig()
	cfg.API.Timeout = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Merge(t *testing.T) {
	base := config.DefaultConfig()
	base.Merge(&config.Config{
		API: config.APIConfig{BaseURL: "https://kanban.example.com"},
		Log: config.LogConfig{Level: "debug"},
	})

	assert.Equal(t, "https://kanban.example.com", base.API.BaseURL)
	assert.Equal(t, "debug", base.Log.Level)
	// Unset fields keep their prior values
	assert.Equal(t, 30*time.Second, base.API.Timeout)
}

func TestConfig_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = "https://kanban.example.com"
	cfg.API.Timeout = 10 * time.Second
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.API.BaseURL, loaded.API.BaseURL)
	assert.Equal(t, cfg.API.Timeout, loaded.API.Timeout)
}

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup. Equivalent to t.Chdir, which
// requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoader_EnvironmentOverrides(t *testing.T) {
	// Isolate from any real user/project config
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	t.Setenv(config.EnvAPIURL, "https://env.example.com")
	t.Setenv(config.EnvAPITimeout, "5s")
	t.Setenv(config.EnvLogLevel, "debug")
	credsPath := filepath.Join(t.TempDir(), "creds.json")
	t.Setenv(config.EnvCredentials, credsPath)

	cfg, err := config.NewLoader(slog.Default()).Load()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, credsPath, cfg.Credentials.Path)
}

func TestLoader_DefaultCredentialsPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())

	cfg, err := config.NewLoader(slog.Default()).Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, config.UserConfigDir, config.CredentialsFile), cfg.Credentials.Path)
}
