package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps Load from finding a config.yaml on the host.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	t.Chdir(t.TempDir())
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Source)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, filepath.Join(home, ".config", "badgeboard"), cfg.Storage.Dir)
	assert.False(t, cfg.Storage.Seal)
	assert.False(t, cfg.Realtime.Reconnect)
	assert.Equal(t, time.Second, cfg.Realtime.BackoffInitial)
	assert.Equal(t, 30*time.Second, cfg.Realtime.BackoffMax)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.Addr)

	ws, err := cfg.WebSocketURL()
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", ws)

	assert.Equal(t, Default(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, "xdg", "badgeboard")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
server:
  base_url: https://badges.example.com
  timeout: 5s
realtime:
  reconnect: true
  backoff_initial: 250ms
storage:
  dir: ~/state
`), 0600))
	t.Setenv("BADGEBOARD_LOG_LEVEL", "debug")
	t.Setenv("BADGEBOARD_METRICS_ADDR", "127.0.0.1:9100")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.Source)
	assert.Equal(t, "https://badges.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.True(t, cfg.Realtime.Reconnect)
	assert.Equal(t, 250*time.Millisecond, cfg.Realtime.BackoffInitial)
	assert.Equal(t, 30*time.Second, cfg.Realtime.BackoffMax)
	assert.Equal(t, filepath.Join(home, "state"), cfg.Storage.Dir)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)

	ws, err := cfg.WebSocketURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://badges.example.com/ws", ws)
}

func TestLoadExplicitPath(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit path must exist")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "ftp base url", mutate: func(c *Config) { c.Server.BaseURL = "ftp://x" }, wantErr: true},
		{name: "base url without host", mutate: func(c *Config) { c.Server.BaseURL = "http://" }, wantErr: true},
		{name: "explicit ws url", mutate: func(c *Config) { c.Server.WSURL = "wss://rt.example.com/ws" }},
		{name: "http ws url", mutate: func(c *Config) { c.Server.WSURL = "http://rt.example.com/ws" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Server.Timeout = -time.Second }, wantErr: true},
		{name: "zero backoff", mutate: func(c *Config) { c.Realtime.BackoffInitial = 0 }, wantErr: true},
		{name: "max below initial", mutate: func(c *Config) { c.Realtime.BackoffMax = time.Millisecond }, wantErr: true},
		{name: "empty storage dir", mutate: func(c *Config) { c.Storage.Dir = "" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Server.BaseURL = "https://badges.example.com"
	cfg.Realtime.Reconnect = true
	cfg.Storage.Seal = true
	require.NoError(t, Save(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 30s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Source)
	loaded.Source = ""
	assert.Equal(t, cfg, loaded)
}
