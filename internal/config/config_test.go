package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, 60*time.Second, cfg.RequestTimeout())
	require.True(t, cfg.Crawler.RespectRobots)
	require.Equal(t, 5, cfg.Crawler.SnapshotEvery)
	require.Equal(t, "frontier-crawler/0.1", cfg.Crawler.UserAgent)
	require.False(t, cfg.Headless.Enabled)
	require.Empty(t, cfg.DB.DSN)
	require.Equal(t, 256, cfg.Progress.MaxBatchEvents)
	require.Equal(t, 1000, cfg.Progress.HistoryLimit)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
crawler:
  user_agent: test-bot/1.0
  respect_robots: false
  snapshot_every: 10
db:
  dsn: postgres://localhost/crawler
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "test-bot/1.0", cfg.Crawler.UserAgent)
	require.False(t, cfg.Crawler.RespectRobots)
	require.Equal(t, 10, cfg.Crawler.SnapshotEvery)
	require.Equal(t, "postgres://localhost/crawler", cfg.DB.DSN)
	// File values overlay defaults, not replace them.
	require.Equal(t, 15, cfg.HTTP.TimeoutSeconds)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"zero http timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }},
		{"zero snapshot cadence", func(c *Config) { c.Crawler.SnapshotEvery = 0 }},
		{"headless without parallelism", func(c *Config) {
			c.Headless.Enabled = true
			c.Headless.MaxParallel = 0
		}},
		{"auth without key", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.APIKey = ""
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("CRAWLER_SERVER_PORT", "7070")
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 7070, cfg.Server.Port)
}
