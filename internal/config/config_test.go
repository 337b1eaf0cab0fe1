package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "stdio", cfg.Server.Mode)
	assert.Equal(t, 5*time.Second, cfg.Ping.Timeout.Std())
	assert.True(t, cfg.Cleanup.Enabled)
}

func TestDurationUnmarshalYAML(t *testing.T) {
	var out struct {
		Wait Duration `yaml:"wait"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("wait: 90s\n"), &out))
	assert.Equal(t, 90*time.Second, out.Wait.Std())

	err := yaml.Unmarshal([]byte("wait: later\n"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestDurationMarshalYAML(t *testing.T) {
	raw, err := yaml.Marshal(struct {
		Wait Duration `yaml:"wait"`
	}{Wait: Duration(2 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, "wait: 2m0s\n", string(raw))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "craftwatch.yaml")
	body := `
server:
  mode: http
  addr: ":9000"
ping:
  timeout: 2s
  cache_ttl: 10s
cleanup:
  enabled: false
render:
  max_players: 12
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Server.Mode)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.Ping.Timeout.Std())
	assert.Equal(t, 10*time.Second, cfg.Ping.CacheTTL.Std())
	assert.False(t, cfg.Cleanup.Enabled)
	assert.Equal(t, 12, cfg.Render.MaxPlayers)

	// Untouched settings keep their defaults.
	assert.Equal(t, 256, cfg.Ping.CacheSize)
	assert.Equal(t, "/", cfg.Bot.CommandPrefix)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CRAFTWATCH_MODE", "http")
	t.Setenv("CRAFTWATCH_ADDR", ":7000")
	t.Setenv("CRAFTWATCH_DATA_DIR", "/tmp/reg")
	t.Setenv("CRAFTWATCH_PING_TIMEOUT", "750ms")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Server.Mode)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, "/tmp/reg", cfg.Data.Dir)
	assert.Equal(t, 750*time.Millisecond, cfg.Ping.Timeout.Std())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad mode", func(c *Config) { c.Server.Mode = "grpc" }, "invalid server mode"},
		{"http without addr", func(c *Config) { c.Server.Mode = "http"; c.Server.Addr = "" }, "listen address"},
		{"empty data dir", func(c *Config) { c.Data.Dir = "" }, "data dir"},
		{"zero timeout", func(c *Config) { c.Ping.Timeout = 0 }, "ping timeout"},
		{"zero cache size", func(c *Config) { c.Ping.CacheSize = 0 }, "cache size"},
		{"negative ttl", func(c *Config) { c.Ping.CacheTTL = Duration(-time.Second) }, "cache ttl"},
		{"zero interval", func(c *Config) { c.Cleanup.Interval = 0 }, "cleanup interval"},
		{"negative stale", func(c *Config) { c.Cleanup.StaleAfter = Duration(-time.Hour) }, "stale_after"},
		{"negative failures", func(c *Config) { c.Cleanup.MaxFailures = -1 }, "max_failures"},
		{"zero players", func(c *Config) { c.Render.MaxPlayers = 0 }, "max_players"},
		{"empty prefix", func(c *Config) { c.Bot.CommandPrefix = "" }, "command prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
