package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as
// duration strings ("5s", "30m", "24h").
type Duration time.Duration

// UnmarshalYAML decodes a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML encodes the duration back to its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// ServerConfig controls the message transport.
type ServerConfig struct {
	// Mode is "stdio" (read chat envelopes from stdin) or "http"
	// (accept them on a webhook endpoint).
	Mode string `yaml:"mode"`
	// Addr is the HTTP listen address, used only in http mode.
	Addr string `yaml:"addr"`
	// WebhookToken, when set, is required as a bearer token on the
	// webhook endpoint.
	WebhookToken string `yaml:"webhook_token"`
	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DataConfig controls registry persistence.
type DataConfig struct {
	// Dir is the directory holding one JSON document per chat group.
	Dir string `yaml:"dir"`
}

// PingConfig controls the status client.
type PingConfig struct {
	Timeout   Duration `yaml:"timeout"`
	CacheTTL  Duration `yaml:"cache_ttl"`
	CacheSize int      `yaml:"cache_size"`
}

// CleanupConfig controls the background registry janitor.
type CleanupConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Interval Duration `yaml:"interval"`
	// StaleAfter removes servers not seen for this long. Zero
	// disables the age criterion.
	StaleAfter Duration `yaml:"stale_after"`
	// MaxFailures removes servers with at least this many consecutive
	// failed pings. Zero disables the failure criterion.
	MaxFailures int `yaml:"max_failures"`
}

// RenderConfig controls status card drawing.
type RenderConfig struct {
	// FontPaths and BoldFontPaths are tried in order; the first
	// readable OpenType file wins. Empty lists fall back to the
	// embedded Go fonts.
	FontPaths     []string `yaml:"font_paths"`
	BoldFontPaths []string `yaml:"bold_font_paths"`
	// MaxPlayers caps how many sampled player names a card shows.
	MaxPlayers int `yaml:"max_players"`
}

// BotConfig controls command parsing.
type BotConfig struct {
	// CommandPrefix is the leading rune of bot commands, "/" by default.
	CommandPrefix string `yaml:"command_prefix"`
}

// Config is the top-level daemon configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Data    DataConfig    `yaml:"data"`
	Ping    PingConfig    `yaml:"ping"`
	Cleanup CleanupConfig `yaml:"cleanup"`
	Render  RenderConfig  `yaml:"render"`
	Bot     BotConfig     `yaml:"bot"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Mode:            "stdio",
			Addr:            ":8524",
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Data: DataConfig{
			Dir: "data/registry",
		},
		Ping: PingConfig{
			Timeout:   Duration(5 * time.Second),
			CacheTTL:  Duration(30 * time.Second),
			CacheSize: 256,
		},
		Cleanup: CleanupConfig{
			Enabled:     true,
			Interval:    Duration(24 * time.Hour),
			StaleAfter:  Duration(720 * time.Hour),
			MaxFailures: 20,
		},
		Render: RenderConfig{
			FontPaths: []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
				"/usr/share/fonts/TTF/DejaVuSans.ttf",
			},
			BoldFontPaths: []string{
				"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
				"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			},
			MaxPlayers: 40,
		},
		Bot: BotConfig{
			CommandPrefix: "/",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// and CRAFTWATCH_* environment variables, then validates it. An empty
// path skips the file layer.
func Load(path string) (*Config, error) {
	// .env files are a development convenience; a missing file is fine.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides settings from CRAFTWATCH_* environment variables.
func (c *Config) applyEnv() {
	c.Server.Mode = getEnv("CRAFTWATCH_MODE", c.Server.Mode)
	c.Server.Addr = getEnv("CRAFTWATCH_ADDR", c.Server.Addr)
	c.Server.WebhookToken = getEnv("CRAFTWATCH_WEBHOOK_TOKEN", c.Server.WebhookToken)
	c.Data.Dir = getEnv("CRAFTWATCH_DATA_DIR", c.Data.Dir)
	c.Bot.CommandPrefix = getEnv("CRAFTWATCH_COMMAND_PREFIX", c.Bot.CommandPrefix)

	if raw := os.Getenv("CRAFTWATCH_PING_TIMEOUT"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			c.Ping.Timeout = Duration(parsed)
		}
	}
	if raw := os.Getenv("CRAFTWATCH_MAX_PLAYERS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			c.Render.MaxPlayers = parsed
		}
	}
}

// Validate rejects configurations the daemon cannot run with.
func (c *Config) Validate() error {
	switch c.Server.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid server mode %q (want stdio or http)", c.Server.Mode)
	}
	if c.Server.Mode == "http" && c.Server.Addr == "" {
		return fmt.Errorf("http mode requires a listen address")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data dir must not be empty")
	}
	if c.Ping.Timeout <= 0 {
		return fmt.Errorf("ping timeout must be positive")
	}
	if c.Ping.CacheSize <= 0 {
		return fmt.Errorf("ping cache size must be positive")
	}
	if c.Ping.CacheTTL < 0 {
		return fmt.Errorf("ping cache ttl must not be negative")
	}
	if c.Cleanup.Enabled && c.Cleanup.Interval <= 0 {
		return fmt.Errorf("cleanup interval must be positive when cleanup is enabled")
	}
	if c.Cleanup.StaleAfter < 0 {
		return fmt.Errorf("cleanup stale_after must not be negative")
	}
	if c.Cleanup.MaxFailures < 0 {
		return fmt.Errorf("cleanup max_failures must not be negative")
	}
	if c.Render.MaxPlayers <= 0 {
		return fmt.Errorf("render max_players must be positive")
	}
	if c.Bot.CommandPrefix == "" {
		return fmt.Errorf("command prefix must not be empty")
	}
	return nil
}

// getEnv fetches an environment variable with a fallback value.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
