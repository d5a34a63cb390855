// Package config loads the service configuration from layered sources:
// built-in defaults, an optional YAML file, and PDWK_-prefixed environment
// variables, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists where a config file is searched, first match wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pdwk-dev/config.yaml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "PDWK_CONFIG_PATH"

// envPrefix is stripped from environment variables before mapping them onto
// koanf paths: PDWK_LASTFM_API_KEY -> lastfm.api_key.
const envPrefix = "PDWK_"

// GitAccount names one account on a git hosting platform whose repositories
// feed the aggregator.
type GitAccount struct {
	Name     string `koanf:"name"`
	Platform string `koanf:"platform"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AdminToken      string        `koanf:"admin_token"`
}

// LastfmConfig holds credentials for the scrobbling API.
type LastfmConfig struct {
	APIKey   string `koanf:"api_key"`
	Username string `koanf:"username"`
}

// NowPlayingConfig controls the now-playing poll loop.
type NowPlayingConfig struct {
	Interval time.Duration `koanf:"interval"`
	// TopArtistChance is the per-tick probability of opportunistically
	// refreshing the top-artist signal.
	TopArtistChance float64 `koanf:"top_artist_chance"`
}

// GitConfig holds the repository aggregation settings.
type GitConfig struct {
	Accounts        []GitAccount  `koanf:"accounts"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// LanyardConfig identifies the Discord user whose presence is mirrored.
type LanyardConfig struct {
	UserID string `koanf:"user_id"`
}

// UpstreamConfig bounds outbound calls to third-party APIs.
type UpstreamConfig struct {
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
	// RatePerSecond limits outbound requests per upstream client.
	RatePerSecond float64 `koanf:"rate_per_second"`
	RateBurst     int     `koanf:"rate_burst"`
}

// Config is the root configuration for the service.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	DBPath     string           `koanf:"db_path"`
	Lastfm     LastfmConfig     `koanf:"lastfm"`
	NowPlaying NowPlayingConfig `koanf:"now_playing"`
	Git        GitConfig        `koanf:"git"`
	Lanyard    LanyardConfig    `koanf:"lanyard"`
	Upstream   UpstreamConfig   `koanf:"upstream"`
	LogLevel   string           `koanf:"log_level"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		DBPath: "pdwk.db",
		Lastfm: LastfmConfig{
			Username: "pdwk",
		},
		NowPlaying: NowPlayingConfig{
			Interval:        2 * time.Second,
			TopArtistChance: 0.05,
		},
		Git: GitConfig{
			Accounts: []GitAccount{
				{Name: "playfairs", Platform: "github"},
				{Name: "bevlynous", Platform: "github"},
				{Name: "smezir", Platform: "github"},
				{Name: "tekhnika", Platform: "github"},
			},
			RefreshInterval: 10 * time.Minute,
		},
		Lanyard: LanyardConfig{
			UserID: "1426711359059394662",
		},
		Upstream: UpstreamConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "pdwk-dev/1.0 (+https://pdwk.dev)",
			RatePerSecond: 5,
			RateBurst:     10,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envSections are the nested config sections an environment variable may
// address. Anything else is treated as a top-level key (db_path, log_level).
var envSections = []string{"server", "lastfm", "now_playing", "git", "lanyard", "upstream"}

// envTransform maps PDWK_LASTFM_API_KEY to lastfm.api_key and
// PDWK_NOW_PLAYING_INTERVAL to now_playing.interval.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, sec := range envSections {
		if strings.HasPrefix(s, sec+"_") {
			return sec + "." + strings.TrimPrefix(s, sec+"_")
		}
	}
	return s
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if c.NowPlaying.Interval <= 0 {
		return fmt.Errorf("now_playing.interval must be positive, got %s", c.NowPlaying.Interval)
	}
	if c.NowPlaying.TopArtistChance < 0 || c.NowPlaying.TopArtistChance > 1 {
		return fmt.Errorf("now_playing.top_artist_chance must be in [0,1], got %v", c.NowPlaying.TopArtistChance)
	}
	if c.Git.RefreshInterval <= 0 {
		return fmt.Errorf("git.refresh_interval must be positive, got %s", c.Git.RefreshInterval)
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive, got %s", c.Upstream.Timeout)
	}
	for i, acc := range c.Git.Accounts {
		if acc.Name == "" {
			return fmt.Errorf("git.accounts[%d].name must not be empty", i)
		}
		switch acc.Platform {
		case "github", "gitlab":
		default:
			return fmt.Errorf("git.accounts[%d].platform must be github or gitlab, got %q", i, acc.Platform)
		}
	}
	return nil
}
