package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.NowPlaying.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Git.RefreshInterval)
	assert.Equal(t, "pdwk", cfg.Lastfm.Username)
	assert.NotEmpty(t, cfg.Git.Accounts)
	for _, acc := range cfg.Git.Accounts {
		assert.Equal(t, "github", acc.Platform)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PDWK_SERVER_ADDR", ":9999")
	t.Setenv("PDWK_LASTFM_API_KEY", "abc123")
	t.Setenv("PDWK_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "abc123", cfg.Lastfm.APIKey)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PDWK_SERVER_ADDR", "server.addr"},
		{"PDWK_LASTFM_API_KEY", "lastfm.api_key"},
		{"PDWK_NOW_PLAYING_INTERVAL", "now_playing.interval"},
		{"PDWK_NOW_PLAYING_TOP_ARTIST_CHANCE", "now_playing.top_artist_chance"},
		{"PDWK_DB_PATH", "db_path"},
		{"PDWK_LOG_LEVEL", "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envTransform(tt.in))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"zero interval", func(c *Config) { c.NowPlaying.Interval = 0 }, "now_playing.interval"},
		{"chance too high", func(c *Config) { c.NowPlaying.TopArtistChance = 1.5 }, "top_artist_chance"},
		{"zero refresh", func(c *Config) { c.Git.RefreshInterval = 0 }, "git.refresh_interval"},
		{"zero timeout", func(c *Config) { c.Upstream.Timeout = 0 }, "upstream.timeout"},
		{"nameless account", func(c *Config) {
			c.Git.Accounts = []GitAccount{{Name: "", Platform: "github"}}
		}, "git.accounts[0].name"},
		{"bad platform", func(c *Config) {
			c.Git.Accounts = []GitAccount{{Name: "x", Platform: "sourcehut"}}
		}, "github or gitlab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
