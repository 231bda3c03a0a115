package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ThemeSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "combined_score_ranking", cfg.Data.RankingPrefix)
	assert.Equal(t, "csv", cfg.Data.PriceSource)
	assert.Equal(t, 220, cfg.Band.Window)
	assert.Equal(t, 2.0, cfg.Band.Multiplier)
	assert.Equal(t, 7, cfg.Trend.LookbackDays)
	assert.Equal(t, 15, cfg.Graph.TopK)
	assert.Equal(t, 2, cfg.Graph.MinShared)
	assert.Len(t, cfg.Tiers.Rules, 3)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeConfig(t, `
data:
  ranking_dir: /srv/rankings
  price_source: yahoo
band:
  window: 100
  min_date: "2026-01-20"
graph:
  top_k: 8
  fan_out: 3
tiers:
  rules:
    - {tier: 1, min_score: 0.3, min_cohesion: 9}
    - {tier: 2, min_score: 0.1, min_cohesion: 3}
  profiles:
    1: {action: "GO", color: "#000000"}
telegram:
  bot_token: abc
  chat_id: "42"
`)
	t.Setenv("TREND_LOOKBACK_DAYS", "14")
	t.Setenv("API_ADDR", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/srv/rankings", cfg.Data.RankingDir)
	assert.Empty(t, cfg.Data.PriceDir)
	assert.Equal(t, 100, cfg.Band.Window)
	assert.Equal(t, 8, cfg.Graph.TopK)
	assert.Equal(t, 3, cfg.Graph.FanOut)
	assert.Equal(t, 14, cfg.Trend.LookbackDays)
	assert.Equal(t, ":9999", cfg.API.Addr)
	assert.True(t, cfg.TelegramEnabled())

	p, err := cfg.BandParams()
	require.NoError(t, err)
	assert.Equal(t, 2026, p.MinDate.Year())

	tc, err := cfg.TierClassifier()
	require.NoError(t, err)
	assert.Equal(t, model.Tier1, tc.Classify(0.3, 0))
	assert.Equal(t, model.Tier2, tc.Classify(0.2, 0))
	assert.Equal(t, "GO", tc.Profile(model.Tier1).Action)
	assert.Equal(t, "ACCUMULATE", tc.Profile(model.Tier2).Action)
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		mut  func(c *Config)
	}{
		{"bad cron", func(c *Config) { c.Schedule.ScanCron = "every day" }},
		{"bad price source", func(c *Config) { c.Data.PriceSource = "ftp" }},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "abc"; c.Telegram.ChatID = "" }},
		{"window too small", func(c *Config) { c.Band.Window = 1 }},
		{"bad min date", func(c *Config) { c.Band.MinDate = "20/01/2026" }},
		{"bad gin mode", func(c *Config) { c.API.Mode = "verbose" }},
		{"rising tier thresholds", func(c *Config) {
			c.Tiers.Rules[0].MinScore = 0.01
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
			require.NoError(t, err)
			tt.mut(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/etc/sentinel.yaml")
	assert.Equal(t, "flag.yaml", Path("flag.yaml"))
	assert.Equal(t, "/etc/sentinel.yaml", Path(""))
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, Path(""))
}
