package config_test

import (
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/fund_reconciliation/internal/core/matching"
	"github.com/SscSPs/fund_reconciliation/internal/platform/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("PGSQL_URL", "postgres://localhost/recon")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "120-M", cfg.RateLimit)
	assert.Equal(t, 4, cfg.MatchWorkers)
	assert.Equal(t, 50, cfg.DefaultBatchSize)
	assert.Equal(t, 500, cfg.MaxBatchSize)

	policy := cfg.MatchingPolicy()
	def := matching.DefaultPolicy()
	assert.True(t, def.Tolerance.Percent.Equal(policy.Tolerance.Percent))
	assert.True(t, def.Tolerance.Floor.Equal(policy.Tolerance.Floor))
	assert.Equal(t, def.WindowDays, policy.WindowDays)
	assert.Equal(t, def.SplitCandidateCap, policy.SplitCandidateCap)
}

func TestLoadConfig_Overrides(t *testing.T) {
	viper.Reset()
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MATCH_TOLERANCE_PERCENT", "0.02")
	t.Setenv("MATCH_TOLERANCE_FLOOR", "500")
	t.Setenv("MATCH_WINDOW_DAYS", "0")
	t.Setenv("SPLIT_CANDIDATE_CAP", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DEFAULT_BATCH_SIZE", "900")
	t.Setenv("MAX_BATCH_SIZE", "100")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, decimal.RequireFromString("0.02").Equal(cfg.TolerancePercent))
	assert.True(t, decimal.NewFromInt(500).Equal(cfg.ToleranceFloor))
	assert.Equal(t, 0, cfg.WindowDays)
	assert.Equal(t, 5, cfg.SplitCandidateCap)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 100, cfg.DefaultBatchSize, "default is clamped to max")
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	viper.Reset()
	t.Setenv("LOG_LEVEL", "chatty")
	t.Setenv("MATCH_TOLERANCE_PERCENT", "lots")
	t.Setenv("MATCH_TOLERANCE_FLOOR", "-1")
	t.Setenv("MATCH_WINDOW_DAYS", "-3")
	t.Setenv("SPLIT_CANDIDATE_CAP", "1")
	t.Setenv("MATCH_WORKERS", "0")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	def := matching.DefaultPolicy()
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.True(t, def.Tolerance.Percent.Equal(cfg.TolerancePercent))
	assert.True(t, def.Tolerance.Floor.Equal(cfg.ToleranceFloor))
	assert.Equal(t, def.WindowDays, cfg.WindowDays)
	assert.Equal(t, def.SplitCandidateCap, cfg.SplitCandidateCap)
	assert.Equal(t, 4, cfg.MatchWorkers)
}
