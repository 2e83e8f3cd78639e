package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ServiceTypeOptimization, cfg.ServiceName)
	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.RedisDB)
	assert.Equal(t, 10*time.Minute, cfg.LineupCacheTTL)
	assert.Equal(t, 4, cfg.LeagueOptimizeConcurrency)
	assert.Equal(t, 5, cfg.CircuitBreakerThreshold)
	assert.Equal(t, 30*time.Second, cfg.CircuitBreakerTimeout)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LINEUP_CACHE_TTL", "1h")
	t.Setenv("LEAGUE_OPTIMIZE_CONCURRENCY", "12")
	t.Setenv("DATABASE_URL", "postgres://bb:bb@db:5432/bb")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, time.Hour, cfg.LineupCacheTTL)
	assert.Equal(t, 12, cfg.LeagueOptimizeConcurrency)
	assert.Equal(t, "postgres://bb:bb@db:5432/bb", cfg.DatabaseURL)
}

func TestLoadConfig_RejectsInvalidConcurrency(t *testing.T) {
	t.Setenv("LEAGUE_OPTIMIZE_CONCURRENCY", "0")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "LEAGUE_OPTIMIZE_CONCURRENCY")
}

func TestConfig_Validate(t *testing.T) {
	base := Config{LeagueOptimizeConcurrency: 1, CircuitBreakerThreshold: 1}
	assert.NoError(t, base.Validate())

	negativeTTL := base
	negativeTTL.LineupCacheTTL = -time.Second
	assert.Error(t, negativeTTL.Validate())

	noBreaker := base
	noBreaker.CircuitBreakerThreshold = 0
	assert.Error(t, noBreaker.Validate())
}
