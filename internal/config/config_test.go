package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Session.Storage)
	assert.Equal(t, 8*time.Hour, cfg.Session.Lifetime)
	assert.False(t, cfg.NeedsDatabase())
	assert.False(t, cfg.Provider.ForceLocal)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_LIFETIME", "30m")
	t.Setenv("PROVIDER_DOMAIN", "idp.example.com")
	t.Setenv("RATELIMIT_RPS", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.Session.Lifetime)
	assert.Equal(t, "idp.example.com", cfg.Provider.Domain)
	assert.Equal(t, float64(50), cfg.RateLimit.RequestsPerSecond)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("SESSION_LIFETIME", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, cfg.Session.Lifetime)
}

func TestValidate(t *testing.T) {
	t.Run("unknown storage rejected", func(t *testing.T) {
		t.Setenv("SESSION_STORAGE", "redis")
		_, err := Load()
		assert.ErrorContains(t, err, "SESSION_STORAGE")
	})

	t.Run("postgres storage requires password", func(t *testing.T) {
		t.Setenv("SESSION_STORAGE", "postgres")
		_, err := Load()
		assert.ErrorContains(t, err, "DB_PASSWORD")
	})

	t.Run("postgres storage with password passes", func(t *testing.T) {
		t.Setenv("SESSION_STORAGE", "postgres")
		t.Setenv("DB_PASSWORD", "secret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.NeedsDatabase())
	})
}
