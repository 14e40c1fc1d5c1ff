package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("IDENTITY_CACHE_TTL_SECONDS", "")
	t.Setenv("AUTH_BCRYPT_COST", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_DEVELOPMENT", "")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.Identity.CacheTTL())
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.True(t, cfg.Logger.Development)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadLoggerFollowsAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_DEVELOPMENT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Logger.Development)

	t.Setenv("LOG_DEVELOPMENT", "true")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.Logger.Development)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("IDENTITY_CACHE_TTL_SECONDS", "0")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Zero(t, cfg.Identity.CacheTTL())
	assert.False(t, cfg.Postgres.RunMigrations)
	assert.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "primary")

	_, err := Load()
	assert.Error(t, err)
}
