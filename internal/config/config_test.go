package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_DRIVER", "DATABASE_URL", "SERVER_PORT", "CART_BATCH_TIMEOUT",
		"CART_MAX_RETRIES", "CART_LOCK_NOWAIT", "AUTH_TOKEN_TTL", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("AUTH_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Cart.BatchTimeout)
	assert.Equal(t, 1, cfg.Cart.MaxRetries)
	assert.False(t, cfg.Cart.LockNoWait)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("DATABASE_DRIVER", "pgx")
	t.Setenv("CART_BATCH_TIMEOUT", "250ms")
	t.Setenv("CART_MAX_RETRIES", "0")
	t.Setenv("CART_LOCK_NOWAIT", "true")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Cart.BatchTimeout)
	assert.Equal(t, 0, cfg.Cart.MaxRetries)
	assert.True(t, cfg.Cart.LockNoWait)
	assert.True(t, cfg.Log.Development)
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "secret")
	t.Setenv("CART_BATCH_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Cart.BatchTimeout)
}

func TestValidate(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	t.Setenv("DATABASE_DRIVER", "mysql")

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_JWT_SECRET")
	assert.Contains(t, err.Error(), "mysql")
}
