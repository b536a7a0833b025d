package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "APP_MODE", "DATABASE_URL", "REDIS_ADDR", "AVATAR_SOURCE_URL", "AVATAR_TIMEOUT", "BCRYPT_COST", "LOGIN_RATE_LIMIT", "LOGIN_RATE_WINDOW", "TRUST_PROXY"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "development", cfg.AppMode)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "https://api.imgflip.com/get_memes", cfg.AvatarSourceURL)
	assert.Equal(t, 5*time.Second, cfg.AvatarTimeout)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 10, cfg.LoginRateLimit)
	assert.Equal(t, time.Minute, cfg.LoginRateWindow)
	assert.False(t, cfg.TrustProxy)
	assert.False(t, cfg.DotEnvLoaded, "no .env in the package directory")
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/app")
	t.Setenv("AVATAR_TIMEOUT", "250ms")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("LOGIN_RATE_LIMIT", "3")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr)
	assert.Equal(t, "postgres://u:p@db:5432/app", cfg.DatabaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.AvatarTimeout)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 3, cfg.LoginRateLimit)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "8081")

	cfg, err := Load([]string{"-addr", "127.0.0.1:9999"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr)
}

func TestLoad_BadFlag(t *testing.T) {
	_, err := Load([]string{"-nope"})
	assert.Error(t, err)
}

func TestGetEnvAsInt_Invalid(t *testing.T) {
	t.Setenv("SOME_INT", "abc")
	assert.Equal(t, 7, getEnvAsInt("SOME_INT", 7))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("SOME_BOOL", "yes")
	assert.True(t, getEnvAsBool("SOME_BOOL", true))
	assert.False(t, getEnvAsBool("SOME_BOOL", false))

	t.Setenv("SOME_BOOL", "1")
	assert.True(t, getEnvAsBool("SOME_BOOL", false))
}
