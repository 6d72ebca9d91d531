package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet() *pflag.FlagSet {
	return pflag.NewFlagSet("test", pflag.ContinueOnError)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "key-1")

	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, "key-1", cfg.APIKey)
	assert.Equal(t, "https://api.themoviedb.org/3/", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.StrictLogin)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Empty(t, cfg.DBSource)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "key-1")
	t.Setenv("TMDB_BASE_URL", "http://localhost:9999/3")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STRICT_LOGIN", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SESSION_TTL", "90m")

	cfg, err := Load(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/3/", cfg.BaseURL)
	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.StrictLogin)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "from-env")

	cfg, err := Load(newFlagSet(), []string{"--tmdb_api_key=from-flag", "--port=7000"})
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.APIKey)
	assert.Equal(t, "7000", cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("TMDB_API_KEY", "")
	_, err := Load(newFlagSet(), nil)
	require.Error(t, err)

	t.Setenv("TMDB_API_KEY", "key-1")
	t.Setenv("TMDB_BASE_URL", "not-a-url")
	_, err = Load(newFlagSet(), nil)
	require.Error(t, err)

	t.Setenv("TMDB_BASE_URL", "")
	t.Setenv("HTTP_TIMEOUT", "0s")
	_, err = Load(newFlagSet(), nil)
	require.Error(t, err)
}
