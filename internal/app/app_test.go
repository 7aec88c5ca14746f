package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "./blog.db", cfg.DatabaseURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, 365*24*time.Hour, cfg.RememberLifetime)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.SecureCookies)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ADDR", ":9090")
	t.Setenv("DATABASE_URL", "postgres://blog@localhost/blog")
	t.Setenv("SESSION_LIFETIME", "2h")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres://blog@localhost/blog", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionLifetime)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.SecureCookies)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "LOG_LEVEL")
}

func TestValidate(t *testing.T) {
	ok := Config{
		Addr: ":8080", DatabaseURL: "blog.db",
		SessionLifetime: time.Hour, RememberLifetime: 2 * time.Hour,
		LogLevel: "debug", LogFormat: "text",
		AuthRatePerMinute: 1, AuthBurst: 1,
	}
	require.NoError(t, ok.Validate())

	short := ok
	short.SessionLifetime = time.Second
	require.Error(t, short.Validate())

	inverted := ok
	inverted.RememberLifetime = time.Minute
	require.Error(t, inverted.Validate())

	noRate := ok
	noRate.AuthBurst = 0
	require.Error(t, noRate.Validate())
}
