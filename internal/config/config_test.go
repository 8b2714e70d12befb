package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 3002, cfg.HTTPPort)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, SessionDriverRedis, cfg.SessionDriver)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "127.0.0.1:3002", cfg.Addr())
	assert.False(t, cfg.HasBootstrapAdmin())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SESSION_DRIVER", "memory")
	t.Setenv("JWT_EXPIRY", "30m")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_LOGIN", "admin")
	t.Setenv("ADMIN_PASSWORD", "secret-pass")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiry)
	assert.True(t, cfg.CookieSecure)
	assert.True(t, cfg.HasBootstrapAdmin())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfig_BadInteger(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "eighty")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		HTTPPort:      0,
		StoreDriver:   "mongo",
		SessionDriver: "cookie",
		SessionTTL:    time.Hour,
		LogLevel:      "loud",
		LogFormat:     "xml",
		JWTSecret:     "short",
		JWTExpiry:     time.Hour,
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"HTTP_PORT", "STORE_DRIVER", "SESSION_DRIVER", "LOG_LEVEL", "LOG_FORMAT", "JWT_SECRET"} {
		assert.True(t, strings.Contains(msg, want), "missing %s in %q", want, msg)
	}
}
