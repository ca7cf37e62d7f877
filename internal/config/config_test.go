package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "X-Session-Id", cfg.SessionHeader)
	assert.Equal(t, "sessionId", cfg.SessionKey)
	assert.Equal(t, "memory", cfg.CacheBackend)
	assert.Equal(t, "client_name", cfg.ClientNameParameter)
	assert.Equal(t, "/.*", cfg.LogoutURLPattern)
	assert.Equal(t, time.Hour, cfg.SessionTTL())
	assert.Equal(t, time.Hour, cfg.ProfileTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("CACHE_KEY_PREFIX", "app1")
	t.Setenv("PROFILE_TIMEOUT", "60")
	t.Setenv("CLEAR_REQUESTED_URL_ON_READ", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "app1", cfg.CacheKeyPrefix)
	assert.Equal(t, time.Minute, cfg.ProfileTTL())
	assert.True(t, cfg.ClearRequestedURLOnRead)
}

func TestLoadRequiresSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	require.NoError(t, os.Unsetenv("SESSION_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}
