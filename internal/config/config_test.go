package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendBolt, cfg.Session.Backend)
	assert.Equal(t, TaskModeEnvelope, cfg.Upstream.TaskMode)
	assert.Equal(t, "auth-token", cfg.Session.CookieName)
	assert.Equal(t, 30*24*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.EphemeralSecret)
	assert.Len(t, cfg.Session.Secret, 64)
	assert.Equal(t, "0.0.0.0:3000", cfg.Address())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_BACKEND", "REDIS")
	t.Setenv("TASK_API_MODE", "rest")
	t.Setenv("TASK_API_BASE", "http://tasks.local/tasks/")
	t.Setenv("SESSION_TTL", "3600")
	t.Setenv("SESSION_COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, TaskModeREST, cfg.Upstream.TaskMode)
	assert.Equal(t, "http://tasks.local/tasks", cfg.Upstream.TaskBaseURL)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.CookieSecure)
	assert.False(t, cfg.Session.EphemeralSecret)
}

func TestLoadRejectsMissingSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestValidateUnknownValues(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("SESSION_BACKEND", "mongo")
	t.Setenv("TASK_API_MODE", "graphql")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown SESSION_BACKEND "mongo"`)
	assert.Contains(t, err.Error(), `unknown TASK_API_MODE "graphql"`)
}
