package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults are usable with no environment", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:8080/api/v1", cfg.Client.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.Client.Timeout)
		assert.Equal(t, SessionBackendFile, cfg.Session.Backend)
		assert.NotEmpty(t, cfg.Session.FilePath)
		assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("API_BASE_URL", "https://alerts.example.com/api/v1")
		t.Setenv("API_TIMEOUT", "5s")
		t.Setenv("SESSION_STORE", "redis")
		t.Setenv("REDIS_HOST", "redis.internal")
		t.Setenv("RETRY_MAX_ATTEMPTS", "5")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://alerts.example.com/api/v1", cfg.Client.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
		assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
		assert.Equal(t, "redis.internal:6379", cfg.Redis.Address())
		assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	})

	t.Run("unparsable duration falls back to default", func(t *testing.T) {
		t.Setenv("API_TIMEOUT", "soon")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 15*time.Second, cfg.Client.Timeout)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Client: ClientConfig{
				BaseURL: "http://localhost:8080/api/v1",
				Timeout: 15 * time.Second,
			},
			Session: SessionConfig{Backend: SessionBackendFile, FilePath: "/tmp/session.json"},
			Redis:   RedisConfig{Host: "localhost", Port: "6379"},
			Retry:   RetryConfig{MaxAttempts: 3},
		}
	}

	t.Run("valid config passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("rejects malformed base URL", func(t *testing.T) {
		cfg := valid()
		cfg.Client.BaseURL = "not a url"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown session backend", func(t *testing.T) {
		cfg := valid()
		cfg.Session.Backend = "etcd"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects missing file path for file backend", func(t *testing.T) {
		cfg := valid()
		cfg.Session.FilePath = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects non-numeric redis port for redis backend", func(t *testing.T) {
		cfg := valid()
		cfg.Session.Backend = SessionBackendRedis
		cfg.Redis.Port = "default"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects zero retry attempts", func(t *testing.T) {
		cfg := valid()
		cfg.Retry.MaxAttempts = 0
		assert.Error(t, cfg.Validate())
	})
}
