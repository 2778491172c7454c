// Package config provides client configuration with environment variable
// loading, validation, and sensible defaults. It supports .env files for
// local development and validates all settings on startup so a bad base URL
// or unknown session backend is caught before the first request is made.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	client := api.New(cfg.Client.BaseURL, ...)
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Session persistence backends selectable via SESSION_STORE.
const (
	SessionBackendFile  = "file"
	SessionBackendRedis = "redis"
)

// Config holds all configuration for the client. It aggregates all
// configuration sections into a single struct for easy access.
type Config struct {
	Client  ClientConfig
	Session SessionConfig
	Redis   RedisConfig
	Retry   RetryConfig
}

// ClientConfig holds settings for the outbound API client.
type ClientConfig struct {
	BaseURL  string        // Base URL of the alert service API, including the /api/v1 prefix
	Timeout  time.Duration // Per-request HTTP timeout
	LogLevel string
}

// SessionConfig selects and parameterizes the durable session store.
type SessionConfig struct {
	Backend  string // "file" or "redis"
	FilePath string // Path of the session file when Backend is "file"
}

// RedisConfig holds Redis connection parameters for the redis session backend.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RetryConfig holds retry behavior for transient request failures.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Load reads and validates configuration from environment variables.
// It attempts to load a .env file if present (for local development) but
// doesn't fail if the file is missing.
//
// All variables have defaults; the client is usable against a local server
// with no environment at all. See Validate for the constraints enforced.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error when absent)
	_ = godotenv.Load()

	config := &Config{
		Client: ClientConfig{
			BaseURL:  getEnv("API_BASE_URL", "http://localhost:8080/api/v1"),
			Timeout:  getEnvAsDuration("API_TIMEOUT", 15*time.Second),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Session: SessionConfig{
			Backend:  getEnv("SESSION_STORE", SessionBackendFile),
			FilePath: getEnv("SESSION_FILE", defaultSessionFile()),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Retry: RetryConfig{
			MaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			InitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", 500*time.Millisecond),
			MaxDelay:     getEnvAsDuration("RETRY_MAX_DELAY", 10*time.Second),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks that all configuration is present and well-formed:
// the API base URL parses, the session backend is a known name, and the
// redis port is numeric when the redis backend is selected.
//
// Called automatically by Load but usable independently in tests.
func (c *Config) Validate() error {
	if c.Client.BaseURL == "" {
		return fmt.Errorf("API base URL is required")
	}
	if _, err := url.ParseRequestURI(c.Client.BaseURL); err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}

	if c.Client.Timeout <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}

	switch c.Session.Backend {
	case SessionBackendFile:
		if c.Session.FilePath == "" {
			return fmt.Errorf("session file path is required for the file backend")
		}
	case SessionBackendRedis:
		if _, err := strconv.Atoi(c.Redis.Port); err != nil {
			return fmt.Errorf("redis port must be a valid integer: %w", err)
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max attempts must be at least 1")
	}

	return nil
}

// Address returns the Redis server address in "host:port" format.
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// defaultSessionFile places the session file under the user config dir,
// falling back to the working directory when the home dir is unknown.
func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "newstotext-session.json"
	}
	return filepath.Join(dir, "newstotext", "session.json")
}

// Helper functions for environment variable parsing

// getEnv retrieves an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer with a default
// fallback. Unset or unparsable values yield defaultValue.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration retrieves an environment variable as a time.Duration with
// a default fallback. Supports Go duration format: "300ms", "1.5h", "2h45m".
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
