package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	DB        DatabaseConfig
	Auth      AuthConfig
	Moderate  ModerationConfig
	Forum     ForumConfig
	Reconcile ReconcileConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Path string
}

type AuthConfig struct {
	// AdminToken is the static shared-secret admin credential, accepted
	// alongside the session flag.
	AdminToken    string
	SessionSecret string
}

type ModerationConfig struct {
	// LexiconPath optionally overrides the built-in blocked-term list.
	LexiconPath string
}

type ForumConfig struct {
	PublicPageSize int
}

type ReconcileConfig struct {
	Enabled  bool
	Interval time.Duration
}

type RateLimitConfig struct {
	RPS int
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/campus-crisis.db"),
		},
		Auth: AuthConfig{
			AdminToken:    getEnv("ADMIN_TOKEN", ""),
			SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		},
		Moderate: ModerationConfig{
			LexiconPath: getEnv("LEXICON_PATH", ""),
		},
		Forum: ForumConfig{
			PublicPageSize: getEnvInt("FORUM_PAGE_SIZE", 20),
		},
		Reconcile: ReconcileConfig{
			Enabled:  getEnvBool("RECONCILE_ENABLED", false),
			Interval: getEnvDuration("RECONCILE_INTERVAL", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RPS: getEnvInt("RATE_LIMIT_RPS", 10),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Forum.PublicPageSize < 1 {
		return fmt.Errorf("forum page size must be positive")
	}
	if c.Reconcile.Enabled && c.Reconcile.Interval < 30*time.Second {
		return fmt.Errorf("reconcile interval must be at least 30 seconds")
	}
	if c.RateLimit.RPS < 1 {
		return fmt.Errorf("rate limit must allow at least 1 request per second")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
