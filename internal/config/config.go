package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port       int           `yaml:"port"`
	DBPath     string        `yaml:"db_path"`
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	CORSOrigin string        `yaml:"cors_origin"`
	LogLevel   string        `yaml:"log_level"`
	// SecureCookies marks the accessToken cookie Secure; off by default so
	// local http development works, on in production.
	SecureCookies bool `yaml:"secure_cookies"`
}

// Load builds the config from defaults, an optional YAML file
// (ZENSYNC_CONFIG), and environment variables, in that order of
// precedence (env wins).
func Load() (*Config, error) {
	cfg := &Config{
		Port:       5000,
		DBPath:     "./data/zensync.db",
		JWTSecret:  "",
		TokenTTL:   7 * 24 * time.Hour,
		CORSOrigin: "http://localhost:5173",
		LogLevel:   "info",
	}

	if path := os.Getenv("ZENSYNC_CONFIG"); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.DBPath = envStr("DB_PATH", cfg.DBPath)
	cfg.JWTSecret = envStr("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = envDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.CORSOrigin = envStr("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.LogLevel = envStr("LOG_LEVEL", cfg.LogLevel)
	cfg.SecureCookies = envBool("SECURE_COOKIES", cfg.SecureCookies)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL)
	}
	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
