// Package config loads service settings from an optional YAML file overlaid
// by environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds the service settings.
type Config struct {
	Storage      string        `yaml:"storage"`
	DatabaseURL  string        `yaml:"database_url"`
	HTTPAddr     string        `yaml:"http_addr"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	ReportLocale string        `yaml:"report_locale"`
	Log          LogConfig     `yaml:"log"`
	Bootstrap    Bootstrap     `yaml:"bootstrap"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Bootstrap creates the first superuser when both fields are set.
type Bootstrap struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Enabled reports whether a superuser should be seeded.
func (b Bootstrap) Enabled() bool { return b.Username != "" && b.Password != "" }

// Load reads $APP_CONFIG when set, then applies environment overrides and
// validates the result.
func Load() (Config, error) {
	cfg := Config{
		Storage:      StoragePostgres,
		HTTPAddr:     ":8080",
		TokenTTL:     12 * time.Hour,
		ReportLocale: "es-CO",
		Log:          LogConfig{Level: "info"},
	}

	if path := os.Getenv("APP_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Storage = getenvDefault("STORAGE", cfg.Storage)
	cfg.DatabaseURL = getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", cfg.DatabaseURL))
	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.JWTSecret = getenvDefault("AUTH_JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = getenvDuration("AUTH_TOKEN_TTL", cfg.TokenTTL)
	cfg.ReportLocale = getenvDefault("REPORT_LOCALE", cfg.ReportLocale)
	cfg.Log.Level = getenvDefault("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Development = getenvBool("LOG_DEVELOPMENT", cfg.Log.Development)
	cfg.Bootstrap.Username = getenvDefault("BOOTSTRAP_ADMIN_USERNAME", cfg.Bootstrap.Username)
	cfg.Bootstrap.Password = getenvDefault("BOOTSTRAP_ADMIN_PASSWORD", cfg.Bootstrap.Password)

	return cfg, cfg.Validate()
}

// Validate checks required keys.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL or PG_DSN is required"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR is required"))
	}
	return errors.Join(errs...)
}

func getenvDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
