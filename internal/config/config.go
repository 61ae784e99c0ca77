package config

import (
	"fmt"
	"os"
	"strconv"

	"govigil/internal/errors"
)

// Config represents the complete application configuration for the
// binaries. The scoring engine itself receives its tunables per invocation
// and never reads the environment.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional result-ledger connection
type DatabaseConfig struct {
	URL     string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envOr("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
	}
	cfg.Database.Enabled = cfg.Database.URL != ""

	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("invalid PORT %q", cfg.Server.Port))
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
