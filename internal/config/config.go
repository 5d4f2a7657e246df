package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/ymori/futalog/internal/domain"
)

type Config struct {
	ListenAddr string
	DBPath     string
	SeedPath   string
	SessionTTL time.Duration
	LogLevel   string
	LogFile    string
}

// Load reads configuration from the environment, after merging in a .env
// file when one exists. Missing required settings surface as
// ErrServiceUnavailable here rather than as nil handles downstream.
func Load() (*Config, error) {
	// Absence of a .env file is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr: getEnv("LISTEN_ADDR", ":8080"),
		DBPath:     getEnv("DB_PATH", "/data/futalog.db"),
		SeedPath:   getEnv("CATALOG_SEED", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFile:    getEnv("LOG_FILE", ""),
	}

	ttl := getEnv("SESSION_TTL", "720h")
	d, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SESSION_TTL %q: %v", domain.ErrServiceUnavailable, ttl, err)
	}
	cfg.SessionTTL = d

	if cfg.DBPath == "" {
		return nil, fmt.Errorf("%w: DB_PATH must not be empty", domain.ErrServiceUnavailable)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
