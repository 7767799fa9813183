// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir        string // Base directory for the quote cache database (always absolute)
	Port           int
	LogLevel       string
	DevMode        bool
	QuoteBaseURL   string        // Override for the Yahoo Finance chart API (tests, proxies)
	QuoteTimeout   time.Duration // HTTP timeout for quote lookups
	QuoteCacheTTL  time.Duration // How long a cached spot price stays fresh
	RequestTimeout time.Duration // Per-request deadline for simulation endpoints
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic:
	// 1. Check QUANTSVC_DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path and ensure it exists
	dataDir := getEnv("QUANTSVC_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		Port:           getEnvAsInt("PORT", 8000),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		QuoteBaseURL:   getEnv("QUOTE_BASE_URL", ""),
		QuoteTimeout:   getEnvAsDuration("QUOTE_TIMEOUT", 10*time.Second),
		QuoteCacheTTL:  getEnvAsDuration("QUOTE_CACHE_TTL", 10*time.Minute),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 120*time.Second),
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}

	return cfg, nil
}

// CacheDBPath returns the path to the quote cache database.
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
