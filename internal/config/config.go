// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for the scoring pipeline. These can be overridden per request;
// the configured values are used by the scheduler and as request fallbacks.
const (
	DefaultUniverseLimit = 300
	DefaultMinBars       = 120
	DefaultLookbackDays  = 400
)

// Config holds application configuration
type Config struct {
	DataDir       string // Base directory for all databases (always absolute)
	Port          int
	DevMode       bool
	LogLevel      string
	UniverseLimit int    // Max tickers considered per portfolio generation
	MinBars       int    // Minimum price bars for a ticker to be scored
	LookbackDays  int    // Price history window fetched per generation
	RefreshCron   string // Cron spec for the daily portfolio refresh
	RefreshEnable bool   // Whether the scheduled refresh runs at all
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:       absDataDir,
		Port:          getEnvAsInt("PORT", 8000),
		DevMode:       getEnvAsBool("DEV_MODE", false),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		UniverseLimit: getEnvAsInt("UNIVERSE_LIMIT", DefaultUniverseLimit),
		MinBars:       getEnvAsInt("MIN_BARS", DefaultMinBars),
		LookbackDays:  getEnvAsInt("LOOKBACK_DAYS", DefaultLookbackDays),
		RefreshCron:   getEnv("REFRESH_CRON", "0 30 6 * * *"),
		RefreshEnable: getEnvAsBool("REFRESH_ENABLED", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present and sane
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.UniverseLimit <= 0 {
		return fmt.Errorf("universe limit must be positive, got %d", c.UniverseLimit)
	}
	if c.MinBars <= 0 {
		return fmt.Errorf("minimum bar count must be positive, got %d", c.MinBars)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback days must be positive, got %d", c.LookbackDays)
	}
	return nil
}

// Helper functions
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
