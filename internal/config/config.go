package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	APIBaseURL     string        // Base URL of the marketplace API
	StatePath      string        // Path to the local state database
	PriceMax       float64       // Upper bound of the default price filter
	SuccessDisplay time.Duration // How long the listing success screen stays up
	RefreshCron    string        // Cron expression for background catalog refresh, empty disables
	WatchURL       string        // Websocket URL for live product events, empty disables

	// Dev API server settings
	DevAPIPort   int
	DevAPIDBPath string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	priceMax, err := strconv.ParseFloat(getEnv("PRICE_MAX", "1000"), 64)
	if err != nil {
		return nil, err
	}

	successSecs, err := strconv.Atoi(getEnv("SUCCESS_DISPLAY_SECONDS", "2"))
	if err != nil {
		return nil, err
	}

	devPort, err := strconv.Atoi(getEnv("DEVAPI_PORT", "8080"))
	if err != nil {
		return nil, err
	}

	return &Config{
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8080"),
		StatePath:      getEnv("STATE_PATH", "./marketfront.db"),
		PriceMax:       priceMax,
		SuccessDisplay: time.Duration(successSecs) * time.Second,
		RefreshCron:    getEnv("REFRESH_CRON", ""),
		WatchURL:       getEnv("WATCH_URL", ""),
		DevAPIPort:     devPort,
		DevAPIDBPath:   getEnv("DEVAPI_DB_PATH", "./devapi.db"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
