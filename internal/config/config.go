package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all application configuration
type Config struct {
	TwelveDataAPIKey  string        // TWELVEDATA_API_KEY
	FinnhubAPIKey     string        // FINNHUB_API_KEY
	LogLevel          string        // LOG_LEVEL
	RequestTimeout    time.Duration // REQUEST_TIMEOUT (seconds)
	RequestsPerSec    int           // REQUESTS_PER_SEC
	QuoteCacheTTL     time.Duration // QUOTE_CACHE_TTL_SEC (seconds)
	HistoryDays       int           // HISTORY_DAYS
	RequestDelay      time.Duration // REQUEST_DELAY_MS (milliseconds)
	CalendarDaysAhead int           // CALENDAR_DAYS_AHEAD
	TopOpportunities  int           // TOP_OPPORTUNITIES
	MinQualityScore   float64       // MIN_QUALITY_SCORE
	ScanSchedule      string        // SCAN_SCHEDULE (cron spec; empty = one-shot)
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	cfg := Config{
		TwelveDataAPIKey:  os.Getenv("TWELVEDATA_API_KEY"),
		FinnhubAPIKey:     os.Getenv("FINNHUB_API_KEY"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		RequestTimeout:    time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", 10)) * time.Second,
		RequestsPerSec:    getEnvIntWithDefault("REQUESTS_PER_SEC", 5),
		QuoteCacheTTL:     time.Duration(getEnvIntWithDefault("QUOTE_CACHE_TTL_SEC", 300)) * time.Second,
		HistoryDays:       getEnvIntWithDefault("HISTORY_DAYS", 60),
		RequestDelay:      time.Duration(getEnvIntWithDefault("REQUEST_DELAY_MS", 800)) * time.Millisecond,
		CalendarDaysAhead: getEnvIntWithDefault("CALENDAR_DAYS_AHEAD", 21),
		TopOpportunities:  getEnvIntWithDefault("TOP_OPPORTUNITIES", 5),
		MinQualityScore:   getEnvFloatWithDefault("MIN_QUALITY_SCORE", 5),
		ScanSchedule:      os.Getenv("SCAN_SCHEDULE"),
	}

	return &cfg, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
