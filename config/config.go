package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port string

	EbayClientID     string
	EbayClientSecret string
	EbayEnv          string // SANDBOX or PRODUCTION

	MaxConcurrency  int
	RateLimitMs     int
	MaxRetries      int
	LookupTimeoutMs int

	SearchDistance  int
	DefaultPageSize int

	CSVOutputPath string
	ChromeBin     string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Port: getEnv("PORT", "3000"),

		EbayClientID:     getEnv("EBAY_CLIENT_ID", ""),
		EbayClientSecret: getEnv("EBAY_CLIENT_SECRET", ""),
		EbayEnv:          getEnv("EBAY_ENV", "SANDBOX"),

		MaxConcurrency:  getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:     getEnvInt("RATE_LIMIT_MS", 500),
		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		LookupTimeoutMs: getEnvInt("LOOKUP_TIMEOUT_MS", 10000),

		SearchDistance:  getEnvInt("SEARCH_DISTANCE", 50),
		DefaultPageSize: getEnvInt("DEFAULT_PAGE_SIZE", 50),

		CSVOutputPath: getEnv("CSV_OUTPUT_PATH", ""),
		ChromeBin:     getEnv("CHROME_BIN", ""),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
