package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Addr string

	// Provider selection: "synthetic", "http" or the live scraper
	// ("kayak" for flights, "booking" for lodging).
	FlightProvider  string
	LodgingProvider string

	FlightProviderURL  string
	LodgingProviderURL string
	ChromeBin          string

	SearchTimeout  time.Duration
	FlightTimeout  time.Duration
	LodgingTimeout time.Duration

	SampleDates int
	MaxPackages int
	Concurrency int

	CacheTTL  time.Duration
	RedisAddr string // empty = in-memory cache store

	RateLimit       int
	RateLimitWindow time.Duration

	DestinationsFile string // optional JSON catalog override
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Addr: getEnv("ADDR", ":8080"),

		FlightProvider:  getEnv("FLIGHT_PROVIDER", "synthetic"),
		LodgingProvider: getEnv("LODGING_PROVIDER", "synthetic"),

		FlightProviderURL:  getEnv("FLIGHT_PROVIDER_URL", "http://localhost:9001"),
		LodgingProviderURL: getEnv("LODGING_PROVIDER_URL", "http://localhost:9002"),
		ChromeBin:          getEnv("CHROME_BIN", ""),

		SearchTimeout:  getEnvDuration("SEARCH_TIMEOUT", 90*time.Second),
		FlightTimeout:  getEnvDuration("FLIGHT_TIMEOUT", 15*time.Second),
		LodgingTimeout: getEnvDuration("LODGING_TIMEOUT", 20*time.Second),

		SampleDates: getEnvInt("SAMPLE_DATES", 5),
		MaxPackages: getEnvInt("MAX_PACKAGES", 20),
		Concurrency: getEnvInt("MAX_CONCURRENCY", 8),

		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
		RedisAddr: getEnv("REDIS_ADDR", ""),

		RateLimit:       getEnvInt("RATE_LIMIT", 10),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),

		DestinationsFile: getEnv("DESTINATIONS_FILE", ""),
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
