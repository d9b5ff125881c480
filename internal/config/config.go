package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	LogLevel    string
	Environment string
	// PlansDir holds extra compensation plan artifacts loaded next to the
	// embedded ones. Empty means embedded plans only.
	PlansDir string
	// RateLimit uses the limiter's formatted rate, e.g. "600-M".
	RateLimit string
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("APP_ENV", "development"),
		PlansDir:    getEnv("PLANS_DIR", ""),
		RateLimit:   getEnv("RATE_LIMIT", "600-M"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
