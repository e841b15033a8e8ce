// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// Database
	DatabaseURL     string
	ComplaintsTable string

	// Record store: when set, search queries go to this remote service
	// instead of the in-process store.
	RecordStoreURL        string
	RecordStoreTimeoutSec int

	// External collaborators
	GeocoderURL   string
	GeocoderCity  string
	EmailRelayURL string
	// Recipient domains the email relay will accept; empty means any.
	AllowedEmailDomains []string

	// Security
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPM   int

	// Redis (chat session filter store)
	RedisURL      string
	SessionTTLMin int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL:     getEnv("DATABASE_URL", ""),
		ComplaintsTable: getEnv("COMPLAINTS_TABLE", "complaints"),

		RecordStoreURL:        getEnv("RECORD_STORE_URL", ""),
		RecordStoreTimeoutSec: getEnvInt("RECORD_STORE_TIMEOUT_SEC", 10),

		GeocoderURL:         getEnv("GEOCODER_URL", ""),
		GeocoderCity:        getEnv("GEOCODER_CITY", "chandler"),
		EmailRelayURL:       getEnv("EMAIL_RELAY_URL", ""),
		AllowedEmailDomains: splitNonEmpty(getEnv("ALLOWED_EMAIL_DOMAINS", "chandleraz.gov,chandlerazpd.gov")),

		JWTSecret:      getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		AllowedOrigins: splitNonEmpty(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 60),

		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379"),
		SessionTTLMin: getEnvInt("SESSION_TTL_MIN", 30),
	}

	// Validate required fields in production
	if cfg.Environment == "production" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == "dev-secret-change-in-production" {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
