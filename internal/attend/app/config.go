package app

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Session backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	APIURL     string        // Base URL of the attendance service (default: http://10.0.2.2:8080)
	APITimeout time.Duration // Per-request timeout (default: 10s)
	RateLimit  float64       // Outgoing requests per second, 0 disables (default: 0)
	RateBurst  int           // Rate limiter burst (default: 1)

	SessionBackend string // sqlite, redis or memory (default: sqlite)
	DatabaseFile   string // SQLite session file (default: ./stepattend.db)
	RedisURL       string // redis:// URL, required for the redis backend
	RedisPrefix    string // Key prefix for the redis backend (default: stepattend)

	RegisterLoginDelay time.Duration // Pause between register and auto-login (default: 500ms)

	Env       string // Environment (dev, staging, prod) (default: prod)
	LogLevel  string // Log level (debug, info, warn, error) (default: warn)
	LogFormat string // Log format (json, text) (default: text)

	// LogOutput overrides where logs go (default: stderr). Not read from the environment.
	LogOutput io.Writer
}

// LoadConfig reads the environment, after loading ./.env when present.
// Variables already set in the environment win over the file.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		APIURL:     getEnvOrDefault("STEPATTEND_API_URL", "http://10.0.2.2:8080"),
		APITimeout: getEnvDurationOrDefault("API_TIMEOUT", 10*time.Second),
		RateLimit:  getEnvFloatOrDefault("API_RATE_LIMIT", 0),
		RateBurst:  getEnvIntOrDefault("API_RATE_BURST", 1),

		SessionBackend: getEnvOrDefault("SESSION_BACKEND", BackendSQLite),
		DatabaseFile:   getEnvOrDefault("SESSION_DATABASE_FILE", "stepattend.db"),
		RedisURL:       os.Getenv("SESSION_REDIS_URL"),
		RedisPrefix:    getEnvOrDefault("SESSION_REDIS_PREFIX", "stepattend"),

		RegisterLoginDelay: getEnvDurationOrDefault("REGISTER_LOGIN_DELAY", 500*time.Millisecond),

		Env:       getEnvOrDefault("ENV", "prod"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "warn"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// Validate reports configuration that New cannot work with.
func (c Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("STEPATTEND_API_URL must not be empty")
	}
	switch c.SessionBackend {
	case BackendSQLite:
		if c.DatabaseFile == "" {
			return fmt.Errorf("SESSION_DATABASE_FILE must not be empty for the sqlite backend")
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("SESSION_REDIS_URL is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q (want sqlite, redis or memory)", c.SessionBackend)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("API_RATE_LIMIT must not be negative")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "10s", "500ms")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are milliseconds
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	return defaultValue
}
