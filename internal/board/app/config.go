package app

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./board.db)
	DatabaseURL    string // Required for postgres: pgx connection string

	RedisURL  string // Optional: redis:// URL for change publication; unset disables it
	Namespace string // Optional: channel namespace shared with the viewers (default: default)

	JWTSecret string // Optional: HS256 secret; unset disables bearer auth
	JWTIssuer string // Optional: expected iss claim (default: consultboard)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseDriver:      getEnvOrDefault("BOARD_DATABASE_DRIVER", "sqlite"),
		DatabaseFile:        getEnvOrDefault("BOARD_DATABASE_FILE", "board.db"),
		DatabaseURL:         os.Getenv("BOARD_DATABASE_URL"),
		RedisURL:            os.Getenv("BOARD_REDIS_URL"),
		Namespace:           getEnvOrDefault("BOARD_NAMESPACE", "default"),
		JWTSecret:           os.Getenv("BOARD_JWT_SECRET"),
		JWTIssuer:           getEnvOrDefault("BOARD_JWT_ISSUER", "consultboard"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate catches settings that would only fail once the server is up.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("BOARD_DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown BOARD_DATABASE_DRIVER %q (want sqlite or postgres)", c.DatabaseDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
