package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	HTTPAddr      string
	StaticDir     string
	StoreBackend  string
	MongoURI      string
	MongoDatabase string
	DatabaseURL   string
	RedisURL      string // Optional; process-local locks when empty
	LockTTL       time.Duration
	LockWait      time.Duration // Longest a write waits for a held subscriber lock
	StrictMDN     bool // Reject usage whose number differs from the subscriber's current one

	TelegramToken      string // Optional; the operator bot is disabled when empty
	OperatorTelegramID int64

	LogLevel        string
	Environment     string
	CronSpecMetrics string
	CronSpecDigest  string
}

// TelegramEnabled reports whether the operator bot should run.
func (c *AppConfig) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.HTTPAddr = getenvDefault("HTTP_ADDR", ":8080")
	cfg.StaticDir = getenvDefault("STATIC_DIR", "./static")

	cfg.StoreBackend = strings.ToLower(getenvDefault("STORE_BACKEND", BackendMongo))
	switch cfg.StoreBackend {
	case BackendMongo:
		cfg.MongoURI = os.Getenv("MONGO_URI")
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI is not set")
		}
		cfg.MongoDatabase = getenvDefault("MONGO_DATABASE", "usmob")
	case BackendPostgres:
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set")
		}
	case BackendMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: want mongo, postgres or memory", cfg.StoreBackend)
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.LockTTL, err = time.ParseDuration(getenvDefault("LOCK_TTL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_TTL: %w", err)
	}
	if cfg.LockTTL <= 0 {
		return nil, fmt.Errorf("LOCK_TTL must be positive")
	}
	cfg.LockWait, err = time.ParseDuration(getenvDefault("LOCK_WAIT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCK_WAIT: %w", err)
	}
	if cfg.LockWait <= 0 {
		return nil, fmt.Errorf("LOCK_WAIT must be positive")
	}

	cfg.StrictMDN, err = strconv.ParseBool(getenvDefault("USAGE_STRICT_MDN", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid USAGE_STRICT_MDN: %w", err)
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken != "" {
		operatorIDStr := os.Getenv("OPERATOR_TELEGRAM_ID")
		if operatorIDStr == "" {
			return nil, fmt.Errorf("OPERATOR_TELEGRAM_ID is not set")
		}
		cfg.OperatorTelegramID, err = strconv.ParseInt(operatorIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid OPERATOR_TELEGRAM_ID: %w", err)
		}
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.CronSpecMetrics = getenvDefault("CRON_SPEC_METRICS", "@every 1m")
	cfg.CronSpecDigest = getenvDefault("CRON_SPEC_DIGEST", "0 9 * * *") // Default: 9 AM daily

	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
