package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported key-value backends.
const (
	DriverMemory   = "memory"
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
	DriverR2       = "r2"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	AllowedOrigin string
	// Key-value backend
	KVDriver   string
	BadgerPath string
	// DB Config
	DBUrl             string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2Prefix          string
	R2Timeout         time.Duration
	// Sessions
	SessionTTL             time.Duration
	SessionCleanupInterval time.Duration
	// Business Rules
	ComparisonLimit  int
	CredentialSecret string
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
}

// LoadConfig reads the environment (optionally seeded from a .env file) and validates it.
func LoadConfig() (*Config, error) {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env for local dev; containers rely on real env vars.
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the current process environment without loading files.
func FromEnv() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),

		KVDriver:   getEnv("KV_DRIVER", DriverMemory),
		BadgerPath: getEnv("BADGER_PATH", "./data/badger"),

		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2Prefix:          getEnv("R2_PREFIX", "storefront/"),
		R2Timeout:         getDurationEnv("R2_TIMEOUT", 10*time.Second),

		// Sessions idle out of memory after 30m; state stays in the backend.
		SessionTTL:             getDurationEnv("SESSION_TTL", 30*time.Minute),
		SessionCleanupInterval: getDurationEnv("SESSION_CLEANUP_INTERVAL", 10*time.Minute),

		ComparisonLimit:  getIntEnv("COMPARISON_LIMIT", 4),
		CredentialSecret: getEnv("CREDENTIAL_SECRET", ""),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),
	}
}

func (c *Config) Validate() error {
	switch c.KVDriver {
	case DriverMemory:
	case DriverBadger:
		if c.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required for the %s driver", DriverBadger)
		}
	case DriverPostgres:
		if c.DBUrl == "" {
			return fmt.Errorf("DB_DSN is required for the %s driver", DriverPostgres)
		}
	case DriverR2:
		if c.R2AccountID == "" || c.R2BucketName == "" {
			return fmt.Errorf("R2_ACCOUNT_ID and R2_BUCKET_NAME are required for the %s driver", DriverR2)
		}
	default:
		return fmt.Errorf("unknown KV_DRIVER %q", c.KVDriver)
	}

	if c.ComparisonLimit < 1 {
		return fmt.Errorf("COMPARISON_LIMIT must be at least 1, got %d", c.ComparisonLimit)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.CredentialSecret == "" && c.Env == "production" {
		log.Println("WARNING: CREDENTIAL_SECRET not set, stored tokens are decoded without signature checks.")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}
