// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Pricing source backends
const (
	SourceMemory    = "memory"
	SourceHTTP      = "http"
	SourceDynamoDB  = "dynamodb"
	SourceRedis     = "redis"
	SourcePostgres  = "postgres"
	SourceFirestore = "firestore"
)

type Config struct {
	HTTP struct {
		Port       string
		PathPrefix string
	}
	Log struct {
		Level slog.Level
		File  string
	}
	Pricing struct {
		Source          string
		URL             string
		CacheTTL        time.Duration
		RefreshInterval time.Duration
		FetchTimeout    time.Duration
	}
	AWS struct {
		Region string
	}
	DynamoDB struct {
		Table        string
		Key          string
		SeedDefaults bool
	}
	Redis struct {
		URL string
		Key string
	}
	Postgres struct {
		DSN       string
		PricingID string
	}
	Firestore struct {
		ProjectID       string
		CredentialsFile string
		Document        string
	}
	Maps struct {
		APIKey          string
		DispatchAddress string
		DispatchLat     *float64
		DispatchLng     *float64
	}
	Kinesis struct {
		QuoteEventsStream string
	}
}

func Load() (Config, error) {
	var cfg Config
	cfg.HTTP.Port = getEnv("PORT", "8080")
	cfg.HTTP.PathPrefix = os.Getenv("PATH_PREFIX")

	cfg.Log.Level = getEnvLevel("LOG_LEVEL", slog.LevelInfo)
	cfg.Log.File = os.Getenv("LOG_FILE")

	cfg.Pricing.Source = strings.ToLower(getEnv("PRICING_SOURCE", SourceMemory))
	cfg.Pricing.URL = os.Getenv("PRICING_URL")
	cfg.Pricing.CacheTTL = getEnvDuration("PRICING_CACHE_TTL", "5m")
	cfg.Pricing.RefreshInterval = getEnvDuration("PRICING_REFRESH_INTERVAL", "0s")
	cfg.Pricing.FetchTimeout = getEnvDuration("PRICING_FETCH_TIMEOUT", "5s")

	cfg.AWS.Region = getEnv("AWS_REGION", "us-west-2")
	cfg.DynamoDB.Table = getEnv("DYNAMODB_PRICING_TABLE", "pricing-settings")
	cfg.DynamoDB.Key = getEnv("DYNAMODB_PRICING_KEY", "current")
	cfg.DynamoDB.SeedDefaults = getEnv("DYNAMODB_SEED_DEFAULTS", "false") == "true"

	cfg.Redis.URL = os.Getenv("REDIS_URL")
	cfg.Redis.Key = getEnv("REDIS_PRICING_KEY", "pricing:current")

	cfg.Postgres.DSN = os.Getenv("POSTGRES_DSN")
	cfg.Postgres.PricingID = getEnv("POSTGRES_PRICING_ID", "default")

	cfg.Firestore.ProjectID = os.Getenv("FIREBASE_PROJECT_ID")
	cfg.Firestore.CredentialsFile = os.Getenv("FIREBASE_CREDENTIALS_FILE")
	cfg.Firestore.Document = getEnv("FIRESTORE_PRICING_DOC", "settings/pricing")

	cfg.Maps.APIKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Maps.DispatchAddress = os.Getenv("DISPATCH_ADDRESS")
	cfg.Maps.DispatchLat = getEnvFloat("DISPATCH_LAT")
	cfg.Maps.DispatchLng = getEnvFloat("DISPATCH_LNG")

	cfg.Kinesis.QuoteEventsStream = os.Getenv("KINESIS_QUOTE_EVENTS_STREAM")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks that the selected pricing source has what it needs
func (c Config) validate() error {
	switch c.Pricing.Source {
	case SourceMemory, SourceDynamoDB, SourceFirestore:
	case SourceHTTP:
		if c.Pricing.URL == "" {
			return fmt.Errorf("PRICING_URL is required for pricing source %q", c.Pricing.Source)
		}
	case SourceRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for pricing source %q", c.Pricing.Source)
		}
	case SourcePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for pricing source %q", c.Pricing.Source)
		}
	default:
		return fmt.Errorf("unknown PRICING_SOURCE %q", c.Pricing.Source)
	}
	if c.Pricing.FetchTimeout <= 0 {
		return fmt.Errorf("PRICING_FETCH_TIMEOUT must be positive")
	}
	if (c.Maps.DispatchLat == nil) != (c.Maps.DispatchLng == nil) {
		return fmt.Errorf("DISPATCH_LAT and DISPATCH_LNG must be set together")
	}
	if c.Pricing.RefreshInterval < 0 {
		return fmt.Errorf("PRICING_REFRESH_INTERVAL must not be negative")
	}
	return nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration gets duration from environment variable
func getEnvDuration(key, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("Invalid duration, using default", "key", key, "provided", value, "default", defaultValue, "error", err)
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

// getEnvFloat returns nil when key is unset or not a number
func getEnvFloat(key string) *float64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("Invalid number, ignoring", "key", key, "provided", value, "error", err)
		return nil
	}
	return &f
}

func getEnvLevel(key string, defaultValue slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		slog.Warn("Invalid log level, using default", "key", key, "provided", value, "default", defaultValue)
		return defaultValue
	}
	return level
}
