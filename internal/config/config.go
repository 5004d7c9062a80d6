package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ServiceName    = "go-pos-ledger"
	ServiceVersion = "0.1.0"
)

const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Env      string
	Port     string
	ShopName string

	JWTSecret string
	JWTTTL    time.Duration

	SnapshotDriver   string
	SnapshotPath     string
	SnapshotInterval time.Duration
	DatabaseURL      string
	SQLiteDSN        string

	AuditBuffer     int
	AuditMemorySize int

	KafkaBroker     string
	KafkaAuditTopic string

	OtelEndpoint   string
	OtelAuthHeader string
}

// Load reads .env when present, then the environment, with defaults for
// everything except what the chosen snapshot driver needs.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "3000"),
		ShopName:        getEnv("SHOP_NAME", "Boutique"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SnapshotDriver:  getEnv("SNAPSHOT_DRIVER", DriverFile),
		SnapshotPath:    getEnv("SNAPSHOT_PATH", "data/ledger.json"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLiteDSN:       getEnv("SQLITE_DSN", "data/ledger.db"),
		KafkaBroker:     os.Getenv("KAFKA_BROKER"),
		KafkaAuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "pos.audit"),
		OtelEndpoint:    os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader:  os.Getenv("OTEL_AUTH_HEADER"),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SnapshotInterval, err = getDuration("SNAPSHOT_INTERVAL", time.Minute); err != nil {
		return nil, err
	}
	if cfg.AuditBuffer, err = getInt("AUDIT_BUFFER", 256); err != nil {
		return nil, err
	}
	if cfg.AuditMemorySize, err = getInt("AUDIT_MEMORY_SIZE", 1000); err != nil {
		return nil, err
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("invalid PORT value %q", cfg.Port)
	}

	switch cfg.SnapshotDriver {
	case DriverFile, DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unknown SNAPSHOT_DRIVER %q", cfg.SnapshotDriver)
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-in-production"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, v, err)
	}
	return n, nil
}
