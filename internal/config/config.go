package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

// Archive drivers. An empty driver disables server-side export archives.
const (
	ArchiveDriverS3    = "s3"
	ArchiveDriverMinIO = "minio"
)

// Config holds all configuration for the application
type Config struct {
	// Document store
	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	// Auth0
	Auth0Domain   string
	Auth0Audience string

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Localisation
	DefaultLanguage string

	// Voice interpretation rate limit per tenant
	VoiceRateLimit float64
	VoiceBurst     int

	// Export archive storage
	ArchiveDriver string
	ArchiveURLTTL time.Duration
	S3            S3Config
	MinIO         MinIOConfig
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
}

// MinIOConfig holds MinIO configuration
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "data/farmbook.db"),
		Auth0Domain:     getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:   getEnv("AUTH0_AUDIENCE", ""),
		Port:            getEnv("PORT", "8080"),
		CORSOrigins:     strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),
		Env:             getEnv("ENV", "development"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		VoiceRateLimit:  getEnvFloat("VOICE_RATE_LIMIT", 2),
		VoiceBurst:      getEnvInt("VOICE_BURST", 10),
		ArchiveDriver:   strings.ToLower(getEnv("ARCHIVE_DRIVER", "")),
		ArchiveURLTTL:   getEnvDuration("ARCHIVE_URL_TTL", 15*time.Minute),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", "farmbook-exports"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("MINIO_SECRET_KEY", ""),
			BucketName:      getEnv("MINIO_BUCKET", "farmbook-exports"),
			UseSSL:          getEnv("MINIO_USE_SSL", "false") == "true",
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of postgres, sqlite, memory (got %q)", c.StoreDriver)
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if c.VoiceRateLimit <= 0 || c.VoiceBurst <= 0 {
		return fmt.Errorf("VOICE_RATE_LIMIT and VOICE_BURST must be positive")
	}
	switch c.ArchiveDriver {
	case "", ArchiveDriverS3, ArchiveDriverMinIO:
	default:
		return fmt.Errorf("ARCHIVE_DRIVER must be s3, minio or empty (got %q)", c.ArchiveDriver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
