package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the archive service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"archive-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"ARCHIVE_API_PORT" envDefault:"8290"`
	LogLevel        string        `env:"ARCHIVE_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Photo source: "api" reads the catalog backend over HTTP, "database" reads its tables.
	PhotoSource        string        `env:"ARCHIVE_PHOTO_SOURCE" envDefault:"api"`
	PhotoAPIURL        string        `env:"ARCHIVE_PHOTO_API_URL" envDefault:"http://localhost:8080/api"`
	PhotoAPITimeout    time.Duration `env:"ARCHIVE_PHOTO_API_TIMEOUT" envDefault:"10s"`
	CatalogTimezone    string        `env:"ARCHIVE_CATALOG_TIMEZONE" envDefault:"UTC"`
	LabelLocale        string        `env:"ARCHIVE_LABEL_LOCALE" envDefault:"en_US"`
	DBPostgresqlDSN    string        `env:"DB_POSTGRESQL_DSN"`
	DBMaxIdleConns     int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	DBMaxOpenConns     int           `env:"DB_MAX_OPEN_CONNS" envDefault:"5"`
	DBConnLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	ViewIdleTTL        time.Duration `env:"ARCHIVE_VIEW_IDLE_TTL" envDefault:"2h"`
	JanitorInterval    time.Duration `env:"ARCHIVE_JANITOR_INTERVAL" envDefault:"1m"`
	ArchiveNamePrefix  string        `env:"ARCHIVE_NAME_PREFIX" envDefault:"photos"`
	OriginalKeyPrefix  string        `env:"ARCHIVE_ORIGINAL_KEY_PREFIX" envDefault:"original"`
	BundleKeyPrefix    string        `env:"ARCHIVE_BUNDLE_KEY_PREFIX" envDefault:"bundles"`
	BundleTTL          time.Duration `env:"ARCHIVE_BUNDLE_TTL" envDefault:"1h"`
	HandleMaxAge       time.Duration `env:"ARCHIVE_HANDLE_MAX_AGE" envDefault:"10m"`
	MaxObjectBytes     int64         `env:"ARCHIVE_MAX_OBJECT_BYTES" envDefault:"52428800"`
	ObjectFetchTimeout time.Duration `env:"ARCHIVE_OBJECT_FETCH_TIMEOUT" envDefault:"30s"`

	// Server-assisted bundling endpoint. Empty means every export is assembled locally.
	BundlerURL     string        `env:"ARCHIVE_BUNDLER_URL"`
	BundlerTimeout time.Duration `env:"ARCHIVE_BUNDLER_TIMEOUT" envDefault:"60s"`

	// Storage Backend Selection
	StorageBackend string `env:"ARCHIVE_STORAGE_BACKEND" envDefault:"s3"` // Options: "s3" or "local"

	// Local Storage Configuration
	LocalStoragePath    string `env:"ARCHIVE_LOCAL_STORAGE_PATH"`
	LocalStorageBaseURL string `env:"ARCHIVE_LOCAL_STORAGE_BASE_URL"` // e.g. "http://localhost:8290/v1/files"

	// S3 / R2 Storage Configuration
	S3Endpoint     string        `env:"ARCHIVE_S3_ENDPOINT"`
	S3Region       string        `env:"ARCHIVE_S3_REGION" envDefault:"auto"`
	S3Bucket       string        `env:"ARCHIVE_S3_BUCKET" envDefault:"images"`
	S3AccessKeyID  string        `env:"ARCHIVE_S3_ACCESS_KEY_ID"`
	S3SecretKey    string        `env:"ARCHIVE_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool          `env:"ARCHIVE_S3_USE_PATH_STYLE" envDefault:"true"`
	S3PresignTTL   time.Duration `env:"ARCHIVE_S3_PRESIGN_TTL" envDefault:"60s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.BundlerURL = strings.TrimSpace(cfg.BundlerURL)
	cfg.ArchiveNamePrefix = strings.TrimSpace(cfg.ArchiveNamePrefix)
	if cfg.ArchiveNamePrefix == "" {
		cfg.ArchiveNamePrefix = "photos"
	}
	if cfg.MaxObjectBytes <= 0 {
		cfg.MaxObjectBytes = 50 * 1024 * 1024
	}
	if cfg.S3PresignTTL <= 0 {
		cfg.S3PresignTTL = time.Minute
	}
	if (cfg.S3AccessKeyID == "") != (cfg.S3SecretKey == "") {
		return nil, fmt.Errorf("ARCHIVE_S3_ACCESS_KEY_ID and ARCHIVE_S3_SECRET_ACCESS_KEY must be set together")
	}
	if cfg.UsesDatabaseSource() && strings.TrimSpace(cfg.DBPostgresqlDSN) == "" {
		return nil, fmt.Errorf("DB_POSTGRESQL_DSN is required when ARCHIVE_PHOTO_SOURCE is database")
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// Location resolves the catalog time zone used for calendar buckets.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.CatalogTimezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid ARCHIVE_CATALOG_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

// UsesDatabaseSource reports whether photos are read straight from the catalog database.
func (c *Config) UsesDatabaseSource() bool {
	return strings.ToLower(strings.TrimSpace(c.PhotoSource)) == "database"
}

// HasStaticCredentials reports whether S3 keys were supplied explicitly.
// Without them the AWS default credential chain is used.
func (c *Config) HasStaticCredentials() bool {
	return c.S3AccessKeyID != "" && c.S3SecretKey != ""
}

// IsLocalStorage returns true if local storage backend is configured.
func (c *Config) IsLocalStorage() bool {
	return strings.ToLower(strings.TrimSpace(c.StorageBackend)) == "local"
}

// IsS3Storage returns true if S3 storage backend is configured.
func (c *Config) IsS3Storage() bool {
	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	return backend == "" || backend == "s3"
}
