// Package config provides centralized configuration management for the catalog
// server. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on
// misconfiguration.
package config

import (
	"strconv"
	"strings"
	"time"
)

// Config holds all server configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Storage  StorageConfig
	Notify   NotifyConfig
	Logging  LoggingConfig
	Audit    AuditConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"120s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including waiting for an
	// in-flight import (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for ordinary requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string, or "memory://" for the
	// in-process store (required)
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// Migrate applies the embedded schema on startup (default: true)
	Migrate bool `env:"DB_MIGRATE" default:"true"`
}

// InMemory reports whether the in-process store was requested.
func (c *DatabaseConfig) InMemory() bool {
	return strings.HasPrefix(c.URL, "memory://")
}

// ImportConfig holds batch import and PDF upload settings.
type ImportConfig struct {
	// MaxBibFileSize is the maximum accepted .bib file size in bytes (default: 10MB)
	MaxBibFileSize int64 `env:"IMPORT_MAX_BIB_SIZE" default:"10485760"`

	// MaxPDFSize is the maximum accepted PDF size in bytes (default: 50MB)
	MaxPDFSize int64 `env:"IMPORT_MAX_PDF_SIZE" default:"52428800"`

	// MaxConcurrentUploads bounds parallel PDF uploads (default: 5)
	MaxConcurrentUploads int `env:"IMPORT_MAX_CONCURRENT_UPLOADS" default:"5"`

	// MaxWaitTime is how long a PDF upload waits for a slot (default: 30s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a whole batch import (default: 10m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"10m"`

	// VenuesFile optionally replaces the built-in venue catalogue (YAML)
	VenuesFile string `env:"IMPORT_VENUES_FILE"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for upload endpoints (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds authentication and proxy settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// JWTSecret signs admin tokens (required, at least 16 bytes)
	JWTSecret string `env:"JWT_SECRET" envAlt:"SECRET_KEY" required:"true"`

	// TokenTTL is the lifetime of issued tokens (default: 24h)
	TokenTTL time.Duration `env:"JWT_TOKEN_TTL" default:"24h"`

	// AdminUsername and AdminPassword seed an administrator at startup.
	// Seeding is skipped when the password is empty.
	AdminUsername string `env:"ADMIN_USERNAME" default:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// StorageConfig selects where article PDFs are kept.
type StorageConfig struct {
	// Backend is "disk" or "s3" (default: disk)
	Backend string `env:"STORAGE_BACKEND" default:"disk"`

	// Dir is the root directory for the disk backend (default: ./uploads)
	Dir string `env:"STORAGE_DIR" default:"uploads"`

	S3Bucket   string `env:"STORAGE_S3_BUCKET"`
	S3Prefix   string `env:"STORAGE_S3_PREFIX" default:"pdfs"`
	S3Region   string `env:"STORAGE_S3_REGION" envAlt:"AWS_REGION" default:"us-east-1"`
	S3Endpoint string `env:"STORAGE_S3_ENDPOINT"`
}

// NotifyConfig selects how new-Article notices reach author subscribers.
type NotifyConfig struct {
	// Backend is "log" or "ses" (default: log)
	Backend string `env:"NOTIFY_BACKEND" default:"log"`

	// From is the sender address for the ses backend
	From string `env:"NOTIFY_FROM"`

	SESRegion   string `env:"NOTIFY_SES_REGION" envAlt:"AWS_REGION" default:"us-east-1"`
	SESEndpoint string `env:"NOTIFY_SES_ENDPOINT"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// AuditConfig holds audit log retention settings.
type AuditConfig struct {
	// RetentionDays is how long audit entries are kept (default: 365)
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"365"`

	// CheckInterval is how often the purge job runs (default: 24h)
	CheckInterval time.Duration `env:"AUDIT_CHECK_INTERVAL" default:"24h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
