// Package config loads datalens settings from environment variables.
// Every field has a default so the service starts with no configuration;
// Validate reports all problems at once so a bad deploy fails on the first run.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	SQLite   SQLiteConfig
	Upload   UploadConfig
	Render   RenderConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	SQL      SQLConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8000)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8000"`

	// ReadTimeout bounds reading the request, upload body included (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout bounds writing the response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is how long in-flight requests get on SIGTERM (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds the primary PostgreSQL row store settings.
// An empty URL leaves the embedded SQLite store as the only engine.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// PingTimeout bounds the reachability probe run before each store call (default: 2s)
	PingTimeout time.Duration `env:"DB_PING_TIMEOUT" default:"2s"`
}

// SQLiteConfig holds the embedded fallback store settings.
type SQLiteConfig struct {
	// Path is the database file (default: datalens.db)
	Path string `env:"SQLITE_PATH" default:"datalens.db"`

	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" default:"5s"`
}

// UploadConfig holds dataset upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// HeadRows is how many rows the head action shows (default: 5)
	HeadRows int `env:"UPLOAD_HEAD_ROWS" default:"5"`
}

// RenderConfig controls chart rendering.
type RenderConfig struct {
	Width  int `env:"RENDER_WIDTH" default:"1000"`
	Height int `env:"RENDER_HEIGHT" default:"600"`

	// MaxConcurrent caps simultaneous renders (default: 4)
	MaxConcurrent int `env:"RENDER_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long a request waits for a render slot (default: 10s)
	MaxWaitTime time.Duration `env:"RENDER_MAX_WAIT_TIME" default:"10s"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// CORSOrigins is a comma-separated origin allow list (default: *)
	CORSOrigins []string `env:"CORS_ORIGINS" default:"*"`
}

// SQLConfig gates the row mirror and the free-form SQL endpoint.
type SQLConfig struct {
	// RowStoreEnabled turns on mirroring uploads into uploaded_data (default: true)
	RowStoreEnabled bool `env:"ROW_STORE_ENABLED" default:"true"`

	// ExecEnabled exposes /execute-sql. Statements run unvalidated (default: true)
	ExecEnabled bool `env:"SQL_EXEC_ENABLED" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HasPostgres reports whether a primary PostgreSQL engine is configured.
func (c *DatabaseConfig) HasPostgres() bool {
	return c.URL != ""
}
