// Package config loads catalog service settings from environment variables,
// applies defaults and validates everything up front so a bad deployment
// fails at startup instead of on the first import.
package config

import (
	"net"
	"strconv"
	"time"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Store    StoreConfig
	Import   ImportConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`
	Port int    `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including draining imports.
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is applied by middleware to every non-import route.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL pool settings. URL is only required when
// the postgres driver is selected.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL" envAlt:"DB_URL"`
	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// StoreConfig selects the product store.
type StoreConfig struct {
	// Driver is postgres or sqlite.
	Driver string `env:"STORE_DRIVER" default:"postgres"`

	// SQLitePath is the database file for the sqlite driver; ":memory:" works
	// for throwaway runs.
	SQLitePath string `env:"SQLITE_PATH" default:"catalog.db"`

	// AutoMigrate creates tables on startup.
	AutoMigrate bool `env:"STORE_AUTO_MIGRATE" default:"true"`
}

// ImportConfig holds CSV import settings.
type ImportConfig struct {
	// MaxFileSize caps the request body of an import, in bytes (default: 20MB).
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" default:"20971520"`

	MaxConcurrent int           `env:"IMPORT_MAX_CONCURRENT" default:"5"`
	MaxWaitTime   time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"30s"`

	// Timeout bounds a single import, parse and store work included.
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"5m"`
}

// RateLimitConfig holds per-client request budgets.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
	Burst             int  `env:"RATE_LIMIT_BURST" default:"20"`

	// ImportLimit is requests per minute for import and batch mutation routes.
	ImportLimit int `env:"RATE_LIMIT_IMPORT" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies lists CIDRs whose X-Forwarded-For is believed.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey enforces X-API-Key on every /api route.
	RequireAPIKey bool     `env:"REQUIRE_API_KEY" default:"false"`
	APIKeys       []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" default:"info"`
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
