package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads configuration from the environment, applies defaults and
// validates the result.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom is Load with a custom variable lookup, for tests and tools that
// carry their own environment.
func LoadFrom(getenv func(string) string) (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem(), getenv); err != nil {
		return nil, errors.Wrap(err, "config load")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation")
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// loadStruct walks v and fills every field carrying an env tag.
func loadStruct(v reflect.Value, getenv func(string) string) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal, getenv); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		if envName == "" {
			continue
		}

		value := getenv(envName)
		if alt := field.Tag.Get("envAlt"); value == "" && alt != "" {
			value = getenv(alt)
		}

		if value == "" {
			if field.Tag.Get("required") == "true" {
				return errors.Newf("required environment variable %s is not set", envName)
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return errors.Wrapf(err, "invalid value for %s=%q", envName, value)
		}
	}

	return nil
}

// setField parses value into field according to the field's kind.
func setField(field reflect.Value, value string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrap(err, "invalid duration")
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid integer")
		}
		field.SetInt(n)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Wrap(err, "invalid boolean")
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return errors.Newf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		field.Set(reflect.ValueOf(items))

	default:
		return errors.Newf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks the configuration and reports every failure at once.
func (c *Config) Validate() error {
	var errs []string
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Sprintf(format, args...))
	}

	// Store
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			add("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
		if c.Database.MaxConns <= 0 {
			add("DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			add("DB_MIN_CONNS must be non-negative")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			add("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Database.MaxConns, c.Database.MinConns)
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			add("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	default:
		add("STORE_DRIVER (%q) must be one of: postgres, sqlite", c.Store.Driver)
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		add("SERVER_PORT (%d) must be 1-65535", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		add("SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		add("SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Import
	if c.Import.MaxFileSize <= 0 {
		add("IMPORT_MAX_FILE_SIZE must be positive")
	}
	if c.Import.MaxConcurrent <= 0 {
		add("IMPORT_MAX_CONCURRENT must be positive")
	}
	if c.Import.MaxWaitTime <= 0 {
		add("IMPORT_MAX_WAIT_TIME must be positive")
	}
	if c.Import.Timeout <= 0 {
		add("IMPORT_TIMEOUT must be positive")
	}

	// Rate limits
	if c.Rate.Enabled {
		if c.Rate.RequestsPerMinute <= 0 {
			add("RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		}
		if c.Rate.ImportLimit <= 0 {
			add("RATE_LIMIT_IMPORT must be positive when rate limiting is enabled")
		}
		if c.Rate.Burst <= 0 {
			add("RATE_LIMIT_BURST must be positive when rate limiting is enabled")
		}
	}

	// Security
	if c.Security.RequireAPIKey && len(c.Security.APIKeys) == 0 {
		add("REQUIRE_API_KEY is true but API_KEYS is empty; configure at least one API key or disable auth")
	}

	// Logging
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		add("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		add("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(errs) > 0 {
		return errors.Newf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// String returns a log-safe summary; the database URL and API keys are masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Server: {Addr: %q}, Store: {Driver: %q, SQLitePath: %q, AutoMigrate: %v}, "+
			"Database: {URL: [MASKED], MaxConns: %d, MinConns: %d}, "+
			"Import: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s}, "+
			"Rate: {Enabled: %v, RequestsPerMinute: %d, ImportLimit: %d}, "+
			"Security: {RequireAPIKey: %v, APIKeys: [%d MASKED]}, "+
			"Logging: {Level: %q, Format: %q}}",
		c.Server.Addr(), c.Store.Driver, c.Store.SQLitePath, c.Store.AutoMigrate,
		c.Database.MaxConns, c.Database.MinConns,
		c.Import.MaxFileSize, c.Import.MaxConcurrent, c.Import.Timeout,
		c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.ImportLimit,
		c.Security.RequireAPIKey, len(c.Security.APIKeys),
		c.Logging.Level, c.Logging.Format,
	)
}
