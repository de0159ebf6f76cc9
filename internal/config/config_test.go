package config

import (
	"strings"
	"testing"
	"time"
)

// envMap turns a map into a getenv function.
func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Store.Driver != DriverPostgres {
		t.Errorf("Store.Driver = %q, want %q", cfg.Store.Driver, DriverPostgres)
	}
	if !cfg.Store.AutoMigrate {
		t.Error("Store.AutoMigrate should default to true")
	}
	if cfg.Import.MaxConcurrent != 5 {
		t.Errorf("Import.MaxConcurrent = %d, want 5", cfg.Import.MaxConcurrent)
	}
	if cfg.Import.MaxFileSize != 20971520 {
		t.Errorf("Import.MaxFileSize = %d, want 20971520", cfg.Import.MaxFileSize)
	}
	if cfg.Import.Timeout != 5*time.Minute {
		t.Errorf("Import.Timeout = %v, want 5m", cfg.Import.Timeout)
	}
	if cfg.Rate.RequestsPerMinute != 120 || cfg.Rate.ImportLimit != 10 {
		t.Errorf("Rate = %+v", cfg.Rate)
	}
	if cfg.Security.RequireAPIKey {
		t.Error("Security.RequireAPIKey should default to false")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"DATABASE_URL":          "postgres://localhost/test",
		"SERVER_PORT":           "9090",
		"IMPORT_MAX_CONCURRENT": "10",
		"IMPORT_TIMEOUT":        "90s",
		"LOG_LEVEL":             "debug",
		"STORE_AUTO_MIGRATE":    "false",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Import.MaxConcurrent != 10 {
		t.Errorf("Import.MaxConcurrent = %d, want 10", cfg.Import.MaxConcurrent)
	}
	if cfg.Import.Timeout != 90*time.Second {
		t.Errorf("Import.Timeout = %v, want 90s", cfg.Import.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Store.AutoMigrate {
		t.Error("Store.AutoMigrate should be false")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{"DB_URL": "postgres://localhost/alttest"}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Database.URL != "postgres://localhost/alttest" {
		t.Errorf("Database.URL = %q", cfg.Database.URL)
	}
}

func TestLoad_PostgresRequiresURL(t *testing.T) {
	_, err := LoadFrom(envMap(nil))
	if err == nil {
		t.Fatal("expected error without DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL is required") {
		t.Errorf("error = %v", err)
	}
}

func TestLoad_SQLiteNeedsNoURL(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"STORE_DRIVER": "sqlite",
		"SQLITE_PATH":  ":memory:",
	}))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Store.SQLitePath != ":memory:" {
		t.Errorf("SQLitePath = %q", cfg.Store.SQLitePath)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad int", map[string]string{"SERVER_PORT": "eighty"}, "SERVER_PORT"},
		{"bad duration", map[string]string{"IMPORT_TIMEOUT": "soon"}, "IMPORT_TIMEOUT"},
		{"bad bool", map[string]string{"RATE_LIMIT_ENABLED": "maybe"}, "RATE_LIMIT_ENABLED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.env["DATABASE_URL"] = "postgres://localhost/test"
			_, err := LoadFrom(envMap(tt.env))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %s", err, tt.want)
			}
		})
	}
}

func TestLoad_SliceParsing(t *testing.T) {
	cfg, err := LoadFrom(envMap(map[string]string{
		"DATABASE_URL":    "postgres://localhost/test",
		"TRUSTED_PROXIES": " 10.0.0.0/8 , ,192.168.0.0/16",
		"API_KEYS":        "k1,k2",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Security.TrustedProxies) != 2 || cfg.Security.TrustedProxies[1] != "192.168.0.0/16" {
		t.Errorf("TrustedProxies = %v", cfg.Security.TrustedProxies)
	}
	if len(cfg.Security.APIKeys) != 2 {
		t.Errorf("APIKeys = %v", cfg.Security.APIKeys)
	}
}

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080, ShutdownTimeout: time.Second},
		Database: DatabaseConfig{URL: "postgres://x", MaxConns: 10, MinConns: 1},
		Store:    StoreConfig{Driver: DriverPostgres},
		Import:   ImportConfig{MaxFileSize: 1, MaxConcurrent: 1, MaxWaitTime: time.Second, Timeout: time.Second},
		Rate:     RateLimitConfig{Enabled: true, RequestsPerMinute: 1, ImportLimit: 1, Burst: 1},
		Logging:  LoggingConfig{Level: "info", Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "SERVER_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "SERVER_PORT"},
		{"max below min conns", func(c *Config) { c.Database.MinConns = 50 }, "DB_MAX_CONNS"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "STORE_DRIVER"},
		{"sqlite without path", func(c *Config) { c.Store = StoreConfig{Driver: DriverSQLite} }, "SQLITE_PATH"},
		{"zero import concurrency", func(c *Config) { c.Import.MaxConcurrent = 0 }, "IMPORT_MAX_CONCURRENT"},
		{"rate limit zero", func(c *Config) { c.Rate.RequestsPerMinute = 0 }, "RATE_LIMIT_REQUESTS_PER_MINUTE"},
		{"rate limit disabled ignores zero", func(c *Config) { c.Rate = RateLimitConfig{} }, ""},
		{"api key required without keys", func(c *Config) { c.Security.RequireAPIKey = true }, "API_KEYS"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_ReportsAllFailures(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"SERVER_PORT", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s: %v", want, err)
		}
	}
}

func TestConfig_StringMasksSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Database.URL = "postgres://user:hunter2@db/catalog"
	cfg.Security.APIKeys = []string{"secret-key"}

	s := cfg.String()
	if strings.Contains(s, "hunter2") || strings.Contains(s, "secret-key") {
		t.Errorf("String() leaks secrets: %s", s)
	}
}

func TestServerConfig_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 9000, ":9000"},
		{"::1", 80, "[::1]:80"},
	}
	for _, tt := range tests {
		c := ServerConfig{Host: tt.host, Port: tt.port}
		if got := c.Addr(); got != tt.want {
			t.Errorf("Addr(%q, %d) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}
