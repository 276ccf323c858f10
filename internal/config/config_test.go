package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		Server:   ServerConfig{Port: "8080", ReadTimeout: 15, WriteTimeout: 15, IdleTimeout: 60},
		Database: DatabaseConfig{Driver: DriverSQLite, SQLitePath: "./test.db", MaxOpenConns: 1},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errorString string
	}{
		{name: "valid sqlite config", mutate: func(*Config) {}},
		{
			name: "valid postgres config",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Driver: DriverPostgres, Host: "db", DBName: "clinic", User: "app", MaxOpenConns: 10}
			},
		},
		{
			name: "postgres with raw dsn only",
			mutate: func(c *Config) {
				c.Database = DatabaseConfig{Driver: DriverPostgres, RawDSN: "postgres://x@y/z", MaxOpenConns: 10}
			},
		},
		{
			name:        "invalid port - non-numeric",
			mutate:      func(c *Config) { c.Server.Port = "abc" },
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name:        "invalid port - out of range",
			mutate:      func(c *Config) { c.Server.Port = "70000" },
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name:        "unknown driver",
			mutate:      func(c *Config) { c.Database.Driver = "mysql" },
			errorString: "invalid DB_DRIVER 'mysql'",
		},
		{
			name:        "postgres missing host",
			mutate:      func(c *Config) { c.Database = DatabaseConfig{Driver: DriverPostgres, MaxOpenConns: 1} },
			errorString: "postgres requires",
		},
		{
			name:        "sqlite missing path",
			mutate:      func(c *Config) { c.Database.SQLitePath = " " },
			errorString: "sqlite requires SQLITE_PATH",
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.Log.Format = "xml" },
			errorString: "invalid LOG_FORMAT 'xml'",
		},
		{
			name:        "zero pool",
			mutate:      func(c *Config) { c.Database.MaxOpenConns = 0 },
			errorString: "invalid DB_MAX_OPEN_CONNS 0",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorString) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.errorString)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/clinic.db")
	t.Setenv("DB_DEBUG", "yes")
	t.Setenv("DB_SEED", "TRUE")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := Load()
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.DSN() != "/tmp/clinic.db" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if !cfg.Database.Debug || !cfg.App.Seed {
		t.Errorf("expected debug and seed enabled: %+v %+v", cfg.Database, cfg.App)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("bad int should fall back to default, got %d", cfg.Database.MaxOpenConns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestPostgresDSN(t *testing.T) {
	d := DatabaseConfig{Driver: DriverPostgres, Host: "h", Port: 5432, User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	if got := d.DSN(); got != "host=h port=5432 user=u password=p dbname=n sslmode=disable" {
		t.Errorf("DSN() = %s", got)
	}
	d.RawDSN = "postgres://override"
	if got := d.DSN(); got != "postgres://override" {
		t.Errorf("RawDSN not preferred: %s", got)
	}
}
