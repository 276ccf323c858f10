// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig selects the storage dialect and its connection settings.
// RawDSN, when set, wins over the individual PostgreSQL fields.
type DatabaseConfig struct {
	Driver         string
	RawDSN         string
	Host           string
	Port           int
	User           string
	Password       string
	DBName         string
	SSLMode        string
	SQLitePath     string
	Debug          bool
	MaxOpenConns   int
	ConnectRetries int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
	Seed       bool
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// DSN returns the connection string for the configured driver. PostgreSQL
// uses key=value format.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	if d.RawDSN != "" {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			RawDSN:         getEnv("DATABASE_DSN", ""),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "denticare"),
			Password:       getEnv("DB_PASSWORD", "denticare"),
			DBName:         getEnv("DB_NAME", "denticare"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			SQLitePath:     getEnv("SQLITE_PATH", "denticare.db"),
			Debug:          getEnvBool("DB_DEBUG", false),
			MaxOpenConns:   getEnvInt("DB_MAX_OPEN_CONNS", 10),
			ConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 5),
		},
		App: AppConfig{
			Dev:        getEnvBool("DEV", true),
			Migrations: getEnvBool("MIGRATIONS", true),
			Seed:       getEnvBool("DB_SEED", false),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Server.Port)
	if err != nil {
		return fmt.Errorf("invalid port '%s': must be a number", c.Server.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.IdleTimeout <= 0 {
		return errors.New("server timeouts must be positive")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.RawDSN == "" && (c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "") {
			return errors.New("postgres requires DATABASE_DSN or DB_HOST, DB_NAME and DB_USER")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Database.SQLitePath) == "" {
			return errors.New("sqlite requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER '%s': must be 'postgres' or 'sqlite'", c.Database.Driver)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("invalid DB_MAX_OPEN_CONNS %d: must be at least 1", c.Database.MaxOpenConns)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL '%s'", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT '%s': must be 'text' or 'json'", c.Log.Format)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(value)
	return value == "1" || value == "true" || value == "yes"
}
