package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/denticare/clinic-ledger/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const retryDelay = 2 * time.Second

// Open connects to the configured database, retrying while the server comes
// up. The returned pool is the single storage dependency handed to services.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var open func(string) gorm.Dialector
	var dsn string
	switch cfg.Driver {
	case config.DriverSQLite:
		dsn = SQLiteDSN(cfg.SQLitePath)
		open = sqlite.Open
	case config.DriverPostgres:
		dsn = NormalizeDSN(cfg.DSN())
		open = postgres.Open
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}

	attempts := cfg.ConnectRetries
	if attempts < 1 {
		attempts = 1
	}
	var gdb *gorm.DB
	var err error
	for i := 1; i <= attempts; i++ {
		gdb, err = gorm.Open(open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logLevel),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		slog.Warn("database connection failed", "attempt", i, "of", attempts, "error", err)
		if i < attempts {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect database after %d attempts: %w", attempts, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// one writer at a time; also keeps in-memory databases alive on a single connection
		sqlDB.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping failed: %w", err)
	}
	slog.Info("database connected", "driver", cfg.Driver, "dsn", MaskDSN(dsn))
	return gdb, nil
}

// Dialect reports "postgres" or "sqlite".
func Dialect(gdb *gorm.DB) string {
	return gdb.Dialector.Name()
}

// Ping runs the lightweight health query used by /healthz.
func Ping(ctx context.Context, gdb *gorm.DB) error {
	return gdb.WithContext(ctx).Exec("SELECT 1").Error
}
