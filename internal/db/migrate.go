package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded SQL migrations for the pool's dialect. The
// schema is versioned only here; nothing probes tables at runtime.
//
// The migrate instance is never closed: closing it would close the shared
// pool. Only the source and the dedicated postgres connection are released.
func Migrate(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	dialect := Dialect(gdb)

	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("open %s migrations: %w", dialect, err)
	}
	defer src.Close()

	var driver database.Driver
	switch dialect {
	case "sqlite":
		driver, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	case "postgres":
		conn, cerr := sqlDB.Conn(ctx)
		if cerr != nil {
			return fmt.Errorf("acquire migration connection: %w", cerr)
		}
		defer conn.Close()
		driver, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
	default:
		return fmt.Errorf("no migrations for dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect, driver)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is dirty at migration version %d", version)
	}
	slog.Info("migrations applied", "dialect", dialect, "version", version)
	return nil
}
