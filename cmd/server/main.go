package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/denticare/clinic-ledger/internal/config"
	"github.com/denticare/clinic-ledger/internal/db"
	"github.com/denticare/clinic-ledger/internal/logging"
	"github.com/joho/godotenv"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", logging.KeyError, err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", logging.KeyError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		defer sqlDB.Close()
	}

	if *migrateOnlyFlag {
		if err := db.Migrate(ctx, dbConn); err != nil {
			return err
		}
		logger.Info("migrations completed successfully")
		return nil
	}
	if *seedOnlyFlag {
		if err := db.Seed(ctx, dbConn); err != nil {
			return err
		}
		logger.Info("seeding completed successfully")
		return nil
	}

	// Run migrations on startup if enabled
	if cfg.App.Migrations {
		if err := db.Migrate(ctx, dbConn); err != nil {
			return err
		}
		logger.Info("migrations completed")
	}
	if cfg.App.Seed {
		if err := db.Seed(ctx, dbConn); err != nil {
			return err
		}
	}

	app, err := NewApp(cfg, dbConn, logger)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
