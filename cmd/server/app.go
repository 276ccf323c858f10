package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/denticare/clinic-ledger/internal/config"
	"github.com/denticare/clinic-ledger/internal/logging"
	"github.com/denticare/clinic-ledger/internal/server"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App owns the HTTP server and its lifecycle.
type App struct {
	srv *http.Server
	log *slog.Logger
	dev bool
}

// NewApp creates a new application with all routes configured.
func NewApp(cfg *config.Config, db *gorm.DB, logger *slog.Logger) (*App, error) {
	handler, err := server.New(db, logger)
	if err != nil {
		return nil, err
	}
	return &App{
		srv: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
			ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
		},
		log: logging.Component(logger, "http"),
		dev: cfg.App.Dev,
	}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		a.log.Info("server starting", "addr", a.srv.Addr, "dev", a.dev)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info("server stopped gracefully")
	return nil
}
