// Package logging configures slog and carries a per-request logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/denticare/clinic-ledger/internal/config"
)

// Keys shared across log lines.
const (
	KeyComponent = "component"
	KeyRequestID = "request_id"
	KeyError     = "error"
)

type ctxKey struct{}

// New builds the process logger from cfg.
func New(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Component tags a logger with the subsystem that owns it.
func Component(l *slog.Logger, name string) *slog.Logger {
	return l.With(KeyComponent, name)
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or slog.Default outside a request.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
