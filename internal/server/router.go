package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/denticare/clinic-ledger/httpx"
	"github.com/denticare/clinic-ledger/internal/db"
	"github.com/denticare/clinic-ledger/internal/handlers"
	"github.com/denticare/clinic-ledger/internal/logging"
	"github.com/denticare/clinic-ledger/internal/services"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(gdb *gorm.DB, logger *slog.Logger) (http.Handler, error) {
	x, err := db.SQLX(gdb)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	catalog := services.NewCatalogService(gdb)
	sh := handlers.NewServiceHandler(catalog)
	th := handlers.NewTransactionHandler(services.NewLedgerService(gdb, catalog))
	rh := handlers.NewRecordHandler(services.NewRecordService(x))
	rep := handlers.NewReportHandler(services.NewReportService(x))

	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context(), gdb); err != nil {
			logging.FromContext(r.Context()).Warn("health check failed", logging.KeyError, err)
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Service catalog
	mux.HandleFunc("GET /services", sh.List)
	mux.HandleFunc("POST /services", sh.Create)
	mux.HandleFunc("GET /services/{id}", sh.Get)
	mux.HandleFunc("PUT /services/{id}", sh.Update)
	mux.HandleFunc("DELETE /services/{id}", sh.Delete)
	mux.HandleFunc("GET /pricing/quote", sh.Quote)

	// Ledger
	mux.HandleFunc("POST /transactions", th.Create)
	mux.HandleFunc("GET /transactions/{id}", th.Get)

	// Records
	mux.HandleFunc("GET /patients/{id}/records", rh.Patient)
	mux.HandleFunc("GET /records", rh.List)

	// Reports
	mux.HandleFunc("GET /reports/monthly-revenue", rep.MonthlyRevenue)
	mux.HandleFunc("GET /reports/revenue-by-service", rep.RevenueByService)
	mux.HandleFunc("GET /reports/total-revenue", rep.TotalRevenue)
	mux.HandleFunc("GET /reports/monthly", rep.Monthly)
	mux.HandleFunc("GET /dashboard", rep.Dashboard)

	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	})

	return logging.Middleware(logger)(withRecover(mux)), nil
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.FromContext(r.Context()).Error("panic", "panic", rec, "path", r.URL.Path)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
