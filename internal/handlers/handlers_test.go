package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/denticare/clinic-ledger/internal/db"
	"github.com/denticare/clinic-ledger/internal/db/dbtest"
	"github.com/denticare/clinic-ledger/internal/services"
	"gorm.io/gorm"
)

type testApp struct {
	db      *gorm.DB
	mux     *http.ServeMux
	parties dbtest.Parties
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gdb := dbtest.Open(t)
	x, err := db.SQLX(gdb)
	if err != nil {
		t.Fatalf("sqlx: %v", err)
	}
	catalog := services.NewCatalogService(gdb)
	sh := NewServiceHandler(catalog)
	th := NewTransactionHandler(services.NewLedgerService(gdb, catalog))
	rh := NewRecordHandler(services.NewRecordService(x))
	rep := NewReportHandler(services.NewReportService(x))
	rep.Now = func() time.Time { return time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /services", sh.List)
	mux.HandleFunc("POST /services", sh.Create)
	mux.HandleFunc("GET /services/{id}", sh.Get)
	mux.HandleFunc("PUT /services/{id}", sh.Update)
	mux.HandleFunc("DELETE /services/{id}", sh.Delete)
	mux.HandleFunc("GET /pricing/quote", sh.Quote)
	mux.HandleFunc("POST /transactions", th.Create)
	mux.HandleFunc("GET /transactions/{id}", th.Get)
	mux.HandleFunc("GET /patients/{id}/records", rh.Patient)
	mux.HandleFunc("GET /records", rh.List)
	mux.HandleFunc("GET /reports/monthly-revenue", rep.MonthlyRevenue)
	mux.HandleFunc("GET /reports/revenue-by-service", rep.RevenueByService)
	mux.HandleFunc("GET /reports/total-revenue", rep.TotalRevenue)
	mux.HandleFunc("GET /reports/monthly", rep.Monthly)
	mux.HandleFunc("GET /dashboard", rep.Dashboard)

	return &testApp{db: gdb, mux: mux, parties: dbtest.SeedParties(t, gdb)}
}

func (a *testApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.mux.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) map[string]any {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d got %d: %s", status, w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["error"] != code {
		t.Fatalf("expected error %q got %v", code, body["error"])
	}
	return body
}
