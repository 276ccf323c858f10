package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/denticare/clinic-ledger/internal/db/dbtest"
)

func (a *testApp) seedVisits(t *testing.T) {
	t.Helper()
	x := dbtest.CreateService(t, a.db, "Extraction", "800", true, "12")
	c := dbtest.CreateService(t, a.db, "Consultation", "300", false, "12")
	for _, body := range []string{
		a.txBody("2024-06-03", item(x.ID, 1)+","+item(c.ID, 1), `,"notes":"first visit"`),
		a.txBody("2024-06-20", item(c.ID, 2), ""),
		a.txBody("2023-12-30", item(x.ID, 1), ""),
	} {
		if w := a.do(t, http.MethodPost, "/transactions", body); w.Code != http.StatusCreated {
			t.Fatalf("seed: %d %s", w.Code, w.Body.String())
		}
	}
}

func TestMonthlyRevenueDefaultsToCurrentYear(t *testing.T) {
	a := setupApp(t)
	a.seedVisits(t)

	w := a.do(t, http.MethodGet, "/reports/monthly-revenue", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	body := decode(t, w)
	if body["year"] != float64(2024) {
		t.Fatalf("year = %v", body["year"])
	}
	months := body["months"].([]any)
	if len(months) != 12 {
		t.Fatalf("expected 12 months got %d", len(months))
	}
	june := months[5].(map[string]any)
	if june["month"] != float64(6) || june["total_sales"] != "1796.00" {
		t.Fatalf("june = %v", june)
	}
	if jan := months[0].(map[string]any); jan["total_sales"] != "0.00" {
		t.Fatalf("january = %v", jan)
	}

	w = a.do(t, http.MethodGet, "/reports/monthly-revenue?year=2023", "")
	if got := decode(t, w)["months"].([]any)[11].(map[string]any)["total_sales"]; got != "896.00" {
		t.Fatalf("december 2023 = %v", got)
	}
	expectError(t, a.do(t, http.MethodGet, "/reports/monthly-revenue?year=abc", ""), http.StatusUnprocessableEntity, "validation_failed")
}

func TestRevenueByServiceEndpoint(t *testing.T) {
	a := setupApp(t)
	a.seedVisits(t)

	w := a.do(t, http.MethodGet, "/reports/revenue-by-service?month=6&year=2024", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	rows := decode(t, w)["services"].([]any)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(rows))
	}
	top := rows[0].(map[string]any)
	if top["service_name"] != "Consultation" || top["total_revenue"] != "900.00" || top["total_quantity"] != float64(3) {
		t.Fatalf("top = %v", top)
	}

	expectError(t, a.do(t, http.MethodGet, "/reports/revenue-by-service?month=13&year=2024", ""), http.StatusUnprocessableEntity, "validation_failed")
	expectError(t, a.do(t, http.MethodGet, "/reports/revenue-by-service?year=2024", ""), http.StatusUnprocessableEntity, "validation_failed")

	w = a.do(t, http.MethodGet, "/reports/revenue-by-service?month=2&year=2024", "")
	if rows := decode(t, w)["services"].([]any); len(rows) != 0 {
		t.Fatalf("empty month should give an empty list, got %v", rows)
	}
}

func TestTotalRevenueEndpoint(t *testing.T) {
	a := setupApp(t)
	a.seedVisits(t)

	body := decode(t, a.do(t, http.MethodGet, "/reports/total-revenue", ""))
	if body["total"] != "2692.00" {
		t.Fatalf("unscoped total = %v", body)
	}
	if _, ok := body["transaction_count"]; ok {
		t.Fatal("unscoped total should not carry a transaction count")
	}

	body = decode(t, a.do(t, http.MethodGet, "/reports/total-revenue?month=6&year=2024", ""))
	if body["total"] != "1796.00" || body["transaction_count"] != float64(2) {
		t.Fatalf("june total = %v", body)
	}
}

func TestMonthlyReportEndpoint(t *testing.T) {
	a := setupApp(t)
	a.seedVisits(t)

	w := a.do(t, http.MethodGet, "/reports/monthly?month=6&year=2024", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	lines := body["transactions"].([]any)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines got %d", len(lines))
	}
	first := lines[0].(map[string]any)
	if first["transaction_date"] != "2024-06-03" || first["dentist_name"] != "Dr. Garcia, Luis M" || first["line_total"] != "896.00" {
		t.Fatalf("first line = %v", first)
	}
	if body["total"] != "1796.00" || body["transaction_count"] != float64(2) {
		t.Fatalf("totals = %v %v", body["total"], body["transaction_count"])
	}
}

func TestDashboardEndpoint(t *testing.T) {
	a := setupApp(t)
	a.seedVisits(t)

	body := decode(t, a.do(t, http.MethodGet, "/dashboard", ""))
	if body["total_patients"] != float64(1) || body["total_staff"] != float64(2) || body["total_revenue"] != "2692.00" {
		t.Fatalf("dashboard = %v", body)
	}
	if sales := body["monthly_sales"].([]any); len(sales) != 12 {
		t.Fatalf("monthly sales = %v", sales)
	}
	body = decode(t, a.do(t, http.MethodGet, fmt.Sprintf("/dashboard?year=%d", 2023), ""))
	if body["year"] != float64(2023) {
		t.Fatalf("year = %v", body["year"])
	}
}
