package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/denticare/clinic-ledger/internal/db/dbtest"
)

func TestServiceCreateAndList(t *testing.T) {
	a := setupApp(t)

	w := a.do(t, http.MethodPost, "/services", `{"name":"Oral Prophylaxis","base_price":"500"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	if created["final_price"] != "560.00" || created["vat_amount"] != "60.00" || created["vat_rate"] != "12.00" {
		t.Fatalf("unexpected pricing %v", created)
	}
	if created["is_vat_applicable"] != true {
		t.Fatalf("VAT should default to applicable")
	}

	w = a.do(t, http.MethodPost, "/services", `{"name":"Consultation","base_price":300,"is_vat_applicable":false}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", w.Code)
	}

	w = a.do(t, http.MethodGet, "/services", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	list := decode(t, w)
	items := list["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 services got %d", len(items))
	}
	first := items[0].(map[string]any)
	if first["name"] != "Consultation" || first["final_price"] != "300.00" {
		t.Fatalf("unexpected first item %v", first)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	a := setupApp(t)

	body := expectError(t, a.do(t, http.MethodPost, "/services", `{"name":"","base_price":"-5"}`),
		http.StatusUnprocessableEntity, "validation_failed")
	details := body["details"].(map[string]any)
	if _, ok := details["name"]; !ok {
		t.Fatalf("expected name violation, got %v", details)
	}

	body = expectError(t, a.do(t, http.MethodPost, "/services", `{"name":"X","base_price":"10000000000","vat_rate":"1000"}`),
		http.StatusUnprocessableEntity, "validation_failed")
	details = body["details"].(map[string]any)
	if details["base_price"] != "too_large" || details["vat_rate"] != "too_large" {
		t.Fatalf("expected precision violations, got %v", details)
	}

	expectError(t, a.do(t, http.MethodPost, "/services", `{"name":"X"}`), http.StatusUnprocessableEntity, "validation_failed")
	expectError(t, a.do(t, http.MethodPost, "/services", `{"name":"X","base_price":"1","color":"red"}`), http.StatusBadRequest, "invalid_json")
	expectError(t, a.do(t, http.MethodPost, "/services", `not json`), http.StatusBadRequest, "invalid_json")
}

func TestServiceGetUpdateDelete(t *testing.T) {
	a := setupApp(t)
	svc := dbtest.CreateService(t, a.db, "Cleaning", "500", true, "12")
	path := fmt.Sprintf("/services/%d", svc.ID)

	w := a.do(t, http.MethodGet, path, "")
	if w.Code != http.StatusOK || decode(t, w)["name"] != "Cleaning" {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}

	w = a.do(t, http.MethodPut, path, `{"name":"Deep Cleaning","base_price":"1000.50","vat_rate":"10"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["final_price"]; got != "1100.55" {
		t.Fatalf("final price = %v", got)
	}

	w = a.do(t, http.MethodDelete, path, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	expectError(t, a.do(t, http.MethodGet, path, ""), http.StatusNotFound, "not_found")
	expectError(t, a.do(t, http.MethodPut, path, `{"name":"x","base_price":"1"}`), http.StatusNotFound, "not_found")
	expectError(t, a.do(t, http.MethodDelete, path, ""), http.StatusNotFound, "not_found")
	expectError(t, a.do(t, http.MethodGet, "/services/abc", ""), http.StatusBadRequest, "invalid_id")
}

func TestServiceDeleteInUse(t *testing.T) {
	a := setupApp(t)
	svc := dbtest.CreateService(t, a.db, "Extraction", "800", true, "12")
	body := fmt.Sprintf(`{"dentist_id":%d,"staff_id":%d,"patient_id":%d,"transaction_date":"2024-05-01","items":[{"service_id":%d,"quantity":1}]}`,
		a.parties.Dentist.StaffID, a.parties.Staff.ID, a.parties.Patient.ID, svc.ID)
	if w := a.do(t, http.MethodPost, "/transactions", body); w.Code != http.StatusCreated {
		t.Fatalf("transaction: %d %s", w.Code, w.Body.String())
	}
	expectError(t, a.do(t, http.MethodDelete, fmt.Sprintf("/services/%d", svc.ID), ""), http.StatusConflict, "service_in_use")
}

func TestPricingQuote(t *testing.T) {
	a := setupApp(t)
	tests := []struct {
		query string
		final string
		vat   string
	}{
		{"base_price=500", "560.00", "60.00"},
		{"base_price=500&is_vat_applicable=false", "500.00", "0.00"},
		{"base_price=0.05&vat_rate=12", "0.06", "0.01"},
		{"base_price=99.99&vat_rate=5", "104.99", "5.00"},
	}
	for _, tt := range tests {
		w := a.do(t, http.MethodGet, "/pricing/quote?"+tt.query, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: %d %s", tt.query, w.Code, w.Body.String())
		}
		body := decode(t, w)
		if body["final_price"] != tt.final || body["vat_amount"] != tt.vat {
			t.Errorf("%s: got %v", tt.query, body)
		}
	}

	expectError(t, a.do(t, http.MethodGet, "/pricing/quote?base_price=-1", ""), http.StatusUnprocessableEntity, "invalid_price")
	expectError(t, a.do(t, http.MethodGet, "/pricing/quote?base_price=abc", ""), http.StatusUnprocessableEntity, "validation_failed")
	expectError(t, a.do(t, http.MethodGet, "/pricing/quote?base_price=1&is_vat_applicable=maybe", ""), http.StatusUnprocessableEntity, "validation_failed")
	if n := dbtest.Count(t, a.db, "services"); n != 0 {
		t.Fatalf("quote must not persist anything, got %d services", n)
	}
}
