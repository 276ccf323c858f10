package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/denticare/clinic-ledger/httpx"
	"github.com/denticare/clinic-ledger/internal/models"
	"github.com/denticare/clinic-ledger/internal/services"
	"github.com/denticare/clinic-ledger/validation"
	"github.com/shopspring/decimal"
)

type TransactionHandler struct {
	Ledger *services.LedgerService
}

func NewTransactionHandler(ledger *services.LedgerService) *TransactionHandler {
	return &TransactionHandler{Ledger: ledger}
}

type transactionBody struct {
	DentistID       uint   `json:"dentist_id"`
	StaffID         uint   `json:"staff_id"`
	PatientID       uint   `json:"patient_id"`
	TransactionDate string `json:"transaction_date"`
	Items           []struct {
		ServiceID uint `json:"service_id"`
		Quantity  int  `json:"quantity"`
	} `json:"items"`
	Notes         string           `json:"notes"`
	ExpectedTotal *decimal.Decimal `json:"expected_total"`
}

// parseDate accepts a bare calendar date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (b transactionBody) input() (services.TransactionInput, error) {
	in := services.TransactionInput{
		DentistID:     b.DentistID,
		StaffID:       b.StaffID,
		PatientID:     b.PatientID,
		Notes:         b.Notes,
		ExpectedTotal: b.ExpectedTotal,
	}
	if b.TransactionDate != "" {
		d, err := parseDate(b.TransactionDate)
		if err != nil {
			return in, validation.Violations{"transaction_date": "invalid"}.Err()
		}
		in.TransactionDate = d
	}
	for _, it := range b.Items {
		in.Items = append(in.Items, services.LineRequest{ServiceID: it.ServiceID, Quantity: it.Quantity})
	}
	return in, nil
}

type lineView struct {
	Position        int    `json:"position"`
	ServiceID       uint   `json:"service_id"`
	ServiceName     string `json:"service_name,omitempty"`
	Quantity        int    `json:"quantity"`
	BasePrice       string `json:"base_price"`
	IsVATApplicable bool   `json:"is_vat_applicable"`
	VATRate         string `json:"vat_rate"`
	VATAmount       string `json:"vat_amount"`
	UnitPrice       string `json:"unit_price"`
	LineTotal       string `json:"line_total"`
}

func newLineView(li models.LineItem) lineView {
	return lineView{
		Position:        li.Position,
		ServiceID:       li.ServiceID,
		Quantity:        li.Quantity,
		BasePrice:       money(li.BasePriceSnapshot),
		IsVATApplicable: li.IsVATApplicableSnapshot,
		VATRate:         money(li.VATRateSnapshot),
		VATAmount:       money(li.VATAmountSnapshot),
		UnitPrice:       money(li.PriceAtTransaction),
		LineTotal:       money(li.Total()),
	}
}

// Create records a visit. The response total is the server-computed one.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body transactionBody
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in, err := body.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx, err := h.Ledger.CreateTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines := make([]lineView, len(tx.Items))
	for i, li := range tx.Items {
		lines[i] = newLineView(li)
	}
	w.Header().Set("Location", fmt.Sprintf("/transactions/%d", tx.ID))
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":               tx.ID,
		"transaction_date": tx.TransactionDate.Format(dateLayout),
		"total_amount":     money(tx.TotalAmount),
		"items":            lines,
	})
}

// Get returns one stored transaction with its line snapshots.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	tx, err := h.Ledger.Transaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines := make([]lineView, len(tx.Items))
	for i, li := range tx.Items {
		lines[i] = newLineView(li)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":               tx.ID,
		"dentist_id":       tx.DentistID,
		"staff_id":         tx.StaffID,
		"patient_id":       tx.PatientID,
		"transaction_date": tx.TransactionDate.Format(dateLayout),
		"notes":            tx.Notes,
		"total_amount":     money(tx.TotalAmount),
		"items":            lines,
	})
}
