package handlers

import (
	"net/http"

	"github.com/denticare/clinic-ledger/httpx"
	"github.com/denticare/clinic-ledger/internal/services"
	"github.com/denticare/clinic-ledger/validation"
)

type RecordHandler struct {
	Records *services.RecordService
}

func NewRecordHandler(records *services.RecordService) *RecordHandler {
	return &RecordHandler{Records: records}
}

type recordView struct {
	TransactionID   uint       `json:"transaction_id"`
	TransactionDate string     `json:"transaction_date"`
	PatientID       uint       `json:"patient_id"`
	PatientName     string     `json:"patient_name"`
	ProcessedBy     string     `json:"processed_by"`
	DentistName     string     `json:"dentist_name"`
	Notes           *string    `json:"notes"`
	BaseTotal       string     `json:"base_total"`
	VATTotal        string     `json:"vat_total"`
	Subtotal        string     `json:"subtotal"`
	TotalAmount     string     `json:"total_amount"`
	Lines           []lineView `json:"lines"`
}

func newRecordViews(recs []services.TransactionRecord) []recordView {
	out := make([]recordView, len(recs))
	for i, rec := range recs {
		lines := make([]lineView, len(rec.Lines))
		for j, l := range rec.Lines {
			lines[j] = newLineView(l.LineItem)
			lines[j].ServiceName = l.ServiceName
		}
		out[i] = recordView{
			TransactionID:   rec.TransactionID,
			TransactionDate: rec.TransactionDate.Format(dateLayout),
			PatientID:       rec.PatientID,
			PatientName:     rec.PatientName,
			ProcessedBy:     rec.ProcessedBy,
			DentistName:     rec.DentistName,
			Notes:           rec.Notes,
			BaseTotal:       money(rec.BaseTotal),
			VATTotal:        money(rec.VATTotal),
			Subtotal:        money(rec.Subtotal),
			TotalAmount:     money(rec.TotalAmount),
			Lines:           lines,
		}
	}
	return out
}

// Patient exports every transaction of one patient, newest first.
func (h *RecordHandler) Patient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	recs, err := h.Records.ExportRecords(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"patient_id": id, "records": newRecordViews(recs)})
}

func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	limit := queryInt(r, "limit", services.DefaultRecordLimit, v)
	if err := v.Err(); err != nil {
		writeError(w, r, err)
		return
	}
	recs, err := h.Records.ListRecords(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": newRecordViews(recs), "total": len(recs)})
}
