package services

import (
	"context"
	"time"

	"github.com/denticare/clinic-ledger/internal/models"
	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/denticare/clinic-ledger/validation"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// DefaultRecordLimit caps ListRecords when the caller passes no limit.
const DefaultRecordLimit = 100

// RecordLine is a persisted line item with the service's display name.
type RecordLine struct {
	models.LineItem
	ServiceName string
	LineTotal   decimal.Decimal
}

// TransactionRecord is one transaction rebuilt from its line snapshots.
type TransactionRecord struct {
	TransactionID   uint
	TransactionDate time.Time
	PatientID       uint
	PatientName     string
	ProcessedBy     string
	DentistName     string
	Notes           *string
	TotalAmount     decimal.Decimal
	BaseTotal       decimal.Decimal
	VATTotal        decimal.Decimal
	Subtotal        decimal.Decimal
	Lines           []RecordLine
}

// RecordService regroups ledger lines for presentation.
type RecordService struct {
	db *sqlx.DB
}

func NewRecordService(db *sqlx.DB) *RecordService {
	return &RecordService{db: db}
}

// ExportRecords returns the patient's transactions, newest first.
func (s *RecordService) ExportRecords(ctx context.Context, patientID uint) ([]TransactionRecord, error) {
	v := make(validation.Violations)
	validation.RequiredID("patient_id", patientID, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	rows, err := selectLedgerLines(ctx, s.db,
		`WHERE t.patient_id = ?
ORDER BY t.transaction_date DESC, t.id DESC, li.position ASC`, patientID)
	if err != nil {
		return nil, persistence("export records", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}
	return groupRecords(rows), nil
}

// ListRecords returns the most recent transactions of every patient.
func (s *RecordService) ListRecords(ctx context.Context, limit int) ([]TransactionRecord, error) {
	if limit <= 0 {
		limit = DefaultRecordLimit
	}
	rows, err := selectLedgerLines(ctx, s.db,
		`WHERE t.id IN (SELECT id FROM transactions ORDER BY transaction_date DESC, id DESC LIMIT ?)
ORDER BY t.transaction_date DESC, t.id DESC, li.position ASC`, limit)
	if err != nil {
		return nil, persistence("list records", err)
	}
	return groupRecords(rows), nil
}

// groupRecords folds consecutive rows of the same transaction together and
// sums each group's snapshots.
func groupRecords(rows []ledgerLine) []TransactionRecord {
	out := []TransactionRecord{}
	for _, r := range rows {
		if n := len(out); n == 0 || out[n-1].TransactionID != r.TransactionID {
			out = append(out, TransactionRecord{
				TransactionID:   r.TransactionID,
				TransactionDate: r.TransactionDate.UTC(),
				PatientID:       r.PatientID,
				PatientName:     r.patientName(),
				ProcessedBy:     r.processedBy(),
				DentistName:     r.dentistName(),
				Notes:           r.Notes,
				TotalAmount:     pricing.Round(r.TotalAmount),
				BaseTotal:       decimal.Zero,
				VATTotal:        decimal.Zero,
				Subtotal:        decimal.Zero,
			})
		}
		rec := &out[len(out)-1]
		item := r.item()
		rec.Lines = append(rec.Lines, RecordLine{LineItem: item, ServiceName: r.ServiceName, LineTotal: pricing.Round(item.Total())})
		rec.BaseTotal = rec.BaseTotal.Add(item.BaseTotal())
		rec.VATTotal = rec.VATTotal.Add(item.VATTotal())
		rec.Subtotal = rec.Subtotal.Add(item.Total())
	}
	for i := range out {
		out[i].BaseTotal = pricing.Round(out[i].BaseTotal)
		out[i].VATTotal = pricing.Round(out[i].VATTotal)
		out[i].Subtotal = pricing.Round(out[i].Subtotal)
	}
	return out
}
