package services

import (
	"context"
	"time"

	"github.com/denticare/clinic-ledger/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// ledgerLinesQuery joins each line item with its transaction, the people on
// the transaction and the service's current name. Callers append WHERE and
// ORDER BY clauses. Prices come only from the line snapshots.
const ledgerLinesQuery = `
SELECT t.id AS transaction_id, t.transaction_date, t.total_amount, t.notes, t.patient_id,
       st.first_name AS staff_first, st.middle_name AS staff_middle, st.last_name AS staff_last,
       ds.first_name AS dentist_first, ds.middle_name AS dentist_middle, ds.last_name AS dentist_last,
       p.first_name AS patient_first, p.middle_name AS patient_middle, p.last_name AS patient_last,
       li.service_id, s.name AS service_name, li.position, li.quantity,
       li.base_price_snapshot, li.vat_amount_snapshot, li.vat_rate_snapshot,
       li.is_vat_applicable_snapshot, li.price_at_transaction
FROM transactions t
JOIN transaction_line_items li ON li.transaction_id = t.id
JOIN services s ON s.id = li.service_id
JOIN staff st ON st.id = t.staff_id
JOIN staff ds ON ds.id = t.dentist_id
JOIN patients p ON p.id = t.patient_id
`

type ledgerLine struct {
	TransactionID   uint            `db:"transaction_id"`
	TransactionDate time.Time       `db:"transaction_date"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	Notes           *string         `db:"notes"`
	PatientID       uint            `db:"patient_id"`

	StaffFirst    string `db:"staff_first"`
	StaffMiddle   string `db:"staff_middle"`
	StaffLast     string `db:"staff_last"`
	DentistFirst  string `db:"dentist_first"`
	DentistMiddle string `db:"dentist_middle"`
	DentistLast   string `db:"dentist_last"`
	PatientFirst  string `db:"patient_first"`
	PatientMiddle string `db:"patient_middle"`
	PatientLast   string `db:"patient_last"`

	ServiceID               uint            `db:"service_id"`
	ServiceName             string          `db:"service_name"`
	Position                int             `db:"position"`
	Quantity                int             `db:"quantity"`
	BasePriceSnapshot       decimal.Decimal `db:"base_price_snapshot"`
	VATAmountSnapshot       decimal.Decimal `db:"vat_amount_snapshot"`
	VATRateSnapshot         decimal.Decimal `db:"vat_rate_snapshot"`
	IsVATApplicableSnapshot bool            `db:"is_vat_applicable_snapshot"`
	PriceAtTransaction      decimal.Decimal `db:"price_at_transaction"`
}

func (l ledgerLine) processedBy() string {
	return models.FormatName(l.StaffFirst, l.StaffMiddle, l.StaffLast)
}

func (l ledgerLine) dentistName() string {
	return models.DentistName(l.DentistFirst, l.DentistMiddle, l.DentistLast)
}

func (l ledgerLine) patientName() string {
	return models.FormatName(l.PatientFirst, l.PatientMiddle, l.PatientLast)
}

func (l ledgerLine) item() models.LineItem {
	return models.LineItem{
		TransactionID:           l.TransactionID,
		ServiceID:               l.ServiceID,
		Position:                l.Position,
		Quantity:                l.Quantity,
		BasePriceSnapshot:       l.BasePriceSnapshot,
		VATAmountSnapshot:       l.VATAmountSnapshot,
		VATRateSnapshot:         l.VATRateSnapshot,
		IsVATApplicableSnapshot: l.IsVATApplicableSnapshot,
		PriceAtTransaction:      l.PriceAtTransaction,
	}
}

func selectLedgerLines(ctx context.Context, x *sqlx.DB, tail string, args ...any) ([]ledgerLine, error) {
	lines := []ledgerLine{}
	if err := x.SelectContext(ctx, &lines, x.Rebind(ledgerLinesQuery+tail), args...); err != nil {
		return nil, err
	}
	return lines, nil
}
