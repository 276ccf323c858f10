package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/denticare/clinic-ledger/internal/db"
	"github.com/denticare/clinic-ledger/internal/models"
	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/denticare/clinic-ledger/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LineRequest asks for Quantity units of a catalog service.
type LineRequest struct {
	ServiceID uint
	Quantity  int
}

// TransactionInput is everything needed to record one visit. ExpectedTotal
// is optional; when set it must match the computed total to the cent.
type TransactionInput struct {
	DentistID       uint
	StaffID         uint
	PatientID       uint
	TransactionDate time.Time
	Items           []LineRequest
	Notes           string
	ExpectedTotal   *decimal.Decimal
}

func (in TransactionInput) validate() error {
	v := make(validation.Violations)
	validation.RequiredID("dentist_id", in.DentistID, v)
	validation.RequiredID("staff_id", in.StaffID, v)
	validation.RequiredID("patient_id", in.PatientID, v)
	if in.TransactionDate.IsZero() {
		v["transaction_date"] = "required"
	}
	if len(in.Items) == 0 {
		v["items"] = "required"
	}
	for i, it := range in.Items {
		validation.RequiredID(fmt.Sprintf("items[%d].service_id", i), it.ServiceID, v)
		validation.PositiveInt(fmt.Sprintf("items[%d].quantity", i), it.Quantity, v)
	}
	return v.Err()
}

// LedgerService writes transactions. Each call is all or nothing.
type LedgerService struct {
	db      *gorm.DB
	catalog *CatalogService
}

func NewLedgerService(db *gorm.DB, catalog *CatalogService) *LedgerService {
	return &LedgerService{db: db, catalog: catalog}
}

// CreateTransaction snapshots the current price of every requested service
// and stores the header and its line items in one storage transaction. The
// stored total is always the sum of the snapshotted lines.
func (s *LedgerService) CreateTransaction(ctx context.Context, in TransactionInput) (*models.Transaction, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	header := models.Transaction{
		DentistID:       in.DentistID,
		StaffID:         in.StaffID,
		PatientID:       in.PatientID,
		TransactionDate: CalendarDay(in.TransactionDate),
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		header.Notes = &notes
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, len(in.Items))
		for i, it := range in.Items {
			ids[i] = it.ServiceID
		}
		current, err := s.catalog.WithTx(tx).GetMany(ctx, ids)
		if err != nil {
			return err
		}

		lines := make([]models.LineItem, 0, len(in.Items))
		total := decimal.Zero
		for i, it := range in.Items {
			svc, ok := current[it.ServiceID]
			if !ok {
				return &ServiceNotFoundError{ServiceID: it.ServiceID}
			}
			price, err := svc.Price()
			if err != nil {
				return fmt.Errorf("service %d: %w", svc.ID, err)
			}
			line := models.NewLineItem(svc.ID, i+1, it.Quantity, price)
			lines = append(lines, line)
			total = total.Add(line.Total())
		}
		total = pricing.Round(total)

		if !total.IsPositive() {
			return validation.Violations{"items": "total_must_be_positive"}.Err()
		}
		if total.GreaterThanOrEqual(pricing.MaxAmount) {
			return validation.Violations{"items": "total_too_large"}.Err()
		}
		if in.ExpectedTotal != nil && !pricing.Round(*in.ExpectedTotal).Equal(total) {
			return &TotalMismatchError{Expected: *in.ExpectedTotal, Computed: total}
		}
		header.TotalAmount = total

		if err := tx.Omit(clause.Associations).Create(&header).Error; err != nil {
			if db.IsForeignKeyViolation(err) {
				return ErrInvalidReference
			}
			return fmt.Errorf("insert transaction: %w", err)
		}
		for i := range lines {
			lines[i].TransactionID = header.ID
		}
		if err := tx.Create(&lines).Error; err != nil {
			return fmt.Errorf("insert line items: %w", err)
		}
		header.Items = lines
		return nil
	})
	if err != nil {
		return nil, persistence("create transaction", err)
	}
	return &header, nil
}

// Transaction loads a committed transaction with its line items in order.
func (s *LedgerService) Transaction(ctx context.Context, id uint) (*models.Transaction, error) {
	var t models.Transaction
	err := s.db.WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("position") }).
		First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", ErrTransactionNotFound, id)
	}
	if err != nil {
		return nil, persistence("get transaction", err)
	}
	return &t, nil
}

// CalendarDay drops the clock and zone, keeping the caller's calendar date
// as midnight UTC.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
