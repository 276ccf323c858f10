package services

import (
	"context"
	"testing"
	"time"

	"github.com/denticare/clinic-ledger/internal/db"
	"github.com/denticare/clinic-ledger/internal/db/dbtest"
	"github.com/denticare/clinic-ledger/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fixture struct {
	db      *gorm.DB
	catalog *CatalogService
	ledger  *LedgerService
	reports *ReportService
	records *RecordService
	parties dbtest.Parties
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := dbtest.Open(t)
	x, err := db.SQLX(gdb)
	if err != nil {
		t.Fatalf("sqlx: %v", err)
	}
	catalog := NewCatalogService(gdb)
	return &fixture{
		db:      gdb,
		catalog: catalog,
		ledger:  NewLedgerService(gdb, catalog),
		reports: NewReportService(x),
		records: NewRecordService(x),
		parties: dbtest.SeedParties(t, gdb),
	}
}

func (f *fixture) input(date time.Time, items ...LineRequest) TransactionInput {
	return TransactionInput{
		DentistID:       f.parties.Dentist.StaffID,
		StaffID:         f.parties.Staff.ID,
		PatientID:       f.parties.Patient.ID,
		TransactionDate: date,
		Items:           items,
	}
}

func (f *fixture) record(t *testing.T, date time.Time, items ...LineRequest) *models.Transaction {
	t.Helper()
	tx, err := f.ledger.CreateTransaction(context.Background(), f.input(date, items...))
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return tx
}

func line(serviceID uint, qty int) LineRequest {
	return LineRequest{ServiceID: serviceID, Quantity: qty}
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func boolPtr(b bool) *bool { return &b }
