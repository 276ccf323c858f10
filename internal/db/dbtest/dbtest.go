// Package dbtest opens migrated in-memory SQLite databases for tests.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/denticare/clinic-ledger/internal/config"
	"github.com/denticare/clinic-ledger/internal/db"
	"github.com/denticare/clinic-ledger/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var nameCleaner = strings.NewReplacer("/", "_", " ", "_", "#", "_")

// Open returns a fresh database private to t with the real migrations applied.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", nameCleaner.Replace(t.Name()))
	gdb, err := db.Open(config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: dsn, ConnectRetries: 1})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.Migrate(context.Background(), gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}

// Parties are the people a transaction must reference.
type Parties struct {
	Staff   models.Staff
	Dentist models.Dentist
	Patient models.Patient
}

// SeedParties creates one receptionist, one dentist and one patient.
func SeedParties(t testing.TB, gdb *gorm.DB) Parties {
	t.Helper()
	var p Parties
	p.Staff = models.Staff{FirstName: "Rosa", LastName: "Lim", Role: "receptionist"}
	if err := gdb.Create(&p.Staff).Error; err != nil {
		t.Fatalf("staff: %v", err)
	}
	dentistStaff := models.Staff{FirstName: "Luis", MiddleName: "M", LastName: "Garcia", Role: "dentist"}
	if err := gdb.Create(&dentistStaff).Error; err != nil {
		t.Fatalf("dentist staff: %v", err)
	}
	p.Dentist = models.Dentist{StaffID: dentistStaff.ID, LicenseNum: "PRC-1", Staff: dentistStaff}
	if err := gdb.Omit("Staff").Create(&p.Dentist).Error; err != nil {
		t.Fatalf("dentist: %v", err)
	}
	p.Patient = CreatePatient(t, gdb, "Ana", "Reyes")
	return p
}

func CreatePatient(t testing.TB, gdb *gorm.DB, first, last string) models.Patient {
	t.Helper()
	p := models.Patient{FirstName: first, LastName: last}
	if err := gdb.Create(&p).Error; err != nil {
		t.Fatalf("patient: %v", err)
	}
	return p
}

// CreateService inserts a catalog row; amounts are decimal strings.
func CreateService(t testing.TB, gdb *gorm.DB, name, base string, vat bool, rate string) models.Service {
	t.Helper()
	s := models.Service{
		Name:            name,
		BasePrice:       decimal.RequireFromString(base),
		IsVATApplicable: vat,
		VATRate:         decimal.RequireFromString(rate),
	}
	if err := gdb.Create(&s).Error; err != nil {
		t.Fatalf("service %s: %v", name, err)
	}
	price, err := s.Price()
	if err != nil {
		t.Fatalf("service %s: %v", name, err)
	}
	s.VATAmount, s.FinalPrice = price.VATAmount, price.Final
	return s
}

// Count returns the number of rows in table.
func Count(t testing.TB, gdb *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	if err := gdb.Table(table).Count(&n).Error; err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
