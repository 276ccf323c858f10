package models

import (
	"strings"
	"time"
)

// Staff, Dentist and Patient exist here as reference targets for the ledger.
// Their maintenance screens live elsewhere.

type Staff struct {
	ID         uint   `gorm:"primaryKey"`
	FirstName  string `gorm:"size:100;not null"`
	MiddleName string `gorm:"size:100"`
	LastName   string `gorm:"size:100;not null"`
	Role       string `gorm:"size:50;not null"`
	CreatedAt  time.Time
}

func (Staff) TableName() string { return "staff" }

func (s Staff) FullName() string { return FormatName(s.FirstName, s.MiddleName, s.LastName) }

type Dentist struct {
	StaffID    uint   `gorm:"primaryKey;autoIncrement:false"`
	LicenseNum string `gorm:"size:50;not null"`
	Staff      Staff  `gorm:"foreignKey:StaffID"`
}

func (d Dentist) DisplayName() string {
	return DentistName(d.Staff.FirstName, d.Staff.MiddleName, d.Staff.LastName)
}

type Patient struct {
	ID            uint   `gorm:"primaryKey"`
	FirstName     string `gorm:"size:100;not null"`
	MiddleName    string `gorm:"size:100"`
	LastName      string `gorm:"size:100;not null"`
	Sex           string `gorm:"size:10"`
	Birthday      *time.Time
	ContactNumber string `gorm:"size:30"`
	CreatedAt     time.Time
}

func (p Patient) FullName() string { return FormatName(p.FirstName, p.MiddleName, p.LastName) }

// FormatName renders "Last, First Middle".
func FormatName(first, middle, last string) string {
	given := strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(middle))
	last = strings.TrimSpace(last)
	switch {
	case last == "":
		return given
	case given == "":
		return last
	}
	return last + ", " + given
}

// DentistName is FormatName with the "Dr." prefix.
func DentistName(first, middle, last string) string {
	return "Dr. " + FormatName(first, middle, last)
}
