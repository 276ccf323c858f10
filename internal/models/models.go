package models

import (
	"fmt"
	"time"

	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is a catalog entry. Only the raw pricing inputs are persisted;
// VATAmount and FinalPrice are derived every time the row is loaded.
type Service struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:255;not null" json:"name"`
	BasePrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"`
	IsVATApplicable bool            `gorm:"not null" json:"is_vat_applicable"`
	VATRate         decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"vat_rate"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	VATAmount  decimal.Decimal `gorm:"-" json:"vat_amount"`
	FinalPrice decimal.Decimal `gorm:"-" json:"final_price"`
}

// Price runs the stored inputs through the pricing policy.
func (s *Service) Price() (pricing.Price, error) {
	return pricing.Derive(s.BasePrice, s.IsVATApplicable, s.VATRate)
}

// AfterFind fills the derived price fields.
func (s *Service) AfterFind(tx *gorm.DB) error {
	p, err := s.Price()
	if err != nil {
		return fmt.Errorf("service %d: %w", s.ID, err)
	}
	s.VATAmount = p.VATAmount
	s.FinalPrice = p.Final
	return nil
}

// Transaction is a committed ledger entry. There is no update path: a
// correction is recorded as a new transaction.
type Transaction struct {
	ID              uint            `gorm:"primaryKey"`
	DentistID       uint            `gorm:"not null;index"`
	StaffID         uint            `gorm:"not null;index"`
	PatientID       uint            `gorm:"not null;index"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransactionDate time.Time       `gorm:"not null;index"`
	Notes           *string
	CreatedAt       time.Time
	Items           []LineItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE"`
}

// LineItem carries the pricing snapshot frozen when its transaction was
// written.
type LineItem struct {
	ID                      uint            `gorm:"primaryKey"`
	TransactionID           uint            `gorm:"index;not null"`
	ServiceID               uint            `gorm:"index;not null"`
	Position                int             `gorm:"not null"` // 1-based, request order
	Quantity                int             `gorm:"not null"`
	BasePriceSnapshot       decimal.Decimal `gorm:"column:base_price_snapshot;type:decimal(12,2);not null"`
	VATAmountSnapshot       decimal.Decimal `gorm:"column:vat_amount_snapshot;type:decimal(12,2);not null"`
	VATRateSnapshot         decimal.Decimal `gorm:"column:vat_rate_snapshot;type:decimal(5,2);not null"`
	IsVATApplicableSnapshot bool            `gorm:"column:is_vat_applicable_snapshot;not null"`
	PriceAtTransaction      decimal.Decimal `gorm:"column:price_at_transaction;type:decimal(12,2);not null"`
}

func (LineItem) TableName() string { return "transaction_line_items" }

// NewLineItem snapshots p for qty units of serviceID.
func NewLineItem(serviceID uint, position, qty int, p pricing.Price) LineItem {
	return LineItem{
		ServiceID:               serviceID,
		Position:                position,
		Quantity:                qty,
		BasePriceSnapshot:       p.Base,
		VATAmountSnapshot:       p.VATAmount,
		VATRateSnapshot:         p.VATRate,
		IsVATApplicableSnapshot: p.VATApplicable,
		PriceAtTransaction:      p.Final,
	}
}

func (li LineItem) Total() decimal.Decimal {
	return pricing.LineTotal(li.PriceAtTransaction, li.Quantity)
}

func (li LineItem) BaseTotal() decimal.Decimal {
	return pricing.LineTotal(li.BasePriceSnapshot, li.Quantity)
}

func (li LineItem) VATTotal() decimal.Decimal {
	return pricing.LineTotal(li.VATAmountSnapshot, li.Quantity)
}
