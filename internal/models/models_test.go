package models

import (
	"testing"

	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestService_AfterFindDerivesPrice(t *testing.T) {
	tests := []struct {
		name      string
		svc       Service
		wantVAT   string
		wantFinal string
	}{
		{"12% VAT on 500", Service{BasePrice: dec("500.00"), IsVATApplicable: true, VATRate: dec("12.00")}, "60.00", "560.00"},
		{"VAT exempt", Service{BasePrice: dec("300.00"), IsVATApplicable: false, VATRate: dec("12.00")}, "0", "300.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.svc
			if err := s.AfterFind(nil); err != nil {
				t.Fatalf("AfterFind() error = %v", err)
			}
			if !s.VATAmount.Equal(dec(tt.wantVAT)) || !s.FinalPrice.Equal(dec(tt.wantFinal)) {
				t.Errorf("got vat=%s final=%s, want %s/%s", s.VATAmount, s.FinalPrice, tt.wantVAT, tt.wantFinal)
			}
		})
	}
}

func TestService_AfterFindRejectsNegativeRow(t *testing.T) {
	s := Service{ID: 9, BasePrice: dec("-1"), VATRate: dec("12")}
	if err := s.AfterFind(nil); err == nil {
		t.Fatal("expected error for negative base price")
	}
}

func TestLineItemTotals(t *testing.T) {
	p, err := pricing.Derive(dec("100.00"), true, dec("12"))
	if err != nil {
		t.Fatal(err)
	}
	li := NewLineItem(7, 0, 3, p)
	if li.ServiceID != 7 || li.Quantity != 3 || !li.IsVATApplicableSnapshot {
		t.Fatalf("unexpected snapshot %+v", li)
	}
	if got := pricing.Format(li.Total()); got != "336.00" {
		t.Errorf("Total() = %s, want 336.00", got)
	}
	if got := pricing.Format(li.BaseTotal()); got != "300.00" {
		t.Errorf("BaseTotal() = %s, want 300.00", got)
	}
	if got := pricing.Format(li.VATTotal()); got != "36.00" {
		t.Errorf("VATTotal() = %s, want 36.00", got)
	}
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		first, middle, last string
		want                string
	}{
		{"Maria", "Santos", "Cruz", "Cruz, Maria Santos"},
		{"Jose", "", "Rizal", "Rizal, Jose"},
		{" Ana ", " ", " Reyes ", "Reyes, Ana"},
		{"", "", "Reyes", "Reyes"},
		{"Ana", "", "", "Ana"},
	}
	for _, tt := range tests {
		if got := FormatName(tt.first, tt.middle, tt.last); got != tt.want {
			t.Errorf("FormatName(%q, %q, %q) = %q, want %q", tt.first, tt.middle, tt.last, got, tt.want)
		}
	}
}

func TestDentistDisplayName(t *testing.T) {
	d := Dentist{StaffID: 2, Staff: Staff{FirstName: "Luis", MiddleName: "M", LastName: "Garcia"}}
	if got := d.DisplayName(); got != "Dr. Garcia, Luis M" {
		t.Errorf("DisplayName() = %q", got)
	}
	st := Staff{FirstName: "Rosa", LastName: "Lim"}
	if got := st.FullName(); got != "Lim, Rosa" {
		t.Errorf("FullName() = %q", got)
	}
}
