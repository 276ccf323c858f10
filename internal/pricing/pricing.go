// Package pricing derives VAT amounts and final prices from a service's base
// price and VAT policy. All arithmetic is fixed-point and rounded to cents.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits kept for every monetary amount.
const Places = 2

// DefaultVATRate is applied to new services that do not specify a rate.
var DefaultVATRate = decimal.New(1200, -Places)

// Stored amounts are NUMERIC(12,2) and rates NUMERIC(5,2); values must stay
// strictly below these limits.
var (
	MaxAmount = decimal.New(1, 12-Places)
	MaxRate   = decimal.New(1, 5-Places)
)

// ErrInvalidPrice is returned when a base price or VAT rate is negative.
var ErrInvalidPrice = errors.New("invalid price")

var hundred = decimal.NewFromInt(100)

// Price is the outcome of Derive. VATRate is carried even when VAT does not
// apply so it can be stored as metadata.
type Price struct {
	Base          decimal.Decimal
	VATApplicable bool
	VATRate       decimal.Decimal
	VATAmount     decimal.Decimal
	Final         decimal.Decimal
}

// Derive computes the VAT amount and final unit price.
func Derive(base decimal.Decimal, vatApplicable bool, vatRate decimal.Decimal) (Price, error) {
	if base.IsNegative() {
		return Price{}, fmt.Errorf("%w: base price %s is negative", ErrInvalidPrice, base.String())
	}
	if vatRate.IsNegative() {
		return Price{}, fmt.Errorf("%w: vat rate %s is negative", ErrInvalidPrice, vatRate.String())
	}
	vat := decimal.Zero
	if vatApplicable {
		vat = Round(base.Mul(vatRate).Div(hundred))
	}
	return Price{
		Base:          base,
		VATApplicable: vatApplicable,
		VATRate:       vatRate,
		VATAmount:     vat,
		Final:         base.Add(vat),
	}, nil
}

// Round rounds half away from zero to cents.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// LineTotal is unit × qty.
func LineTotal(unit decimal.Decimal, qty int) decimal.Decimal {
	return unit.Mul(decimal.NewFromInt(int64(qty)))
}

// Format renders an amount with exactly two decimals, e.g. "560.00".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
