package validation

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Err returns nil when there are no violations, otherwise an *Error.
func (v Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return &Error{Violations: v}
}

// Error reports bad input shape. Nothing is persisted when it is returned.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + "=" + e.Violations[f]
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func RequiredID(field string, id uint, v Violations) {
	if id == 0 {
		v[field] = "required"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

// Below requires val < limit.
func Below(field string, val, limit decimal.Decimal, v Violations) {
	if val.GreaterThanOrEqual(limit) {
		v[field] = "too_large"
	}
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}
