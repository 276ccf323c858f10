package services

import (
	"errors"
	"fmt"

	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/denticare/clinic-ledger/validation"
	"github.com/shopspring/decimal"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	// ErrServiceInUse is returned when a service cannot be deleted because
	// line items reference it.
	ErrServiceInUse = errors.New("service is referenced by recorded transactions")
	// ErrInvalidReference means the dentist, staff member or patient of a
	// new transaction does not exist.
	ErrInvalidReference    = errors.New("transaction references an unknown dentist, staff member or patient")
	ErrNoRecords           = errors.New("no transaction records")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ServiceNotFoundError aborts a ledger write that names a missing service.
type ServiceNotFoundError struct {
	ServiceID uint
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("service %d not found", e.ServiceID)
}

func (e *ServiceNotFoundError) Is(target error) bool { return target == ErrServiceNotFound }

// TotalMismatchError reports a caller total that disagrees with the total
// computed from the line snapshots.
type TotalMismatchError struct {
	Expected decimal.Decimal
	Computed decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("total mismatch: expected %s, computed %s",
		pricing.Format(e.Expected), pricing.Format(e.Computed))
}

// PersistenceError wraps a storage failure. The enclosing write scope has
// been rolled back when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *PersistenceError) Unwrap() error { return e.Err }

// persistence wraps err unless it is already part of the domain taxonomy.
func persistence(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	var (
		verr *validation.Error
		nf   *ServiceNotFoundError
		tm   *TotalMismatchError
		pe   *PersistenceError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &nf), errors.As(err, &tm), errors.As(err, &pe):
		return true
	case errors.Is(err, ErrServiceNotFound), errors.Is(err, ErrServiceInUse),
		errors.Is(err, ErrInvalidReference), errors.Is(err, ErrNoRecords),
		errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, pricing.ErrInvalidPrice):
		return true
	}
	return false
}
