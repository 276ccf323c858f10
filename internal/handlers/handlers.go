package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/denticare/clinic-ledger/httpx"
	"github.com/denticare/clinic-ledger/internal/logging"
	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/denticare/clinic-ledger/internal/services"
	"github.com/denticare/clinic-ledger/validation"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// writeError maps the domain error taxonomy onto HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *validation.Error
		nf   *services.ServiceNotFoundError
		tm   *services.TotalMismatchError
	)
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", verr.Violations)
	case errors.Is(err, services.ErrInvalidReference):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_reference", nil)
	case errors.Is(err, pricing.ErrInvalidPrice):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "invalid_price", err.Error())
	case errors.As(err, &nf):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "service_not_found", map[string]uint{"service_id": nf.ServiceID})
	case errors.As(err, &tm):
		httpx.JSONError(w, http.StatusConflict, "total_mismatch", map[string]string{
			"expected": pricing.Format(tm.Expected),
			"computed": pricing.Format(tm.Computed),
		})
	case errors.Is(err, services.ErrServiceInUse):
		httpx.JSONError(w, http.StatusConflict, "service_in_use", nil)
	case errors.Is(err, services.ErrNoRecords):
		httpx.JSONError(w, http.StatusNotFound, "no_records", nil)
	case errors.Is(err, services.ErrTransactionNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	default:
		logging.FromContext(r.Context()).Error("request failed", logging.KeyError, err)
		httpx.JSONError(w, http.StatusInternalServerError, "persistence_error", nil)
	}
}

func pathID(r *http.Request, name string) (uint, bool) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// queryInt reads an integer query parameter. Missing values yield def; bad
// ones are recorded in v.
func queryInt(r *http.Request, key string, def int, v validation.Violations) int {
	s := strings.TrimSpace(r.URL.Query().Get(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		v[key] = "invalid"
		return def
	}
	return n
}

// Money is always rendered with two decimals.
func money(d decimal.Decimal) string { return pricing.Format(d) }
