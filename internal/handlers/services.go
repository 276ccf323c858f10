package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/denticare/clinic-ledger/httpx"
	"github.com/denticare/clinic-ledger/internal/models"
	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/denticare/clinic-ledger/internal/services"
	"github.com/denticare/clinic-ledger/validation"
	"github.com/shopspring/decimal"
)

type ServiceHandler struct {
	Catalog *services.CatalogService
}

func NewServiceHandler(catalog *services.CatalogService) *ServiceHandler {
	return &ServiceHandler{Catalog: catalog}
}

type serviceBody struct {
	Name            string           `json:"name"`
	BasePrice       *decimal.Decimal `json:"base_price"`
	IsVATApplicable *bool            `json:"is_vat_applicable"`
	VATRate         *decimal.Decimal `json:"vat_rate"`
}

func (b serviceBody) input() (services.ServiceInput, error) {
	if b.BasePrice == nil {
		return services.ServiceInput{}, validation.Violations{"base_price": "required"}.Err()
	}
	return services.ServiceInput{
		Name:            b.Name,
		BasePrice:       *b.BasePrice,
		IsVATApplicable: b.IsVATApplicable,
		VATRate:         b.VATRate,
	}, nil
}

type serviceView struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	BasePrice       string `json:"base_price"`
	IsVATApplicable bool   `json:"is_vat_applicable"`
	VATRate         string `json:"vat_rate"`
	VATAmount       string `json:"vat_amount"`
	FinalPrice      string `json:"final_price"`
}

func newServiceView(s models.Service) serviceView {
	return serviceView{
		ID:              s.ID,
		Name:            s.Name,
		BasePrice:       money(s.BasePrice),
		IsVATApplicable: s.IsVATApplicable,
		VATRate:         money(s.VATRate),
		VATAmount:       money(s.VATAmount),
		FinalPrice:      money(s.FinalPrice),
	}
}

func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	svcs, err := h.Catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]serviceView, len(svcs))
	for i, s := range svcs {
		items[i] = newServiceView(s)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": len(items)})
}

func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	svc, err := h.Catalog.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newServiceView(*svc))
}

func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body serviceBody
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in, err := body.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	svc, err := h.Catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newServiceView(*svc))
}

// Update replaces every editable field. Omitted VAT fields fall back to the
// same defaults as Create.
func (h *ServiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var body serviceBody
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	in, err := body.input()
	if err != nil {
		writeError(w, r, err)
		return
	}
	svc, err := h.Catalog.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newServiceView(*svc))
}

func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// Quote derives a display price without touching the catalog.
func (h *ServiceHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := validation.Violations{}

	base, err := decimal.NewFromString(strings.TrimSpace(q.Get("base_price")))
	if err != nil {
		v["base_price"] = "invalid"
	}
	applicable := true
	if s := q.Get("is_vat_applicable"); s != "" {
		if applicable, err = strconv.ParseBool(s); err != nil {
			v["is_vat_applicable"] = "invalid"
		}
	}
	rate := pricing.DefaultVATRate
	if s := q.Get("vat_rate"); s != "" {
		if rate, err = decimal.NewFromString(s); err != nil {
			v["vat_rate"] = "invalid"
		}
	}
	if !v.Empty() {
		writeError(w, r, v.Err())
		return
	}

	p, err := pricing.Derive(base, applicable, rate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"base_price":        money(p.Base),
		"is_vat_applicable": p.VATApplicable,
		"vat_rate":          money(p.VATRate),
		"vat_amount":        money(p.VATAmount),
		"final_price":       money(p.Final),
	})
}

// writeError differs from the package default only in treating a missing
// service as a plain 404: here the service is the addressed resource.
func (h *ServiceHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrServiceNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeError(w, r, err)
}
