package handlers

import (
	"net/http"
	"time"

	"github.com/denticare/clinic-ledger/httpx"
	"github.com/denticare/clinic-ledger/internal/services"
	"github.com/denticare/clinic-ledger/validation"
)

type ReportHandler struct {
	Reports *services.ReportService
	// Now supplies the default year. Defaults to time.Now.
	Now func() time.Time
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{Reports: reports, Now: time.Now}
}

type monthlySalesView struct {
	Month      int    `json:"month"`
	TotalSales string `json:"total_sales"`
}

type serviceRevenueView struct {
	ServiceID     uint   `json:"service_id"`
	ServiceName   string `json:"service_name"`
	TotalQuantity int64  `json:"total_quantity"`
	TotalRevenue  string `json:"total_revenue"`
}

type transactionLineView struct {
	TransactionID   uint   `json:"transaction_id"`
	TransactionDate string `json:"transaction_date"`
	ProcessedBy     string `json:"processed_by"`
	PatientName     string `json:"patient_name"`
	DentistName     string `json:"dentist_name"`
	ServiceName     string `json:"service_name"`
	Quantity        int    `json:"quantity"`
	LineTotal       string `json:"line_total"`
}

func monthlySalesViews(in []services.MonthlySales) []monthlySalesView {
	out := make([]monthlySalesView, len(in))
	for i, m := range in {
		out[i] = monthlySalesView{Month: m.Month, TotalSales: money(m.TotalSales)}
	}
	return out
}

func serviceRevenueViews(in []services.ServiceRevenue) []serviceRevenueView {
	out := make([]serviceRevenueView, len(in))
	for i, s := range in {
		out[i] = serviceRevenueView{
			ServiceID:     s.ServiceID,
			ServiceName:   s.ServiceName,
			TotalQuantity: s.TotalQuantity,
			TotalRevenue:  money(s.TotalRevenue),
		}
	}
	return out
}

func (h *ReportHandler) currentYear() int {
	if h.Now == nil {
		return time.Now().Year()
	}
	return h.Now().Year()
}

// period reads month and year. Both are required unless optional is set, in
// which case ok reports whether either was given.
func (h *ReportHandler) period(r *http.Request, optional bool) (month, year int, ok bool, err error) {
	q := r.URL.Query()
	if optional && q.Get("month") == "" && q.Get("year") == "" {
		return 0, 0, false, nil
	}
	v := validation.Violations{}
	month = queryInt(r, "month", 0, v)
	year = queryInt(r, "year", h.currentYear(), v)
	if q.Get("month") == "" {
		v["month"] = "required"
	}
	return month, year, true, v.Err()
}

func (h *ReportHandler) MonthlyRevenue(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	year := queryInt(r, "year", h.currentYear(), v)
	if err := v.Err(); err != nil {
		writeError(w, r, err)
		return
	}
	sales, err := h.Reports.MonthlyRevenue(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"year": year, "months": monthlySalesViews(sales)})
}

func (h *ReportHandler) RevenueByService(w http.ResponseWriter, r *http.Request) {
	month, year, _, err := h.period(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := h.Reports.RevenueByService(r.Context(), month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"month": month, "year": year, "services": serviceRevenueViews(rows)})
}

// TotalRevenue is scoped to a month when month/year are given and covers
// the whole ledger otherwise.
func (h *ReportHandler) TotalRevenue(w http.ResponseWriter, r *http.Request) {
	month, year, scoped, err := h.period(r, true)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !scoped {
		total, err := h.Reports.TotalRevenue(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"total": money(total)})
		return
	}
	total, err := h.Reports.TotalRevenueForMonth(r.Context(), month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"month":             month,
		"year":              year,
		"total":             money(total.Sum),
		"transaction_count": total.TransactionCount,
	})
}

func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	month, year, _, err := h.period(r, false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.Reports.MonthlyReport(r.Context(), month, year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lines := make([]transactionLineView, len(rep.Transactions))
	for i, l := range rep.Transactions {
		lines[i] = transactionLineView{
			TransactionID:   l.TransactionID,
			TransactionDate: l.TransactionDate.Format(dateLayout),
			ProcessedBy:     l.ProcessedBy,
			PatientName:     l.PatientName,
			DentistName:     l.DentistName,
			ServiceName:     l.ServiceName,
			Quantity:        l.Quantity,
			LineTotal:       money(l.LineTotal),
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"month":             rep.Month,
		"year":              rep.Year,
		"transactions":      lines,
		"services":          serviceRevenueViews(rep.ByService),
		"total":             money(rep.Total.Sum),
		"transaction_count": rep.Total.TransactionCount,
	})
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	year := queryInt(r, "year", h.currentYear(), v)
	if err := v.Err(); err != nil {
		writeError(w, r, err)
		return
	}
	sum, err := h.Reports.Dashboard(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"year":           sum.Year,
		"total_patients": sum.TotalPatients,
		"total_staff":    sum.TotalStaff,
		"total_revenue":  money(sum.TotalRevenue),
		"monthly_sales":  monthlySalesViews(sum.MonthlySales),
	})
}
