package services

import (
	"context"
	"sort"
	"time"

	"github.com/denticare/clinic-ledger/internal/pricing"
	"github.com/denticare/clinic-ledger/validation"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type MonthlySales struct {
	Month      int             `json:"month"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

type ServiceRevenue struct {
	ServiceID     uint            `db:"service_id" json:"service_id"`
	ServiceName   string          `db:"service_name" json:"service_name"`
	TotalQuantity int64           `db:"total_quantity" json:"total_quantity"`
	TotalRevenue  decimal.Decimal `db:"total_revenue" json:"total_revenue"`
}

type RevenueTotal struct {
	Sum              decimal.Decimal `db:"total"`
	TransactionCount int64           `db:"transaction_count"`
}

// TransactionLine is one row of the monthly transaction listing.
type TransactionLine struct {
	TransactionID   uint
	TransactionDate time.Time
	ProcessedBy     string
	PatientName     string
	DentistName     string
	ServiceName     string
	Quantity        int
	LineTotal       decimal.Decimal
}

type MonthlyReport struct {
	Month        int
	Year         int
	Transactions []TransactionLine
	ByService    []ServiceRevenue
	Total        RevenueTotal
}

type DashboardSummary struct {
	Year          int
	TotalPatients int64
	TotalStaff    int64
	TotalRevenue  decimal.Decimal
	MonthlySales  []MonthlySales
}

// ReportService aggregates revenue from line item snapshots. It never reads
// current catalog prices, so figures stay historically correct.
type ReportService struct {
	db *sqlx.DB
}

func NewReportService(db *sqlx.DB) *ReportService {
	return &ReportService{db: db}
}

func validateYear(year int, v validation.Violations) {
	validation.RangeInt("year", year, 1, 9999, v)
}

func validatePeriod(month, year int) error {
	v := make(validation.Violations)
	validation.RangeInt("month", month, 1, 12, v)
	validateYear(year, v)
	return v.Err()
}

func monthRange(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// MonthlyRevenue returns exactly twelve entries, January first. Months without
// sales report zero.
func (s *ReportService) MonthlyRevenue(ctx context.Context, year int) ([]MonthlySales, error) {
	v := make(validation.Violations)
	validateYear(year, v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	var rows []struct {
		TransactionDate    time.Time       `db:"transaction_date"`
		PriceAtTransaction decimal.Decimal `db:"price_at_transaction"`
		Quantity           int             `db:"quantity"`
	}
	q := s.db.Rebind(`
SELECT t.transaction_date, li.price_at_transaction, li.quantity
FROM transactions t
JOIN transaction_line_items li ON li.transaction_id = t.id
WHERE t.transaction_date >= ? AND t.transaction_date < ?`)
	if err := s.db.SelectContext(ctx, &rows, q, start, end); err != nil {
		return nil, persistence("monthly revenue", err)
	}

	out := make([]MonthlySales, 12)
	for i := range out {
		out[i] = MonthlySales{Month: i + 1, TotalSales: decimal.Zero}
	}
	for _, r := range rows {
		m := r.TransactionDate.UTC().Month()
		out[m-1].TotalSales = out[m-1].TotalSales.Add(pricing.LineTotal(r.PriceAtTransaction, r.Quantity))
	}
	for i := range out {
		out[i].TotalSales = pricing.Round(out[i].TotalSales)
	}
	return out, nil
}

// RevenueByService ranks services by revenue for one month, highest first.
// Equal revenues are ordered by service id.
func (s *ReportService) RevenueByService(ctx context.Context, month, year int) ([]ServiceRevenue, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	start, end := monthRange(month, year)
	out := []ServiceRevenue{}
	q := s.db.Rebind(`
SELECT s.id AS service_id, s.name AS service_name,
       COALESCE(SUM(li.quantity), 0) AS total_quantity,
       COALESCE(SUM(li.price_at_transaction * li.quantity), 0) AS total_revenue
FROM transaction_line_items li
JOIN transactions t ON t.id = li.transaction_id
JOIN services s ON s.id = li.service_id
WHERE t.transaction_date >= ? AND t.transaction_date < ?
GROUP BY s.id, s.name
ORDER BY total_revenue DESC, s.id ASC`)
	if err := s.db.SelectContext(ctx, &out, q, start, end); err != nil {
		return nil, persistence("revenue by service", err)
	}
	// SQLite sums in floating point; round before the final ordering.
	for i := range out {
		out[i].TotalRevenue = pricing.Round(out[i].TotalRevenue)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].TotalRevenue.Cmp(out[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return out[i].ServiceID < out[j].ServiceID
	})
	return out, nil
}

// TotalRevenueForMonth sums one month and counts its distinct transactions.
func (s *ReportService) TotalRevenueForMonth(ctx context.Context, month, year int) (RevenueTotal, error) {
	if err := validatePeriod(month, year); err != nil {
		return RevenueTotal{}, err
	}
	start, end := monthRange(month, year)
	var total RevenueTotal
	q := s.db.Rebind(`
SELECT COALESCE(SUM(li.price_at_transaction * li.quantity), 0) AS total,
       COUNT(DISTINCT t.id) AS transaction_count
FROM transactions t
JOIN transaction_line_items li ON li.transaction_id = t.id
WHERE t.transaction_date >= ? AND t.transaction_date < ?`)
	if err := s.db.GetContext(ctx, &total, q, start, end); err != nil {
		return RevenueTotal{}, persistence("total revenue for month", err)
	}
	total.Sum = pricing.Round(total.Sum)
	return total, nil
}

// TotalRevenue sums every line ever recorded.
func (s *ReportService) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(price_at_transaction * quantity), 0) FROM transaction_line_items`)
	if err != nil {
		return decimal.Zero, persistence("total revenue", err)
	}
	return pricing.Round(total), nil
}

func (s *ReportService) TotalPatients(ctx context.Context) (int64, error) {
	return s.count(ctx, "total patients", `SELECT COUNT(*) FROM patients`)
}

func (s *ReportService) TotalStaff(ctx context.Context) (int64, error) {
	return s.count(ctx, "total staff", `SELECT COUNT(*) FROM staff`)
}

func (s *ReportService) count(ctx context.Context, op, q string) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, q); err != nil {
		return 0, persistence(op, err)
	}
	return n, nil
}

// TransactionsForMonth lists every line recorded in the month in date order.
func (s *ReportService) TransactionsForMonth(ctx context.Context, month, year int) ([]TransactionLine, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	start, end := monthRange(month, year)
	rows, err := selectLedgerLines(ctx, s.db,
		`WHERE t.transaction_date >= ? AND t.transaction_date < ?
ORDER BY t.transaction_date ASC, t.id ASC, li.position ASC`, start, end)
	if err != nil {
		return nil, persistence("transactions for month", err)
	}
	out := make([]TransactionLine, len(rows))
	for i, r := range rows {
		out[i] = TransactionLine{
			TransactionID:   r.TransactionID,
			TransactionDate: r.TransactionDate.UTC(),
			ProcessedBy:     r.processedBy(),
			PatientName:     r.patientName(),
			DentistName:     r.dentistName(),
			ServiceName:     r.ServiceName,
			Quantity:        r.Quantity,
			LineTotal:       pricing.Round(pricing.LineTotal(r.PriceAtTransaction, r.Quantity)),
		}
	}
	return out, nil
}

// MonthlyReport gathers the listing, the per-service breakdown and the
// totals for one month.
func (s *ReportService) MonthlyReport(ctx context.Context, month, year int) (*MonthlyReport, error) {
	if err := validatePeriod(month, year); err != nil {
		return nil, err
	}
	rep := &MonthlyReport{Month: month, Year: year}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rep.Transactions, err = s.TransactionsForMonth(gctx, month, year)
		return err
	})
	g.Go(func() (err error) {
		rep.ByService, err = s.RevenueByService(gctx, month, year)
		return err
	})
	g.Go(func() (err error) {
		rep.Total, err = s.TotalRevenueForMonth(gctx, month, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rep, nil
}

// Dashboard collects the headline figures and the sales series for year.
func (s *ReportService) Dashboard(ctx context.Context, year int) (*DashboardSummary, error) {
	v := make(validation.Violations)
	validateYear(year, v)
	if err := v.Err(); err != nil {
		return nil, err
	}
	sum := &DashboardSummary{Year: year}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.TotalPatients, err = s.TotalPatients(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.TotalStaff, err = s.TotalStaff(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.TotalRevenue, err = s.TotalRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.MonthlySales, err = s.MonthlyRevenue(gctx, year)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sum, nil
}
