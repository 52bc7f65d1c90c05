// internal/reporting/domain.go
package reporting

import (
	"strings"

	"github.com/shopspring/decimal"

	"umkmpos/internal/inventory"
)

// Period selects both the default range length and the bucket size.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// DateLayout is the calendar-date form used by requests and bucket labels.
const DateLayout = "2006-01-02"

// ParsePeriod accepts the four period names, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return p, nil
	default:
		return "", inventory.Invalid("period", "must be one of daily, weekly, monthly, yearly; got %q", s)
	}
}

// ReportRequest names a period and a calendar range. EndDate may be empty.
type ReportRequest struct {
	Period    string
	StartDate string
	EndDate   string
}

// Totals are the aggregate figures shared by the summary and each bucket.
type Totals struct {
	TotalTransactions int             `json:"total_transactions"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalItemsSold    int             `json:"total_items_sold"`
}

// Summary covers the whole resolved range.
type Summary struct {
	Totals
	AverageTransactionValue decimal.Decimal `json:"average_transaction_value"`
}

// Bucket is one calendar slot of the series, labelled by its first day.
type Bucket struct {
	Date string `json:"date"`
	Totals
}

// Report is the result of BuildReport.
type Report struct {
	Period    Period   `json:"period"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Summary   Summary  `json:"summary"`
	Series    []Bucket `json:"data"`
}
