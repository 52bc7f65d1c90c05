// internal/reporting/aggregate.go
package reporting

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"umkmpos/internal/inventory"
)

// Aggregate folds per-transaction sales into the summary and the bucketed
// series. Each transaction's total is counted once, whatever its number of
// line items.
func Aggregate(period Period, sales []inventory.SaleSummary, loc *time.Location) (Summary, []Bucket) {
	summary := Summary{
		Totals:                  Totals{TotalRevenue: decimal.Zero},
		AverageTransactionValue: decimal.Zero,
	}
	buckets := make(map[string]*Bucket)

	for _, sale := range sales {
		summary.add(sale)

		label := BucketStart(period, sale.TransactionDate, loc).Format(DateLayout)
		b, ok := buckets[label]
		if !ok {
			b = &Bucket{Date: label, Totals: Totals{TotalRevenue: decimal.Zero}}
			buckets[label] = b
		}
		b.add(sale)
	}

	if summary.TotalTransactions > 0 {
		summary.AverageTransactionValue = summary.TotalRevenue.
			Div(decimal.NewFromInt(int64(summary.TotalTransactions))).
			Round(inventory.MoneyPlaces)
	}

	series := make([]Bucket, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return summary, series
}

func (t *Totals) add(sale inventory.SaleSummary) {
	t.TotalTransactions++
	t.TotalRevenue = t.TotalRevenue.Add(sale.TotalAmount)
	t.TotalItemsSold += sale.ItemsSold
}
