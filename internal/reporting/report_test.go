package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store/memory"
)

func seedSale(t *testing.T, repo *memory.Store, when time.Time, lines ...inventory.LineItem) inventory.Transaction {
	t.Helper()
	total := decimal.Zero
	for i := range lines {
		lines[i].Subtotal = inventory.Subtotal(lines[i].UnitPrice, lines[i].Quantity)
		total = total.Add(lines[i].Subtotal)
	}
	return repo.SeedTransaction(inventory.Transaction{
		TransactionDate: when,
		TotalAmount:     total,
		Items:           lines,
	})
}

func item(productID int64, qty int, price string) inventory.LineItem {
	return inventory.LineItem{
		ProductID:   productID,
		ProductName: "item",
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(price),
	}
}

func TestBuildReportDaily(t *testing.T) {
	repo := memory.New()
	svc := NewService(repo, nil, time.UTC)
	seedSale(t, repo, time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC), item(1, 4, "100"))
	seedSale(t, repo, time.Date(2024, 4, 3, 10, 0, 0, 0, time.UTC), item(1, 1, "50"))

	report, err := svc.BuildReport(context.Background(), ReportRequest{Period: "daily", StartDate: "2024-04-02"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.TotalTransactions)
	assert.Equal(t, "400.00", report.Summary.TotalRevenue.StringFixed(2))
	assert.Equal(t, 4, report.Summary.TotalItemsSold)
	assert.Equal(t, "400.00", report.Summary.AverageTransactionValue.StringFixed(2))
	assert.Equal(t, "2024-04-02", report.StartDate)
	assert.Equal(t, "2024-04-02", report.EndDate)
	require.Len(t, report.Series, 1)
	assert.Equal(t, "2024-04-02", report.Series[0].Date)
}

func TestBuildReportCountsRevenueOncePerTransaction(t *testing.T) {
	repo := memory.New()
	svc := NewService(repo, nil, time.UTC)
	at := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
	seedSale(t, repo, at, item(1, 2, "25.50"), item(2, 4, "15.75"))
	seedSale(t, repo, at.Add(time.Hour), item(1, 1, "10.00"))
	seedSale(t, repo, at.Add(2*time.Hour), item(2, 1, "10.01"))

	report, err := svc.BuildReport(context.Background(), ReportRequest{Period: "daily", StartDate: "2024-04-02"})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.TotalTransactions)
	assert.Equal(t, "134.01", report.Summary.TotalRevenue.StringFixed(2))
	assert.Equal(t, 8, report.Summary.TotalItemsSold)
	// 134.01 / 3 = 44.67
	assert.Equal(t, "44.67", report.Summary.AverageTransactionValue.StringFixed(2))
}

func TestBuildReportIgnoresTransactionsWithoutItems(t *testing.T) {
	repo := memory.New()
	svc := NewService(repo, nil, time.UTC)
	at := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
	repo.SeedTransaction(inventory.Transaction{TransactionDate: at, TotalAmount: decimal.RequireFromString("999.00")})
	seedSale(t, repo, at, item(1, 1, "10.00"))

	report, err := svc.BuildReport(context.Background(), ReportRequest{Period: "daily", StartDate: "2024-04-02"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.TotalTransactions)
	assert.Equal(t, "10.00", report.Summary.TotalRevenue.StringFixed(2))
	require.Len(t, report.Series, 1)
	assert.Equal(t, 1, report.Series[0].TotalTransactions)
}

func TestBuildReportEmptyRange(t *testing.T) {
	svc := NewService(memory.New(), nil, nil)

	report, err := svc.BuildReport(context.Background(), ReportRequest{Period: "monthly", StartDate: "2024-04-01"})
	require.NoError(t, err)
	assert.Zero(t, report.Summary.TotalTransactions)
	assert.True(t, report.Summary.TotalRevenue.IsZero())
	assert.True(t, report.Summary.AverageTransactionValue.IsZero())
	assert.NotNil(t, report.Series)
	assert.Empty(t, report.Series)
}

func TestBuildReportWeeklyBuckets(t *testing.T) {
	repo := memory.New()
	svc := NewService(repo, nil, time.UTC)
	// Monday 2024-04-01 through Sunday 2024-04-14.
	seedSale(t, repo, time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC), item(1, 1, "10"))
	seedSale(t, repo, time.Date(2024, 4, 7, 23, 59, 59, 0, time.UTC), item(1, 2, "10"))
	seedSale(t, repo, time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC), item(1, 3, "10"))
	seedSale(t, repo, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), item(1, 9, "10"))

	report, err := svc.BuildReport(context.Background(), ReportRequest{
		Period:    "weekly",
		StartDate: "2024-04-01",
		EndDate:   "2024-04-14",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Summary.TotalTransactions)
	require.Len(t, report.Series, 2)
	assert.Equal(t, "2024-04-01", report.Series[0].Date)
	assert.Equal(t, 2, report.Series[0].TotalTransactions)
	assert.Equal(t, "30.00", report.Series[0].TotalRevenue.StringFixed(2))
	assert.Equal(t, "2024-04-08", report.Series[1].Date)
	assert.Equal(t, 3, report.Series[1].TotalItemsSold)
}

func TestBuildReportInclusiveEndOfDay(t *testing.T) {
	repo := memory.New()
	svc := NewService(repo, nil, time.UTC)
	seedSale(t, repo, time.Date(2024, 4, 30, 23, 59, 59, 999_000_000, time.UTC), item(1, 1, "5"))
	seedSale(t, repo, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), item(1, 1, "7"))

	report, err := svc.BuildReport(context.Background(), ReportRequest{Period: "monthly", StartDate: "2024-04-01"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.TotalTransactions)
	assert.Equal(t, "2024-04-30", report.EndDate)
}

func TestBuildReportYearlyBuckets(t *testing.T) {
	repo := memory.New()
	svc := NewService(repo, nil, time.UTC)
	seedSale(t, repo, time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC), item(1, 1, "1"))
	seedSale(t, repo, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), item(1, 1, "2"))

	report, err := svc.BuildReport(context.Background(), ReportRequest{
		Period:    "yearly",
		StartDate: "2023-01-01",
		EndDate:   "2024-12-31",
	})
	require.NoError(t, err)
	require.Len(t, report.Series, 2)
	assert.Equal(t, "2023-01-01", report.Series[0].Date)
	assert.Equal(t, "2024-01-01", report.Series[1].Date)
}

func TestBuildReportIdempotent(t *testing.T) {
	repo := memory.New()
	svc := NewService(repo, nil, time.UTC)
	for i := 0; i < 5; i++ {
		seedSale(t, repo, time.Date(2024, 4, 1+i, 9, 0, 0, 0, time.UTC), item(1, i+1, "3.33"))
	}
	req := ReportRequest{Period: "weekly", StartDate: "2024-04-01"}

	first, err := svc.BuildReport(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.BuildReport(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildReportValidation(t *testing.T) {
	svc := NewService(memory.New(), nil, time.UTC)

	_, err := svc.BuildReport(context.Background(), ReportRequest{Period: "hourly", StartDate: "2024-04-01"})
	assert.ErrorIs(t, err, inventory.ErrValidation)

	_, err = svc.BuildReport(context.Background(), ReportRequest{Period: "daily", StartDate: "2024-04-02", EndDate: "2024-04-01"})
	assert.ErrorIs(t, err, inventory.ErrValidation)
}
