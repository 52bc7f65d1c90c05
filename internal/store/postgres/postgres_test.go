package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umkmpos/internal/inventory"
	"umkmpos/internal/sales"
	"umkmpos/internal/store"
)

// setupTestDB connects to the database named by DATABASE_URL or the PG*
// variables and resets the schema. It skips the test when no server answers.
func setupTestDB(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		get := func(key, fallback string) string {
			if v := os.Getenv(key); v != "" {
				return v
			}
			return fallback
		}
		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			get("PGHOST", "localhost"), get("PGPORT", "5432"), get("PGUSER", "user"),
			get("PGPASSWORD", "password"), get("PGDATABASE", "testdb"))
	}

	db, err := sqlx.Open("postgres", dsn)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		t.Skipf("skipping postgres tests: could not connect to postgres: %v", err)
	}

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	_, err = db.Exec(`TRUNCATE stock_movements, sales_transaction_items, sales_transactions, products RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return s
}

func createProduct(t *testing.T, s *Store, name, price string, stock int) *inventory.Product {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	p, err := s.CreateProduct(context.Background(), inventory.Product{
		Name:              name,
		Price:             decimal.RequireFromString(price),
		StockQuantity:     stock,
		MinStockThreshold: 5,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	require.NoError(t, err)
	return p
}

// sell writes a sale directly through the Tx contract.
func sell(t *testing.T, s *Store, when time.Time, p *inventory.Product, qty int) *inventory.Transaction {
	t.Helper()
	var saved *inventory.Transaction
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		locked, err := tx.LockProducts(ctx, []int64{p.ID})
		if err != nil {
			return err
		}
		subtotal := inventory.Subtotal(locked[0].Price, qty)
		saved, err = tx.InsertTransaction(ctx, inventory.Transaction{
			TransactionDate: when,
			TotalAmount:     subtotal,
			CreatedAt:       when,
			Items: []inventory.LineItem{{
				ProductID:   p.ID,
				ProductName: locked[0].Name,
				Quantity:    qty,
				UnitPrice:   locked[0].Price,
				Subtotal:    subtotal,
			}},
		})
		if err != nil {
			return err
		}
		updated := locked[0]
		updated.StockQuantity -= qty
		updated.UpdatedAt = when
		if err := tx.SaveProduct(ctx, updated); err != nil {
			return err
		}
		return tx.AppendMovements(ctx, []inventory.StockMovement{{
			ProductID:     p.ID,
			Change:        -qty,
			StockAfter:    updated.StockQuantity,
			Kind:          inventory.MovementSale,
			TransactionID: &saved.ID,
			CreatedAt:     when,
		}})
	})
	require.NoError(t, err)
	return saved
}

func TestCatalogRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	b := createProduct(t, s, "Teh", "15.75", 10)
	a := createProduct(t, s, "Kopi", "25.50", 2)

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, a.ID, products[0].ID)
	assert.Equal(t, b.ID, products[1].ID)
	assert.Equal(t, "25.50", products[0].Price.StringFixed(2))

	got, err := s.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.StockQuantity)
	assert.Empty(t, got.Description)

	_, err = s.GetProduct(ctx, 12345)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestWithinTxRollsBack(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createProduct(t, s, "Gula", "12.00", 10)

	boom := fmt.Errorf("boom")
	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		locked, err := tx.LockProducts(ctx, []int64{p.ID, 999})
		require.NoError(t, err)
		require.Len(t, locked, 1)
		locked[0].StockQuantity = 1
		require.NoError(t, tx.SaveProduct(ctx, locked[0]))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.StockQuantity)
}

func TestNegativeStockIsRejectedByConstraint(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createProduct(t, s, "Garam", "3.00", 1)

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		bad := *p
		bad.StockQuantity = -1
		return tx.SaveProduct(ctx, bad)
	})
	assert.ErrorIs(t, err, inventory.ErrInsufficientStock)
}

func TestLedgerQueries(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	kopi := createProduct(t, s, "Kopi", "25.50", 10)
	teh := createProduct(t, s, "Teh", "15.75", 10)

	day := time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)
	first := sell(t, s, day, kopi, 2)
	second := sell(t, s, day.Add(time.Hour), teh, 4)

	txns, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, second.ID, txns[0].ID)
	require.Len(t, txns[1].Items, 1)
	assert.Equal(t, "51.00", txns[1].TotalAmount.StringFixed(2))

	got, err := s.GetTransaction(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Kopi", got.Items[0].ProductName)

	_, err = s.GetTransaction(ctx, 999)
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	rows, err := s.ListProductSales(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, teh.ID, rows[0].ID)
	assert.Equal(t, 4, rows[0].TotalSold)
	assert.Equal(t, "63.00", rows[0].TotalRevenue.StringFixed(2))

	sales, err := s.ListSales(ctx, day.Truncate(24*time.Hour), day.Truncate(24*time.Hour).Add(24*time.Hour-time.Millisecond))
	require.NoError(t, err)
	require.Len(t, sales, 2)
	assert.Equal(t, 2, sales[0].ItemsSold)

	movements, err := s.ListStockMovements(ctx, teh.ID, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, 6, movements[0].StockAfter)
	require.NotNil(t, movements[0].TransactionID)
	assert.Equal(t, second.ID, *movements[0].TransactionID)

	err = s.DeleteProduct(ctx, kopi.ID)
	assert.ErrorIs(t, err, inventory.ErrConflictingReference)
}

func TestIntegrityCounts(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()
	p := createProduct(t, s, "Kopi", "10.00", 10)
	sell(t, s, time.Now().UTC(), p, 1)

	_, err := s.db.Exec(`INSERT INTO sales_transactions (total_amount) VALUES (5.00)`)
	require.NoError(t, err)

	n, err := s.CountNegativeStock(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.CountTotalMismatches(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.CountSubtotalMismatches(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.CountEmptyTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConcurrentSalesCannotOverdraw(t *testing.T) {
	const buyers, stock = 12, 5
	s := setupTestDB(t)
	ctx := context.Background()
	p := createProduct(t, s, "Kopi", "10.00", stock)
	svc := sales.NewService(s, nil)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		short     atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.CommitSale(ctx, sales.CommitSaleRequest{Items: []sales.SaleItem{{ProductID: p.ID, Quantity: 1}}})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, inventory.ErrInsufficientStock):
				short.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, stock, succeeded.Load())
	assert.EqualValues(t, buyers-stock, short.Load())

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.StockQuantity)

	txns, err := s.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txns, stock)
	movements, err := s.ListStockMovements(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.Len(t, movements, stock)
}

func TestOutOfRangeValuesAreValidationErrors(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	_, err := s.CreateProduct(ctx, inventory.Product{
		Name:          "Besar",
		Price:         decimal.RequireFromString("10.00"),
		StockQuantity: 3000000000,
	})
	assert.ErrorIs(t, err, inventory.ErrValidation)
	assert.NotErrorIs(t, err, inventory.ErrStoreUnavailable)

	_, err = s.CreateProduct(ctx, inventory.Product{
		Name:  "Mahal",
		Price: decimal.RequireFromString("10000000000.00"),
	})
	assert.ErrorIs(t, err, inventory.ErrValidation)
}
