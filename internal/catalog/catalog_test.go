package catalog

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store/memory"
)

// testingT is satisfied by both *testing.T and *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

func setupService(t testingT) (Service, *memory.Store) {
	t.Helper()
	repo := memory.New()
	return NewService(repo, nil), repo
}

func intPtr(v int) *int { return &v }

func mustCreate(t testingT, svc Service, name, price string, stock, threshold int) *inventory.Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:              name,
		Price:             decimal.RequireFromString(price),
		StockQuantity:     stock,
		MinStockThreshold: intPtr(threshold),
	})
	require.NoError(t, err)
	return p
}

func TestCreateProduct(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	t.Run("defaults threshold and trims name", func(t *testing.T) {
		p, err := svc.CreateProduct(ctx, CreateProductRequest{
			Name:          "  Kopi Susu  ",
			Price:         decimal.RequireFromString("12000.00"),
			StockQuantity: 30,
		})
		require.NoError(t, err)
		assert.NotZero(t, p.ID)
		assert.Equal(t, "Kopi Susu", p.Name)
		assert.Equal(t, inventory.DefaultMinStockThreshold, p.MinStockThreshold)
		assert.False(t, p.CreatedAt.IsZero())
		assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	})

	t.Run("rejects invalid fields", func(t *testing.T) {
		cases := map[string]CreateProductRequest{
			"blank name":         {Name: "   ", Price: decimal.NewFromInt(1)},
			"zero price":         {Name: "x", Price: decimal.Zero},
			"negative price":     {Name: "x", Price: decimal.NewFromInt(-5)},
			"three decimals":     {Name: "x", Price: decimal.RequireFromString("1.005")},
			"negative stock":     {Name: "x", Price: decimal.NewFromInt(1), StockQuantity: -1},
			"negative threshold": {Name: "x", Price: decimal.NewFromInt(1), MinStockThreshold: intPtr(-1)},
			"stock too large":    {Name: "x", Price: decimal.NewFromInt(1), StockQuantity: inventory.MaxQuantity + 1},
			"threshold too large": {
				Name: "x", Price: decimal.NewFromInt(1), MinStockThreshold: intPtr(inventory.MaxQuantity + 1),
			},
			"price too large": {Name: "x", Price: decimal.RequireFromString("10000000000.00")},
		}
		for name, req := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := svc.CreateProduct(ctx, req)
				assert.ErrorIs(t, err, inventory.ErrValidation)
			})
		}
	})
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetProduct(context.Background(), 42)
	var notFound *inventory.ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(42), notFound.ID)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}

func TestListProductsOrderedByName(t *testing.T) {
	svc, _ := setupService(t)
	mustCreate(t, svc, "Teh", "5000", 1, 0)
	mustCreate(t, svc, "Air", "3000", 1, 0)
	mustCreate(t, svc, "Kopi", "8000", 1, 0)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, []string{"Air", "Kopi", "Teh"}, []string{products[0].Name, products[1].Name, products[2].Name})
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	edited := created.Add(time.Hour)
	clock := created
	repo := memory.New()
	svc := NewService(repo, nil, WithClock(func() time.Time { return clock }))

	p := mustCreate(t, svc, "Gula", "15000", 20, 5)

	t.Run("partial update keeps untouched fields", func(t *testing.T) {
		clock = edited
		price := decimal.RequireFromString("16000.50")
		updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Price: &price})
		require.NoError(t, err)
		assert.Equal(t, "Gula", updated.Name)
		assert.True(t, price.Equal(updated.Price))
		assert.Equal(t, 20, updated.StockQuantity)
		assert.Equal(t, edited, updated.UpdatedAt)
		assert.Equal(t, created, updated.CreatedAt)
	})

	t.Run("stock overwrite is journaled", func(t *testing.T) {
		updated, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{StockQuantity: intPtr(12)})
		require.NoError(t, err)
		assert.Equal(t, 12, updated.StockQuantity)

		movements, err := svc.ListStockMovements(ctx, p.ID, 0)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, -8, movements[0].Change)
		assert.Equal(t, 12, movements[0].StockAfter)
		assert.Equal(t, EditReason, movements[0].Reason)
	})

	t.Run("invalid update writes nothing", func(t *testing.T) {
		blank := " "
		_, err := svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{Name: &blank, StockQuantity: intPtr(99)})
		require.ErrorIs(t, err, inventory.ErrValidation)

		got, err := svc.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gula", got.Name)
		assert.Equal(t, 12, got.StockQuantity)

		_, err = svc.UpdateProduct(ctx, p.ID, UpdateProductRequest{StockQuantity: intPtr(inventory.MaxQuantity + 1)})
		require.ErrorIs(t, err, inventory.ErrValidation)
	})

	t.Run("missing product", func(t *testing.T) {
		_, err := svc.UpdateProduct(ctx, 999, UpdateProductRequest{StockQuantity: intPtr(1)})
		assert.ErrorIs(t, err, inventory.ErrNotFound)
	})
}

func TestDeleteProduct(t *testing.T) {
	svc, repo := setupService(t)
	ctx := context.Background()

	unsold := mustCreate(t, svc, "Unsold", "1000", 5, 0)
	sold := mustCreate(t, svc, "Sold", "2000", 5, 0)
	repo.SeedTransaction(inventory.Transaction{
		TransactionDate: time.Now().UTC(),
		TotalAmount:     decimal.RequireFromString("2000"),
		Items: []inventory.LineItem{{
			ProductID:   sold.ID,
			ProductName: sold.Name,
			Quantity:    1,
			UnitPrice:   sold.Price,
			Subtotal:    sold.Price,
		}},
	})

	require.NoError(t, svc.DeleteProduct(ctx, unsold.ID))
	_, err := svc.GetProduct(ctx, unsold.ID)
	assert.ErrorIs(t, err, inventory.ErrNotFound)

	err = svc.DeleteProduct(ctx, sold.ID)
	var history *inventory.ProductHasSalesHistoryError
	require.ErrorAs(t, err, &history)
	assert.Equal(t, sold.ID, history.ProductID)
	assert.ErrorIs(t, err, inventory.ErrConflictingReference)

	_, err = svc.GetProduct(ctx, sold.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteProduct(ctx, unsold.ID), inventory.ErrNotFound)
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("applies delta and journals reason", func(t *testing.T) {
		svc, _ := setupService(t)
		p := mustCreate(t, svc, "Beras", "12500", 50, 10)

		adjusted, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{QuantityChange: 25, Reason: "restock"})
		require.NoError(t, err)
		assert.Equal(t, 75, adjusted.StockQuantity)

		movements, err := svc.ListStockMovements(ctx, p.ID, 10)
		require.NoError(t, err)
		require.Len(t, movements, 1)
		assert.Equal(t, inventory.MovementAdjustment, movements[0].Kind)
		assert.Equal(t, 25, movements[0].Change)
		assert.Equal(t, 75, movements[0].StockAfter)
		assert.Equal(t, "restock", movements[0].Reason)
		assert.Nil(t, movements[0].TransactionID)
	})

	t.Run("rejects going below zero and keeps stock", func(t *testing.T) {
		svc, _ := setupService(t)
		p := mustCreate(t, svc, "Minyak", "18000", 50, 10)

		_, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{QuantityChange: -75})
		var adjErr *inventory.StockAdjustmentError
		require.ErrorAs(t, err, &adjErr)
		assert.Equal(t, 50, adjErr.CurrentStock)
		assert.Equal(t, -75, adjErr.AttemptedChange)
		assert.ErrorIs(t, err, inventory.ErrInsufficientStock)

		got, err := svc.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 50, got.StockQuantity)

		movements, err := svc.ListStockMovements(ctx, p.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, movements)
	})

	t.Run("zero change refreshes updated_at", func(t *testing.T) {
		clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		svc := NewService(memory.New(), nil, WithClock(func() time.Time { return clock }))
		p := mustCreate(t, svc, "Telur", "2500", 7, 10)

		clock = clock.Add(time.Minute)
		adjusted, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{})
		require.NoError(t, err)
		assert.Equal(t, 7, adjusted.StockQuantity)
		assert.True(t, adjusted.UpdatedAt.After(p.UpdatedAt))
	})

	t.Run("missing product", func(t *testing.T) {
		svc, _ := setupService(t)
		_, err := svc.AdjustStock(ctx, 7, AdjustStockRequest{QuantityChange: 1})
		assert.ErrorIs(t, err, inventory.ErrNotFound)
	})

	t.Run("rejects stock past the column range", func(t *testing.T) {
		svc, _ := setupService(t)
		p := mustCreate(t, svc, "Gula", "14000", inventory.MaxQuantity-1, 10)

		for _, change := range []int{2, inventory.MaxQuantity, math.MaxInt, math.MinInt} {
			_, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{QuantityChange: change})
			assert.ErrorIs(t, err, inventory.ErrValidation, "change %d", change)
		}

		got, err := svc.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, inventory.MaxQuantity-1, got.StockQuantity)

		adjusted, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{QuantityChange: 1})
		require.NoError(t, err)
		assert.Equal(t, inventory.MaxQuantity, adjusted.StockQuantity)
	})
}

func TestAdjustStockInverseLaw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		svc, _ := setupService(t)
		ctx := context.Background()
		start := rapid.IntRange(0, 1000).Draw(t, "start")
		q := rapid.IntRange(0, 1000).Draw(t, "q")
		p := mustCreate(t, svc, "Sabun", "4500", start, 10)

		_, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{QuantityChange: q})
		require.NoError(t, err)
		back, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{QuantityChange: -q})
		require.NoError(t, err)
		assert.Equal(t, start, back.StockQuantity)
	})
}

func TestAdjustStockNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		svc, _ := setupService(t)
		ctx := context.Background()
		p := mustCreate(t, svc, "Mie", "3000", rapid.IntRange(0, 50).Draw(t, "start"), 10)

		changes := rapid.SliceOfN(rapid.IntRange(-60, 60), 1, 20).Draw(t, "changes")
		for _, change := range changes {
			before, err := svc.GetProduct(ctx, p.ID)
			require.NoError(t, err)

			after, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{QuantityChange: change})
			if before.StockQuantity+change < 0 {
				require.True(t, errors.Is(err, inventory.ErrInsufficientStock))
				current, getErr := svc.GetProduct(ctx, p.ID)
				require.NoError(t, getErr)
				require.Equal(t, before.StockQuantity, current.StockQuantity)
				continue
			}
			require.NoError(t, err)
			require.GreaterOrEqual(t, after.StockQuantity, 0)
			require.Equal(t, before.StockQuantity+change, after.StockQuantity)
		}
	})
}

func TestListStockMovements(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "Kecap", "9000", 10, 2)

	for i := 1; i <= 3; i++ {
		_, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{QuantityChange: i})
		require.NoError(t, err)
	}

	movements, err := svc.ListStockMovements(ctx, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, 3, movements[0].Change)
	assert.Equal(t, 16, movements[0].StockAfter)
	assert.Equal(t, 2, movements[1].Change)

	_, err = svc.ListStockMovements(ctx, 404, 10)
	assert.ErrorIs(t, err, inventory.ErrNotFound)
}
