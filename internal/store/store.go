// internal/store/store.go

// Package store defines the persistence contract shared by the PostgreSQL and
// in-memory stores.
package store

import (
	"context"
	"time"

	"umkmpos/internal/inventory"
)

// Repository is the Catalog Store, Transaction Ledger and movement journal
// behind one handle. Every store error that is not a domain error satisfies
// errors.Is(err, inventory.ErrStoreUnavailable).
type Repository interface {
	ListProducts(ctx context.Context) ([]inventory.Product, error)
	GetProduct(ctx context.Context, id int64) (*inventory.Product, error)
	CreateProduct(ctx context.Context, p inventory.Product) (*inventory.Product, error)
	// DeleteProduct fails with ProductHasSalesHistoryError when any line item
	// references the product.
	DeleteProduct(ctx context.Context, id int64) error

	ListTransactions(ctx context.Context) ([]inventory.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*inventory.Transaction, error)
	ListProductSales(ctx context.Context) ([]inventory.ProductWithSales, error)
	// ListSales returns one summary per transaction in [from, to] that has at
	// least one line item.
	ListSales(ctx context.Context, from, to time.Time) ([]inventory.SaleSummary, error)
	ListStockMovements(ctx context.Context, productID int64, limit int) ([]inventory.StockMovement, error)

	// WithinTx runs fn in a single all-or-nothing unit. A non-nil error from
	// fn discards every write made through tx.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	Close() error
}

// Tx is the write side of an open store transaction.
type Tx interface {
	// LockProducts fetches the products with the given ids and holds them
	// against concurrent writers until the transaction ends. Missing ids are
	// simply absent from the result.
	LockProducts(ctx context.Context, ids []int64) ([]inventory.Product, error)
	// SaveProduct writes every mutable column of p.
	SaveProduct(ctx context.Context, p inventory.Product) error
	// InsertTransaction writes the header and its items and returns them with
	// ids assigned.
	InsertTransaction(ctx context.Context, txn inventory.Transaction) (*inventory.Transaction, error)
	AppendMovements(ctx context.Context, movements []inventory.StockMovement) error
}

const (
	DefaultMovementLimit = 50
	MaxMovementLimit     = 500
)

// ClampMovementLimit normalises a caller supplied journal page size.
func ClampMovementLimit(limit int) int {
	if limit <= 0 {
		return DefaultMovementLimit
	}
	if limit > MaxMovementLimit {
		return MaxMovementLimit
	}
	return limit
}
