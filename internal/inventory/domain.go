// internal/inventory/domain.go

// Package inventory holds the shop's domain model shared by the catalog, sales
// and reporting services and by every store implementation.
package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMinStockThreshold is applied when a product is created without an
// explicit reorder threshold.
const DefaultMinStockThreshold = 10

// Product is a sellable catalog entry.
type Product struct {
	ID                int64           `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	Description       string          `json:"description,omitempty" db:"description"`
	Price             decimal.Decimal `json:"price" db:"price"`
	StockQuantity     int             `json:"stock_quantity" db:"stock_quantity"`
	MinStockThreshold int             `json:"min_stock_threshold" db:"min_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// Transaction is an immutable sales ledger entry.
type Transaction struct {
	ID              int64           `json:"id" db:"id"`
	TransactionDate time.Time       `json:"transaction_date" db:"transaction_date"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	Notes           string          `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	Items           []LineItem      `json:"items" db:"-"`
}

// LineItem records one product sold within a transaction. ProductName and
// UnitPrice are snapshots taken at sale time and never follow later catalog
// edits.
type LineItem struct {
	ID            int64           `json:"id" db:"id"`
	TransactionID int64           `json:"transaction_id" db:"transaction_id"`
	ProductID     int64           `json:"product_id" db:"product_id"`
	ProductName   string          `json:"product_name" db:"product_name"`
	Quantity      int             `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	Subtotal      decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// MovementKind tells what caused a stock change.
type MovementKind string

const (
	MovementSale       MovementKind = "sale"
	MovementAdjustment MovementKind = "adjustment"
)

// StockMovement is one append-only journal entry for a stock change.
type StockMovement struct {
	ID            uuid.UUID    `json:"id" db:"id"`
	ProductID     int64        `json:"product_id" db:"product_id"`
	Change        int          `json:"quantity_change" db:"quantity_change"`
	StockAfter    int          `json:"stock_after" db:"stock_after"`
	Kind          MovementKind `json:"kind" db:"kind"`
	Reason        string       `json:"reason,omitempty" db:"reason"`
	TransactionID *int64       `json:"transaction_id,omitempty" db:"transaction_id"`
	CreatedAt     time.Time    `json:"created_at" db:"created_at"`
}

// LowStockItem is a product at or below its reorder threshold.
type LowStockItem struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	CurrentStock      int    `json:"current_stock"`
	MinStockThreshold int    `json:"min_stock_threshold"`
	Difference        int    `json:"difference"`
}

// ProductWithSales is a product together with its lifetime sales totals.
type ProductWithSales struct {
	Product
	TotalSold    int             `json:"total_sold" db:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue" db:"total_revenue"`
}

// SaleSummary is the per-transaction input to report aggregation. Only
// transactions with at least one line item produce a SaleSummary.
type SaleSummary struct {
	TransactionID   int64           `db:"transaction_id"`
	TransactionDate time.Time       `db:"transaction_date"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	ItemsSold       int             `db:"items_sold"`
}
