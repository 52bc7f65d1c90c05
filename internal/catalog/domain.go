// internal/catalog/domain.go
package catalog

import "github.com/shopspring/decimal"

// CreateProductRequest carries the fields of a new catalog entry.
// MinStockThreshold defaults to inventory.DefaultMinStockThreshold when nil.
type CreateProductRequest struct {
	Name              string          `json:"name"`
	Description       string          `json:"description,omitempty"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int             `json:"stock_quantity"`
	MinStockThreshold *int            `json:"min_stock_threshold,omitempty"`
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
type UpdateProductRequest struct {
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	StockQuantity     *int             `json:"stock_quantity,omitempty"`
	MinStockThreshold *int             `json:"min_stock_threshold,omitempty"`
}

// AdjustStockRequest applies a signed delta to a product's stock.
type AdjustStockRequest struct {
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason,omitempty"`
}

// EditReason is journaled when a product update overwrites the stock level.
const EditReason = "product edit"
