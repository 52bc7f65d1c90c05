// internal/catalog/service.go
package catalog

import (
	"context"

	"umkmpos/internal/inventory"
)

// Service defines the interface for the catalog service.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*inventory.Product, error)
	ListProducts(ctx context.Context) ([]inventory.Product, error)
	GetProduct(ctx context.Context, id int64) (*inventory.Product, error)
	UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*inventory.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, req AdjustStockRequest) (*inventory.Product, error)
	ListLowStock(ctx context.Context) ([]inventory.LowStockItem, error)
	ListStockMovements(ctx context.Context, id int64, limit int) ([]inventory.StockMovement, error)
}
