// internal/sales/service.go
package sales

import (
	"context"

	"umkmpos/internal/inventory"
)

// Service defines the interface for the sales service.
type Service interface {
	CommitSale(ctx context.Context, req CommitSaleRequest) (*inventory.Transaction, error)
	ListTransactions(ctx context.Context) ([]inventory.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*inventory.Transaction, error)
	ListProductsWithSales(ctx context.Context) ([]inventory.ProductWithSales, error)
}
