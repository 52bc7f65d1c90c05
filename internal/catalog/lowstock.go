// internal/catalog/lowstock.go
package catalog

import (
	"context"
	"fmt"
	"sort"

	"umkmpos/internal/inventory"
)

// EvaluateLowStock selects products whose stock is at or below their
// threshold, most critical shortage first. Equal shortages are ordered by
// name, then id.
func EvaluateLowStock(products []inventory.Product) []inventory.LowStockItem {
	items := make([]inventory.LowStockItem, 0)
	for _, p := range products {
		if p.StockQuantity > p.MinStockThreshold {
			continue
		}
		items = append(items, inventory.LowStockItem{
			ID:                p.ID,
			Name:              p.Name,
			CurrentStock:      p.StockQuantity,
			MinStockThreshold: p.MinStockThreshold,
			Difference:        p.MinStockThreshold - p.StockQuantity,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Difference != items[j].Difference {
			return items[i].Difference > items[j].Difference
		}
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
	return items
}

// ListLowStock evaluates the current catalog.
func (s *service) ListLowStock(ctx context.Context) ([]inventory.LowStockItem, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock items: %w", err)
	}
	return EvaluateLowStock(products), nil
}
