// internal/store/memory/integrity.go
package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"umkmpos/internal/inventory"
)

func (s *Store) CountNegativeStock(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.products {
		if p.StockQuantity < 0 {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountTotalMismatches(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, txn := range s.transactions {
		if len(txn.Items) == 0 {
			continue
		}
		sum := decimal.Zero
		for _, item := range txn.Items {
			sum = sum.Add(item.Subtotal)
		}
		if !sum.Equal(txn.TotalAmount) {
			n++
		}
	}
	return n, nil
}

func (s *Store) CountSubtotalMismatches(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, txn := range s.transactions {
		for _, item := range txn.Items {
			if !inventory.Subtotal(item.UnitPrice, item.Quantity).Equal(item.Subtotal) {
				n++
			}
		}
	}
	return n, nil
}

func (s *Store) CountEmptyTransactions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, txn := range s.transactions {
		if len(txn.Items) == 0 {
			n++
		}
	}
	return n, nil
}
