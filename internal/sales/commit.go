// internal/sales/commit.go
package sales

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store"
)

// line is a validated sale line after duplicate product entries are merged.
type line struct {
	productID int64
	quantity  int
}

// CommitSale records a sale and debits stock for every line as one unit.
// Either the header, every item, every stock debit and every journal entry
// are persisted, or nothing is.
func (s *service) CommitSale(ctx context.Context, req CommitSaleRequest) (*inventory.Transaction, error) {
	lines, err := mergeLines(req.Items)
	if err != nil {
		s.reject(ctx, err)
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "sales.commit",
		trace.WithAttributes(attribute.Int("sale.lines", len(lines))),
	)
	defer span.End()

	var committed *inventory.Transaction
	err = s.repo.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		txn, err := s.commit(ctx, tx, lines, req)
		if err != nil {
			return err
		}
		committed = txn
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sale rejected")
		s.reject(ctx, err)
		return nil, fmt.Errorf("failed to commit sale: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("transaction.id", committed.ID),
		attribute.String("transaction.total", committed.TotalAmount.StringFixed(inventory.MoneyPlaces)),
	)
	s.committed.Add(ctx, 1)
	s.logger.Info("sale committed",
		zap.Int64("transaction_id", committed.ID),
		zap.Int("lines", len(committed.Items)),
		zap.String("total_amount", committed.TotalAmount.StringFixed(inventory.MoneyPlaces)))
	return committed, nil
}

func (s *service) commit(ctx context.Context, tx store.Tx, lines []line, req CommitSaleRequest) (*inventory.Transaction, error) {
	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.productID
	}

	locked, err := tx.LockProducts(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[int64]inventory.Product, len(locked))
	for _, p := range locked {
		products[p.ID] = p
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return nil, &inventory.ProductsNotFoundError{MissingIDs: missing}
	}

	// All lines are checked before anything is written.
	for _, l := range lines {
		p := products[l.productID]
		if p.StockQuantity < l.quantity {
			return nil, &inventory.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.StockQuantity,
				Requested:   l.quantity,
			}
		}
	}

	now := s.now()
	txn := inventory.Transaction{
		TransactionDate: now,
		TotalAmount:     decimal.Zero,
		Notes:           req.Notes,
		CreatedAt:       now,
		Items:           make([]inventory.LineItem, 0, len(lines)),
	}
	if req.TransactionDate != nil {
		txn.TransactionDate = req.TransactionDate.UTC()
	}
	for _, l := range lines {
		p := products[l.productID]
		subtotal := inventory.Subtotal(p.Price, l.quantity)
		txn.Items = append(txn.Items, inventory.LineItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    l.quantity,
			UnitPrice:   p.Price,
			Subtotal:    subtotal,
		})
		txn.TotalAmount = txn.TotalAmount.Add(subtotal)
	}
	if txn.TotalAmount.GreaterThanOrEqual(inventory.MaxAmount) {
		return nil, inventory.Invalid("items", "sale total must be less than %s", inventory.MaxAmount)
	}

	saved, err := tx.InsertTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}

	movements := make([]inventory.StockMovement, 0, len(lines))
	for _, l := range lines {
		p := products[l.productID]
		p.StockQuantity -= l.quantity
		p.UpdatedAt = now
		if err := tx.SaveProduct(ctx, p); err != nil {
			return nil, err
		}
		movements = append(movements, inventory.StockMovement{
			ID:            uuid.New(),
			ProductID:     p.ID,
			Change:        -l.quantity,
			StockAfter:    p.StockQuantity,
			Kind:          inventory.MovementSale,
			TransactionID: &saved.ID,
			CreatedAt:     now,
		})
	}
	if err := tx.AppendMovements(ctx, movements); err != nil {
		return nil, err
	}
	return saved, nil
}

// mergeLines validates the request items and folds repeated products into a
// single line, keeping first-seen order.
func mergeLines(items []SaleItem) ([]line, error) {
	if len(items) == 0 {
		return nil, inventory.ErrEmptyItemList
	}

	lines := make([]line, 0, len(items))
	index := make(map[int64]int, len(items))
	for i, item := range items {
		if item.ProductID <= 0 {
			return nil, inventory.Invalid(fmt.Sprintf("items[%d].product_id", i), "must be positive")
		}
		field := fmt.Sprintf("items[%d].quantity", i)
		if item.Quantity <= 0 {
			return nil, inventory.Invalid(field, "must be positive")
		}
		if item.Quantity > inventory.MaxQuantity {
			return nil, inventory.Invalid(field, "must not exceed %d", inventory.MaxQuantity)
		}
		if at, ok := index[item.ProductID]; ok {
			// Both operands are within MaxQuantity, so the check cannot overflow.
			if lines[at].quantity > inventory.MaxQuantity-item.Quantity {
				return nil, inventory.Invalid(field, "combined quantity for product %d must not exceed %d",
					item.ProductID, inventory.MaxQuantity)
			}
			lines[at].quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, line{productID: item.ProductID, quantity: item.Quantity})
	}
	return lines, nil
}

func (s *service) reject(ctx context.Context, err error) {
	reason := "internal"
	switch {
	case errors.Is(err, inventory.ErrValidation):
		reason = "validation_failed"
	case errors.Is(err, inventory.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, inventory.ErrInsufficientStock):
		reason = "insufficient_stock"
	case errors.Is(err, inventory.ErrStoreUnavailable):
		reason = "store_unavailable"
	}
	s.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))

	if reason == "store_unavailable" || reason == "internal" {
		s.logger.Error("sale failed", zap.Error(err))
		return
	}
	s.logger.Warn("sale rejected", zap.String("reason", reason), zap.Error(err))
}
