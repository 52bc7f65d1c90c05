// internal/catalog/stock.go
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store"
)

// AdjustStock applies a signed delta to one product's stock. A zero delta is
// a legal touch that only refreshes updated_at.
func (s *service) AdjustStock(ctx context.Context, id int64, req AdjustStockRequest) (*inventory.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.adjust_stock",
		trace.WithAttributes(
			attribute.Int64("product.id", id),
			attribute.Int("stock.change", req.QuantityChange),
		),
	)
	defer span.End()

	var adjusted inventory.Product
	err := validateChange(req.QuantityChange)
	if err == nil {
		err = s.repo.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
			p, err := s.adjust(ctx, tx, id, req)
			if err != nil {
				return err
			}
			adjusted = p
			return nil
		})
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "adjustment rejected")
		s.logger.Warn("stock adjustment rejected",
			zap.Int64("product_id", id),
			zap.Int("quantity_change", req.QuantityChange),
			zap.Error(err))
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	span.SetAttributes(attribute.Int("stock.after", adjusted.StockQuantity))
	s.logger.Info("stock adjusted",
		zap.Int64("product_id", id),
		zap.Int("quantity_change", req.QuantityChange),
		zap.Int("stock_after", adjusted.StockQuantity),
		zap.String("reason", req.Reason))
	return &adjusted, nil
}

func (s *service) adjust(ctx context.Context, tx store.Tx, id int64, req AdjustStockRequest) (inventory.Product, error) {
	p, err := lockOne(ctx, tx, id)
	if err != nil {
		return inventory.Product{}, err
	}

	newStock := p.StockQuantity + req.QuantityChange
	if newStock < 0 {
		return inventory.Product{}, &inventory.StockAdjustmentError{
			ProductID:       id,
			CurrentStock:    p.StockQuantity,
			AttemptedChange: req.QuantityChange,
		}
	}
	if newStock > inventory.MaxQuantity {
		return inventory.Product{}, inventory.Invalid("quantity_change", "stock would exceed %d", inventory.MaxQuantity)
	}

	p.StockQuantity = newStock
	p.UpdatedAt = s.now()
	if err := tx.SaveProduct(ctx, p); err != nil {
		return inventory.Product{}, err
	}
	err = tx.AppendMovements(ctx, []inventory.StockMovement{
		newMovement(p, req.QuantityChange, inventory.MovementAdjustment, req.Reason, p.UpdatedAt),
	})
	if err != nil {
		return inventory.Product{}, err
	}
	return p, nil
}

// validateChange bounds a delta so that current stock plus delta cannot
// overflow before it is compared against the stock column range.
func validateChange(change int) error {
	if change < -inventory.MaxQuantity || change > inventory.MaxQuantity {
		return inventory.Invalid("quantity_change", "must be within ±%d", inventory.MaxQuantity)
	}
	return nil
}

func newMovement(p inventory.Product, change int, kind inventory.MovementKind, reason string, at time.Time) inventory.StockMovement {
	return inventory.StockMovement{
		ID:         uuid.New(),
		ProductID:  p.ID,
		Change:     change,
		StockAfter: p.StockQuantity,
		Kind:       kind,
		Reason:     reason,
		CreatedAt:  at,
	}
}
