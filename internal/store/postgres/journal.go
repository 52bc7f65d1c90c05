package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store"
)

// AppendMovements writes journal entries inside the caller's transaction so
// they commit or roll back with the stock change they describe.
func (t *pgTx) AppendMovements(ctx context.Context, movements []inventory.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	ctx, span := t.tracer.Start(ctx, "journal.append",
		trace.WithAttributes(attribute.Int("movement.count", len(movements))),
	)
	defer span.End()

	stmt, err := t.tx.PreparexContext(ctx, `
		INSERT INTO stock_movements (id, product_id, quantity_change, stock_after, kind, reason, transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
	`)
	if err != nil {
		return translate("prepare movement insert", err)
	}
	defer stmt.Close()

	for i, m := range movements {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = time.Now().UTC()
		}
		_, err := stmt.ExecContext(ctx, m.ID, m.ProductID, m.Change, m.StockAfter, string(m.Kind), m.Reason, m.TransactionID, m.CreatedAt)
		if err != nil {
			return translate(fmt.Sprintf("insert movement %d", i), err)
		}

		span.AddEvent("movement.appended", trace.WithAttributes(
			attribute.String("movement.id", m.ID.String()),
			attribute.Int64("product.id", m.ProductID),
			attribute.Int("movement.change", m.Change),
			attribute.String("movement.kind", string(m.Kind)),
		))
	}
	return nil
}

// ListStockMovements returns the newest journal entries for a product.
func (s *Store) ListStockMovements(ctx context.Context, productID int64, limit int) ([]inventory.StockMovement, error) {
	limit = store.ClampMovementLimit(limit)
	ctx, span := s.tracer.Start(ctx, "journal.load",
		trace.WithAttributes(
			attribute.Int64("product.id", productID),
			attribute.Int("limit", limit),
		),
	)
	defer span.End()

	movements := []inventory.StockMovement{}
	err := s.db.SelectContext(ctx, &movements, `
		SELECT id, product_id, quantity_change, stock_after, kind, COALESCE(reason, '') AS reason, transaction_id, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, translate("list stock movements", err)
	}

	span.SetAttributes(attribute.Int("movements.loaded", len(movements)))
	return movements, nil
}
