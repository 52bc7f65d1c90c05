package postgres

import (
	"context"
	"database/sql"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"umkmpos/internal/inventory"
)

const productColumns = `id, name, COALESCE(description, '') AS description, price, stock_quantity, min_stock_threshold, created_at, updated_at`

// ListProducts returns the catalog ordered by name.
func (s *Store) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	ctx, span := s.tracer.Start(ctx, "store.list_products")
	defer span.End()

	products := []inventory.Product{}
	err := s.db.SelectContext(ctx, &products, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, translate("list products", err)
	}

	span.SetAttributes(attribute.Int("products.count", len(products)))
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*inventory.Product, error) {
	ctx, span := s.tracer.Start(ctx, "store.get_product",
		trace.WithAttributes(attribute.Int64("product.id", id)),
	)
	defer span.End()

	var p inventory.Product
	err := s.db.GetContext(ctx, &p, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &inventory.ProductNotFoundError{ID: id}
		}
		return nil, translate("get product", err)
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p inventory.Product) (*inventory.Product, error) {
	ctx, span := s.tracer.Start(ctx, "store.create_product")
	defer span.End()

	var created inventory.Product
	err := s.db.GetContext(ctx, &created, `
		INSERT INTO products (name, description, price, stock_quantity, min_stock_threshold, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
		RETURNING `+productColumns,
		p.Name, p.Description, p.Price, p.StockQuantity, p.MinStockThreshold, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return nil, translate("create product", err)
	}

	span.SetAttributes(attribute.Int64("product.id", created.ID))
	return &created, nil
}

// DeleteProduct hard-deletes a product that never appeared on a sale. The
// foreign key on sales_transaction_items backs the explicit check.
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "store.delete_product",
		trace.WithAttributes(attribute.Int64("product.id", id)),
	)
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return translate("begin transaction", err)
	}
	defer tx.Rollback()

	var locked int64
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &inventory.ProductNotFoundError{ID: id}
		}
		return translate("lock product", err)
	}

	var sold bool
	if err := tx.GetContext(ctx, &sold, `SELECT EXISTS (SELECT 1 FROM sales_transaction_items WHERE product_id = $1)`, id); err != nil {
		return translate("check sales history", err)
	}
	if sold {
		return &inventory.ProductHasSalesHistoryError{ProductID: id}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
		if errors.Is(translate("delete product", err), inventory.ErrConflictingReference) {
			return &inventory.ProductHasSalesHistoryError{ProductID: id}
		}
		return translate("delete product", err)
	}

	if err := tx.Commit(); err != nil {
		return translate("commit transaction", err)
	}
	return nil
}
