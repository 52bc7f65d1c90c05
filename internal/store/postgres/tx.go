package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"umkmpos/internal/inventory"
)

// pgTx is the write side of an open PostgreSQL transaction.
type pgTx struct {
	tx     *sqlx.Tx
	tracer trace.Tracer
}

// LockProducts takes row locks in ascending id order so two sales touching
// the same products cannot deadlock.
func (t *pgTx) LockProducts(ctx context.Context, ids []int64) ([]inventory.Product, error) {
	ctx, span := t.tracer.Start(ctx, "store.lock_products",
		trace.WithAttributes(attribute.Int("products.requested", len(ids))),
	)
	defer span.End()

	products := []inventory.Product{}
	err := t.tx.SelectContext(ctx, &products, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE
	`, pq.Array(ids))
	if err != nil {
		return nil, translate("lock products", err)
	}

	span.SetAttributes(attribute.Int("products.locked", len(products)))
	return products, nil
}

func (t *pgTx) SaveProduct(ctx context.Context, p inventory.Product) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE products
		SET name = $1, description = NULLIF($2, ''), price = $3,
			stock_quantity = $4, min_stock_threshold = $5, updated_at = $6
		WHERE id = $7
	`, p.Name, p.Description, p.Price, p.StockQuantity, p.MinStockThreshold, p.UpdatedAt, p.ID)
	if err != nil {
		return translate(fmt.Sprintf("save product %d", p.ID), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return translate("save product", err)
	}
	if affected == 0 {
		return &inventory.ProductNotFoundError{ID: p.ID}
	}
	return nil
}

// InsertTransaction writes the header and every line item, returning them
// with database ids.
func (t *pgTx) InsertTransaction(ctx context.Context, txn inventory.Transaction) (*inventory.Transaction, error) {
	ctx, span := t.tracer.Start(ctx, "store.insert_transaction",
		trace.WithAttributes(attribute.Int("items.count", len(txn.Items))),
	)
	defer span.End()

	created := txn
	err := t.tx.QueryRowxContext(ctx, `
		INSERT INTO sales_transactions (transaction_date, total_amount, notes, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING id, transaction_date, created_at
	`, txn.TransactionDate, txn.TotalAmount, txn.Notes, txn.CreatedAt).Scan(&created.ID, &created.TransactionDate, &created.CreatedAt)
	if err != nil {
		return nil, translate("insert transaction", err)
	}

	stmt, err := t.tx.PreparexContext(ctx, `
		INSERT INTO sales_transaction_items (transaction_id, product_id, product_name, quantity, unit_price, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`)
	if err != nil {
		return nil, translate("prepare line item insert", err)
	}
	defer stmt.Close()

	created.Items = make([]inventory.LineItem, len(txn.Items))
	for i, item := range txn.Items {
		item.TransactionID = created.ID
		err := stmt.QueryRowxContext(ctx, item.TransactionID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.Subtotal).Scan(&item.ID)
		if err != nil {
			return nil, translate(fmt.Sprintf("insert line item %d", i), err)
		}
		created.Items[i] = item
	}

	span.SetAttributes(attribute.Int64("transaction.id", created.ID))
	return &created, nil
}
