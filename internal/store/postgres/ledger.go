package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"umkmpos/internal/inventory"
)

const (
	transactionColumns = `id, transaction_date, total_amount, COALESCE(notes, '') AS notes, created_at`
	lineItemColumns    = `id, transaction_id, product_id, product_name, quantity, unit_price, subtotal`
)

// ListTransactions returns the ledger newest first, each entry with its items.
func (s *Store) ListTransactions(ctx context.Context) ([]inventory.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "store.list_transactions")
	defer span.End()

	txns := []inventory.Transaction{}
	err := s.db.SelectContext(ctx, &txns, `
		SELECT `+transactionColumns+`
		FROM sales_transactions
		ORDER BY transaction_date DESC, id DESC
	`)
	if err != nil {
		return nil, translate("list transactions", err)
	}
	if len(txns) == 0 {
		return txns, nil
	}

	ids := make([]int64, len(txns))
	for i, txn := range txns {
		ids[i] = txn.ID
	}
	items := []inventory.LineItem{}
	err = s.db.SelectContext(ctx, &items, `
		SELECT `+lineItemColumns+`
		FROM sales_transaction_items
		WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, id
	`, pq.Array(ids))
	if err != nil {
		return nil, translate("list transaction items", err)
	}

	byTxn := make(map[int64][]inventory.LineItem, len(txns))
	for _, item := range items {
		byTxn[item.TransactionID] = append(byTxn[item.TransactionID], item)
	}
	for i := range txns {
		txns[i].Items = byTxn[txns[i].ID]
		if txns[i].Items == nil {
			txns[i].Items = []inventory.LineItem{}
		}
	}

	span.SetAttributes(attribute.Int("transactions.count", len(txns)))
	return txns, nil
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (*inventory.Transaction, error) {
	ctx, span := s.tracer.Start(ctx, "store.get_transaction",
		trace.WithAttributes(attribute.Int64("transaction.id", id)),
	)
	defer span.End()

	var txn inventory.Transaction
	err := s.db.GetContext(ctx, &txn, `
		SELECT `+transactionColumns+`
		FROM sales_transactions
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &inventory.TransactionNotFoundError{ID: id}
		}
		return nil, translate("get transaction", err)
	}

	txn.Items = []inventory.LineItem{}
	err = s.db.SelectContext(ctx, &txn.Items, `
		SELECT `+lineItemColumns+`
		FROM sales_transaction_items
		WHERE transaction_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, translate("get transaction items", err)
	}
	return &txn, nil
}

// ListProductSales returns every product with lifetime sold quantity and
// revenue, highest revenue first.
func (s *Store) ListProductSales(ctx context.Context) ([]inventory.ProductWithSales, error) {
	ctx, span := s.tracer.Start(ctx, "store.list_product_sales")
	defer span.End()

	rows := []inventory.ProductWithSales{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT p.id, p.name, COALESCE(p.description, '') AS description, p.price,
			p.stock_quantity, p.min_stock_threshold, p.created_at, p.updated_at,
			COALESCE(SUM(i.quantity), 0) AS total_sold,
			COALESCE(SUM(i.subtotal), 0) AS total_revenue
		FROM products p
		LEFT JOIN sales_transaction_items i ON i.product_id = p.id
		GROUP BY p.id
		ORDER BY total_revenue DESC, p.name ASC, p.id ASC
	`)
	if err != nil {
		return nil, translate("list product sales", err)
	}
	return rows, nil
}

// ListSales returns one row per transaction in [from, to]. The inner join on
// line items drops headers without items.
func (s *Store) ListSales(ctx context.Context, from, to time.Time) ([]inventory.SaleSummary, error) {
	ctx, span := s.tracer.Start(ctx, "store.list_sales",
		trace.WithAttributes(
			attribute.String("range.from", from.Format(time.RFC3339)),
			attribute.String("range.to", to.Format(time.RFC3339)),
		),
	)
	defer span.End()

	sales := []inventory.SaleSummary{}
	err := s.db.SelectContext(ctx, &sales, `
		SELECT t.id AS transaction_id, t.transaction_date, t.total_amount,
			SUM(i.quantity) AS items_sold
		FROM sales_transactions t
		JOIN sales_transaction_items i ON i.transaction_id = t.id
		WHERE t.transaction_date >= $1 AND t.transaction_date <= $2
		GROUP BY t.id, t.transaction_date, t.total_amount
		ORDER BY t.transaction_date ASC, t.id ASC
	`, from, to)
	if err != nil {
		return nil, translate("list sales", err)
	}

	span.SetAttributes(attribute.Int("sales.count", len(sales)))
	return sales, nil
}
