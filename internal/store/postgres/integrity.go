package postgres

import "context"

func (s *Store) count(ctx context.Context, op, query string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "store.integrity."+op)
	defer span.End()

	var n int
	if err := s.db.GetContext(ctx, &n, query); err != nil {
		span.RecordError(err)
		return 0, translate(op, err)
	}
	return n, nil
}

func (s *Store) CountNegativeStock(ctx context.Context) (int, error) {
	return s.count(ctx, "negative_stock", `SELECT COUNT(*) FROM products WHERE stock_quantity < 0`)
}

func (s *Store) CountTotalMismatches(ctx context.Context) (int, error) {
	return s.count(ctx, "total_mismatches", `
		SELECT COUNT(*) FROM (
			SELECT t.id
			FROM sales_transactions t
			JOIN sales_transaction_items i ON i.transaction_id = t.id
			GROUP BY t.id, t.total_amount
			HAVING SUM(i.subtotal) <> t.total_amount
		) mismatched
	`)
}

func (s *Store) CountSubtotalMismatches(ctx context.Context) (int, error) {
	return s.count(ctx, "subtotal_mismatches", `
		SELECT COUNT(*) FROM sales_transaction_items
		WHERE subtotal <> quantity * unit_price
	`)
}

func (s *Store) CountEmptyTransactions(ctx context.Context) (int, error) {
	return s.count(ctx, "empty_transactions", `
		SELECT COUNT(*) FROM sales_transactions t
		WHERE NOT EXISTS (SELECT 1 FROM sales_transaction_items i WHERE i.transaction_id = t.id)
	`)
}
