// internal/store/memory/memory.go

// Package memory is a process-local store used by tests and the demo mode of
// the server. Writers are serialised by a mutex and stage their changes so a
// failed unit leaves nothing behind.
package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store"
)

var errTxClosed = errors.New("memory: transaction already finished")

type Store struct {
	mu           sync.RWMutex
	products     map[int64]inventory.Product
	transactions map[int64]inventory.Transaction
	movements    []inventory.StockMovement
	nextProduct  int64
	nextTxn      int64
	nextLineItem int64
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		products:     make(map[int64]inventory.Product),
		transactions: make(map[int64]inventory.Transaction),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) ListProducts(_ context.Context) ([]inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]inventory.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

func (s *Store) GetProduct(_ context.Context, id int64) (*inventory.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, &inventory.ProductNotFoundError{ID: id}
	}
	return &p, nil
}

func (s *Store) CreateProduct(_ context.Context, p inventory.Product) (*inventory.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextProduct++
	p.ID = s.nextProduct
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	s.products[p.ID] = p
	return &p, nil
}

func (s *Store) DeleteProduct(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return &inventory.ProductNotFoundError{ID: id}
	}
	for _, txn := range s.transactions {
		for _, item := range txn.Items {
			if item.ProductID == id {
				return &inventory.ProductHasSalesHistoryError{ProductID: id}
			}
		}
	}

	delete(s.products, id)
	s.movements = slices.DeleteFunc(s.movements, func(m inventory.StockMovement) bool {
		return m.ProductID == id
	})
	return nil
}

func (s *Store) ListTransactions(_ context.Context) ([]inventory.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txns := make([]inventory.Transaction, 0, len(s.transactions))
	for _, txn := range s.transactions {
		txns = append(txns, cloneTransaction(txn))
	}
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].TransactionDate.Equal(txns[j].TransactionDate) {
			return txns[i].TransactionDate.After(txns[j].TransactionDate)
		}
		return txns[i].ID > txns[j].ID
	})
	return txns, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (*inventory.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	txn, ok := s.transactions[id]
	if !ok {
		return nil, &inventory.TransactionNotFoundError{ID: id}
	}
	txn = cloneTransaction(txn)
	return &txn, nil
}

func (s *Store) ListProductSales(_ context.Context) ([]inventory.ProductWithSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[int64]*inventory.ProductWithSales, len(s.products))
	for id, p := range s.products {
		totals[id] = &inventory.ProductWithSales{Product: p, TotalRevenue: decimal.Zero}
	}
	for _, txn := range s.transactions {
		for _, item := range txn.Items {
			row, ok := totals[item.ProductID]
			if !ok {
				continue
			}
			row.TotalSold += item.Quantity
			row.TotalRevenue = row.TotalRevenue.Add(item.Subtotal)
		}
	}

	rows := make([]inventory.ProductWithSales, 0, len(totals))
	for _, row := range totals {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].TotalRevenue.Cmp(rows[j].TotalRevenue); c != 0 {
			return c > 0
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

func (s *Store) ListSales(_ context.Context, from, to time.Time) ([]inventory.SaleSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sales []inventory.SaleSummary
	for _, txn := range s.transactions {
		if len(txn.Items) == 0 || txn.TransactionDate.Before(from) || txn.TransactionDate.After(to) {
			continue
		}
		summary := inventory.SaleSummary{
			TransactionID:   txn.ID,
			TransactionDate: txn.TransactionDate,
			TotalAmount:     txn.TotalAmount,
		}
		for _, item := range txn.Items {
			summary.ItemsSold += item.Quantity
		}
		sales = append(sales, summary)
	}
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].TransactionDate.Equal(sales[j].TransactionDate) {
			return sales[i].TransactionDate.Before(sales[j].TransactionDate)
		}
		return sales[i].TransactionID < sales[j].TransactionID
	})
	return sales, nil
}

func (s *Store) ListStockMovements(_ context.Context, productID int64, limit int) ([]inventory.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = store.ClampMovementLimit(limit)
	out := []inventory.StockMovement{}
	for i := len(s.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if s.movements[i].ProductID == productID {
			out = append(out, s.movements[i])
		}
	}
	return out, nil
}

// SeedTransaction writes a ledger entry as-is, bypassing the commit engine.
// Tests use it to build ledgers that the engine would never produce, such as
// headers without line items.
func (s *Store) SeedTransaction(txn inventory.Transaction) inventory.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTxn++
	txn.ID = s.nextTxn
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	for i := range txn.Items {
		s.nextLineItem++
		txn.Items[i].ID = s.nextLineItem
		txn.Items[i].TransactionID = txn.ID
	}
	s.transactions[txn.ID] = cloneTransaction(txn)
	return txn
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:    s,
		products: make(map[int64]inventory.Product),
		nextTxn:  s.nextTxn,
		nextItem: s.nextLineItem,
	}
	err := fn(ctx, tx)
	tx.done = true
	if err != nil {
		return err
	}

	for id, p := range tx.products {
		s.products[id] = p
	}
	for _, txn := range tx.transactions {
		s.transactions[txn.ID] = txn
	}
	s.movements = append(s.movements, tx.movements...)
	s.nextTxn = tx.nextTxn
	s.nextLineItem = tx.nextItem
	return nil
}

// memTx stages writes until WithinTx decides to apply them. The store mutex
// is held for its whole lifetime.
type memTx struct {
	store        *Store
	done         bool
	products     map[int64]inventory.Product
	transactions []inventory.Transaction
	movements    []inventory.StockMovement
	nextTxn      int64
	nextItem     int64
}

func (tx *memTx) lookup(id int64) (inventory.Product, bool) {
	if p, ok := tx.products[id]; ok {
		return p, true
	}
	p, ok := tx.store.products[id]
	return p, ok
}

func (tx *memTx) LockProducts(_ context.Context, ids []int64) ([]inventory.Product, error) {
	if tx.done {
		return nil, errTxClosed
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	products := make([]inventory.Product, 0, len(sorted))
	for _, id := range sorted {
		if p, ok := tx.lookup(id); ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (tx *memTx) SaveProduct(_ context.Context, p inventory.Product) error {
	if tx.done {
		return errTxClosed
	}
	current, ok := tx.lookup(p.ID)
	if !ok {
		return &inventory.ProductNotFoundError{ID: p.ID}
	}
	if p.StockQuantity < 0 {
		return &inventory.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: current.Name,
			Available:   current.StockQuantity,
			Requested:   current.StockQuantity - p.StockQuantity,
		}
	}
	tx.products[p.ID] = p
	return nil
}

func (tx *memTx) InsertTransaction(_ context.Context, txn inventory.Transaction) (*inventory.Transaction, error) {
	if tx.done {
		return nil, errTxClosed
	}
	tx.nextTxn++
	txn.ID = tx.nextTxn
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	if txn.TransactionDate.IsZero() {
		txn.TransactionDate = txn.CreatedAt
	}
	txn.Items = slices.Clone(txn.Items)
	for i := range txn.Items {
		tx.nextItem++
		txn.Items[i].ID = tx.nextItem
		txn.Items[i].TransactionID = txn.ID
	}
	tx.transactions = append(tx.transactions, txn)

	out := cloneTransaction(txn)
	return &out, nil
}

func (tx *memTx) AppendMovements(_ context.Context, movements []inventory.StockMovement) error {
	if tx.done {
		return errTxClosed
	}
	tx.movements = append(tx.movements, movements...)
	return nil
}

func cloneTransaction(txn inventory.Transaction) inventory.Transaction {
	txn.Items = slices.Clone(txn.Items)
	return txn
}
