// internal/store/breaker/breaker.go

// Package breaker guards a store with a circuit breaker so that an
// unreachable database fails requests fast instead of piling them up.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store"
)

// Settings configure when the breaker opens and how long it stays open.
type Settings struct {
	// ConsecutiveFailures store failures in a row open the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultSettings suits a single PostgreSQL primary.
func DefaultSettings() Settings {
	return Settings{ConsecutiveFailures: 5, OpenTimeout: 10 * time.Second}
}

// Store decorates a Repository. Only store-unavailable errors count as
// failures; domain rejections such as insufficient stock pass through without
// affecting the breaker.
type Store struct {
	next store.Repository
	cb   *gobreaker.CircuitBreaker
}

var _ store.Repository = (*Store)(nil)

func Wrap(next store.Repository, settings Settings, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.ConsecutiveFailures == 0 {
		settings.ConsecutiveFailures = DefaultSettings().ConsecutiveFailures
	}
	return &Store{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "store",
			MaxRequests: 1,
			Timeout:     settings.OpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= settings.ConsecutiveFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || !errors.Is(err, inventory.ErrStoreUnavailable)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("store circuit breaker changed state",
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

// State reports the breaker state, e.g. "closed" or "open".
func (s *Store) State() string {
	return s.cb.State().String()
}

func call[T any](s *Store, op string, fn func() (T, error)) (T, error) {
	v, err := s.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, inventory.Unavailable(op, err)
		}
		return zero, err
	}
	return v.(T), nil
}

func (s *Store) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	return call(s, "list products", func() ([]inventory.Product, error) {
		return s.next.ListProducts(ctx)
	})
}

func (s *Store) GetProduct(ctx context.Context, id int64) (*inventory.Product, error) {
	return call(s, "get product", func() (*inventory.Product, error) {
		return s.next.GetProduct(ctx, id)
	})
}

func (s *Store) CreateProduct(ctx context.Context, p inventory.Product) (*inventory.Product, error) {
	return call(s, "create product", func() (*inventory.Product, error) {
		return s.next.CreateProduct(ctx, p)
	})
}

func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	_, err := call(s, "delete product", func() (struct{}, error) {
		return struct{}{}, s.next.DeleteProduct(ctx, id)
	})
	return err
}

func (s *Store) ListTransactions(ctx context.Context) ([]inventory.Transaction, error) {
	return call(s, "list transactions", func() ([]inventory.Transaction, error) {
		return s.next.ListTransactions(ctx)
	})
}

func (s *Store) GetTransaction(ctx context.Context, id int64) (*inventory.Transaction, error) {
	return call(s, "get transaction", func() (*inventory.Transaction, error) {
		return s.next.GetTransaction(ctx, id)
	})
}

func (s *Store) ListProductSales(ctx context.Context) ([]inventory.ProductWithSales, error) {
	return call(s, "list product sales", func() ([]inventory.ProductWithSales, error) {
		return s.next.ListProductSales(ctx)
	})
}

func (s *Store) ListSales(ctx context.Context, from, to time.Time) ([]inventory.SaleSummary, error) {
	return call(s, "list sales", func() ([]inventory.SaleSummary, error) {
		return s.next.ListSales(ctx, from, to)
	})
}

func (s *Store) ListStockMovements(ctx context.Context, productID int64, limit int) ([]inventory.StockMovement, error) {
	return call(s, "list stock movements", func() ([]inventory.StockMovement, error) {
		return s.next.ListStockMovements(ctx, productID, limit)
	})
}

// WithinTx runs the whole unit as one breaker request.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	_, err := call(s, "transaction", func() (struct{}, error) {
		return struct{}{}, s.next.WithinTx(ctx, fn)
	})
	return err
}

func (s *Store) Close() error {
	return s.next.Close()
}

// Ping forwards to the wrapped store when it supports health probes.
func (s *Store) Ping(ctx context.Context) error {
	p, ok := s.next.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	_, err := call(s, "ping", func() (struct{}, error) {
		return struct{}{}, p.Ping(ctx)
	})
	return err
}
