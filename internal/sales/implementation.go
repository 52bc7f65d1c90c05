// internal/sales/implementation.go
package sales

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store"
)

// service implements the Service interface.
type service struct {
	repo      store.Repository
	logger    *zap.Logger
	tracer    trace.Tracer
	meters    metric.MeterProvider
	committed metric.Int64Counter
	rejected  metric.Int64Counter
	now       func() time.Time
}

// Option customises a sales service.
type Option func(*service)

// WithClock replaces the wall clock used for the default transaction date.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithMeterProvider records the sale counters on mp instead of the global
// provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *service) { s.meters = mp }
}

// NewService creates a new sales service instance.
func NewService(repo store.Repository, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		repo:   repo,
		logger: logger.Named("sales"),
		tracer: otel.Tracer("umkmpos/sales"),
		meters: otel.GetMeterProvider(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	meter := s.meters.Meter("umkmpos/sales")
	s.committed = counter(meter, s.logger, "sales.committed", "Sales transactions committed")
	s.rejected = counter(meter, s.logger, "sales.rejected", "Sales transactions rejected, by reason")
	return s
}

func counter(meter metric.Meter, logger *zap.Logger, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		logger.Warn("failed to create counter", zap.String("counter", name), zap.Error(err))
		return noop.Int64Counter{}
	}
	return c
}

// ListTransactions returns the ledger, newest first, with items.
func (s *service) ListTransactions(ctx context.Context) ([]inventory.Transaction, error) {
	txns, err := s.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txns, nil
}

// GetTransaction retrieves one ledger entry with its items.
func (s *service) GetTransaction(ctx context.Context, id int64) (*inventory.Transaction, error) {
	txn, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListProductsWithSales returns every product with its lifetime totals,
// best sellers by revenue first.
func (s *service) ListProductsWithSales(ctx context.Context) ([]inventory.ProductWithSales, error) {
	rows, err := s.repo.ListProductSales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products with sales: %w", err)
	}
	return rows, nil
}
