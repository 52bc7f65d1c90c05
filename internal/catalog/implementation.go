// internal/catalog/implementation.go
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store"
)

// service implements the Service interface.
type service struct {
	repo   store.Repository
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// Option customises a catalog service.
type Option func(*service)

// WithClock replaces the wall clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// NewService creates a new catalog service instance.
func NewService(repo store.Repository, logger *zap.Logger, opts ...Option) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &service{
		repo:   repo,
		logger: logger.Named("catalog"),
		tracer: otel.Tracer("umkmpos/catalog"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProduct validates and stores a new product.
func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*inventory.Product, error) {
	threshold := inventory.DefaultMinStockThreshold
	if req.MinStockThreshold != nil {
		threshold = *req.MinStockThreshold
	}

	p := inventory.Product{
		Name:              strings.TrimSpace(req.Name),
		Description:       strings.TrimSpace(req.Description),
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		MinStockThreshold: threshold,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	now := s.now()
	p.CreatedAt = now
	p.UpdatedAt = now

	created, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created",
		zap.Int64("product_id", created.ID),
		zap.String("name", created.Name),
		zap.Int("stock", created.StockQuantity))
	return created, nil
}

// ListProducts returns the catalog ordered by name.
func (s *service) ListProducts(ctx context.Context) ([]inventory.Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetProduct retrieves a product by its ID.
func (s *service) GetProduct(ctx context.Context, id int64) (*inventory.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// UpdateProduct applies a partial update under the product's row lock, so an
// edit cannot overwrite a concurrent sale's stock debit with a stale value.
func (s *service) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*inventory.Product, error) {
	var updated inventory.Product
	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		current, err := lockOne(ctx, tx, id)
		if err != nil {
			return err
		}

		p := current
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			p.Description = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			p.Price = *req.Price
		}
		if req.StockQuantity != nil {
			p.StockQuantity = *req.StockQuantity
		}
		if req.MinStockThreshold != nil {
			p.MinStockThreshold = *req.MinStockThreshold
		}
		if err := validateProduct(p); err != nil {
			return err
		}
		p.UpdatedAt = s.now()

		if err := tx.SaveProduct(ctx, p); err != nil {
			return err
		}
		if delta := p.StockQuantity - current.StockQuantity; delta != 0 {
			err := tx.AppendMovements(ctx, []inventory.StockMovement{
				newMovement(p, delta, inventory.MovementAdjustment, EditReason, p.UpdatedAt),
			})
			if err != nil {
				return err
			}
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info("product updated", zap.Int64("product_id", id))
	return &updated, nil
}

// DeleteProduct hard-deletes a product that has never been sold.
func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		s.logger.Warn("product delete rejected", zap.Int64("product_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// ListStockMovements returns a product's journal, newest first.
func (s *service) ListStockMovements(ctx context.Context, id int64, limit int) ([]inventory.StockMovement, error) {
	if _, err := s.repo.GetProduct(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	movements, err := s.repo.ListStockMovements(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	return movements, nil
}

func validateProduct(p inventory.Product) error {
	if p.Name == "" {
		return inventory.Invalid("name", "must not be empty")
	}
	if err := inventory.ValidatePrice(p.Price); err != nil {
		return err
	}
	if err := inventory.ValidateCount("stock_quantity", p.StockQuantity); err != nil {
		return err
	}
	return inventory.ValidateCount("min_stock_threshold", p.MinStockThreshold)
}

func lockOne(ctx context.Context, tx store.Tx, id int64) (inventory.Product, error) {
	products, err := tx.LockProducts(ctx, []int64{id})
	if err != nil {
		return inventory.Product{}, err
	}
	if len(products) == 0 {
		return inventory.Product{}, &inventory.ProductNotFoundError{ID: id}
	}
	return products[0], nil
}
