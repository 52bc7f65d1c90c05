// Package postgres implements the store contract on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"umkmpos/internal/inventory"
	"umkmpos/internal/store"
)

// Store provides the catalog, ledger and movement journal on one connection pool.
type Store struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

var _ store.Repository = (*Store)(nil)

// New wraps an open database handle.
func New(db *sqlx.DB) *Store {
	return &Store{
		db:     db,
		tracer: otel.Tracer("umkmpos/store/postgres"),
	}
}

// Open connects to databaseURL, retrying the initial ping with exponential
// backoff up to attempts times.
func Open(ctx context.Context, databaseURL string, attempts int, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if attempts < 1 {
		attempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ping := func() (struct{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return struct{}{}, db.PingContext(pingCtx)
	}
	_, err = backoff.Retry(ctx, ping,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn("database not reachable yet", zap.Error(err), zap.Duration("retry_in", next))
		}),
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return New(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return inventory.Unavailable("ping", err)
	}
	return nil
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "store.migrate")
	defer span.End()

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		span.RecordError(err)
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// WithinTx runs fn inside a read-committed transaction. Stock rows are
// protected by the FOR UPDATE locks taken in LockProducts.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	ctx, span := s.tracer.Start(ctx, "store.tx")
	defer span.End()

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return inventory.Unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &pgTx{tx: tx, tracer: s.tracer}); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("tx.committed", false))
		return err
	}

	if err := tx.Commit(); err != nil {
		return translate("commit transaction", err)
	}
	span.SetAttributes(attribute.Bool("tx.committed", true))
	return nil
}
