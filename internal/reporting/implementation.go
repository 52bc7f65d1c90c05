// internal/reporting/implementation.go
package reporting

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"umkmpos/internal/store"
)

// service implements the Service interface.
type service struct {
	repo   store.Repository
	logger *zap.Logger
	tracer trace.Tracer
	loc    *time.Location
}

// NewService creates a reporting service that interprets calendar dates in
// loc. A nil loc means UTC.
func NewService(repo store.Repository, logger *zap.Logger, loc *time.Location) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		repo:   repo,
		logger: logger.Named("reporting"),
		tracer: otel.Tracer("umkmpos/reporting"),
		loc:    loc,
	}
}

// BuildReport aggregates the ledger over the requested range. It only reads,
// so repeating it without intervening sales returns the same report.
func (s *service) BuildReport(ctx context.Context, req ReportRequest) (*Report, error) {
	period, err := ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}
	rng, err := ResolveRange(period, req.StartDate, req.EndDate, s.loc)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "reporting.build",
		trace.WithAttributes(
			attribute.String("report.period", string(period)),
			attribute.String("report.from", rng.From.Format(time.RFC3339)),
			attribute.String("report.to", rng.To.Format(time.RFC3339Nano)),
		),
	)
	defer span.End()

	sales, err := s.repo.ListSales(ctx, rng.From, rng.To)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger read failed")
		return nil, fmt.Errorf("failed to build sales report: %w", err)
	}

	summary, series := Aggregate(period, sales, s.loc)
	span.SetAttributes(
		attribute.Int("report.transactions", summary.TotalTransactions),
		attribute.Int("report.buckets", len(series)),
	)
	s.logger.Debug("sales report built",
		zap.String("period", string(period)),
		zap.Time("from", rng.From),
		zap.Time("to", rng.To),
		zap.Int("transactions", summary.TotalTransactions))

	return &Report{
		Period:    period,
		StartDate: rng.From.Format(DateLayout),
		EndDate:   rng.LastDay.Format(DateLayout),
		Summary:   summary,
		Series:    series,
	}, nil
}
