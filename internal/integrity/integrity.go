// internal/integrity/integrity.go

// Package integrity probes a store for ledger and stock invariants that the
// write paths are supposed to uphold.
package integrity

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Source exposes the raw counts the default probes are built on.
type Source interface {
	CountNegativeStock(ctx context.Context) (int, error)
	CountTotalMismatches(ctx context.Context) (int, error)
	CountSubtotalMismatches(ctx context.Context) (int, error)
	CountEmptyTransactions(ctx context.Context) (int, error)
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Probe is one measurable invariant.
type Probe struct {
	Name        string
	Description string
	Severity    Severity
	Query       func(context.Context) (float64, error)
	Threshold   Threshold
}

type Threshold struct {
	Operator string // >, <, >=, <=, ==
	Value    float64
}

// Holds reports whether value satisfies the threshold. Unknown operators never hold.
func (t Threshold) Holds(value float64) bool {
	switch t.Operator {
	case ">":
		return value > t.Value
	case "<":
		return value < t.Value
	case ">=":
		return value >= t.Value
	case "<=":
		return value <= t.Value
	case "==":
		return value == t.Value
	default:
		return false
	}
}

type Violation struct {
	Probe     string    `json:"probe"`
	Severity  Severity  `json:"severity"`
	Operator  string    `json:"operator"`
	Expected  float64   `json:"expected"`
	Actual    float64   `json:"actual"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorEvent struct {
	Probe     string    `json:"probe"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// Result captures one run over every registered probe.
type Result struct {
	StartTime    time.Time          `json:"start_time"`
	EndTime      time.Time          `json:"end_time"`
	Duration     time.Duration      `json:"duration"`
	Observations map[string]float64 `json:"observations"`
	Violations   []Violation        `json:"violations"`
	Warnings     []Violation        `json:"warnings"`
	Errors       []ErrorEvent       `json:"errors"`
}

// Healthy is true when no error-severity probe was violated and every probe
// could be evaluated.
func (r *Result) Healthy() bool {
	return len(r.Violations) == 0 && len(r.Errors) == 0
}

type Checker struct {
	tracer trace.Tracer
	logger *zap.Logger
	mu     sync.Mutex
	probes []Probe
}

func NewChecker(logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		tracer: otel.Tracer("umkmpos/integrity"),
		logger: logger,
	}
}

func (c *Checker) Register(p Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes = append(c.probes, p)
}

func (c *Checker) Probes() []Probe {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Probe, len(c.probes))
	copy(out, c.probes)
	return out
}

// RegisterDefaults installs the stock and ledger probes backed by src.
func (c *Checker) RegisterDefaults(src Source) {
	c.Register(countProbe("negative-stock", "products with stock_quantity below zero", SeverityError, src.CountNegativeStock))
	c.Register(countProbe("transaction-total-mismatch", "transactions whose total_amount differs from the sum of their subtotals", SeverityError, src.CountTotalMismatches))
	c.Register(countProbe("line-subtotal-mismatch", "line items whose subtotal differs from quantity times unit_price", SeverityError, src.CountSubtotalMismatches))
	// Item-less headers are legal ledger rows but invisible to reports.
	c.Register(countProbe("transactions-without-items", "transactions that have no line items", SeverityWarning, src.CountEmptyTransactions))
}

func countProbe(name, description string, severity Severity, count func(context.Context) (int, error)) Probe {
	return Probe{
		Name:        name,
		Description: description,
		Severity:    severity,
		Query: func(ctx context.Context) (float64, error) {
			n, err := count(ctx)
			return float64(n), err
		},
		Threshold: Threshold{Operator: "==", Value: 0},
	}
}

// Run evaluates every probe once.
func (c *Checker) Run(ctx context.Context) *Result {
	ctx, span := c.tracer.Start(ctx, "integrity.run")
	defer span.End()

	result := &Result{
		StartTime:    time.Now(),
		Observations: make(map[string]float64),
	}

	for _, p := range c.Probes() {
		value, err := c.evaluate(ctx, p)
		now := time.Now()
		if err != nil {
			result.Errors = append(result.Errors, ErrorEvent{Probe: p.Name, Error: err.Error(), Timestamp: now})
			c.logger.Error("integrity probe failed", zap.String("probe", p.Name), zap.Error(err))
			continue
		}
		result.Observations[p.Name] = value
		if p.Threshold.Holds(value) {
			continue
		}

		v := Violation{
			Probe:     p.Name,
			Severity:  p.Severity,
			Operator:  p.Threshold.Operator,
			Expected:  p.Threshold.Value,
			Actual:    value,
			Timestamp: now,
		}
		if p.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, v)
			c.logger.Warn("integrity probe warning", zap.String("probe", p.Name), zap.Float64("actual", value))
			continue
		}
		result.Violations = append(result.Violations, v)
		c.logger.Error("integrity probe violated",
			zap.String("probe", p.Name),
			zap.String("description", p.Description),
			zap.Float64("expected", p.Threshold.Value),
			zap.Float64("actual", value))
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	span.SetAttributes(
		attribute.Bool("healthy", result.Healthy()),
		attribute.Int("violations", len(result.Violations)),
		attribute.Int("warnings", len(result.Warnings)),
	)
	if !result.Healthy() {
		span.SetStatus(codes.Error, "integrity violations detected")
	}
	return result
}

func (c *Checker) evaluate(ctx context.Context, p Probe) (float64, error) {
	ctx, span := c.tracer.Start(ctx, "integrity.probe",
		trace.WithAttributes(attribute.String("probe.name", p.Name)),
	)
	defer span.End()

	value, err := p.Query(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	span.SetAttributes(attribute.Float64("probe.value", value))
	return value, nil
}
