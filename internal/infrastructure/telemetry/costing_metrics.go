package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the costing metrics
const MeterName = "bakeops-backend/costing"

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Metric attribute keys
var (
	AttrProfile   = attribute.Key("profile")
	AttrErrorCode = attribute.Key("error_code")
)

// DurationBuckets are histogram boundaries (seconds) for a costing run.
// A run is an in-memory computation, so the buckets sit well below HTTP latency.
var DurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5}

// CostingMetrics counts costing runs, failures and shopping-list lines
type CostingMetrics struct {
	runs           metric.Int64Counter
	shortfallLines metric.Int64Counter
	failures       metric.Int64Counter
	duration       metric.Float64Histogram
}

// NewCostingMetrics registers the costing instruments on meter
func NewCostingMetrics(meter metric.Meter) (*CostingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	runs, err := meter.Int64Counter("bakery_costing_runs_total",
		metric.WithDescription("Total number of successful costing runs"),
		metric.WithUnit("{runs}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create runs counter: %w", err)
	}

	shortfallLines, err := meter.Int64Counter("bakery_costing_shortfall_lines_total",
		metric.WithDescription("Total number of ledger lines not covered by stock"),
		metric.WithUnit("{lines}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create shortfall counter: %w", err)
	}

	failures, err := meter.Int64Counter("bakery_costing_failures_total",
		metric.WithDescription("Total number of rejected costing requests"),
		metric.WithUnit("{runs}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failures counter: %w", err)
	}

	duration, err := meter.Float64Histogram("bakery_costing_duration_seconds",
		metric.WithDescription("Duration of a costing run including catalog lookups"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DurationBuckets...))
	if err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}

	return &CostingMetrics{
		runs:           runs,
		shortfallLines: shortfallLines,
		failures:       failures,
		duration:       duration,
	}, nil
}

// RecordRun records one successful run under profile
func (m *CostingMetrics) RecordRun(ctx context.Context, profile string, shortfallLines int, elapsed time.Duration) {
	attrs := metric.WithAttributes(AttrProfile.String(profile))
	m.runs.Add(ctx, 1, attrs)
	if shortfallLines > 0 {
		m.shortfallLines.Add(ctx, int64(shortfallLines), attrs)
	}
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordFailure records one rejected run with its error code
func (m *CostingMetrics) RecordFailure(ctx context.Context, profile, code string) {
	m.failures.Add(ctx, 1, metric.WithAttributes(
		AttrProfile.String(profile),
		AttrErrorCode.String(code),
	))
}
