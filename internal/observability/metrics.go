package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the engine-specific metric instruments.
type Metrics struct {
	evalDuration metric.Float64Histogram
	evalCount    metric.Int64Counter
	errorCount   metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Instrument creation errors only occur with invalid parameters; fall
	// back to an unconfigured instrument and keep partial metrics on error.
	var err error

	m.evalDuration, err = meter.Float64Histogram(
		"formula.eval.duration",
		metric.WithDescription("Duration of formula evaluations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.evalDuration, _ = meter.Float64Histogram("formula.eval.duration")
	}

	m.evalCount, err = meter.Int64Counter(
		"formula.eval.count",
		metric.WithDescription("Total number of formula evaluations"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		m.evalCount, _ = meter.Int64Counter("formula.eval.count")
	}

	m.errorCount, err = meter.Int64Counter(
		"formula.eval.errors",
		metric.WithDescription("Number of evaluations producing an error value"),
		metric.WithUnit("{evaluation}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter("formula.eval.errors")
	}

	return m
}

// RecordEvaluation records one evaluation: its operation, wall time and
// whether it produced an error value.
func (m *Metrics) RecordEvaluation(ctx context.Context, operation string, elapsed time.Duration, errored bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrOperation, operation))
	m.evalCount.Add(ctx, 1, attrs)
	m.evalDuration.Record(ctx, float64(elapsed.Microseconds())/1000.0, attrs)
	if errored {
		m.errorCount.Add(ctx, 1, attrs)
	}
}
