package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewConfigDefaultsToNoop(t *testing.T) {
	c := NewConfig()
	if c.Tracer() == nil {
		t.Error("tracer must never be nil")
	}
	if c.Metrics() == nil {
		t.Error("metrics must never be nil")
	}

	// No-op instruments must be safe to use.
	ctx, span := c.Tracer().StartFormulaEval(context.Background(), 10, 3)
	RecordResult(span, "number", false)
	span.End()
	c.Metrics().RecordEvaluation(ctx, OpEvaluateFormula, time.Millisecond, true)
}

func TestNewConfigWithProviders(t *testing.T) {
	c := NewConfig(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
		WithServiceName("test"),
	)
	if c.ServiceName != "test" {
		t.Errorf("service name not applied: %q", c.ServiceName)
	}

	_, span := c.Tracer().StartFilterEval(context.Background(), 3)
	RecordMatched(span, true)
	span.End()

	_, span = c.Tracer().StartHighlightEval(context.Background(), 2)
	RecordResult(span, "#VALUE!", true)
	span.End()
}

func TestNilConfigIsSafe(t *testing.T) {
	var c *Config
	if c.Tracer() == nil || c.Metrics() == nil {
		t.Error("nil config must still hand out no-op instruments")
	}
}

func TestServerTimingWithoutCollector(t *testing.T) {
	m := StartServerTiming(context.Background(), "formula")
	m.Stop() // must not panic

	var nilMetric *ServerTimingMetric
	nilMetric.Stop()
}

func TestNilMetricsRecord(t *testing.T) {
	var m *Metrics
	m.RecordEvaluation(context.Background(), OpEvaluateFormula, time.Millisecond, false)
}
