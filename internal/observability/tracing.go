package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys used by the engine.
const (
	AttrOperation     = "formula.operation"
	AttrSourceLength  = "formula.source.length"
	AttrFieldCount    = "formula.field.count"
	AttrRuleCount     = "formula.rule.count"
	AttrResultKind    = "formula.result.kind"
	AttrResultMatched = "formula.result.matched"
)

// Operation names recorded on spans and metrics.
const (
	OpEvaluateFormula   = "evaluate_formula"
	OpEvaluateFilter    = "evaluate_filter_tree"
	OpEvaluateHighlight = "evaluate_highlight_rules"
)

// Tracer wraps an OpenTelemetry tracer with engine-specific span creation
// methods.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartFormulaEval starts a span for evaluating a raw formula string.
func (t *Tracer) StartFormulaEval(ctx context.Context, sourceLen, fieldCount int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "formula.evaluate", trace.WithAttributes(
		attribute.String(AttrOperation, OpEvaluateFormula),
		attribute.Int(AttrSourceLength, sourceLen),
		attribute.Int(AttrFieldCount, fieldCount),
	))
}

// StartFilterEval starts a span for evaluating a compiled filter tree.
func (t *Tracer) StartFilterEval(ctx context.Context, fieldCount int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "formula.filter", trace.WithAttributes(
		attribute.String(AttrOperation, OpEvaluateFilter),
		attribute.Int(AttrFieldCount, fieldCount),
	))
}

// StartHighlightEval starts a span for evaluating a highlight rule list.
func (t *Tracer) StartHighlightEval(ctx context.Context, ruleCount int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "formula.highlight", trace.WithAttributes(
		attribute.String(AttrOperation, OpEvaluateHighlight),
		attribute.Int(AttrRuleCount, ruleCount),
	))
}

// RecordResult annotates the span with the evaluation outcome.
func RecordResult(span trace.Span, kind string, errored bool) {
	span.SetAttributes(attribute.String(AttrResultKind, kind))
	if errored {
		span.SetStatus(codes.Error, kind)
	}
}

// RecordMatched annotates the span with a boolean condition outcome.
func RecordMatched(span trace.Span, matched bool) {
	span.SetAttributes(attribute.Bool(AttrResultMatched, matched))
}
