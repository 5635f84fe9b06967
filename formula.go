// Package formula implements the Rowbase expression and filter evaluation
// engine: a small formula language (tokenizer, recursive-descent parser,
// tree-walking evaluator with a builtin function library), the canonical
// AND/OR filter tree model with its compilation into formula text, and the
// rule-evaluation layer shared by grid filtering, conditional formatting,
// automation trigger conditions and KPI expressions.
//
// All four features evaluate conditions through this one engine so they
// agree bit-for-bit on operator precedence, type coercion, error
// propagation and date-only comparison rules.
//
// Evaluation is pure and stateless: one formula against one record, no
// I/O, no shared mutable state beyond a guarded parse cache. An Engine may
// be shared by any number of concurrent callers.
package formula

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/rowbase/formula/internal/engine"
	"github.com/rowbase/formula/internal/observability"
	"github.com/rowbase/formula/internal/rules"
)

// Engine evaluates formulas, filter trees and highlight rules. The
// builtin function registry is fixed at construction time; the only
// mutable state is the bounded parse cache, which is safe for concurrent
// use.
type Engine struct {
	logger    *slog.Logger
	obs       *observability.Config
	cond      *rules.ConditionEvaluator
	clock     func() time.Time
	cacheSize int
	obsOpts   []observability.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger used for evaluation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithParseCacheSize bounds the compiled-formula parse cache. Zero
// disables caching.
func WithParseCacheSize(size int) Option {
	return func(e *Engine) {
		e.cacheSize = size
	}
}

// WithClock overrides the evaluation wall clock used by NOW, TODAY and
// dynamic value placeholders. Tests use it to pin "today".
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithTracerProvider enables OpenTelemetry tracing of evaluations.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) {
		e.obsOpts = append(e.obsOpts, observability.WithTracerProvider(tp))
	}
}

// WithMeterProvider enables OpenTelemetry metrics for evaluations.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) {
		e.obsOpts = append(e.obsOpts, observability.WithMeterProvider(mp))
	}
}

// WithServiceName sets the service name reported on spans.
func WithServiceName(name string) Option {
	return func(e *Engine) {
		e.obsOpts = append(e.obsOpts, observability.WithServiceName(name))
	}
}

// NewEngine creates an engine with the full builtin function registry.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger:    slog.Default(),
		cacheSize: engine.DefaultParseCacheSize,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.obs = observability.NewConfig(e.obsOpts...)
	e.cond = rules.NewConditionEvaluator(engine.Builtins(), e.cacheSize)
	e.cond.Clock = e.clock
	return e
}

// EvaluateFormula computes a raw formula string against a record. The
// result is always a value, never an error through a second channel: lex
// and parse failures surface as an #ERROR! value, coercion failures as
// #VALUE!, unknown functions as #NAME?.
func (e *Engine) EvaluateFormula(ctx context.Context, source string, row Row, fields []FieldDescriptor) Value {
	start := time.Now()
	ctx, span := e.obs.Tracer().StartFormulaEval(ctx, len(source), len(fields))
	defer span.End()
	timing := observability.StartServerTiming(ctx, "formula")
	defer timing.Stop()

	ectx := engine.NewContext(row, fields)
	ectx.Clock = e.clock
	result := e.cond.EvaluateFormula(source, ectx)

	observability.RecordResult(span, kindName(result), result.IsError())
	e.obs.Metrics().RecordEvaluation(ctx, observability.OpEvaluateFormula, time.Since(start), result.IsError())
	if result.IsError() {
		e.logger.Debug("formula evaluation failed",
			slog.String("error", result.String()),
			slog.Int("source_len", len(source)))
	}
	return result
}

// EvaluateFilterTree reports whether a record satisfies a filter tree.
// The tree is normalized, compiled to formula text, parsed (through the
// cache) and evaluated; an empty tree is vacuously true and any failure
// along the way is false: a condition that cannot be evaluated is never
// treated as satisfied.
func (e *Engine) EvaluateFilterTree(ctx context.Context, tree *FilterGroup, row Row, fields []FieldDescriptor) bool {
	start := time.Now()
	ctx, span := e.obs.Tracer().StartFilterEval(ctx, len(fields))
	defer span.End()
	timing := observability.StartServerTiming(ctx, "filter")
	defer timing.Stop()

	matched := e.cond.EvaluateFilterTree(tree, row, fields)

	observability.RecordMatched(span, matched)
	e.obs.Metrics().RecordEvaluation(ctx, observability.OpEvaluateFilter, time.Since(start), false)
	return matched
}

// EvaluateHighlightRules returns the first rule in declaration order that
// matches the record, or nil when none does.
func (e *Engine) EvaluateHighlightRules(ctx context.Context, ruleList []HighlightRule, row Row, fields []FieldDescriptor) *HighlightRule {
	start := time.Now()
	ctx, span := e.obs.Tracer().StartHighlightEval(ctx, len(ruleList))
	defer span.End()

	matched := rules.EvaluateHighlightRules(ruleList, row, fields, e.clock)

	observability.RecordMatched(span, matched != nil)
	e.obs.Metrics().RecordEvaluation(ctx, observability.OpEvaluateHighlight, time.Since(start), false)
	return matched
}

func kindName(v Value) string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	default:
		return v.String()
	}
}

// defaultEngine backs the package-level convenience functions.
var defaultEngine = NewEngine()

// EvaluateFormula computes a raw formula string against a record using
// the default engine.
func EvaluateFormula(source string, row Row, fields []FieldDescriptor) Value {
	return defaultEngine.EvaluateFormula(context.Background(), source, row, fields)
}

// EvaluateFilterTree reports whether a record satisfies a filter tree
// using the default engine.
func EvaluateFilterTree(tree *FilterGroup, row Row, fields []FieldDescriptor) bool {
	return defaultEngine.EvaluateFilterTree(context.Background(), tree, row, fields)
}

// EvaluateHighlightRules returns the first matching highlight rule using
// the default engine.
func EvaluateHighlightRules(ruleList []HighlightRule, row Row, fields []FieldDescriptor) *HighlightRule {
	return defaultEngine.EvaluateHighlightRules(context.Background(), ruleList, row, fields)
}
