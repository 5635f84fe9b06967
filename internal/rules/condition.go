package rules

import (
	"strings"
	"time"

	"github.com/rowbase/formula/internal/engine"
	"github.com/rowbase/formula/internal/filter"
)

// ConditionEvaluator runs filter trees against single records through the
// formula stack: normalize, compile, tokenize, parse (cached), evaluate,
// coerce to boolean. It is stateless apart from the parse cache and safe
// for concurrent use.
type ConditionEvaluator struct {
	cache *engine.ParseCache
	eval  *engine.Evaluator

	// Clock overrides the evaluation wall clock when set; tests use it to
	// pin dynamic values like "today".
	Clock func() time.Time
}

// NewConditionEvaluator creates a condition evaluator over the given
// function registry. cacheSize bounds the compiled-formula parse cache;
// zero disables caching.
func NewConditionEvaluator(funcs engine.Registry, cacheSize int) *ConditionEvaluator {
	return &ConditionEvaluator{
		cache: engine.NewParseCache(cacheSize),
		eval:  engine.NewEvaluator(funcs),
	}
}

// EvaluateFilterTree reports whether the record satisfies the filter. An
// empty or absent tree is vacuously true. Any compilation, lex, parse or
// evaluation failure, including an error-sentinel result, yields false:
// a condition that cannot be evaluated must never be treated as satisfied.
func (ce *ConditionEvaluator) EvaluateFilterTree(tree interface{}, row map[string]interface{}, fields []engine.FieldDescriptor) bool {
	group := filter.Normalize(tree)

	source, err := filter.Compile(group, fields)
	if err != nil {
		return false
	}
	if strings.TrimSpace(source) == "" {
		return true
	}

	node, err := ce.cache.Parse(source)
	if err != nil {
		return false
	}

	ctx := engine.NewContext(row, fields)
	ctx.Clock = ce.Clock
	result := ce.eval.Evaluate(node, ctx)
	return resultTruthy(result)
}

// EvaluateFormula computes a raw formula string against a record. Lex and
// parse failures surface as an #ERROR! value.
func (ce *ConditionEvaluator) EvaluateFormula(source string, ctx *engine.Context) engine.Value {
	node, err := ce.cache.Parse(source)
	if err != nil {
		return engine.Error(engine.ErrCodeError)
	}
	return ce.eval.Evaluate(node, ctx)
}

// resultTruthy coerces an evaluation result to the boolean consumed by
// filter and trigger conditions. Error values are false, and so is any
// string carrying the legacy '#' error sentinel prefix, which downstream
// consumers never treat as user data.
func resultTruthy(v engine.Value) bool {
	if v.IsError() {
		return false
	}
	if v.Kind() == engine.KindString && strings.HasPrefix(v.StringVal(), engine.ErrorSentinelPrefix) {
		return false
	}
	return v.Truthy()
}
