// Package rules applies compiled or direct conditions to single records:
// conditional-formatting highlight rules and automation/grid filter
// predicates. Every path fails closed: a condition that cannot be
// evaluated is never treated as satisfied.
package rules

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rowbase/formula/internal/engine"
	"github.com/rowbase/formula/internal/filter"
)

// HighlightOperator is the closed operator set available to highlight
// rules. It is narrower than the filter operator set and evaluates
// directly against the record without going through the formula compiler.
type HighlightOperator string

const (
	HighlightEq         HighlightOperator = "eq"
	HighlightNeq        HighlightOperator = "neq"
	HighlightGt         HighlightOperator = "gt"
	HighlightLt         HighlightOperator = "lt"
	HighlightContains   HighlightOperator = "contains"
	HighlightIsEmpty    HighlightOperator = "is_empty"
	HighlightIsNotEmpty HighlightOperator = "is_not_empty"
	HighlightDateBefore HighlightOperator = "date_before"
	HighlightDateAfter  HighlightOperator = "date_after"
	HighlightDateToday  HighlightOperator = "date_today"
	HighlightOverdue    HighlightOperator = "date_overdue"
)

// HighlightStyle is the presentation outcome attached to a matching rule.
// The engine treats it as opaque.
type HighlightStyle struct {
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	Bold            bool   `json:"bold,omitempty"`
}

// HighlightRule is one condition plus its presentation outcome. Rules are
// created and edited by the owning view; at evaluation time they are
// read-only and the first matching rule in declaration order wins.
type HighlightRule struct {
	ID       string            `json:"id,omitempty"`
	Field    string            `json:"field"`
	Operator HighlightOperator `json:"operator"`
	Value    interface{}       `json:"value,omitempty"`
	Style    HighlightStyle    `json:"style"`
}

// NewHighlightRule creates a rule with a fresh identifier.
func NewHighlightRule(field string, op HighlightOperator, value interface{}, style HighlightStyle) HighlightRule {
	return HighlightRule{
		ID:       uuid.NewString(),
		Field:    field,
		Operator: op,
		Value:    value,
		Style:    style,
	}
}

// EvaluateHighlightRules returns the first rule whose condition matches
// the record, or nil when none does. Later rules are not consulted once a
// match is found.
func EvaluateHighlightRules(rules []HighlightRule, row map[string]interface{}, fields []engine.FieldDescriptor, now func() time.Time) *HighlightRule {
	ctx := engine.NewContext(row, fields)
	ctx.Clock = now
	for i := range rules {
		if matchHighlightRule(&rules[i], ctx) {
			return &rules[i]
		}
	}
	return nil
}

// matchHighlightRule evaluates one rule against the record. A rule whose
// field is not declared in the table metadata never matches.
func matchHighlightRule(rule *HighlightRule, ctx *engine.Context) bool {
	field, ok := ctx.Field(rule.Field)
	if !ok {
		return false
	}
	value := ctx.Lookup(rule.Field)

	switch rule.Operator {
	case HighlightEq:
		return engine.Compare(value, targetValue(rule.Value, field.Type)) == 0
	case HighlightNeq:
		return engine.Compare(value, targetValue(rule.Value, field.Type)) != 0

	case HighlightGt, HighlightLt:
		if value.IsNull() {
			return false
		}
		cmp := engine.Compare(value, targetValue(rule.Value, field.Type))
		if rule.Operator == HighlightGt {
			return cmp > 0
		}
		return cmp < 0

	case HighlightContains:
		if value.IsNull() {
			return false
		}
		needle := engine.ConvertRaw(rule.Value, engine.FieldTypeText).String()
		return strings.Contains(strings.ToLower(value.String()), strings.ToLower(needle))

	case HighlightIsEmpty:
		return isEmptyValue(value)
	case HighlightIsNotEmpty:
		return !isEmptyValue(value)

	case HighlightDateBefore, HighlightDateAfter, HighlightDateToday, HighlightOverdue:
		return matchDateRule(rule, value, ctx.Now())
	}

	return false
}

// matchDateRule implements the highlight rules' date-only semantics: all
// comparisons happen at local day granularity through the engine's shared
// day-boundary primitive, so a timestamp at 23:59:59 still counts as "its"
// day and never the next one.
func matchDateRule(rule *HighlightRule, value engine.Value, now time.Time) bool {
	stored, ok := engine.CoerceDate(value)
	if !ok {
		return false
	}

	switch rule.Operator {
	case HighlightDateToday:
		return engine.SameDay(stored, now)
	case HighlightOverdue:
		// Overdue means the day has fully passed; anything due today is
		// not yet overdue.
		return engine.CompareDay(stored, now) < 0
	}

	target, ok := resolveDateTarget(rule.Value, now)
	if !ok {
		return false
	}
	switch rule.Operator {
	case HighlightDateBefore:
		return engine.CompareDay(stored, target) < 0
	case HighlightDateAfter:
		return engine.CompareDay(stored, target) > 0
	}
	return false
}

// resolveDateTarget resolves the rule's comparison value to a concrete
// day: dynamic placeholders resolve against the evaluation clock, other
// values parse as stored dates.
func resolveDateTarget(value interface{}, now time.Time) (time.Time, bool) {
	if t, ok := filter.ResolvePlaceholder(value, now); ok {
		return t, true
	}
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		return engine.ParseDateString(v)
	}
	return time.Time{}, false
}

func targetValue(raw interface{}, fieldType engine.FieldType) engine.Value {
	return engine.ConvertRaw(raw, fieldType)
}

func isEmptyValue(v engine.Value) bool {
	return v.IsNull() || (v.Kind() == engine.KindString && v.StringVal() == "")
}
