package formula

import (
	"time"

	"github.com/rowbase/formula/internal/engine"
	"github.com/rowbase/formula/internal/filter"
	"github.com/rowbase/formula/internal/rules"
)

// Row holds one record's raw stored values keyed by field name.
type Row = map[string]interface{}

// Value re-exports the formula value union: null, boolean, number,
// string, date or error. Errors are values, not exceptions; they carry a
// closed error code and render as a '#'-prefixed sentinel string at the
// external boundary.
type Value = engine.Value

// Kind re-exports the value kind tag for external consumers.
type Kind = engine.Kind

// Value kind tags.
const (
	KindNull   = engine.KindNull
	KindBool   = engine.KindBool
	KindNumber = engine.KindNumber
	KindString = engine.KindString
	KindDate   = engine.KindDate
	KindError  = engine.KindError
)

// ErrorCode re-exports the closed evaluation error code set.
type ErrorCode = engine.ErrorCode

// Evaluation error codes.
const (
	ErrCodeValue   = engine.ErrCodeValue
	ErrCodeName    = engine.ErrCodeName
	ErrCodeError   = engine.ErrCodeError
	ErrCodeDivZero = engine.ErrCodeDivZero
)

// Value constructors.
var (
	Null       = engine.Null
	Bool       = engine.Bool
	Number     = engine.Number
	String     = engine.String
	Date       = engine.Date
	ErrorValue = engine.Error
)

// FieldType re-exports the declared field type enumeration.
type FieldType = engine.FieldType

// Field types the engine distinguishes.
const (
	FieldTypeText         = engine.FieldTypeText
	FieldTypeNumber       = engine.FieldTypeNumber
	FieldTypeCheckbox     = engine.FieldTypeCheckbox
	FieldTypeDate         = engine.FieldTypeDate
	FieldTypeSingleSelect = engine.FieldTypeSingleSelect
	FieldTypeMultiSelect  = engine.FieldTypeMultiSelect
)

// FieldDescriptor re-exports the per-field metadata supplied alongside a
// record.
type FieldDescriptor = engine.FieldDescriptor

// FilterGroup re-exports the canonical AND/OR filter tree node.
type FilterGroup = filter.Group

// FilterCondition re-exports the filter leaf condition.
type FilterCondition = filter.Condition

// FilterNode re-exports the filter tree node interface.
type FilterNode = filter.Node

// Combinator re-exports the group combinator type.
type Combinator = filter.Combinator

// Group combinators.
const (
	CombinatorAnd = filter.CombinatorAnd
	CombinatorOr  = filter.CombinatorOr
)

// FilterOperator re-exports the filter condition operator set.
type FilterOperator = filter.Operator

// Filter condition operators.
const (
	OpEquals             = filter.OpEquals
	OpNotEquals          = filter.OpNotEquals
	OpContains           = filter.OpContains
	OpNotContains        = filter.OpNotContains
	OpIsEmpty            = filter.OpIsEmpty
	OpIsNotEmpty         = filter.OpIsNotEmpty
	OpGreaterThan        = filter.OpGreaterThan
	OpLessThan           = filter.OpLessThan
	OpGreaterThanOrEqual = filter.OpGreaterThanOrEqual
	OpLessThanOrEqual    = filter.OpLessThanOrEqual
	OpOn                 = filter.OpOn
	OpBefore             = filter.OpBefore
	OpAfter              = filter.OpAfter
	OpInRange            = filter.OpInRange
	OpIn                 = filter.OpIn
	OpNotIn              = filter.OpNotIn
)

// Dynamic value placeholders, resolved only at evaluation time and never
// persisted as concrete values.
const (
	PlaceholderToday     = filter.PlaceholderToday
	PlaceholderYesterday = filter.PlaceholderYesterday
	PlaceholderTomorrow  = filter.PlaceholderTomorrow
)

// HighlightRule re-exports the conditional-formatting rule type.
type HighlightRule = rules.HighlightRule

// HighlightStyle re-exports the presentation outcome of a highlight rule.
type HighlightStyle = rules.HighlightStyle

// HighlightOperator re-exports the highlight rule operator set.
type HighlightOperator = rules.HighlightOperator

// Highlight rule operators.
const (
	HighlightEq         = rules.HighlightEq
	HighlightNeq        = rules.HighlightNeq
	HighlightGt         = rules.HighlightGt
	HighlightLt         = rules.HighlightLt
	HighlightContains   = rules.HighlightContains
	HighlightIsEmpty    = rules.HighlightIsEmpty
	HighlightIsNotEmpty = rules.HighlightIsNotEmpty
	HighlightDateBefore = rules.HighlightDateBefore
	HighlightDateAfter  = rules.HighlightDateAfter
	HighlightDateToday  = rules.HighlightDateToday
	HighlightOverdue    = rules.HighlightOverdue
)

// Constructors for filter trees and highlight rules.
var (
	NewFilterGroup   = filter.NewGroup
	NewCondition     = filter.NewCondition
	NewHighlightRule = rules.NewHighlightRule
)

// NormalizeFilter lifts any accepted filter shape (a canonical tree, a
// bare condition, a flat condition list, raw JSON or a JSON-decoded map)
// into the canonical group tree. Empty or unrecognized input normalizes
// to an empty AND group, which matches every record.
func NormalizeFilter(raw interface{}) *FilterGroup {
	return filter.Normalize(raw)
}

// CompileFilter renders a canonical filter tree as formula source text.
// An empty tree compiles to the empty string.
func CompileFilter(tree *FilterGroup, fields []FieldDescriptor) (string, error) {
	return filter.Compile(tree, fields)
}

// ResolvePlaceholder resolves a dynamic value placeholder to the concrete
// local day it names relative to now. The second result is false for
// values that are not placeholders.
func ResolvePlaceholder(value interface{}, now time.Time) (time.Time, bool) {
	return filter.ResolvePlaceholder(value, now)
}

// IsErrorSentinel reports whether a boundary value carries the legacy
// error marker: a string beginning with '#'. Downstream consumers treat
// such values as failures, never as user data.
func IsErrorSentinel(v interface{}) bool {
	s, ok := v.(string)
	return ok && len(s) > 0 && s[0:1] == engine.ErrorSentinelPrefix
}
