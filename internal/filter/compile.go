package filter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rowbase/formula/internal/engine"
)

// Compile renders a canonical filter tree as formula source text. Groups
// become AND(...)/OR(...) calls; each condition becomes a comparison or
// function expression chosen by its operator and the referenced field's
// declared type. An empty tree compiles to the empty string, which the
// rule evaluator treats as "always true" without touching the formula
// stack. Compilation errors make the condition unevaluable; callers fail
// closed.
func Compile(tree *Group, fields []engine.FieldDescriptor) (string, error) {
	if tree == nil {
		return "", nil
	}
	return compileGroup(tree, fields)
}

func compileGroup(g *Group, fields []engine.FieldDescriptor) (string, error) {
	var parts []string
	for _, child := range g.Children {
		switch c := child.(type) {
		case *Group:
			text, err := compileGroup(c, fields)
			if err != nil {
				return "", err
			}
			if text != "" {
				parts = append(parts, text)
			}
		case *Condition:
			text, err := compileCondition(c, fields)
			if err != nil {
				return "", err
			}
			parts = append(parts, text)
		default:
			return "", fmt.Errorf("unsupported filter node %T", child)
		}
	}

	switch len(parts) {
	case 0:
		return "", nil
	case 1:
		return parts[0], nil
	}

	name := "AND"
	if g.Combinator == CombinatorOr {
		name = "OR"
	}
	return name + "(" + strings.Join(parts, ", ") + ")", nil
}

func compileCondition(c *Condition, fields []engine.FieldDescriptor) (string, error) {
	if !isIdentifier(c.Field) {
		return "", fmt.Errorf("field name %q is not referenceable from a formula", c.Field)
	}

	// An undeclared field compiles as text; its reference evaluates to
	// null at run time and the condition degrades accordingly.
	fieldType := engine.FieldTypeText
	for _, f := range fields {
		if strings.EqualFold(f.Name, c.Field) {
			fieldType = f.Type
			break
		}
	}

	switch c.Operator {
	case OpEquals:
		return compileEquality(c, fieldType, "=")
	case OpNotEquals:
		return compileEquality(c, fieldType, "<>")

	case OpGreaterThan:
		return compileOrdering(c, fieldType, ">")
	case OpLessThan:
		return compileOrdering(c, fieldType, "<")
	case OpGreaterThanOrEqual:
		return compileOrdering(c, fieldType, ">=")
	case OpLessThanOrEqual:
		return compileOrdering(c, fieldType, "<=")

	case OpContains:
		return fmt.Sprintf("FIND(%s, CONCAT(%s)) > 0", quote(stringify(c.Value)), c.Field), nil
	case OpNotContains:
		return fmt.Sprintf("FIND(%s, CONCAT(%s)) = 0", quote(stringify(c.Value)), c.Field), nil

	case OpIsEmpty:
		if fieldType.MultiValue() {
			return fmt.Sprintf("COUNTA(%s) = 0", c.Field), nil
		}
		return fmt.Sprintf("LEN(CONCAT(%s)) = 0", c.Field), nil
	case OpIsNotEmpty:
		if fieldType.MultiValue() {
			return fmt.Sprintf("COUNTA(%s) > 0", c.Field), nil
		}
		return fmt.Sprintf("LEN(CONCAT(%s)) > 0", c.Field), nil

	case OpOn:
		return compileDayComparison(c, "=")
	case OpBefore:
		return compileDayComparison(c, "<")
	case OpAfter:
		return compileDayComparison(c, ">")

	case OpInRange:
		return compileInRange(c, fieldType)

	case OpIn, OpNotIn:
		return compileMembership(c, fieldType)
	}

	return "", fmt.Errorf("unsupported filter operator %q", c.Operator)
}

// compileEquality renders equals/not_equals. Date fields compare at day
// granularity; checkbox fields compare against TRUE()/FALSE().
func compileEquality(c *Condition, fieldType engine.FieldType, op string) (string, error) {
	switch {
	case fieldType == engine.FieldTypeDate || IsPlaceholder(c.Value):
		return compileDayComparison(c, op)
	case fieldType == engine.FieldTypeCheckbox:
		lit := "FALSE()"
		if truthyValue(c.Value) {
			lit = "TRUE()"
		}
		return fmt.Sprintf("%s %s %s", c.Field, op, lit), nil
	default:
		lit, err := scalarLiteral(c.Value, fieldType)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", c.Field, op, lit), nil
	}
}

func compileOrdering(c *Condition, fieldType engine.FieldType, op string) (string, error) {
	if fieldType == engine.FieldTypeDate || IsPlaceholder(c.Value) {
		return compileDayComparison(c, op)
	}
	lit, err := scalarLiteral(c.Value, fieldType)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", c.Field, op, lit), nil
}

// compileDayComparison compares a date field and a date value as
// "YYYY-MM-DD" strings, which order lexicographically, so the comparison
// is inclusive and exclusive exactly at local day boundaries.
func compileDayComparison(c *Condition, op string) (string, error) {
	value, err := dayLiteral(c.Value)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`DATETIME_FORMAT(%s, "YYYY-MM-DD") %s %s`, c.Field, op, value), nil
}

func compileInRange(c *Condition, fieldType engine.FieldType) (string, error) {
	bounds, ok := valueList(c.Value)
	if !ok || len(bounds) != 2 {
		return "", fmt.Errorf("in_range requires a [low, high] value pair")
	}
	low := &Condition{Field: c.Field, Value: bounds[0]}
	high := &Condition{Field: c.Field, Value: bounds[1]}

	lowText, err := compileOrdering(low, fieldType, ">=")
	if err != nil {
		return "", err
	}
	highText, err := compileOrdering(high, fieldType, "<=")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("AND(%s, %s)", lowText, highText), nil
}

func compileMembership(c *Condition, fieldType engine.FieldType) (string, error) {
	values, ok := valueList(c.Value)
	if !ok {
		return "", fmt.Errorf("%s requires a list value", c.Operator)
	}

	if len(values) == 0 {
		// No candidates: nothing is in the empty set.
		if c.Operator == OpIn {
			return "FALSE()", nil
		}
		return "TRUE()", nil
	}

	terms := make([]string, 0, len(values))
	for _, v := range values {
		term, err := compileEquality(&Condition{Field: c.Field, Value: v}, fieldType, "=")
		if err != nil {
			return "", err
		}
		terms = append(terms, term)
	}

	inner := terms[0]
	if len(terms) > 1 {
		inner = "OR(" + strings.Join(terms, ", ") + ")"
	}
	if c.Operator == OpNotIn {
		return "NOT(" + inner + ")", nil
	}
	return inner, nil
}

// dayLiteral renders the right-hand side of a day comparison: either the
// formula call reproducing a dynamic placeholder at evaluation time, or a
// quoted "YYYY-MM-DD" string for a concrete value.
func dayLiteral(value interface{}) (string, error) {
	if expr, ok := placeholderFormula(value); ok {
		return expr, nil
	}
	switch v := value.(type) {
	case time.Time:
		return quote(v.Format("2006-01-02")), nil
	case string:
		if t, ok := engine.ParseDateString(v); ok {
			return quote(t.Format("2006-01-02")), nil
		}
		return "", fmt.Errorf("value %q is not a date", v)
	}
	return "", fmt.Errorf("value %v is not a date", value)
}

func scalarLiteral(value interface{}, fieldType engine.FieldType) (string, error) {
	switch v := value.(type) {
	case nil:
		return `""`, nil
	case bool:
		if v {
			return "TRUE()", nil
		}
		return "FALSE()", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case string:
		if fieldType == engine.FieldTypeNumber {
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return strconv.FormatFloat(f, 'f', -1, 64), nil
			}
		}
		return quote(v), nil
	case time.Time:
		return quote(v.Format(time.RFC3339)), nil
	}
	return "", fmt.Errorf("unsupported literal value %T", value)
}

func valueList(value interface{}) ([]interface{}, bool) {
	switch v := value.(type) {
	case []interface{}:
		return v, true
	case []string:
		out := make([]interface{}, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	case []float64:
		out := make([]interface{}, len(v))
		for i, f := range v {
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func truthyValue(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1" || v == "checked"
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// quote renders a double-quoted formula string literal, escaping
// backslashes and embedded quotes.
func quote(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('"')
	return sb.String()
}

// isIdentifier reports whether a field name can appear as a bare formula
// identifier. Platform field keys are identifier-safe by construction; a
// condition over anything else is unevaluable and fails closed upstream.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		letter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
		digit := r >= '0' && r <= '9'
		if i == 0 && !letter {
			return false
		}
		if !letter && !digit {
			return false
		}
	}
	return true
}
