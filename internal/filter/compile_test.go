package filter

import (
	"testing"
	"time"

	"github.com/rowbase/formula/internal/engine"
)

var compileFields = []engine.FieldDescriptor{
	{Name: "status", Type: engine.FieldTypeSingleSelect},
	{Name: "priority", Type: engine.FieldTypeNumber},
	{Name: "done", Type: engine.FieldTypeCheckbox},
	{Name: "dueDate", Type: engine.FieldTypeDate},
	{Name: "tags", Type: engine.FieldTypeMultiSelect},
	{Name: "name", Type: engine.FieldTypeText},
}

func compileOne(t *testing.T, c *Condition) string {
	t.Helper()
	text, err := Compile(NewGroup(CombinatorAnd, c), compileFields)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return text
}

func TestCompileConditions(t *testing.T) {
	tests := []struct {
		name     string
		cond     *Condition
		expected string
	}{
		{"equals text", &Condition{Field: "status", Operator: OpEquals, Value: "done"}, `status = "done"`},
		{"not equals", &Condition{Field: "status", Operator: OpNotEquals, Value: "done"}, `status <> "done"`},
		{"equals number", &Condition{Field: "priority", Operator: OpEquals, Value: 2.0}, "priority = 2"},
		{"number from string", &Condition{Field: "priority", Operator: OpGreaterThan, Value: "2"}, "priority > 2"},
		{"checkbox true", &Condition{Field: "done", Operator: OpEquals, Value: true}, "done = TRUE()"},
		{"checkbox string", &Condition{Field: "done", Operator: OpEquals, Value: "checked"}, "done = TRUE()"},
		{"checkbox false", &Condition{Field: "done", Operator: OpEquals, Value: false}, "done = FALSE()"},
		{"contains", &Condition{Field: "name", Operator: OpContains, Value: "gad"}, `FIND("gad", CONCAT(name)) > 0`},
		{"not contains", &Condition{Field: "name", Operator: OpNotContains, Value: "gad"}, `FIND("gad", CONCAT(name)) = 0`},
		{"is empty scalar", &Condition{Field: "name", Operator: OpIsEmpty}, "LEN(CONCAT(name)) = 0"},
		{"is not empty scalar", &Condition{Field: "name", Operator: OpIsNotEmpty}, "LEN(CONCAT(name)) > 0"},
		{"is empty multi", &Condition{Field: "tags", Operator: OpIsEmpty}, "COUNTA(tags) = 0"},
		{"is not empty multi", &Condition{Field: "tags", Operator: OpIsNotEmpty}, "COUNTA(tags) > 0"},
		{"date on", &Condition{Field: "dueDate", Operator: OpOn, Value: "2024-03-05"}, `DATETIME_FORMAT(dueDate, "YYYY-MM-DD") = "2024-03-05"`},
		{"date before", &Condition{Field: "dueDate", Operator: OpBefore, Value: "2024-03-05"}, `DATETIME_FORMAT(dueDate, "YYYY-MM-DD") < "2024-03-05"`},
		{"date after", &Condition{Field: "dueDate", Operator: OpAfter, Value: "2024-03-05"}, `DATETIME_FORMAT(dueDate, "YYYY-MM-DD") > "2024-03-05"`},
		{"date equals routes by type", &Condition{Field: "dueDate", Operator: OpEquals, Value: "2024-03-05"}, `DATETIME_FORMAT(dueDate, "YYYY-MM-DD") = "2024-03-05"`},
		{"dynamic today", &Condition{Field: "dueDate", Operator: OpOn, Value: PlaceholderToday}, `DATETIME_FORMAT(dueDate, "YYYY-MM-DD") = DATETIME_FORMAT(TODAY(), "YYYY-MM-DD")`},
		{"dynamic yesterday", &Condition{Field: "dueDate", Operator: OpOn, Value: PlaceholderYesterday}, `DATETIME_FORMAT(dueDate, "YYYY-MM-DD") = DATETIME_FORMAT(DATEADD(TODAY(), -1, "days"), "YYYY-MM-DD")`},
		{"dynamic tomorrow", &Condition{Field: "dueDate", Operator: OpBefore, Value: PlaceholderTomorrow}, `DATETIME_FORMAT(dueDate, "YYYY-MM-DD") < DATETIME_FORMAT(DATEADD(TODAY(), 1, "days"), "YYYY-MM-DD")`},
		{"in range", &Condition{Field: "priority", Operator: OpInRange, Value: []interface{}{1.0, 3.0}}, "AND(priority >= 1, priority <= 3)"},
		{"in", &Condition{Field: "status", Operator: OpIn, Value: []string{"done", "archived"}}, `OR(status = "done", status = "archived")`},
		{"in single", &Condition{Field: "status", Operator: OpIn, Value: []string{"done"}}, `status = "done"`},
		{"in empty", &Condition{Field: "status", Operator: OpIn, Value: []string{}}, "FALSE()"},
		{"not in", &Condition{Field: "status", Operator: OpNotIn, Value: []string{"done", "archived"}}, `NOT(OR(status = "done", status = "archived"))`},
		{"not in empty", &Condition{Field: "status", Operator: OpNotIn, Value: []string{}}, "TRUE()"},
		{"unknown field defaults to text", &Condition{Field: "mystery", Operator: OpEquals, Value: "x"}, `mystery = "x"`},
		{"string needs quoting", &Condition{Field: "name", Operator: OpEquals, Value: `say "hi"`}, `name = "say \"hi\""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compileOne(t, tt.cond); got != tt.expected {
				t.Errorf("compiled %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCompileGroups(t *testing.T) {
	a := &Condition{Field: "status", Operator: OpEquals, Value: "done"}
	b := &Condition{Field: "priority", Operator: OpGreaterThan, Value: 2.0}

	tests := []struct {
		name     string
		tree     *Group
		expected string
	}{
		{"empty", NewGroup(CombinatorAnd), ""},
		{"single child unwrapped", NewGroup(CombinatorAnd, a), `status = "done"`},
		{"and", NewGroup(CombinatorAnd, a, b), `AND(status = "done", priority > 2)`},
		{"or", NewGroup(CombinatorOr, a, b), `OR(status = "done", priority > 2)`},
		{
			"nested",
			NewGroup(CombinatorOr, a, NewGroup(CombinatorAnd, b, a)),
			`OR(status = "done", AND(priority > 2, status = "done"))`,
		},
		{
			"empty nested group skipped",
			NewGroup(CombinatorAnd, a, NewGroup(CombinatorOr)),
			`status = "done"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compile(tt.tree, compileFields)
			if err != nil {
				t.Fatalf("compile failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("compiled %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCompileNilTree(t *testing.T) {
	got, err := Compile(nil, compileFields)
	if err != nil || got != "" {
		t.Errorf("Compile(nil) = %q, %v", got, err)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		cond *Condition
	}{
		{"non-identifier field", &Condition{Field: "due date!", Operator: OpEquals, Value: 1}},
		{"empty field", &Condition{Field: "", Operator: OpEquals, Value: 1}},
		{"leading digit field", &Condition{Field: "1field", Operator: OpEquals, Value: 1}},
		{"bad operator", &Condition{Field: "status", Operator: "matches", Value: 1}},
		{"in_range scalar value", &Condition{Field: "priority", Operator: OpInRange, Value: 5.0}},
		{"in_range wrong arity", &Condition{Field: "priority", Operator: OpInRange, Value: []interface{}{1.0}}},
		{"in scalar value", &Condition{Field: "status", Operator: OpIn, Value: "done"}},
		{"date op on non-date", &Condition{Field: "dueDate", Operator: OpOn, Value: "not a date"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(NewGroup(CombinatorAnd, tt.cond), compileFields); err == nil {
				t.Error("expected a compile error")
			}
		})
	}
}

// Compiled filters must evaluate correctly through the formula engine.
func TestCompileEvaluationRoundTrip(t *testing.T) {
	row := map[string]interface{}{
		"status":   "done",
		"priority": 3.0,
		"done":     true,
		"dueDate":  "2024-03-07T09:00:00Z",
		"tags":     []string{},
		"name":     "Gadget",
	}
	clock := func() time.Time {
		return time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		tree    *Group
		matches bool
	}{
		{
			"and all true",
			NewGroup(CombinatorAnd,
				&Condition{Field: "status", Operator: OpEquals, Value: "done"},
				&Condition{Field: "priority", Operator: OpGreaterThanOrEqual, Value: 3.0},
			),
			true,
		},
		{
			"and one false",
			NewGroup(CombinatorAnd,
				&Condition{Field: "status", Operator: OpEquals, Value: "done"},
				&Condition{Field: "priority", Operator: OpLessThan, Value: 3.0},
			),
			false,
		},
		{
			"or rescues",
			NewGroup(CombinatorOr,
				&Condition{Field: "status", Operator: OpEquals, Value: "archived"},
				&Condition{Field: "done", Operator: OpEquals, Value: true},
			),
			true,
		},
		{
			"contains",
			NewGroup(CombinatorAnd, &Condition{Field: "name", Operator: OpContains, Value: "adge"}),
			true,
		},
		{
			"multi empty",
			NewGroup(CombinatorAnd, &Condition{Field: "tags", Operator: OpIsEmpty}),
			true,
		},
		{
			"membership",
			NewGroup(CombinatorAnd, &Condition{Field: "status", Operator: OpIn, Value: []string{"open", "done"}}),
			true,
		},
	}

	eval := engine.NewEvaluator(engine.Builtins())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := Compile(tt.tree, compileFields)
			if err != nil {
				t.Fatalf("compile failed: %v", err)
			}
			ctx := engine.NewContext(row, compileFields)
			ctx.Clock = clock
			v := eval.EvaluateSource(source, ctx)
			if v.Truthy() != tt.matches {
				t.Errorf("%q evaluated to %s, want match=%v", source, v, tt.matches)
			}
		})
	}
}

// A filter over a non-ASCII value must match a row holding exactly that
// value after the compile and evaluate round trip.
func TestCompileEvaluationRoundTripUnicode(t *testing.T) {
	row := map[string]interface{}{"name": "café"}
	fields := []engine.FieldDescriptor{{Name: "name", Type: engine.FieldTypeText}}

	tests := []struct {
		name    string
		cond    *Condition
		matches bool
	}{
		{"equals accented", &Condition{Field: "name", Operator: OpEquals, Value: "café"}, true},
		{"equals accented miss", &Condition{Field: "name", Operator: OpEquals, Value: "cafe"}, false},
		{"contains accented", &Condition{Field: "name", Operator: OpContains, Value: "afé"}, true},
	}

	eval := engine.NewEvaluator(engine.Builtins())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source, err := Compile(NewGroup(CombinatorAnd, tt.cond), fields)
			if err != nil {
				t.Fatalf("compile failed: %v", err)
			}
			ctx := engine.NewContext(row, fields)
			v := eval.EvaluateSource(source, ctx)
			if v.Truthy() != tt.matches {
				t.Errorf("%q evaluated to %s, want match=%v", source, v, tt.matches)
			}
		})
	}
}
