package rules

import (
	"testing"
	"time"

	"github.com/rowbase/formula/internal/engine"
	"github.com/rowbase/formula/internal/filter"
)

var highlightFields = []engine.FieldDescriptor{
	{Name: "status", Type: engine.FieldTypeSingleSelect},
	{Name: "priority", Type: engine.FieldTypeNumber},
	{Name: "name", Type: engine.FieldTypeText},
	{Name: "dueDate", Type: engine.FieldTypeDate},
	{Name: "notes", Type: engine.FieldTypeText},
}

func pinnedClock() time.Time {
	return time.Date(2024, 3, 7, 15, 0, 0, 0, time.Local)
}

func highlightRow() map[string]interface{} {
	return map[string]interface{}{
		"status":   "done",
		"priority": 3.0,
		"name":     "Gadget",
		"dueDate":  "2024-03-05",
		"notes":    nil,
	}
}

func TestHighlightFirstMatchWins(t *testing.T) {
	rules := []HighlightRule{
		{ID: "r1", Field: "status", Operator: HighlightEq, Value: "done", Style: HighlightStyle{Color: "green"}},
		{ID: "r2", Field: "priority", Operator: HighlightGt, Value: 1.0, Style: HighlightStyle{Color: "red"}},
	}

	match := EvaluateHighlightRules(rules, highlightRow(), highlightFields, pinnedClock)
	if match == nil {
		t.Fatal("expected a match")
	}
	if match.ID != "r1" {
		t.Errorf("first matching rule must win, got %q", match.ID)
	}
}

func TestHighlightNoMatch(t *testing.T) {
	rules := []HighlightRule{
		{Field: "status", Operator: HighlightEq, Value: "archived"},
		{Field: "priority", Operator: HighlightLt, Value: 1.0},
	}

	if match := EvaluateHighlightRules(rules, highlightRow(), highlightFields, pinnedClock); match != nil {
		t.Errorf("expected no match, got %+v", match)
	}
}

func TestHighlightOperators(t *testing.T) {
	tests := []struct {
		name  string
		rule  HighlightRule
		match bool
	}{
		{"eq", HighlightRule{Field: "status", Operator: HighlightEq, Value: "done"}, true},
		{"eq miss", HighlightRule{Field: "status", Operator: HighlightEq, Value: "open"}, false},
		{"neq", HighlightRule{Field: "status", Operator: HighlightNeq, Value: "open"}, true},
		{"gt", HighlightRule{Field: "priority", Operator: HighlightGt, Value: 2.0}, true},
		{"gt miss", HighlightRule{Field: "priority", Operator: HighlightGt, Value: 3.0}, false},
		{"lt", HighlightRule{Field: "priority", Operator: HighlightLt, Value: 4.0}, true},
		{"gt null never matches", HighlightRule{Field: "notes", Operator: HighlightGt, Value: 0.0}, false},
		{"contains case-insensitive", HighlightRule{Field: "name", Operator: HighlightContains, Value: "GADG"}, true},
		{"contains miss", HighlightRule{Field: "name", Operator: HighlightContains, Value: "widget"}, false},
		{"contains null never matches", HighlightRule{Field: "notes", Operator: HighlightContains, Value: "x"}, false},
		{"is_empty", HighlightRule{Field: "notes", Operator: HighlightIsEmpty}, true},
		{"is_empty miss", HighlightRule{Field: "name", Operator: HighlightIsEmpty}, false},
		{"is_not_empty", HighlightRule{Field: "name", Operator: HighlightIsNotEmpty}, true},
		{"undeclared field fails closed", HighlightRule{Field: "mystery", Operator: HighlightIsEmpty}, false},
		{"unknown operator fails closed", HighlightRule{Field: "status", Operator: "matches", Value: "done"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := EvaluateHighlightRules([]HighlightRule{tt.rule}, highlightRow(), highlightFields, pinnedClock)
			if (match != nil) != tt.match {
				t.Errorf("match = %v, want %v", match != nil, tt.match)
			}
		})
	}
}

func TestHighlightDateOperators(t *testing.T) {
	// The clock is pinned to 2024-03-07 15:00 local.
	tests := []struct {
		name    string
		dueDate interface{}
		rule    HighlightRule
		match   bool
	}{
		{"today matches same day", "2024-03-07", HighlightRule{Field: "dueDate", Operator: HighlightDateToday}, true},
		{"today matches late timestamp", "2024-03-07 23:59:59", HighlightRule{Field: "dueDate", Operator: HighlightDateToday}, true},
		{"today misses yesterday", "2024-03-06", HighlightRule{Field: "dueDate", Operator: HighlightDateToday}, false},
		{"overdue past day", "2024-03-05", HighlightRule{Field: "dueDate", Operator: HighlightOverdue}, true},
		{"due today is not overdue", "2024-03-07", HighlightRule{Field: "dueDate", Operator: HighlightOverdue}, false},
		{"before literal", "2024-03-05", HighlightRule{Field: "dueDate", Operator: HighlightDateBefore, Value: "2024-03-06"}, true},
		{"before same day excluded", "2024-03-06 23:59:59", HighlightRule{Field: "dueDate", Operator: HighlightDateBefore, Value: "2024-03-06"}, false},
		{"after literal", "2024-03-08", HighlightRule{Field: "dueDate", Operator: HighlightDateAfter, Value: "2024-03-07"}, true},
		{"before placeholder today", "2024-03-06", HighlightRule{Field: "dueDate", Operator: HighlightDateBefore, Value: filter.PlaceholderToday}, true},
		{"after placeholder yesterday", "2024-03-07", HighlightRule{Field: "dueDate", Operator: HighlightDateAfter, Value: filter.PlaceholderYesterday}, true},
		{"null date fails closed", nil, HighlightRule{Field: "dueDate", Operator: HighlightOverdue}, false},
		{"unparseable target fails closed", "2024-03-05", HighlightRule{Field: "dueDate", Operator: HighlightDateBefore, Value: "whenever"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := highlightRow()
			row["dueDate"] = tt.dueDate
			match := EvaluateHighlightRules([]HighlightRule{tt.rule}, row, highlightFields, pinnedClock)
			if (match != nil) != tt.match {
				t.Errorf("match = %v, want %v", match != nil, tt.match)
			}
		})
	}
}

func TestNewHighlightRuleAssignsID(t *testing.T) {
	r := NewHighlightRule("status", HighlightEq, "done", HighlightStyle{Color: "green"})
	if r.ID == "" {
		t.Error("expected a generated rule ID")
	}
	if r.Field != "status" || r.Operator != HighlightEq {
		t.Errorf("unexpected rule %+v", r)
	}
}
