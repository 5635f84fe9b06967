// Package filter defines the canonical representation of compound record
// conditions: a tree of AND/OR groups over field/operator/value leaf
// conditions, plus its normalization from legacy shapes and its
// compilation into formula source text.
package filter

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Combinator joins the children of a group.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

// Operator is the closed set of leaf condition operators.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "not_equals"
	OpContains           Operator = "contains"
	OpNotContains        Operator = "not_contains"
	OpIsEmpty            Operator = "is_empty"
	OpIsNotEmpty         Operator = "is_not_empty"
	OpGreaterThan        Operator = "greater_than"
	OpLessThan           Operator = "less_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpLessThanOrEqual    Operator = "less_than_or_equal"
	OpOn                 Operator = "on"
	OpBefore             Operator = "before"
	OpAfter              Operator = "after"
	OpInRange            Operator = "in_range"
	OpIn                 Operator = "in"
	OpNotIn              Operator = "not_in"
)

// Node is either a Group or a Condition.
type Node interface {
	filterNode()
}

// Condition is a leaf: one field compared against a value. Value may be a
// literal, a list (for in/not_in/in_range) or a dynamic placeholder token
// resolved at evaluation time.
type Condition struct {
	ID       string      `json:"id,omitempty"`
	Field    string      `json:"field"`
	Operator Operator    `json:"operator"`
	Value    interface{} `json:"value,omitempty"`
}

func (c *Condition) filterNode() {}

// NewCondition creates a condition with a fresh identifier. The platform
// persists conditions by ID so view editors can address them individually.
func NewCondition(field string, op Operator, value interface{}) *Condition {
	return &Condition{
		ID:       uuid.NewString(),
		Field:    field,
		Operator: op,
		Value:    value,
	}
}

// Group is an internal tree node combining child conditions and groups.
// An empty group matches every record: supplying no conditions never
// blocks an operation.
type Group struct {
	Combinator Combinator `json:"combinator"`
	Children   []Node     `json:"children,omitempty"`
}

func (g *Group) filterNode() {}

// NewGroup creates a group with the given combinator.
func NewGroup(combinator Combinator, children ...Node) *Group {
	return &Group{Combinator: combinator, Children: children}
}

// rawGroup accepts both the canonical and the legacy persisted keys.
type rawGroup struct {
	Combinator  Combinator        `json:"combinator"`
	Conjunction Combinator        `json:"conjunction"`
	Children    []json.RawMessage `json:"children"`
	Conditions  []json.RawMessage `json:"conditions"`
}

// UnmarshalJSON decodes a group, telling child groups from child
// conditions by the presence of a combinator or children key.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw rawGroup
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	g.Combinator = raw.Combinator
	if g.Combinator == "" {
		g.Combinator = raw.Conjunction
	}
	if g.Combinator == "" {
		g.Combinator = CombinatorAnd
	}

	children := raw.Children
	if children == nil {
		children = raw.Conditions
	}

	g.Children = nil
	for _, msg := range children {
		child, err := unmarshalNode(msg)
		if err != nil {
			return err
		}
		if child != nil {
			g.Children = append(g.Children, child)
		}
	}
	return nil
}

func unmarshalNode(msg json.RawMessage) (Node, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(msg, &keys); err != nil {
		return nil, err
	}
	if isGroupShape(keys) {
		var child Group
		if err := json.Unmarshal(msg, &child); err != nil {
			return nil, err
		}
		return &child, nil
	}
	var cond Condition
	if err := json.Unmarshal(msg, &cond); err != nil {
		return nil, err
	}
	if cond.Field == "" && cond.Operator == "" {
		return nil, fmt.Errorf("filter node is neither a group nor a condition")
	}
	return &cond, nil
}

func isGroupShape(keys map[string]json.RawMessage) bool {
	for _, key := range []string{"combinator", "conjunction", "children", "conditions"} {
		if _, ok := keys[key]; ok {
			return true
		}
	}
	return false
}
