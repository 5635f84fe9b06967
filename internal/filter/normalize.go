package filter

import "encoding/json"

// Normalize lifts any accepted filter shape into the canonical group tree.
// Legacy persisted shapes (a bare condition, a flat condition list, a
// JSON-decoded map) all normalize to a root group whose combinator
// defaults to AND. A nil or unrecognized input normalizes to an empty AND
// group, which evaluates as vacuously true.
func Normalize(raw interface{}) *Group {
	switch v := raw.(type) {
	case nil:
		return NewGroup(CombinatorAnd)

	case *Group:
		if v == nil {
			return NewGroup(CombinatorAnd)
		}
		normalizeGroup(v)
		return v

	case Group:
		g := v
		normalizeGroup(&g)
		return &g

	case *Condition:
		if v == nil {
			return NewGroup(CombinatorAnd)
		}
		return NewGroup(CombinatorAnd, v)

	case Condition:
		c := v
		return NewGroup(CombinatorAnd, &c)

	case []*Condition:
		g := NewGroup(CombinatorAnd)
		for _, c := range v {
			if c != nil {
				g.Children = append(g.Children, c)
			}
		}
		return g

	case []Condition:
		g := NewGroup(CombinatorAnd)
		for i := range v {
			c := v[i]
			g.Children = append(g.Children, &c)
		}
		return g

	case []Node:
		g := NewGroup(CombinatorAnd)
		for _, n := range v {
			if n != nil {
				g.Children = append(g.Children, n)
			}
		}
		normalizeGroup(g)
		return g

	case json.RawMessage:
		return normalizeJSON([]byte(v))

	case []byte:
		return normalizeJSON(v)

	case map[string]interface{}, []interface{}:
		// Round-trip through JSON so map-decoded trees share one decode path.
		data, err := json.Marshal(v)
		if err != nil {
			return NewGroup(CombinatorAnd)
		}
		return normalizeJSON(data)
	}

	return NewGroup(CombinatorAnd)
}

func normalizeJSON(data []byte) *Group {
	if len(data) == 0 {
		return NewGroup(CombinatorAnd)
	}

	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return NewGroup(CombinatorAnd)
	}

	switch decoded.(type) {
	case []interface{}:
		// Legacy flat list of conditions.
		var conditions []Condition
		if err := json.Unmarshal(data, &conditions); err != nil {
			return NewGroup(CombinatorAnd)
		}
		return Normalize(conditions)

	case map[string]interface{}:
		var m map[string]json.RawMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return NewGroup(CombinatorAnd)
		}
		if isGroupShape(m) {
			var g Group
			if err := json.Unmarshal(data, &g); err != nil {
				return NewGroup(CombinatorAnd)
			}
			normalizeGroup(&g)
			return &g
		}
		// A single bare condition object.
		var c Condition
		if err := json.Unmarshal(data, &c); err != nil || (c.Field == "" && c.Operator == "") {
			return NewGroup(CombinatorAnd)
		}
		return NewGroup(CombinatorAnd, &c)
	}

	return NewGroup(CombinatorAnd)
}

// normalizeGroup defaults missing combinators to AND and drops nil
// children, recursively.
func normalizeGroup(g *Group) {
	if g.Combinator != CombinatorAnd && g.Combinator != CombinatorOr {
		g.Combinator = CombinatorAnd
	}
	children := g.Children[:0]
	for _, child := range g.Children {
		switch c := child.(type) {
		case *Group:
			if c == nil {
				continue
			}
			normalizeGroup(c)
			children = append(children, c)
		case *Condition:
			if c == nil {
				continue
			}
			children = append(children, c)
		}
	}
	g.Children = children
}
