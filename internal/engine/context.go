package engine

import (
	"strings"
	"time"
)

// FieldType is the declared type of a table field. The engine only cares
// about the distinctions that change evaluation behaviour: date fields
// parse their stored value into a date, multi-value fields stringify to a
// joined list and count as empty when the list is empty.
type FieldType string

const (
	FieldTypeText         FieldType = "text"
	FieldTypeNumber       FieldType = "number"
	FieldTypeCheckbox     FieldType = "checkbox"
	FieldTypeDate         FieldType = "date"
	FieldTypeSingleSelect FieldType = "single_select"
	FieldTypeMultiSelect  FieldType = "multi_select"
)

// MultiValue reports whether the field type stores an ordered list of
// values rather than a scalar.
func (ft FieldType) MultiValue() bool {
	return ft == FieldTypeMultiSelect
}

// FieldDescriptor describes one field of the table a record belongs to.
type FieldDescriptor struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Context carries the data one formula evaluation runs against: the raw
// record values keyed by field name and the ordered field metadata. It is
// read-only for the duration of an evaluation and is never mutated by the
// evaluator. Clock, when set, overrides the wall clock used by NOW and
// TODAY; tests use it to pin "today".
type Context struct {
	Row    map[string]interface{}
	Fields []FieldDescriptor
	Clock  func() time.Time
}

// NewContext creates an evaluation context over a record and its field
// metadata.
func NewContext(row map[string]interface{}, fields []FieldDescriptor) *Context {
	return &Context{Row: row, Fields: fields}
}

// Now returns the evaluation-time wall clock.
func (c *Context) Now() time.Time {
	if c != nil && c.Clock != nil {
		return c.Clock()
	}
	return time.Now()
}

// Field resolves a field descriptor by name. Field names match
// case-insensitively.
func (c *Context) Field(name string) (FieldDescriptor, bool) {
	if c == nil {
		return FieldDescriptor{}, false
	}
	for _, f := range c.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Lookup resolves a field reference to its typed value. A missing field
// yields null, not an error: absent is not invalid.
func (c *Context) Lookup(name string) Value {
	if c == nil || c.Row == nil {
		return Null()
	}
	field, _ := c.Field(name)

	raw, ok := c.Row[name]
	if !ok {
		for key, v := range c.Row {
			if strings.EqualFold(key, name) {
				raw, ok = v, true
				break
			}
		}
	}
	if !ok {
		return Null()
	}
	return ConvertRaw(raw, field.Type)
}

// ConvertRaw converts a raw stored value into a formula Value, guided by
// the field's declared type. Date-typed string values are parsed into
// dates; a stored value that fails to parse stays a string so comparisons
// degrade instead of erroring. Multi-value lists join with ", " and an
// empty list converts to null.
func ConvertRaw(raw interface{}, ft FieldType) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case bool:
		return Bool(v)
	case int:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case float32:
		return Number(float64(v))
	case float64:
		return Number(v)
	case time.Time:
		return Date(v)
	case *time.Time:
		if v == nil {
			return Null()
		}
		return Date(*v)
	case string:
		if ft == FieldTypeDate {
			if t, ok := ParseDateString(v); ok {
				return Date(t)
			}
		}
		return String(v)
	case []string:
		if len(v) == 0 {
			return Null()
		}
		return String(strings.Join(v, ", "))
	case []interface{}:
		if len(v) == 0 {
			return Null()
		}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, ConvertRaw(item, "").String())
		}
		return String(strings.Join(parts, ", "))
	default:
		return Null()
	}
}
