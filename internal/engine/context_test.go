package engine

import (
	"testing"
	"time"
)

func TestContextLookup(t *testing.T) {
	ctx := NewContext(map[string]interface{}{
		"Name":  "Widget",
		"count": 3,
		"tags":  []string{"red", "blue"},
		"none":  []string{},
	}, []FieldDescriptor{
		{Name: "Name", Type: FieldTypeText},
		{Name: "count", Type: FieldTypeNumber},
		{Name: "tags", Type: FieldTypeMultiSelect},
		{Name: "none", Type: FieldTypeMultiSelect},
	})

	if v := ctx.Lookup("name"); v.StringVal() != "Widget" {
		t.Errorf("case-insensitive lookup failed: %s", v)
	}
	if v := ctx.Lookup("NAME"); v.StringVal() != "Widget" {
		t.Errorf("case-insensitive lookup failed: %s", v)
	}
	if v := ctx.Lookup("missing"); !v.IsNull() {
		t.Errorf("missing field must be null, got %s", v)
	}
	if v := ctx.Lookup("tags"); v.StringVal() != "red, blue" {
		t.Errorf("multi-value join failed: %s", v)
	}
	if v := ctx.Lookup("none"); !v.IsNull() {
		t.Errorf("empty list must be null, got %s", v)
	}
}

func TestConvertRaw(t *testing.T) {
	when := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  interface{}
		ft   FieldType
		kind Kind
	}{
		{"nil", nil, FieldTypeText, KindNull},
		{"bool", true, FieldTypeCheckbox, KindBool},
		{"int", 3, FieldTypeNumber, KindNumber},
		{"int64", int64(3), FieldTypeNumber, KindNumber},
		{"float", 3.5, FieldTypeNumber, KindNumber},
		{"string", "x", FieldTypeText, KindString},
		{"time", when, FieldTypeDate, KindDate},
		{"time pointer", &when, FieldTypeDate, KindDate},
		{"nil time pointer", (*time.Time)(nil), FieldTypeDate, KindNull},
		{"date string", "2024-03-05", FieldTypeDate, KindDate},
		{"bad date string", "soon", FieldTypeDate, KindString},
		{"date string on text field", "2024-03-05", FieldTypeText, KindString},
		{"unknown type", struct{}{}, FieldTypeText, KindNull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertRaw(tt.raw, tt.ft); got.Kind() != tt.kind {
				t.Errorf("ConvertRaw(%v) kind = %v, want %v", tt.raw, got.Kind(), tt.kind)
			}
		})
	}
}

func TestContextClock(t *testing.T) {
	pinned := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	ctx := NewContext(nil, nil)

	if ctx.Now().IsZero() {
		t.Error("default clock must be the wall clock")
	}

	ctx.Clock = func() time.Time { return pinned }
	if !ctx.Now().Equal(pinned) {
		t.Errorf("pinned clock not honored: %v", ctx.Now())
	}
}
