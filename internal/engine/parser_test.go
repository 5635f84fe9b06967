package engine

import (
	"errors"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string) Node {
	t.Helper()
	node, err := ParseSource(source)
	if err != nil {
		t.Fatalf("ParseSource(%q) returned error: %v", source, err)
	}
	return node
}

func TestParserPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3)
	node := mustParse(t, "1 + 2 * 3")

	add, ok := node.(*BinaryExpr)
	if !ok || add.Operator != "+" {
		t.Fatalf("expected root '+', got %#v", node)
	}
	mul, ok := add.Right.(*BinaryExpr)
	if !ok || mul.Operator != "*" {
		t.Fatalf("expected right operand '*', got %#v", add.Right)
	}
}

func TestParserRelationalLowest(t *testing.T) {
	// a + 1 > b * 2 must parse as (a + 1) > (b * 2)
	node := mustParse(t, "a + 1 > b * 2")

	cmp, ok := node.(*BinaryExpr)
	if !ok || cmp.Operator != ">" {
		t.Fatalf("expected root '>', got %#v", node)
	}
	if left, ok := cmp.Left.(*BinaryExpr); !ok || left.Operator != "+" {
		t.Fatalf("expected left '+', got %#v", cmp.Left)
	}
	if right, ok := cmp.Right.(*BinaryExpr); !ok || right.Operator != "*" {
		t.Fatalf("expected right '*', got %#v", cmp.Right)
	}
}

func TestParserGrouping(t *testing.T) {
	// (1 + 2) * 3 must parse as multiplication of a sum
	node := mustParse(t, "(1 + 2) * 3")

	mul, ok := node.(*BinaryExpr)
	if !ok || mul.Operator != "*" {
		t.Fatalf("expected root '*', got %#v", node)
	}
	if left, ok := mul.Left.(*BinaryExpr); !ok || left.Operator != "+" {
		t.Fatalf("expected left '+', got %#v", mul.Left)
	}
}

func TestParserUnaryMinus(t *testing.T) {
	node := mustParse(t, "-x * 2")

	mul, ok := node.(*BinaryExpr)
	if !ok || mul.Operator != "*" {
		t.Fatalf("expected root '*', got %#v", node)
	}
	if _, ok := mul.Left.(*UnaryExpr); !ok {
		t.Fatalf("expected left unary minus, got %#v", mul.Left)
	}
}

func TestParserFunctionCalls(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		fn       string
		argCount int
	}{
		{"No arguments", "TODAY()", "TODAY", 0},
		{"One argument", "UPPER(name)", "UPPER", 1},
		{"Multiple arguments", `IF(done, "yes", "no")`, "IF", 3},
		{"Nested call", "LEN(CONCAT(a, b))", "LEN", 1},
		{"Unknown name parses fine", "NO_SUCH_FN(1)", "NO_SUCH_FN", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := mustParse(t, tt.source)
			call, ok := node.(*FunctionCallExpr)
			if !ok {
				t.Fatalf("expected function call, got %#v", node)
			}
			if call.Name != tt.fn {
				t.Errorf("expected function %q, got %q", tt.fn, call.Name)
			}
			if len(call.Args) != tt.argCount {
				t.Errorf("expected %d args, got %d", tt.argCount, len(call.Args))
			}
		})
	}
}

func TestParserFieldReference(t *testing.T) {
	node := mustParse(t, "status")
	ref, ok := node.(*FieldRefExpr)
	if !ok {
		t.Fatalf("expected field reference, got %#v", node)
	}
	if ref.Name != "status" {
		t.Errorf("expected field name %q, got %q", "status", ref.Name)
	}
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"Trailing tokens", "1 + 2 3"},
		{"Unbalanced open paren", "(1 + 2"},
		{"Unbalanced close paren", "1 + 2)"},
		{"Missing operand", "1 +"},
		{"Missing function close", "LEN(a"},
		{"Dangling comma", "CONCAT(a,)"},
		{"Empty input", ""},
		{"Operator only", "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSource(tt.source); err == nil {
				t.Errorf("ParseSource(%q) expected error, got none", tt.source)
			}
		})
	}
}

func TestParserSentinelErrors(t *testing.T) {
	if _, err := ParseSource("1 + 2 3"); !errors.Is(err, errUnexpectedToken) {
		t.Errorf("expected errUnexpectedToken, got %v", err)
	}
	if _, err := ParseSource("(1 + 2"); !errors.Is(err, errUnexpectedToken) {
		t.Errorf("expected errUnexpectedToken, got %v", err)
	}
}

func TestParserDepthCap(t *testing.T) {
	deep := strings.Repeat("(", 200) + "1" + strings.Repeat(")", 200)
	if _, err := ParseSource(deep); !errors.Is(err, errMaxDepth) {
		t.Fatalf("expected nesting depth error, got %v", err)
	}

	shallow := strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)
	if _, err := ParseSource(shallow); err != nil {
		t.Fatalf("shallow nesting should parse, got error: %v", err)
	}
}
