package engine

// Node represents a node in the abstract syntax tree. The variant set is
// closed; trees are immutable once parsed and never shared across parses
// except through the parse cache, which only hands out trees it owns.
type Node interface {
	astNode()
}

// LiteralExpr represents a literal value (number or string)
type LiteralExpr struct {
	Value Value
}

func (e *LiteralExpr) astNode() {}

// FieldRefExpr represents a reference to a record field by name
type FieldRefExpr struct {
	Name string
}

func (e *FieldRefExpr) astNode() {}

// UnaryExpr represents a unary expression (e.g. -X)
type UnaryExpr struct {
	Operator string
	Operand  Node
}

func (e *UnaryExpr) astNode() {}

// BinaryExpr represents a binary expression (e.g. X + Y, A <> B)
type BinaryExpr struct {
	Left     Node
	Operator string
	Right    Node
}

func (e *BinaryExpr) astNode() {}

// FunctionCallExpr represents a function call (e.g. CONCAT(A, B)). The
// function name is not resolved against the registry at parse time;
// existence is checked during evaluation.
type FunctionCallExpr struct {
	Name string
	Args []Node
}

func (e *FunctionCallExpr) astNode() {}
