package engine

// Evaluator walks a parsed AST against an evaluation context. The function
// registry is injected at construction time and never mutated afterwards,
// so a single Evaluator is safe for any number of concurrent callers.
type Evaluator struct {
	funcs Registry
}

// NewEvaluator creates an evaluator over the given function registry.
func NewEvaluator(funcs Registry) *Evaluator {
	return &Evaluator{funcs: funcs}
}

// Evaluate reduces a node to a value. It never returns an error through a
// second channel: every failure mode is an error-kinded Value that
// propagates through consuming expressions, mirroring spreadsheet
// semantics.
func (e *Evaluator) Evaluate(node Node, ctx *Context) Value {
	switch n := node.(type) {
	case *LiteralExpr:
		return n.Value

	case *FieldRefExpr:
		return ctx.Lookup(n.Name)

	case *UnaryExpr:
		return e.evalUnary(n, ctx)

	case *BinaryExpr:
		return e.evalBinary(n, ctx)

	case *FunctionCallExpr:
		return e.evalFunctionCall(n, ctx)
	}

	return Error(ErrCodeError)
}

func (e *Evaluator) evalUnary(n *UnaryExpr, ctx *Context) Value {
	operand := e.Evaluate(n.Operand, ctx)
	if operand.IsError() {
		return operand
	}

	switch n.Operator {
	case "-":
		f, ok := operand.Number()
		if !ok {
			return Error(ErrCodeValue)
		}
		return Number(-f)
	}

	return Error(ErrCodeError)
}

// evalBinary evaluates operands left to right; the first error operand
// wins and becomes the result without the operator being applied.
func (e *Evaluator) evalBinary(n *BinaryExpr, ctx *Context) Value {
	left := e.Evaluate(n.Left, ctx)
	if left.IsError() {
		return left
	}
	right := e.Evaluate(n.Right, ctx)
	if right.IsError() {
		return right
	}

	switch n.Operator {
	case "+", "-", "*", "/":
		return evalArithmetic(n.Operator, left, right)
	case "&":
		return String(left.String() + right.String())
	case "=":
		return Bool(Compare(left, right) == 0)
	case "<>":
		return Bool(Compare(left, right) != 0)
	case "<":
		return Bool(Compare(left, right) < 0)
	case ">":
		return Bool(Compare(left, right) > 0)
	case "<=":
		return Bool(Compare(left, right) <= 0)
	case ">=":
		return Bool(Compare(left, right) >= 0)
	}

	return Error(ErrCodeError)
}

func evalArithmetic(op string, left, right Value) Value {
	l, lok := left.Number()
	r, rok := right.Number()
	if !lok || !rok {
		return Error(ErrCodeValue)
	}

	switch op {
	case "+":
		return Number(l + r)
	case "-":
		return Number(l - r)
	case "*":
		return Number(l * r)
	case "/":
		if r == 0 {
			return Error(ErrCodeDivZero)
		}
		return Number(l / r)
	}

	return Error(ErrCodeError)
}

// evalFunctionCall resolves the function name (case-sensitive), evaluates
// all arguments eagerly and dispatches. There is no short-circuiting:
// both branches of IF are evaluated before IF runs. An error-valued
// argument propagates before dispatch.
func (e *Evaluator) evalFunctionCall(n *FunctionCallExpr, ctx *Context) Value {
	fn, ok := e.funcs[n.Name]
	if !ok {
		return Error(ErrCodeName)
	}

	args := make([]Value, len(n.Args))
	for i, argNode := range n.Args {
		args[i] = e.Evaluate(argNode, ctx)
		if args[i].IsError() {
			return args[i]
		}
	}

	if len(args) < fn.MinArgs {
		return Error(ErrCodeError)
	}
	if fn.MaxArgs >= 0 && len(args) > fn.MaxArgs {
		return Error(ErrCodeError)
	}

	return fn.Call(args, ctx)
}

// EvaluateSource tokenizes, parses and evaluates formula source text in
// one shot. Lex and parse failures surface as an #ERROR! value so callers
// have a single failure channel to check.
func (e *Evaluator) EvaluateSource(source string, ctx *Context) Value {
	node, err := ParseSource(source)
	if err != nil {
		return Error(ErrCodeError)
	}
	return e.Evaluate(node, ctx)
}
