package engine

// FunctionFunc is the evaluation rule of a builtin function. Arguments
// arrive fully evaluated and error-free; the evaluator propagates
// error-valued arguments before dispatch.
type FunctionFunc func(args []Value, ctx *Context) Value

// Function describes one registry entry. MaxArgs of -1 means variadic.
// Calls violating the declared argument count yield #ERROR! without the
// function body running.
type Function struct {
	Name    string
	MinArgs int
	MaxArgs int
	Call    FunctionFunc
}

// Registry maps function names to their evaluation rules. Lookup is
// case-sensitive; builtin names follow the upper-case convention. A
// registry is built once and treated as immutable afterwards.
type Registry map[string]*Function

func (r Registry) add(name string, minArgs, maxArgs int, call FunctionFunc) {
	r[name] = &Function{Name: name, MinArgs: minArgs, MaxArgs: maxArgs, Call: call}
}

// Builtins constructs the full builtin function registry.
func Builtins() Registry {
	r := make(Registry)
	registerStringFunctions(r)
	registerMathFunctions(r)
	registerLogicFunctions(r)
	registerDateFunctions(r)
	return r
}
