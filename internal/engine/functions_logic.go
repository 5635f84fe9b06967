package engine

func registerLogicFunctions(r Registry) {
	r.add("IF", 2, 3, fnIf)
	r.add("SWITCH", 3, -1, fnSwitch)
	r.add("AND", 1, -1, fnAnd)
	r.add("OR", 1, -1, fnOr)
	r.add("XOR", 1, -1, fnXor)
	r.add("NOT", 1, 1, fnNot)
	r.add("TRUE", 0, 0, fnTrue)
	r.add("FALSE", 0, 0, fnFalse)
	r.add("BLANK", 0, 0, fnBlank)
	r.add("ISBLANK", 1, 1, fnIsBlank)
	r.add("COUNTA", 0, -1, fnCountA)
}

// fnIf picks a branch by truthy coercion of the condition. Both branches
// were already evaluated before dispatch; IF does not short-circuit.
func fnIf(args []Value, _ *Context) Value {
	if args[0].Truthy() {
		return args[1]
	}
	if len(args) == 3 {
		return args[2]
	}
	return Null()
}

// fnSwitch scans case/result pairs for the first case equal to the subject
// value; a trailing unpaired argument is the default. No match and no
// default yields null. Registration enforces the minimum of three
// arguments, so a call with fewer is #ERROR! before dispatch.
func fnSwitch(args []Value, _ *Context) Value {
	subject := args[0]
	i := 1
	for ; i+1 < len(args); i += 2 {
		if Compare(subject, args[i]) == 0 {
			return args[i+1]
		}
	}
	if i < len(args) {
		return args[i] // default fallback
	}
	return Null()
}

func fnAnd(args []Value, _ *Context) Value {
	for _, arg := range args {
		if !arg.Truthy() {
			return Bool(false)
		}
	}
	return Bool(true)
}

func fnOr(args []Value, _ *Context) Value {
	for _, arg := range args {
		if arg.Truthy() {
			return Bool(true)
		}
	}
	return Bool(false)
}

func fnXor(args []Value, _ *Context) Value {
	count := 0
	for _, arg := range args {
		if arg.Truthy() {
			count++
		}
	}
	return Bool(count%2 == 1)
}

func fnNot(args []Value, _ *Context) Value {
	return Bool(!args[0].Truthy())
}

func fnTrue(_ []Value, _ *Context) Value {
	return Bool(true)
}

func fnFalse(_ []Value, _ *Context) Value {
	return Bool(false)
}

func fnBlank(_ []Value, _ *Context) Value {
	return Null()
}

func fnIsBlank(args []Value, _ *Context) Value {
	v := args[0]
	return Bool(v.IsNull() || (v.Kind() == KindString && v.StringVal() == ""))
}

// fnCountA counts arguments that are neither null nor the empty string.
func fnCountA(args []Value, _ *Context) Value {
	count := 0
	for _, arg := range args {
		if arg.IsNull() || (arg.Kind() == KindString && arg.StringVal() == "") {
			continue
		}
		count++
	}
	return Number(float64(count))
}
