package engine

import (
	"math"
	"strings"
)

func registerStringFunctions(r Registry) {
	r.add("CONCAT", 0, -1, fnConcat)
	r.add("UPPER", 1, 1, fnUpper)
	r.add("LOWER", 1, 1, fnLower)
	r.add("LEN", 1, 1, fnLen)
	r.add("LEFT", 2, 2, fnLeft)
	r.add("RIGHT", 2, 2, fnRight)
	r.add("MID", 3, 3, fnMid)
	r.add("TRIM", 1, 1, fnTrim)
	r.add("REPT", 2, 2, fnRept)
	r.add("FIND", 2, 3, fnFind)
	r.add("SUBSTITUTE", 3, 4, fnSubstitute)
}

// fnConcat joins all arguments; nulls become the empty string. CONCAT
// never produces an error of its own.
func fnConcat(args []Value, _ *Context) Value {
	var sb strings.Builder
	for _, arg := range args {
		if arg.IsNull() {
			continue
		}
		sb.WriteString(arg.String())
	}
	return String(sb.String())
}

func fnUpper(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Error(ErrCodeValue)
	}
	return String(strings.ToUpper(args[0].String()))
}

func fnLower(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Error(ErrCodeValue)
	}
	return String(strings.ToLower(args[0].String()))
}

// fnLen measures length in characters. Unlike the other string functions,
// LEN treats null as the empty string and returns 0.
func fnLen(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Number(0)
	}
	return Number(float64(len([]rune(args[0].String()))))
}

// intArg floors a numeric argument the way LEFT/RIGHT count arguments are
// interpreted. Coercion failure reports false.
func intArg(v Value) (int, bool) {
	f, ok := v.Number()
	if !ok {
		return 0, false
	}
	return int(math.Floor(f)), true
}

func fnLeft(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Error(ErrCodeValue)
	}
	count, ok := intArg(args[1])
	if !ok {
		return Error(ErrCodeValue)
	}
	runes := []rune(args[0].String())
	// Out-of-range counts clamp to the valid substring bounds.
	if count < 0 {
		count = 0
	}
	if count > len(runes) {
		count = len(runes)
	}
	return String(string(runes[:count]))
}

func fnRight(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Error(ErrCodeValue)
	}
	count, ok := intArg(args[1])
	if !ok {
		return Error(ErrCodeValue)
	}
	runes := []rune(args[0].String())
	if count < 0 {
		count = 0
	}
	if count > len(runes) {
		count = len(runes)
	}
	return String(string(runes[len(runes)-count:]))
}

// fnMid extracts count characters starting at a 1-based position, clamping
// both bounds.
func fnMid(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Error(ErrCodeValue)
	}
	start, ok1 := intArg(args[1])
	count, ok2 := intArg(args[2])
	if !ok1 || !ok2 {
		return Error(ErrCodeValue)
	}
	runes := []rune(args[0].String())
	if start < 1 {
		start = 1
	}
	if start > len(runes) {
		return String("")
	}
	if count < 0 {
		count = 0
	}
	end := start - 1 + count
	if end > len(runes) {
		end = len(runes)
	}
	return String(string(runes[start-1 : end]))
}

func fnTrim(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Error(ErrCodeValue)
	}
	return String(strings.TrimSpace(args[0].String()))
}

func fnRept(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Error(ErrCodeValue)
	}
	count, ok := intArg(args[1])
	if !ok {
		return Error(ErrCodeValue)
	}
	if count < 0 {
		count = 0
	}
	return String(strings.Repeat(args[0].String(), count))
}

// fnFind locates search inside text, 1-indexed; 0 means not found. The
// optional third argument is the 1-based start position and defaults to
// the beginning. Nulls are treated as empty strings.
func fnFind(args []Value, _ *Context) Value {
	search := []rune(args[0].String())
	text := []rune(args[1].String())

	start := 1
	if len(args) == 3 {
		s, ok := intArg(args[2])
		if !ok {
			return Error(ErrCodeValue)
		}
		start = s
	}
	if start < 1 {
		start = 1
	}
	if start > len(text)+1 {
		return Number(0)
	}

	idx := strings.Index(string(text[start-1:]), string(search))
	if idx < 0 {
		return Number(0)
	}
	// Index counts bytes in the sliced text; convert back to characters.
	chars := len([]rune(string(text[start-1:])[:idx]))
	return Number(float64(start + chars))
}

// fnSubstitute replaces occurrences of old with new. By default all
// occurrences are replaced; a 1-based instance replaces only that
// occurrence and an out-of-range instance leaves the text untouched.
func fnSubstitute(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Error(ErrCodeValue)
	}
	text := args[0].String()
	old := args[1].String()
	repl := args[2].String()

	if old == "" {
		return String(text)
	}

	if len(args) == 3 {
		return String(strings.ReplaceAll(text, old, repl))
	}

	instance, ok := intArg(args[3])
	if !ok {
		return Error(ErrCodeValue)
	}
	if instance < 1 {
		return String(text)
	}

	offset := 0
	for n := 1; ; n++ {
		idx := strings.Index(text[offset:], old)
		if idx < 0 {
			return String(text)
		}
		abs := offset + idx
		if n == instance {
			return String(text[:abs] + repl + text[abs+len(old):])
		}
		offset = abs + len(old)
	}
}
