package engine

import (
	"math"

	"github.com/shopspring/decimal"
)

func registerMathFunctions(r Registry) {
	r.add("ROUND", 1, 2, fnRound)
	r.add("FLOOR", 1, 2, fnFloor)
	r.add("CEILING", 1, 2, fnCeiling)
	r.add("INT", 1, 1, fnInt)
	r.add("ABS", 1, 1, fnAbs)
	r.add("SQRT", 1, 1, fnSqrt)
	r.add("POWER", 2, 2, fnPower)
	r.add("MOD", 2, 2, fnMod)
	r.add("VALUE", 1, 1, fnValue)
	r.add("SUM", 1, -1, fnSum)
	r.add("AVERAGE", 1, -1, fnAverage)
	r.add("MAX", 1, -1, fnMax)
	r.add("MIN", 1, -1, fnMin)
}

func numberArg(v Value) (float64, bool) {
	if v.IsNull() {
		return 0, false
	}
	return v.Number()
}

// fnRound rounds half away from zero. Float arithmetic is routed through
// decimals so that ROUND(2.675, 2) is 2.68 rather than 2.67.
func fnRound(args []Value, _ *Context) Value {
	n, ok := numberArg(args[0])
	if !ok {
		return Error(ErrCodeValue)
	}
	places := 0
	if len(args) == 2 {
		p, ok := intArg(args[1])
		if !ok {
			return Error(ErrCodeValue)
		}
		places = p
	}
	rounded, _ := decimal.NewFromFloat(n).Round(int32(places)).Float64()
	return Number(rounded)
}

// fnFloor rounds down to the nearest multiple of significance (default 1).
func fnFloor(args []Value, _ *Context) Value {
	return floorCeil(args, true)
}

// fnCeiling rounds up to the nearest multiple of significance (default 1).
func fnCeiling(args []Value, _ *Context) Value {
	return floorCeil(args, false)
}

func floorCeil(args []Value, floor bool) Value {
	n, ok := numberArg(args[0])
	if !ok {
		return Error(ErrCodeValue)
	}
	sig := 1.0
	if len(args) == 2 {
		s, ok := numberArg(args[1])
		if !ok {
			return Error(ErrCodeValue)
		}
		sig = s
	}
	if sig == 0 {
		return Error(ErrCodeDivZero)
	}
	d := decimal.NewFromFloat(n)
	s := decimal.NewFromFloat(sig)
	steps := d.Div(s)
	if floor {
		steps = steps.Floor()
	} else {
		steps = steps.Ceil()
	}
	result, _ := steps.Mul(s).Float64()
	return Number(result)
}

func fnInt(args []Value, _ *Context) Value {
	n, ok := numberArg(args[0])
	if !ok {
		return Error(ErrCodeValue)
	}
	return Number(math.Floor(n))
}

func fnAbs(args []Value, _ *Context) Value {
	n, ok := numberArg(args[0])
	if !ok {
		return Error(ErrCodeValue)
	}
	return Number(math.Abs(n))
}

func fnSqrt(args []Value, _ *Context) Value {
	n, ok := numberArg(args[0])
	if !ok || n < 0 {
		return Error(ErrCodeValue)
	}
	return Number(math.Sqrt(n))
}

func fnPower(args []Value, _ *Context) Value {
	base, ok1 := numberArg(args[0])
	exp, ok2 := numberArg(args[1])
	if !ok1 || !ok2 {
		return Error(ErrCodeValue)
	}
	result := math.Pow(base, exp)
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return Error(ErrCodeValue)
	}
	return Number(result)
}

// fnMod computes the remainder with the sign of the divisor, matching
// spreadsheet MOD rather than Go's math.Mod.
func fnMod(args []Value, _ *Context) Value {
	a, ok1 := numberArg(args[0])
	b, ok2 := numberArg(args[1])
	if !ok1 || !ok2 {
		return Error(ErrCodeValue)
	}
	if b == 0 {
		return Error(ErrCodeDivZero)
	}
	return Number(a - b*math.Floor(a/b))
}

func fnValue(args []Value, _ *Context) Value {
	n, ok := args[0].Number()
	if !ok {
		return Error(ErrCodeValue)
	}
	return Number(n)
}

// fnSum adds all numeric arguments; nulls count as zero.
func fnSum(args []Value, _ *Context) Value {
	total := 0.0
	for _, arg := range args {
		if arg.IsNull() {
			continue
		}
		n, ok := arg.Number()
		if !ok {
			return Error(ErrCodeValue)
		}
		total += n
	}
	return Number(total)
}

func fnAverage(args []Value, _ *Context) Value {
	total, count := 0.0, 0
	for _, arg := range args {
		if arg.IsNull() {
			continue
		}
		n, ok := arg.Number()
		if !ok {
			return Error(ErrCodeValue)
		}
		total += n
		count++
	}
	if count == 0 {
		return Error(ErrCodeDivZero)
	}
	return Number(total / float64(count))
}

func fnMax(args []Value, _ *Context) Value {
	return minMax(args, false)
}

func fnMin(args []Value, _ *Context) Value {
	return minMax(args, true)
}

func minMax(args []Value, min bool) Value {
	best := 0.0
	seen := false
	for _, arg := range args {
		if arg.IsNull() {
			continue
		}
		n, ok := arg.Number()
		if !ok {
			return Error(ErrCodeValue)
		}
		if !seen || (min && n < best) || (!min && n > best) {
			best = n
			seen = true
		}
	}
	return Number(best)
}
