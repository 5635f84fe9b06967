package engine

import (
	"math"
	"strings"
	"time"
)

func registerDateFunctions(r Registry) {
	r.add("NOW", 0, 0, fnNow)
	r.add("TODAY", 0, 0, fnToday)
	r.add("DATEADD", 3, 3, fnDateAdd)
	r.add("DATETIME_DIFF", 3, 3, fnDateTimeDiff)
	r.add("DATETIME_FORMAT", 2, 2, fnDateTimeFormat)
	r.add("DATETIME_PARSE", 1, 2, fnDateTimeParse)
	r.add("YEAR", 1, 1, datePart(func(t time.Time) float64 { return float64(t.Year()) }))
	r.add("MONTH", 1, 1, datePart(func(t time.Time) float64 { return float64(t.Month()) }))
	r.add("DAY", 1, 1, datePart(func(t time.Time) float64 { return float64(t.Day()) }))
	r.add("HOUR", 1, 1, datePart(func(t time.Time) float64 { return float64(t.Hour()) }))
	r.add("MINUTE", 1, 1, datePart(func(t time.Time) float64 { return float64(t.Minute()) }))
	r.add("SECOND", 1, 1, datePart(func(t time.Time) float64 { return float64(t.Second()) }))
	r.add("WEEKDAY", 1, 1, datePart(func(t time.Time) float64 { return float64(t.Weekday()) }))
}

func fnNow(_ []Value, ctx *Context) Value {
	return Date(ctx.Now())
}

// fnToday truncates the evaluation-time clock to local midnight.
func fnToday(_ []Value, ctx *Context) Value {
	return Date(DayStart(ctx.Now()))
}

func dateArg(v Value) (time.Time, bool) {
	return CoerceDate(v)
}

func datePart(extract func(time.Time) float64) FunctionFunc {
	return func(args []Value, _ *Context) Value {
		t, ok := dateArg(args[0])
		if !ok {
			return Error(ErrCodeValue)
		}
		return Number(extract(t))
	}
}

// normalizeUnit lowers a unit name and strips a plural 's', so YEARS,
// years and Year all mean the same thing.
func normalizeUnit(v Value) string {
	unit := strings.ToLower(strings.TrimSpace(v.String()))
	if len(unit) > 1 && strings.HasSuffix(unit, "s") {
		unit = unit[:len(unit)-1]
	}
	return unit
}

func fnDateAdd(args []Value, _ *Context) Value {
	t, ok := dateArg(args[0])
	if !ok {
		return Error(ErrCodeValue)
	}
	amount, ok := intArg(args[1])
	if !ok {
		return Error(ErrCodeValue)
	}

	switch normalizeUnit(args[2]) {
	case "year":
		return Date(t.AddDate(amount, 0, 0))
	case "month":
		return Date(t.AddDate(0, amount, 0))
	case "week":
		return Date(t.AddDate(0, 0, 7*amount))
	case "day":
		return Date(t.AddDate(0, 0, amount))
	case "hour":
		return Date(t.Add(time.Duration(amount) * time.Hour))
	case "minute":
		return Date(t.Add(time.Duration(amount) * time.Minute))
	case "second":
		return Date(t.Add(time.Duration(amount) * time.Second))
	case "millisecond":
		return Date(t.Add(time.Duration(amount) * time.Millisecond))
	}
	return Error(ErrCodeValue)
}

// fnDateTimeDiff measures the whole units elapsed from the second date to
// the first, truncated toward zero.
func fnDateTimeDiff(args []Value, _ *Context) Value {
	a, ok1 := dateArg(args[0])
	b, ok2 := dateArg(args[1])
	if !ok1 || !ok2 {
		return Error(ErrCodeValue)
	}

	diff := a.Sub(b)
	switch normalizeUnit(args[2]) {
	case "year":
		return Number(math.Trunc(float64(a.Year() - b.Year())))
	case "month":
		months := (a.Year()-b.Year())*12 + int(a.Month()) - int(b.Month())
		return Number(float64(months))
	case "week":
		return Number(math.Trunc(diff.Hours() / 24 / 7))
	case "day":
		return Number(math.Trunc(diff.Hours() / 24))
	case "hour":
		return Number(math.Trunc(diff.Hours()))
	case "minute":
		return Number(math.Trunc(diff.Minutes()))
	case "second":
		return Number(math.Trunc(diff.Seconds()))
	case "millisecond":
		return Number(float64(diff.Milliseconds()))
	}
	return Error(ErrCodeValue)
}

func fnDateTimeFormat(args []Value, _ *Context) Value {
	t, ok := dateArg(args[0])
	if !ok {
		return Error(ErrCodeValue)
	}
	return String(FormatDate(t, args[1].String()))
}

func fnDateTimeParse(args []Value, _ *Context) Value {
	if args[0].IsNull() {
		return Error(ErrCodeValue)
	}
	text := args[0].String()

	if len(args) == 2 {
		layout := layoutFromPattern(args[1].String())
		t, err := time.ParseInLocation(layout, text, time.Local)
		if err != nil {
			return Error(ErrCodeValue)
		}
		return Date(t)
	}

	t, ok := ParseDateString(text)
	if !ok {
		return Error(ErrCodeValue)
	}
	return Date(t)
}
