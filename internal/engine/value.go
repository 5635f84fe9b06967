package engine

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindDate
	KindError
)

// ErrorCode enumerates the closed set of evaluation error codes. Errors are
// ordinary values: once produced they propagate through any expression that
// consumes them as an operand instead of aborting the evaluation.
type ErrorCode int

const (
	// ErrCodeValue reports a type coercion failure (e.g. arithmetic on a
	// non-numeric string).
	ErrCodeValue ErrorCode = iota
	// ErrCodeName reports a call to an unknown function.
	ErrCodeName
	// ErrCodeError reports a malformed call or a lex/parse failure caught at
	// the evaluation boundary.
	ErrCodeError
	// ErrCodeDivZero reports division by zero.
	ErrCodeDivZero
)

// Sentinel returns the legacy string marker for the error code. Downstream
// consumers detect failures by the '#' prefix, so these exact spellings are
// part of the external contract.
func (c ErrorCode) Sentinel() string {
	switch c {
	case ErrCodeValue:
		return "#VALUE!"
	case ErrCodeName:
		return "#NAME?"
	case ErrCodeDivZero:
		return "#DIV/0!"
	default:
		return "#ERROR!"
	}
}

// ErrorSentinelPrefix marks error values at the external string boundary.
const ErrorSentinelPrefix = "#"

// Value is the tagged union over all runtime values a formula can produce:
// null, boolean, number, string, date, or error. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	date time.Time
	code ErrorCode
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, num: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Date returns a date value.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t} }

// Error returns an error value with the given code.
func Error(code ErrorCode) Value { return Value{kind: KindError, code: code} }

// Kind returns the runtime type tag of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsError reports whether the value is an error value.
func (v Value) IsError() bool { return v.kind == KindError }

// ErrorCode returns the error code of an error value. Valid only when
// IsError reports true.
func (v Value) ErrorCode() ErrorCode { return v.code }

// BoolVal returns the underlying boolean. Valid only for KindBool.
func (v Value) BoolVal() bool { return v.b }

// NumberVal returns the underlying float. Valid only for KindNumber.
func (v Value) NumberVal() float64 { return v.num }

// StringVal returns the underlying string. Valid only for KindString.
func (v Value) StringVal() string { return v.str }

// DateVal returns the underlying time. Valid only for KindDate.
func (v Value) DateVal() time.Time { return v.date }

// String renders the value the way the '&' operator and CONCAT do: null is
// the empty string, booleans are TRUE/FALSE, numbers drop trailing zeros,
// dates use RFC 3339, and error values render as their '#' sentinel.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return ""
	case KindBool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	case KindDate:
		return v.date.Format(time.RFC3339)
	default:
		return v.code.Sentinel()
	}
}

// Interface converts the value to its untyped boundary representation:
// nil, bool, float64, string, time.Time, or the '#' sentinel string for
// error values.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindDate:
		return v.date
	default:
		return v.code.Sentinel()
	}
}

// Number coerces the value to a float64. Null coerces to 0 (blank-as-zero),
// booleans to 0/1, dates to Unix milliseconds, and strings through a
// parseFloat-style leading-prefix parse. The second result is false when
// the value cannot be coerced.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindNull:
		return 0, true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case KindNumber:
		return v.num, true
	case KindDate:
		return float64(v.date.UnixMilli()), true
	case KindString:
		return parseLeadingFloat(v.str)
	default:
		return 0, false
	}
}

// Truthy applies the boolean coercion rules shared by IF, AND, OR and the
// rule-evaluation boundary: null, false, 0 and the empty string are falsy,
// everything else (including any date) is truthy. Error values are falsy so
// that a condition that cannot be evaluated is never treated as satisfied.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindString:
		return v.str != ""
	case KindDate:
		return true
	default:
		return false
	}
}

// parseLeadingFloat parses the longest numeric prefix of s, mirroring
// JavaScript's parseFloat. "12abc" parses as 12; a string with no numeric
// prefix fails.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit := false
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
		seenDigit = true
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			seenDigit = true
		}
	}
	if seenDigit && end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		mark := end
		end++
		if end < len(s) && (s[end] == '+' || s[end] == '-') {
			end++
		}
		expDigits := false
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
			expDigits = true
		}
		if !expDigits {
			end = mark
		}
	}
	if !seenDigit {
		return 0, false
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Compare orders two values the way the relational operators do: when both
// sides coerce to numbers the comparison is numeric (which also covers
// date-to-date comparison via their millisecond representation), otherwise
// it falls back to ordinal string comparison of the rendered values.
// Returns -1, 0 or 1. Error operands must be filtered out by the caller.
func Compare(a, b Value) int {
	an, aok := a.comparableNumber()
	bn, bok := b.comparableNumber()
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

// comparableNumber is the coercion used by relational operators. Unlike the
// arithmetic coercion it requires strings to be fully numeric, so that
// "10" < "9" compares numerically while "alpha" < "beta" compares as text.
func (v Value) comparableNumber() (float64, bool) {
	if v.kind != KindString {
		return v.Number()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
