package filter

import (
	"strconv"
	"time"

	"github.com/rowbase/formula/internal/engine"
)

// Dynamic value placeholders. A placeholder is a sentinel token stored in
// a condition's value slot and resolved only at evaluation time, so a
// saved filter on "today" keeps tracking the current day instead of the
// day it was saved. The same vocabulary backs both the direct highlight
// path and the compiled formula path.
const (
	PlaceholderToday     = "__TODAY__"
	PlaceholderYesterday = "__YESTERDAY__"
	PlaceholderTomorrow  = "__TOMORROW__"
)

// dynamicDayOffsets maps each placeholder to its day offset from now.
var dynamicDayOffsets = map[string]int{
	PlaceholderToday:     0,
	PlaceholderYesterday: -1,
	PlaceholderTomorrow:  1,
}

// IsPlaceholder reports whether a condition value is a dynamic placeholder
// token.
func IsPlaceholder(value interface{}) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, known := dynamicDayOffsets[s]
	return known
}

// ResolvePlaceholder resolves a placeholder to the concrete day it names
// relative to now, truncated to local midnight. The second result is false
// for values that are not placeholders.
func ResolvePlaceholder(value interface{}, now time.Time) (time.Time, bool) {
	s, ok := value.(string)
	if !ok {
		return time.Time{}, false
	}
	offset, known := dynamicDayOffsets[s]
	if !known {
		return time.Time{}, false
	}
	return engine.DayStart(now).AddDate(0, 0, offset), true
}

// placeholderFormula renders the formula expression that reproduces the
// placeholder's day string at evaluation time, so compiled filter text
// always re-evaluates "today" relative to the evaluation clock.
func placeholderFormula(value interface{}) (string, bool) {
	s, ok := value.(string)
	if !ok {
		return "", false
	}
	offset, known := dynamicDayOffsets[s]
	if !known {
		return "", false
	}
	if offset == 0 {
		return `DATETIME_FORMAT(TODAY(), "YYYY-MM-DD")`, true
	}
	return `DATETIME_FORMAT(DATEADD(TODAY(), ` + strconv.Itoa(offset) + `, "days"), "YYYY-MM-DD")`, true
}
