package engine

import (
	"strings"
	"time"
)

// dateLayouts are the stored-value formats the engine accepts, tried in
// order. The platform persists dates as RFC 3339 or date-only strings;
// the remaining layouts cover values imported from spreadsheets.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

// ParseDateString parses a stored date string into a time in the local
// zone. Returns false when no known layout matches.
func ParseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CoerceDate converts a value into a time: dates pass through, strings
// parse through the stored-value layouts, numbers are Unix milliseconds.
func CoerceDate(v Value) (time.Time, bool) {
	switch v.Kind() {
	case KindDate:
		return v.DateVal(), true
	case KindString:
		return ParseDateString(v.StringVal())
	case KindNumber:
		return time.UnixMilli(int64(v.NumberVal())).In(time.Local), true
	default:
		return time.Time{}, false
	}
}

// DayStart truncates a time to local midnight. This is the single
// day-boundary primitive shared by TODAY, the filter compiler's day
// comparisons and the highlight rules' date operators, so that all call
// sites agree on what "the same day" means.
func DayStart(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// SameDay reports whether two times fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return DayStart(a).Equal(DayStart(b))
}

// CompareDay orders two times by local calendar day, ignoring the time of
// day. Returns -1, 0 or 1.
func CompareDay(a, b time.Time) int {
	da, db := DayStart(a), DayStart(b)
	switch {
	case da.Before(db):
		return -1
	case da.After(db):
		return 1
	default:
		return 0
	}
}

// formatTokens maps pattern tokens to Go reference layouts, longest match
// first. Unmatched pattern characters pass through literally.
var formatTokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"HH", "15"},
	{"mm", "04"},
	{"ss", "05"},
}

// FormatDate renders a time using the engine's small pattern vocabulary
// (YYYY, YY, MM, DD, HH, mm, ss).
func FormatDate(t time.Time, pattern string) string {
	var sb strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, ft := range formatTokens {
			if strings.HasPrefix(pattern[i:], ft.token) {
				sb.WriteString(t.Format(ft.layout))
				i += len(ft.token)
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteByte(pattern[i])
			i++
		}
	}
	return sb.String()
}

// layoutFromPattern converts a pattern in the engine vocabulary to a Go
// time layout for parsing.
func layoutFromPattern(pattern string) string {
	var sb strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, ft := range formatTokens {
			if strings.HasPrefix(pattern[i:], ft.token) {
				sb.WriteString(ft.layout)
				i += len(ft.token)
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteByte(pattern[i])
			i++
		}
	}
	return sb.String()
}
