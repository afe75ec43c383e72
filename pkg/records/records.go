// Package records defines the row and table shapes that flow through the
// pipeline. A Record is a loosely typed row keyed by column name; nil is the
// null value. Accessors coerce the value shapes that database/sql drivers hand
// back (int64, float64, []byte, string, time.Time) so callers never switch on
// driver-specific types.
package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is a single row keyed by column name.
type Record map[string]any

// DateLayout is the canonical calendar date layout used for parsing and
// serialization.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order when a date arrives as text.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// IsNull reports whether the value stored under key is missing, nil, or NaN.
func (r Record) IsNull(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return true
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return true
	}
	return false
}

// Float returns the value under key as float64. ok is false for nulls and for
// values that cannot be read as a number.
func (r Record) Float(key string) (float64, bool) {
	return ToFloat(r[key])
}

// Int returns the value under key as int64, truncating floats.
func (r Record) Int(key string) (int64, bool) {
	f, ok := ToFloat(r[key])
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// String returns the value under key as text. ok is false for nulls.
func (r Record) String(key string) (string, bool) {
	switch t := r[key].(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case []byte:
		return string(t), true
	default:
		return fmt.Sprint(t), true
	}
}

// Time returns the value under key as a time.Time.
func (r Record) Time(key string) (time.Time, bool) {
	t, err := ToTime(r[key])
	if err != nil {
		return time.Time{}, false
	}
	return t, !t.IsZero()
}

// ToFloat converts a driver value to float64.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(t) {
			return 0, false
		}
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case bool:
		if t {
			return 1, true
		}
		return 0, true
	case []byte:
		return parseFloat(string(t))
	case string:
		return parseFloat(t)
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToTime converts a driver value to a time.Time. Nil converts to the zero time
// without error; unparseable text is an error.
func ToTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return t, nil
	case []byte:
		return parseTime(string(t))
	case string:
		return parseTime(t)
	}
	return time.Time{}, fmt.Errorf("records: cannot convert %T to time", v)
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("records: invalid date %q", s)
}

// Format renders a value the way it is written to delimited text: null is the
// empty string, dates use DateLayout (or a full timestamp when a time of day is
// present), floats use the shortest exact decimal form.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(DateLayout)
		}
		return t.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}
