// Package record models synthesized report rows. Each field holds a tagged
// scalar Value so callers never guess whether a cell is text, a number or a
// calendar date.
package record

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format for Date values.
const DateLayout = "2006-01-02"

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "null"
	}
}

// Value is a scalar cell. The zero Value is Null.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
}

// String returns a text value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// Date returns a calendar date value. The time of day and location of t are
// discarded.
func Date(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: KindDate, date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// Null returns the explicit null value.
func Null() Value {
	return Value{}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Raw is the display form of the value: text and dates verbatim, numbers in
// their shortest decimal form and null as the empty string.
func (v Value) Raw() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindDate:
		return v.date.Format(DateLayout)
	default:
		return ""
	}
}

// Float coerces the value to a finite number. Strings are parsed after
// trimming whitespace; the empty string, dates and null are not numeric.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return 0, false
		}
		return v.num, true
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Time coerces the value to a calendar date. Strings are accepted in
// YYYY-MM-DD or RFC 3339 form.
func (v Value) Time() (time.Time, bool) {
	switch v.kind {
	case KindDate:
		return v.date, true
	case KindString:
		return ParseDate(v.str)
	default:
		return time.Time{}, false
	}
}

// Equal reports whether two values have the same kind and raw form. The
// number 5 and the string "5" are different values.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.Raw() == o.Raw()
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if _, ok := v.Float(); !ok {
			return []byte("null"), nil
		}
		return []byte(v.Raw()), nil
	case KindDate:
		return json.Marshal(v.Raw())
	default:
		return []byte("null"), nil
	}
}

// ParseDate parses YYYY-MM-DD or RFC 3339 text into a UTC calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}
