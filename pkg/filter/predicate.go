// Package filter narrows a dataset with per-metric predicates. Filtering is
// pure and stable: it never mutates its input and keeps relative order.
package filter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/papercomputeco/reportkit/pkg/record"
)

// Kind is the type of a predicate.
type Kind string

const (
	KindDateRange   Kind = "dateRange"
	KindDate        Kind = "date"
	KindStatus      Kind = "status"
	KindLessThan    Kind = "lessThan"
	KindGreaterThan Kind = "greaterThan"
	KindRange       Kind = "range"
)

// Predicate is a single filter on one metric. Which fields matter depends on
// Kind; the JSON form matches what the web UI posts.
type Predicate struct {
	Kind Kind `json:"type"`

	// dateRange bounds, inclusive, YYYY-MM-DD. Empty means unbounded.
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`

	// date is compared verbatim against the raw field value.
	Date string `json:"date,omitempty"`

	// status is compared verbatim against the raw field value.
	Status string `json:"status,omitempty"`

	// Threshold for lessThan and greaterThan.
	Threshold *float64 `json:"value,omitempty"`

	// range bounds, inclusive. Nil means unbounded.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// DateRange keeps dates within [start, end]. Either bound may be empty.
func DateRange(start, end string) Predicate {
	return Predicate{Kind: KindDateRange, StartDate: start, EndDate: end}
}

// ExactDate keeps values whose raw form is exactly date.
func ExactDate(date string) Predicate {
	return Predicate{Kind: KindDate, Date: date}
}

// Equals keeps non-numeric values whose raw form is exactly status.
func Equals(status string) Predicate {
	return Predicate{Kind: KindStatus, Status: status}
}

// LessThan keeps numeric values strictly below threshold.
func LessThan(threshold float64) Predicate {
	return Predicate{Kind: KindLessThan, Threshold: &threshold}
}

// GreaterThan keeps numeric values strictly above threshold.
func GreaterThan(threshold float64) Predicate {
	return Predicate{Kind: KindGreaterThan, Threshold: &threshold}
}

// Range keeps numeric values within [min, max]. Either bound may be nil.
func Range(lo, hi *float64) Predicate {
	return Predicate{Kind: KindRange, Min: lo, Max: hi}
}

// Bound is a helper for building Range bounds inline.
func Bound(f float64) *float64 {
	return &f
}

// Validate reports malformed predicates. Apply tolerates them; callers that
// accept user input validate first.
func (p Predicate) Validate() error {
	switch p.Kind {
	case KindDateRange:
		start, err := optionalDate("startDate", p.StartDate)
		if err != nil {
			return err
		}
		end, err := optionalDate("endDate", p.EndDate)
		if err != nil {
			return err
		}
		if p.StartDate != "" && p.EndDate != "" && start.After(end) {
			return fmt.Errorf("startDate %s is after endDate %s", p.StartDate, p.EndDate)
		}
	case KindDate:
		if strings.TrimSpace(p.Date) == "" {
			return errors.New("date filter requires a date")
		}
	case KindStatus:
		if p.Status == "" {
			return errors.New("status filter requires a value")
		}
	case KindLessThan, KindGreaterThan:
		if p.Threshold == nil {
			return fmt.Errorf("%s filter requires a value", p.Kind)
		}
		if !finite(*p.Threshold) {
			return fmt.Errorf("%s filter value must be finite", p.Kind)
		}
	case KindRange:
		if p.Min != nil && !finite(*p.Min) {
			return errors.New("range min must be finite")
		}
		if p.Max != nil && !finite(*p.Max) {
			return errors.New("range max must be finite")
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return fmt.Errorf("range min %v is greater than max %v", *p.Min, *p.Max)
		}
	default:
		return fmt.Errorf("unknown filter type %q", p.Kind)
	}
	return nil
}

// Match reports whether v passes the predicate. A predicate without any
// constraint (no bounds, empty date or status) matches everything; a value
// that cannot be coerced for a constrained predicate never matches.
func (p Predicate) Match(v record.Value) bool {
	switch p.Kind {
	case KindDateRange:
		if p.StartDate == "" && p.EndDate == "" {
			return true
		}
		t, ok := v.Time()
		if !ok {
			return false
		}
		if p.StartDate != "" {
			start, ok := record.ParseDate(p.StartDate)
			if ok && t.Before(start) {
				return false
			}
		}
		if p.EndDate != "" {
			end, ok := record.ParseDate(p.EndDate)
			if ok && t.After(end) {
				return false
			}
		}
		return true

	case KindDate:
		if p.Date == "" {
			return true
		}
		return !v.IsNull() && v.Raw() == p.Date

	case KindStatus:
		if p.Status == "" {
			return true
		}
		if v.Kind() == record.KindNumber || v.IsNull() {
			return false
		}
		return v.Raw() == p.Status

	case KindLessThan, KindGreaterThan:
		if p.Threshold == nil {
			return true
		}
		f, ok := v.Float()
		if !ok {
			return false
		}
		if p.Kind == KindLessThan {
			return f < *p.Threshold
		}
		return f > *p.Threshold

	case KindRange:
		if p.Min == nil && p.Max == nil {
			return true
		}
		f, ok := v.Float()
		if !ok {
			return false
		}
		if p.Min != nil && f < *p.Min {
			return false
		}
		if p.Max != nil && f > *p.Max {
			return false
		}
		return true

	default:
		return true
	}
}

// String renders the predicate in the same form ParseExpr accepts, minus the
// metric prefix.
func (p Predicate) String() string {
	switch p.Kind {
	case KindDateRange:
		return "between=" + p.StartDate + ".." + p.EndDate
	case KindDate:
		return "on=" + p.Date
	case KindStatus:
		return "eq=" + p.Status
	case KindLessThan:
		return "lt=" + formatFloatPtr(p.Threshold)
	case KindGreaterThan:
		return "gt=" + formatFloatPtr(p.Threshold)
	case KindRange:
		return "range=" + formatFloatPtr(p.Min) + ".." + formatFloatPtr(p.Max)
	default:
		return string(p.Kind)
	}
}

func optionalDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	parsed, ok := record.ParseDate(s)
	if !ok {
		return time.Time{}, fmt.Errorf("%s %q is not a YYYY-MM-DD date", field, s)
	}
	return parsed, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
