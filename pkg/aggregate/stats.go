package aggregate

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/record"
)

// SummaryStats describes one metric over a dataset. The numeric fields are
// nil unless at least one value coerces to a finite number.
type SummaryStats struct {
	Count         int      `json:"count"`
	DistinctCount *int     `json:"distinctCount,omitempty"`
	Min           *float64 `json:"min,omitempty"`
	Max           *float64 `json:"max,omitempty"`
	Avg           *float64 `json:"avg,omitempty"`
	Median        *float64 `json:"median,omitempty"`
	Sum           *float64 `json:"sum,omitempty"`
}

// HasNumeric reports whether the numeric fields are populated.
func (s SummaryStats) HasNumeric() bool {
	return s.Min != nil
}

type valueKey struct {
	kind record.Kind
	raw  string
}

// ComputeSummaryStats summarizes each metric over the present, non-null
// values in records. Median is the element at index n/2 of the sorted
// numeric values, without interpolation.
func ComputeSummaryStats(records record.Dataset, metrics []catalog.Metric) map[string]SummaryStats {
	out := make(map[string]SummaryStats, len(metrics))
	for _, m := range metrics {
		out[m.ID] = summarize(records, m.ID)
	}
	return out
}

func summarize(records record.Dataset, id string) SummaryStats {
	distinct := map[valueKey]struct{}{}
	nums := make([]float64, 0, len(records))
	count := 0

	for _, r := range records {
		v, ok := r.Get(id)
		if !ok || v.IsNull() {
			continue
		}
		count++
		distinct[valueKey{kind: v.Kind(), raw: v.Raw()}] = struct{}{}
		if f, ok := v.Float(); ok {
			nums = append(nums, f)
		}
	}

	if count == 0 {
		return SummaryStats{Count: 0}
	}

	dc := len(distinct)
	s := SummaryStats{Count: count, DistinctCount: &dc}
	if len(nums) == 0 {
		return s
	}

	sorted := slices.Clone(nums)
	slices.Sort(sorted)

	lo := floats.Min(nums)
	hi := floats.Max(nums)
	sum := floats.Sum(nums)
	// Rounding in the mean can step just outside the observed range.
	avg := min(max(stat.Mean(nums, nil), lo), hi)
	median := sorted[len(sorted)/2]

	s.Min, s.Max, s.Sum, s.Avg, s.Median = &lo, &hi, &sum, &avg, &median
	return s
}
