// Package aggregate turns a dataset into chart-ready series and summary
// statistics. Every function here is pure and degrades to empty output on
// empty input.
package aggregate

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/record"
)

const (
	// UnknownLabel names the bucket for missing, null or empty values.
	UnknownLabel = "Unknown"

	// OthersLabel names the bucket that folds the long tail of a generic
	// series.
	OthersLabel = "Others"

	histogramBuckets = 5
	genericTopN      = 9
	genericMaxPoints = 10
)

// Point is one bucket of a chart series. Value mirrors Count for chart
// libraries that expect either name.
type Point struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Value int    `json:"value"`
}

func point(name string, count int) Point {
	return Point{Name: name, Count: count, Value: count}
}

// Strategy is how a metric's values are bucketed for charting.
type Strategy int

const (
	StrategyGeneric Strategy = iota
	StrategyCategorical
	StrategyHistogram
	StrategyTimeSeries
)

func (s Strategy) String() string {
	switch s {
	case StrategyCategorical:
		return "categorical"
	case StrategyHistogram:
		return "histogram"
	case StrategyTimeSeries:
		return "time-series"
	default:
		return "generic"
	}
}

var strategies = map[string]Strategy{
	catalog.CompletionStatus:  StrategyCategorical,
	catalog.Challenges:        StrategyCategorical,
	catalog.LoginStatus:       StrategyCategorical,
	catalog.MicroskillName:    StrategyCategorical,
	catalog.Score:             StrategyHistogram,
	catalog.CompletedInDays:   StrategyHistogram,
	catalog.Attempts:          StrategyHistogram,
	catalog.TimeSpent:         StrategyHistogram,
	catalog.ContentLaunchDate: StrategyTimeSeries,
	catalog.CompletionDate:    StrategyTimeSeries,
	catalog.LastLoginDate:     StrategyTimeSeries,
}

// StrategyFor returns the bucketing strategy for a metric ID.
func StrategyFor(id string) Strategy {
	if s, ok := strategies[id]; ok {
		return s
	}
	return StrategyGeneric
}

// BuildChartSeries buckets records for one metric according to its
// strategy. An empty dataset yields an empty series.
func BuildChartSeries(records record.Dataset, m catalog.Metric) []Point {
	if len(records) == 0 {
		return []Point{}
	}

	switch StrategyFor(m.ID) {
	case StrategyCategorical:
		return categorical(records, m.ID)
	case StrategyHistogram:
		return histogram(records, m.ID)
	case StrategyTimeSeries:
		return timeSeries(records, m.ID)
	default:
		return generic(records, m.ID)
	}
}

// label is the grouping key for categorical and generic series.
func label(r record.Record, id string) string {
	v, ok := r.Get(id)
	if !ok || v.IsNull() || v.Raw() == "" {
		return UnknownLabel
	}
	return v.Raw()
}

// countByLabel groups in first-seen order.
func countByLabel(records record.Dataset, id string) []Point {
	index := map[string]int{}
	var points []Point
	for _, r := range records {
		l := label(r, id)
		i, ok := index[l]
		if !ok {
			index[l] = len(points)
			points = append(points, point(l, 0))
			i = len(points) - 1
		}
		points[i].Count++
		points[i].Value++
	}
	return points
}

func categorical(records record.Dataset, id string) []Point {
	return countByLabel(records, id)
}

func histogram(records record.Dataset, id string) []Point {
	maxValue := 0.0
	for _, r := range records {
		if f, ok := numeric(r, id); ok && f > maxValue {
			maxValue = f
		}
	}

	// Bucket bounds stay in float64 so values past the int range still
	// produce ordered, positive labels.
	rangeSize := max(1, math.Ceil(maxValue/histogramBuckets))
	numRanges := int(max(1, min(histogramBuckets, math.Ceil(maxValue/rangeSize))))

	points := make([]Point, numRanges)
	for i := range points {
		lo := float64(i) * rangeSize
		points[i] = point(bucketBound(lo)+"-"+bucketBound(lo+rangeSize), 0)
	}

	for _, r := range records {
		f, ok := numeric(r, id)
		if !ok {
			f = 0
		}
		i := int(min(max(math.Floor(f/rangeSize), 0), float64(numRanges-1)))
		points[i].Count++
		points[i].Value++
	}
	return points
}

func bucketBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func numeric(r record.Record, id string) (float64, bool) {
	v, ok := r.Get(id)
	if !ok {
		return 0, false
	}
	return v.Float()
}

type month struct {
	year  int
	month int
}

func timeSeries(records record.Dataset, id string) []Point {
	counts := map[month]int{}
	for _, r := range records {
		v, ok := r.Get(id)
		if !ok {
			continue
		}
		t, ok := v.Time()
		if !ok {
			continue
		}
		counts[month{year: t.Year(), month: int(t.Month())}]++
	}

	months := make([]month, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	slices.SortFunc(months, func(a, b month) int {
		if c := cmp.Compare(a.year, b.year); c != 0 {
			return c
		}
		return cmp.Compare(a.month, b.month)
	})

	points := make([]Point, 0, len(months))
	for _, m := range months {
		points = append(points, point(strconv.Itoa(m.month)+"/"+strconv.Itoa(m.year), counts[m]))
	}
	return points
}

func generic(records record.Dataset, id string) []Point {
	points := countByLabel(records, id)
	if len(points) <= genericMaxPoints {
		return points
	}

	slices.SortStableFunc(points, func(a, b Point) int {
		return cmp.Compare(b.Count, a.Count)
	})

	others := 0
	for _, p := range points[genericTopN:] {
		others += p.Count
	}

	out := points[:genericTopN:genericTopN]
	if others > 0 {
		out = append(out, point(OthersLabel, others))
	}
	return out
}

// Total sums the counts of a series.
func Total(points []Point) int {
	n := 0
	for _, p := range points {
		n += p.Count
	}
	return n
}
