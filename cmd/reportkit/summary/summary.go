// Package summary renders a generated report for the terminal: a markdown
// overview with per-metric statistics and a preview table of records.
package summary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/papercomputeco/reportkit/pkg/aggregate"
	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/cliui"
	"github.com/papercomputeco/reportkit/pkg/filter"
	"github.com/papercomputeco/reportkit/pkg/record"
	"github.com/papercomputeco/reportkit/pkg/utils"
)

// View is the read side of a generated session.
type View interface {
	Name() string
	SelectedMetrics() []catalog.Metric
	Filters() filter.Spec
	RawData() record.Dataset
	FilteredData() record.Dataset
	Stats() map[string]aggregate.SummaryStats
}

// Markdown builds the report overview.
func Markdown(v View) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", v.Name())
	fmt.Fprintf(&b, "**Records:** %d of %d generated  \n", len(v.FilteredData()), len(v.RawData()))
	fmt.Fprintf(&b, "**Metrics:** %s\n\n", utils.Plural(len(v.SelectedMetrics()), "metric"))

	filters := v.Filters()
	if len(filters) > 0 {
		b.WriteString("## Filters\n\n")
		for _, id := range filters.Keys() {
			fmt.Fprintf(&b, "- **%s** %s\n", catalog.MustLookup(id).Name, filters[id])
		}
		b.WriteString("\n")
	}

	stats := v.Stats()
	b.WriteString("## Statistics\n\n")
	b.WriteString("| Metric | Count | Distinct | Min | Max | Avg | Median |\n")
	b.WriteString("|---|---:|---:|---:|---:|---:|---:|\n")
	for _, m := range v.SelectedMetrics() {
		s := stats[m.ID]
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s | %s |\n",
			m.Name, s.Count, intCell(s.DistinctCount),
			floatCell(s.Min), floatCell(s.Max), floatCell(s.Avg), floatCell(s.Median),
		)
	}

	return b.String()
}

// Preview renders up to limit filtered records as a table.
func Preview(v View, limit int) string {
	metrics := v.SelectedMetrics()
	headers := make([]string, 0, len(metrics)+1)
	headers = append(headers, "ID")
	for _, m := range metrics {
		headers = append(headers, m.Name)
	}

	ds := v.FilteredData()
	if limit > 0 && len(ds) > limit {
		ds = ds[:limit]
	}

	rows := make([][]string, 0, len(ds))
	for _, r := range ds {
		row := make([]string, 0, len(headers))
		row = append(row, r.ID())
		for _, m := range metrics {
			row = append(row, cell(r, m.ID))
		}
		rows = append(rows, row)
	}

	return cliui.Table(headers, rows)
}

func cell(r record.Record, id string) string {
	v, ok := r.Get(id)
	if !ok || v.IsNull() {
		return "-"
	}
	return utils.Truncate(v.Raw(), 32)
}

func intCell(n *int) string {
	if n == nil {
		return "-"
	}
	return strconv.Itoa(*n)
}

func floatCell(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'f', 2, 64)
}
