// Package chartrender draws report chart series as a self-contained HTML
// page using go-echarts.
package chartrender

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/papercomputeco/reportkit/pkg/aggregate"
	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/record"
)

const (
	width  = "900px"
	height = "420px"
)

// Chart is one metric's series and how to draw it.
type Chart struct {
	Metric catalog.Metric
	Kind   aggregate.ChartKind
	Points []aggregate.Point
}

// NewChart builds the series for metric over ds. An empty kind uses the
// recommended chart for the metric.
func NewChart(ds record.Dataset, metric catalog.Metric, kind aggregate.ChartKind) Chart {
	if kind == "" {
		kind = aggregate.RecommendChartKind(metric.ID)
	}
	return Chart{
		Metric: metric,
		Kind:   kind,
		Points: aggregate.BuildChartSeries(ds, metric),
	}
}

// NewCharts builds one chart per metric.
func NewCharts(ds record.Dataset, metrics []catalog.Metric, kind aggregate.ChartKind) []Chart {
	out := make([]Chart, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, NewChart(ds, m, kind))
	}
	return out
}

// Page renders every chart onto one HTML page titled title.
func Page(w io.Writer, title string, cs []Chart) error {
	page := components.NewPage()
	page.SetPageTitle(title)

	for _, c := range cs {
		page.AddCharts(render(title, c))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("rendering chart page: %w", err)
	}
	return nil
}

func render(pageTitle string, c Chart) components.Charter {
	subtitle := fmt.Sprintf("%d records", aggregate.Total(c.Points))
	if len(c.Points) == 0 {
		subtitle = "No data"
	}
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: pageTitle, Width: width, Height: height}),
		charts.WithTitleOpts(opts.Title{Title: c.Metric.Name, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}

	names := make([]string, 0, len(c.Points))
	for _, p := range c.Points {
		names = append(names, p.Name)
	}

	switch c.Kind {
	case aggregate.ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(global...)
		data := make([]opts.PieData, 0, len(c.Points))
		for _, p := range c.Points {
			data = append(data, opts.PieData{Name: p.Name, Value: p.Count})
		}
		pie.AddSeries(c.Metric.Name, data)
		return pie

	case aggregate.ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		data := make([]opts.LineData, 0, len(c.Points))
		for _, p := range c.Points {
			data = append(data, opts.LineData{Name: p.Name, Value: p.Count})
		}
		line.SetXAxis(names).AddSeries(c.Metric.Name, data)
		return line

	default:
		// Bar and histogram both draw as bars; histogram buckets are
		// already ordered ranges.
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		data := make([]opts.BarData, 0, len(c.Points))
		for _, p := range c.Points {
			data = append(data, opts.BarData{Name: p.Name, Value: p.Count})
		}
		bar.SetXAxis(names).AddSeries(c.Metric.Name, data)
		return bar
	}
}
