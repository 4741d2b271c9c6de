// Package metricscmder provides the metrics command, which lists the metric
// catalog with each metric's type, filters and recommended chart.
package metricscmder

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/reportkit/pkg/aggregate"
	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/cliui"
)

const metricsLongDesc string = `List the metrics a report can be built from.

Each metric shows its export data type, the filters it supports and the
chart kind used for it by default. Use the ID with "reportkit generate -m".

Examples:
  reportkit metrics
  reportkit metrics --json`

const metricsShortDesc string = "List available report metrics"

type metricsCommander struct {
	json bool
}

type metricRow struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	DataType catalog.DataType     `json:"dataType"`
	Filters  []catalog.FilterKind `json:"filters"`
	Chart    aggregate.ChartKind  `json:"chart"`
}

func NewMetricsCmd() *cobra.Command {
	cmder := &metricsCommander{}

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: metricsShortDesc,
		Long:  metricsLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print the catalog as JSON")

	return cmd
}

func (c *metricsCommander) run(out io.Writer) error {
	metrics := catalog.ListMetrics()
	rows := make([]metricRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, metricRow{
			ID:       m.ID,
			Name:     m.Name,
			DataType: catalog.DataTypeFor(m.ID),
			Filters:  m.FilterKinds,
			Chart:    aggregate.RecommendChartKind(m.ID),
		})
	}

	if c.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		filters := make([]string, 0, len(r.Filters))
		for _, f := range r.Filters {
			filters = append(filters, string(f))
		}
		cells = append(cells, []string{r.ID, r.Name, string(r.DataType), strings.Join(filters, ", "), string(r.Chart)})
	}

	fmt.Fprintln(out, cliui.Table([]string{"ID", "Name", "Type", "Filters", "Chart"}, cells))
	return nil
}
