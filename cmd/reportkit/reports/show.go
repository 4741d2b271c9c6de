package reportscmder

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/reportkit/cmd/reportkit/summary"
	"github.com/papercomputeco/reportkit/pkg/chartrender"
	"github.com/papercomputeco/reportkit/pkg/cliui"
	"github.com/papercomputeco/reportkit/pkg/session"
	"github.com/papercomputeco/reportkit/pkg/storage"
)

const showLongDesc string = `Show a saved report definition.

With --run the report is restored, fresh records are generated for it and
the summary is printed as "reportkit generate" would.

Examples:
  reportkit reports show 0b5f3c7e-8d2a-4c51-9f0e-6a1d2b3c4d5e
  reportkit reports show 0b5f3c7e-8d2a-4c51-9f0e-6a1d2b3c4d5e --run --chart report.html`

const showShortDesc string = "Show a saved report"

type showCommander struct {
	storageOptions

	run       bool
	preview   int
	chartPath string
}

func newShowCmd() *cobra.Command {
	cmder := &showCommander{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: showShortDesc,
		Long:  showLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			repo, err := cmder.open(cmd.Context(), log)
			if err != nil {
				return err
			}
			defer repo.Close()

			report, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				if storage.IsNotFound(err) {
					return fmt.Errorf("no saved report with id %q", args[0])
				}
				return err
			}

			out := cmd.OutOrStdout()
			printDefinition(out, report)

			if !cmder.run {
				return nil
			}

			s := session.New(session.WithLogger(log))
			s.Restore(report)
			if err := s.Generate(); err != nil {
				return err
			}
			return cmder.render(out, s)
		},
	}

	cmder.addFlags(cmd)
	cmd.Flags().BoolVar(&cmder.run, "run", false, "Generate records for the saved report")
	cmd.Flags().IntVar(&cmder.preview, "preview", 10, "Number of records to preview with --run")
	cmd.Flags().StringVar(&cmder.chartPath, "chart", "", "With --run, write an HTML chart page")

	return cmd
}

func printDefinition(out io.Writer, r *storage.Report) {
	fmt.Fprintf(out, "\n  %s  %s\n", cliui.KeyStyle.Render("Report: "), cliui.NameStyle.Render(r.Name))
	fmt.Fprintf(out, "  %s  %s\n", cliui.KeyStyle.Render("ID:     "), r.ID)
	fmt.Fprintf(out, "  %s  %d\n", cliui.KeyStyle.Render("Records:"), r.RecordCount)
	fmt.Fprintf(out, "  %s  %s\n\n", cliui.KeyStyle.Render("Created:"), cliui.DimStyle.Render(r.CreatedAt.Local().Format("2006-01-02 15:04:05")))

	rows := make([][]string, 0, len(r.MetricIDs))
	for _, id := range r.MetricIDs {
		f := "-"
		if p, ok := r.Filters[id]; ok {
			f = p.String()
		}
		rows = append(rows, []string{id, f})
	}
	fmt.Fprintln(out, cliui.Table([]string{"Metric", "Filter"}, rows))
}

func (c *showCommander) render(out io.Writer, s *session.Session) error {
	md, _ := cliui.RenderMarkdown(summary.Markdown(s))
	fmt.Fprint(out, md)
	if c.preview > 0 && len(s.FilteredData()) > 0 {
		fmt.Fprintln(out, summary.Preview(s, c.preview))
	}

	if c.chartPath == "" {
		return nil
	}

	f, err := os.Create(c.chartPath)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()

	if err := chartrender.Page(f, s.Name(), chartrender.NewCharts(s.FilteredData(), s.SelectedMetrics(), "")); err != nil {
		return fmt.Errorf("writing charts: %w", err)
	}
	return nil
}
