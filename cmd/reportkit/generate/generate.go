// Package generatecmder provides the generate command: select metrics,
// synthesize records, filter them and export the result.
package generatecmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/reportkit/cmd/reportkit/repository"
	"github.com/papercomputeco/reportkit/cmd/reportkit/summary"
	"github.com/papercomputeco/reportkit/pkg/aggregate"
	"github.com/papercomputeco/reportkit/pkg/chartrender"
	"github.com/papercomputeco/reportkit/pkg/cliui"
	"github.com/papercomputeco/reportkit/pkg/config"
	"github.com/papercomputeco/reportkit/pkg/email"
	"github.com/papercomputeco/reportkit/pkg/export"
	"github.com/papercomputeco/reportkit/pkg/filter"
	"github.com/papercomputeco/reportkit/pkg/logger"
	"github.com/papercomputeco/reportkit/pkg/session"
	"github.com/papercomputeco/reportkit/pkg/synth"
)

const generateLongDesc string = `Generate a custom report.

Selects the given metrics, synthesizes sample records for them, applies
filters and prints a summary with a preview of the filtered records.

Filters use metric:op=value:
  score:lt=50                        numeric less than
  score:gt=50                        numeric greater than
  score:range=10..90                 numeric range (either side may be empty)
  challenges:eq=Completed            status equals
  completion_date:between=2024-01-01..2024-03-31
  completion_date:on=2024-02-14

Examples:
  reportkit generate -m score -m attempts -n 200 -f 'score:lt=50'
  reportkit generate -m challenges --csv report.csv --chart report.html
  reportkit generate -m score --save --email someone@example.com`

const generateShortDesc string = "Generate, filter and export a report"

var generateFlags = []string{
	config.FlagReportName,
	config.FlagReportCount,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagRelayURL,
	config.FlagSimulateEmail,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

type generateCommander struct {
	cfg       *config.Config
	configDir string
	debug     bool

	metrics   []string
	filters   []string
	seed      uint64
	preview   int
	chartKind string

	csvPath      string
	powerBIPath  string
	templatePath string
	chartPath    string
	save         bool
	emailTo      string

	// registry flag targets; the merged values live in cfg
	name          string
	count         int
	storageDriver string
	sqlitePath    string
	postgresDSN   string
	relayURL      string
	simulateEmail bool
	kafkaBrokers  string
	kafkaTopic    string

	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
	now    func() time.Time
}

func NewGenerateCmd() *cobra.Command {
	cmder := &generateCommander{now: time.Now}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: generateShortDesc,
		Long:  generateLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromCommand(cmd, generateFlags...)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cmder.cfg = cfg
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringArrayVarP(&cmder.metrics, "metric", "m", nil, "Metric id to include (repeatable, see \"reportkit metrics\")")
	cmd.Flags().StringArrayVarP(&cmder.filters, "filter", "f", nil, "Filter as metric:op=value (repeatable)")
	cmd.Flags().Uint64Var(&cmder.seed, "seed", 0, "Seed for reproducible records (0 picks a random seed)")
	cmd.Flags().IntVar(&cmder.preview, "preview", 10, "Number of records to preview (0 hides the preview)")
	cmd.Flags().StringVar(&cmder.chartKind, "chart-kind", "", "Chart kind for every metric (bar, line, pie, histogram); default is per metric")
	cmd.Flags().StringVar(&cmder.csvPath, "csv", "", "Write the filtered records as CSV")
	cmd.Flags().StringVar(&cmder.powerBIPath, "powerbi", "", "Write Power BI CSV data")
	cmd.Flags().StringVar(&cmder.templatePath, "template", "", "Write the Power BI dataset template (JSON)")
	cmd.Flags().StringVar(&cmder.chartPath, "chart", "", "Write an HTML page with a chart per metric")
	cmd.Flags().BoolVar(&cmder.save, "save", false, "Save the report definition")
	cmd.Flags().StringVar(&cmder.emailTo, "email", "", "Email the CSV to this address through the relay")

	config.AddStringFlag(cmd, config.Registry, config.FlagReportName, &cmder.name)
	config.AddIntFlag(cmd, config.Registry, config.FlagReportCount, &cmder.count)
	config.AddStringFlag(cmd, config.Registry, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagRelayURL, &cmder.relayURL)
	config.AddBoolFlag(cmd, config.Registry, config.FlagSimulateEmail, &cmder.simulateEmail)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaTopic, &cmder.kafkaTopic)

	return cmd
}

func (c *generateCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(logger.IsTerminal(os.Stderr)),
		logger.WithWriter(c.errOut),
	)

	var kind aggregate.ChartKind
	if c.chartKind != "" {
		k, ok := aggregate.ParseChartKind(c.chartKind)
		if !ok {
			return fmt.Errorf("unknown chart kind: %q", c.chartKind)
		}
		kind = k
	}

	spec, err := filter.ParseExprs(c.filters)
	if err != nil {
		return err
	}

	s := session.New(
		session.WithSynthesizer(c.synthesizer()),
		session.WithLogger(c.logger),
	)
	s.SetName(c.cfg.Report.Name)
	s.SetRecordCount(c.cfg.Report.Count)

	for _, id := range c.metrics {
		if err := s.SelectMetric(id); err != nil {
			return err
		}
	}
	for _, id := range spec.Keys() {
		if err := s.SetFilter(id, spec[id]); err != nil {
			return err
		}
	}

	err = cliui.Step(c.errOut, fmt.Sprintf("Generating %d records", s.RecordCount()), s.Generate)
	if err != nil {
		return err
	}

	if err := c.render(s); err != nil {
		return err
	}

	if err := c.export(s, kind); err != nil {
		return err
	}

	if c.save {
		if err := c.saveReport(ctx, s); err != nil {
			return err
		}
	}

	if c.emailTo != "" {
		return c.sendEmail(ctx, s)
	}

	return nil
}

func (c *generateCommander) synthesizer() *synth.Synthesizer {
	if c.seed == 0 {
		return synth.New()
	}
	return synth.New(synth.WithRand(rand.New(rand.NewPCG(c.seed, c.seed))))
}

func (c *generateCommander) render(s *session.Session) error {
	md, err := cliui.RenderMarkdown(summary.Markdown(s))
	if err != nil {
		c.logger.Debug("markdown rendering failed, printing raw", "error", err)
	}
	fmt.Fprint(c.out, md)

	if c.preview > 0 {
		if len(s.FilteredData()) == 0 {
			fmt.Fprintf(c.out, "  %s %s\n", cliui.WarnMark, "No records match the current filters.")
			return nil
		}
		fmt.Fprintln(c.out, summary.Preview(s, c.preview))
	}
	return nil
}

func (c *generateCommander) export(s *session.Session, kind aggregate.ChartKind) error {
	ds := s.FilteredData()
	metrics := s.SelectedMetrics()

	if c.csvPath != "" {
		if err := c.writeFile(c.csvPath, "CSV", func(w io.Writer) error {
			return export.WriteCSV(w, ds)
		}); err != nil {
			return err
		}
	}

	if c.powerBIPath != "" {
		if err := c.writeFile(c.powerBIPath, "Power BI data", func(w io.Writer) error {
			return export.WritePowerBICSV(w, ds, metrics)
		}); err != nil {
			return err
		}
	}

	if c.templatePath != "" {
		if err := c.writeFile(c.templatePath, "Power BI template", func(w io.Writer) error {
			return export.WriteTemplate(w, metrics)
		}); err != nil {
			return err
		}
	}

	if c.chartPath != "" {
		if err := c.writeFile(c.chartPath, "charts", func(w io.Writer) error {
			return chartrender.Page(w, s.Name(), chartrender.NewCharts(ds, metrics, kind))
		}); err != nil {
			return err
		}
	}

	return nil
}

// writeFile writes to path through fn, removing the file again when fn
// fails so no partial export is left behind.
func (c *generateCommander) writeFile(path, what string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s file: %w", what, err)
	}

	if err := fn(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		if errors.Is(err, export.ErrNoData) {
			return fmt.Errorf("writing %s: %w", what, err)
		}
		return fmt.Errorf("writing %s to %s: %w", what, path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	fmt.Fprintf(c.errOut, "  %s Wrote %s to %s\n", cliui.SuccessMark, what, cliui.DimStyle.Render(path))
	return nil
}

func (c *generateCommander) saveReport(ctx context.Context, s *session.Session) error {
	repo, err := repository.Open(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}

	notifying, err := repository.WithEvents(repo, c.cfg, c.logger)
	if err != nil {
		_ = repo.Close()
		return err
	}
	defer notifying.Close()

	report, err := s.Save(ctx, notifying)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.errOut, "  %s Saved report %s\n", cliui.SuccessMark, cliui.NameStyle.Render(report.ID))
	return nil
}

func (c *generateCommander) sendEmail(ctx context.Context, s *session.Session) error {
	req, err := export.NewEmailRequest(c.emailTo, s.Name(), s.FilteredData(), s.SelectedMetrics(), c.now())
	if err != nil {
		return fmt.Errorf("preparing email: %w", err)
	}

	client := email.NewClient(c.cfg.Email.RelayURL,
		email.WithSimulateOnFailure(c.cfg.Email.SimulateOnFailure),
		email.WithLogger(c.logger),
	)

	var resp *email.Response
	err = cliui.Step(c.errOut, "Sending report to "+c.emailTo, func() error {
		var sendErr error
		resp, sendErr = client.Send(ctx, req)
		return sendErr
	})
	if err != nil {
		return err
	}

	if resp.Simulated {
		fmt.Fprintf(c.errOut, "  %s %s\n", cliui.WarnMark, resp.Message)
	}
	return nil
}
