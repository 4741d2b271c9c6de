// Package reportkitcmder
package reportkitcmder

import (
	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/reportkit/cmd/reportkit/auth"
	configcmder "github.com/papercomputeco/reportkit/cmd/reportkit/config"
	generatecmder "github.com/papercomputeco/reportkit/cmd/reportkit/generate"
	initcmder "github.com/papercomputeco/reportkit/cmd/reportkit/init"
	metricscmder "github.com/papercomputeco/reportkit/cmd/reportkit/metrics"
	reportscmder "github.com/papercomputeco/reportkit/cmd/reportkit/reports"
	servecmder "github.com/papercomputeco/reportkit/cmd/reportkit/serve"
	versioncmder "github.com/papercomputeco/reportkit/cmd/reportkit/version"
)

const reportkitLongDesc string = `reportkit builds custom reports from a catalog of learning metrics.

Pick metrics, generate sample records, filter them, and export the result
as CSV, Power BI data and chart pages, or send it by email.

  reportkit metrics            List the metric catalog
  reportkit generate -m score  Generate a report
  reportkit reports list       List saved reports
  reportkit serve              Run the email relay and API server
  reportkit auth resend        Store the Resend API key`

const reportkitShortDesc string = "reportkit - custom report builder"

func NewReportkitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "reportkit",
		Short:        reportkitShortDesc,
		Long:         reportkitLongDesc,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to the .reportkit/ config directory")

	cmd.AddCommand(metricscmder.NewMetricsCmd())
	cmd.AddCommand(generatecmder.NewGenerateCmd())
	cmd.AddCommand(reportscmder.NewReportsCmd())
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
