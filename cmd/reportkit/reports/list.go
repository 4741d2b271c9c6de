package reportscmder

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/reportkit/pkg/cliui"
	"github.com/papercomputeco/reportkit/pkg/storage"
)

const listLongDesc string = `List saved reports, oldest first.

Examples:
  reportkit reports list
  reportkit reports list --storage postgres`

const listShortDesc string = "List saved reports"

func newListCmd() *cobra.Command {
	opts := &storageOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := opts.open(cmd.Context(), newLogger(cmd))
			if err != nil {
				return err
			}
			defer repo.Close()

			reports, err := repo.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing reports: %w", err)
			}
			return runList(cmd.OutOrStdout(), reports)
		},
	}

	opts.addFlags(cmd)

	return cmd
}

func runList(out io.Writer, reports []*storage.Report) error {
	if len(reports) == 0 {
		fmt.Fprintf(out, "  %s\n", cliui.DimStyle.Render("No saved reports."))
		return nil
	}

	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.ID,
			r.Name,
			strings.Join(r.MetricIDs, ", "),
			strconv.Itoa(len(r.Filters)),
			strconv.Itoa(r.RecordCount),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}

	fmt.Fprintln(out, cliui.Table([]string{"ID", "Name", "Metrics", "Filters", "Records", "Created"}, rows))
	return nil
}
