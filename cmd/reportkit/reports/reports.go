// Package reportscmder provides the reports command for browsing saved
// report definitions.
package reportscmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/reportkit/cmd/reportkit/repository"
	"github.com/papercomputeco/reportkit/pkg/config"
	"github.com/papercomputeco/reportkit/pkg/logger"
	"github.com/papercomputeco/reportkit/pkg/storage"
)

const reportsLongDesc string = `Browse saved report definitions.

Reports are saved with "reportkit generate --save". A saved report holds the
selected metrics, filters and record count, not the generated records.

Examples:
  reportkit reports list
  reportkit reports show <id>
  reportkit reports show <id> --run`

const reportsShortDesc string = "Browse saved reports"

var storageFlags = []string{
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgres,
}

// storageOptions holds the storage flags shared by the subcommands.
type storageOptions struct {
	cfg       *config.Config
	configDir string

	driver      string
	sqlitePath  string
	postgresDSN string
}

func (o *storageOptions) addFlags(cmd *cobra.Command) {
	config.AddStringFlag(cmd, config.Registry, config.FlagStorageDriver, &o.driver)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &o.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &o.postgresDSN)
}

func (o *storageOptions) load(cmd *cobra.Command) error {
	cfg, err := config.FromCommand(cmd, storageFlags...)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	o.cfg = cfg
	o.configDir, _ = cmd.Flags().GetString("config-dir")
	return nil
}

func (o *storageOptions) open(ctx context.Context, log *slog.Logger) (storage.Repository, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return repository.Open(ctx, o.cfg, o.configDir, log)
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	if !debug {
		return logger.Nop()
	}
	return logger.New(
		logger.WithDebug(true),
		logger.WithPretty(logger.IsTerminal(os.Stderr)),
		logger.WithWriter(cmd.ErrOrStderr()),
	)
}

func NewReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: reportsShortDesc,
		Long:  reportsLongDesc,
	}

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())

	return cmd
}
