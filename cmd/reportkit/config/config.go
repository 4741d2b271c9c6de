// Package configcmder provides the config command for managing persistent
// reportkit configuration stored in the .reportkit/ directory.
package configcmder

import (
	"strings"

	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent reportkit configuration.

Configuration is stored as config.toml in the .reportkit/ directory and
provides default values for command flags. CLI flags and REPORTKIT_*
environment variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  report.name, report.count,
  storage.driver, storage.sqlite_path, storage.postgres_dsn,
  email.relay_url, email.simulate_on_failure, email.from, email.resend_api_key,
  relay.listen,
  events.kafka_brokers, events.kafka_topic

Examples:
  reportkit config set report.count 250
  reportkit config set storage.driver postgres
  reportkit config get email.relay_url
  reportkit config list`

const configShortDesc string = "Manage persistent reportkit configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// mask hides all but the last four characters of a secret value.
func mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", 8) + value[len(value)-4:]
}
