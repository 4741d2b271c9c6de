// Package authcmder provides the auth command for storing service API keys.
package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/papercomputeco/reportkit/pkg/cliui"
	"github.com/papercomputeco/reportkit/pkg/credentials"
)

const authLongDesc string = `Store API keys for external services.

Keys are written to credentials.toml in the .reportkit/ directory with
owner-only permissions. "reportkit serve" uses the stored Resend key when
email.resend_api_key and RESEND_API_KEY are both unset.

Supported services: resend

Examples:
  reportkit auth resend              Prompt for the Resend API key
  reportkit auth --list              List stored keys
  reportkit auth --remove resend     Remove the stored Resend key
  echo $KEY | reportkit auth resend  Read the key from stdin`

const authShortDesc string = "Store API keys for external services"

type authCommander struct {
	configDir string
	list      bool
	remove    string
}

func NewAuthCmd() *cobra.Command {
	cmder := &authCommander{}

	cmd := &cobra.Command{
		Use:   "auth [service]",
		Short: authShortDesc,
		Long:  authLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			switch {
			case cmder.list:
				return cmder.runList(cmd.OutOrStdout())
			case cmder.remove != "":
				return cmder.runRemove(cmd.OutOrStdout())
			case len(args) == 0:
				return fmt.Errorf("service argument required\n\nSupported services: %s",
					strings.Join(credentials.SupportedServices(), ", "))
			default:
				return cmder.runAuth(cmd.InOrStdin(), cmd.OutOrStdout(), args[0])
			}
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return credentials.SupportedServices(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&cmder.list, "list", false, "List stored keys")
	cmd.Flags().StringVar(&cmder.remove, "remove", "", "Remove the stored key for a service")

	return cmd
}

func (c *authCommander) runAuth(in io.Reader, out io.Writer, service string) error {
	service = strings.ToLower(strings.TrimSpace(service))
	if !credentials.IsSupportedService(service) {
		return fmt.Errorf("unsupported service: %q\n\nSupported services: %s",
			service, strings.Join(credentials.SupportedServices(), ", "))
	}

	key, err := readAPIKey(in, out, service)
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("API key cannot be empty")
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	if err := mgr.SetKey(service, key); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n  %s Stored %s key %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(service),
		cliui.DimStyle.Render("(in place of "+credentials.EnvVarForService(service)+")"),
	)
	return nil
}

func (c *authCommander) runList(out io.Writer) error {
	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	services, err := mgr.ListServices()
	if err != nil {
		return err
	}

	if len(services) == 0 {
		fmt.Fprintln(out, "No stored keys.")
		fmt.Fprintf(out, "Supported services: %s\n", strings.Join(credentials.SupportedServices(), ", "))
		return nil
	}

	rows := make([][]string, 0, len(services))
	for _, s := range services {
		rows = append(rows, []string{s, credentials.EnvVarForService(s)})
	}
	fmt.Fprintln(out, cliui.Table([]string{"Service", "Env"}, rows))
	return nil
}

func (c *authCommander) runRemove(out io.Writer) error {
	service := strings.ToLower(strings.TrimSpace(c.remove))

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}
	if err := mgr.RemoveKey(service); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Removed %s key.\n", cliui.SuccessMark, cliui.NameStyle.Render(service))
	return nil
}

// readAPIKey prompts with hidden input when in is a terminal and otherwise
// takes the first line of in.
func readAPIKey(in io.Reader, out io.Writer, service string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(out, "Enter API key for %s (%s): ", service, credentials.EnvVarForService(service))
		key, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return string(key), nil
	}

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return "", errors.New("no input received on stdin")
}
