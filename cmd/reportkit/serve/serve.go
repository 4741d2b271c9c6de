// Package servecmder provides the serve command, which runs the email relay
// and report API server.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/reportkit/api"
	"github.com/papercomputeco/reportkit/cmd/reportkit/repository"
	"github.com/papercomputeco/reportkit/pkg/config"
	"github.com/papercomputeco/reportkit/pkg/credentials"
	"github.com/papercomputeco/reportkit/pkg/email"
	"github.com/papercomputeco/reportkit/pkg/logger"
)

const serveLongDesc string = `Run the reportkit relay and API server.

The server accepts POST /api/send-report from "reportkit generate --email"
and delivers the CSV as an email attachment through Resend. It also serves
the metric catalog and saved reports:

  GET  /api/metrics
  GET  /api/reports
  GET  /api/reports/:id
  GET  /api/reports/:id/chart

The Resend API key is read from email.resend_api_key or RESEND_API_KEY,
then from the key stored with "reportkit auth resend". Without it the server still runs and send-report requests fail.`

const serveShortDesc string = "Run the relay and API server"

var serveFlags = []string{
	config.FlagListen,
	config.FlagEmailFrom,
	config.FlagStorageDriver,
	config.FlagSQLite,
	config.FlagPostgres,
	config.FlagKafkaBrokers,
	config.FlagKafkaTopic,
}

type serveCommander struct {
	cfg       *config.Config
	configDir string
	debug     bool
	json      bool
	logFile   string

	listen        string
	from          string
	storageDriver string
	sqlitePath    string
	postgresDSN   string
	kafkaBrokers  string
	kafkaTopic    string

	logger *slog.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromCommand(cmd, serveFlags...)
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
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&cmder.json, "log-json", false, "Write logs as JSON")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	config.AddStringFlag(cmd, config.Registry, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Registry, config.FlagEmailFrom, &cmder.from)
	config.AddStringFlag(cmd, config.Registry, config.FlagStorageDriver, &cmder.storageDriver)
	config.AddStringFlag(cmd, config.Registry, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Registry, config.FlagPostgres, &cmder.postgresDSN)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaBrokers, &cmder.kafkaBrokers)
	config.AddStringFlag(cmd, config.Registry, config.FlagKafkaTopic, &cmder.kafkaTopic)

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.json),
		logger.WithPretty(!c.json && logger.IsTerminal(os.Stdout)),
	)

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(c.debug),
			logger.WithJSON(true),
			logger.WithWriter(f),
		))
	}

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

	apiKey, err := c.resendAPIKey()
	if err != nil {
		return err
	}

	var sender email.Sender
	resend, err := email.NewResendSender(apiKey)
	switch {
	case errors.Is(err, email.ErrMissingAPIKey):
		c.logger.Warn("no Resend API key configured, email delivery is disabled")
	case err != nil:
		return fmt.Errorf("creating email sender: %w", err)
	default:
		sender = resend
	}

	server := api.NewServer(api.Config{
		ListenAddr: c.cfg.Relay.Listen,
		From:       c.cfg.Email.From,
	}, sender, notifying, c.logger)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("relay server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		c.logger.Info("context cancelled, shutting down")
	}

	return server.Shutdown()
}

// resendAPIKey prefers the configured key and falls back to credentials.toml.
func (c *serveCommander) resendAPIKey() (string, error) {
	if c.cfg.Email.ResendAPIKey != "" {
		return c.cfg.Email.ResendAPIKey, nil
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return "", fmt.Errorf("loading credentials: %w", err)
	}
	return mgr.GetKey(credentials.Resend)
}
