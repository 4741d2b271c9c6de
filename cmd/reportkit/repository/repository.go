// Package repository opens the saved-report repository selected by config
// and wires report events onto it.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/papercomputeco/reportkit/cmd/reportkit/sqlitepath"
	"github.com/papercomputeco/reportkit/pkg/config"
	"github.com/papercomputeco/reportkit/pkg/eventstream"
	"github.com/papercomputeco/reportkit/pkg/eventstream/kafka"
	"github.com/papercomputeco/reportkit/pkg/eventstream/nop"
	"github.com/papercomputeco/reportkit/pkg/storage"
	"github.com/papercomputeco/reportkit/pkg/storage/inmemory"
	"github.com/papercomputeco/reportkit/pkg/storage/postgres"
	"github.com/papercomputeco/reportkit/pkg/storage/sqlite"
	"github.com/papercomputeco/reportkit/pkg/utils"
)

// Open returns the repository for cfg.Storage.Driver.
func Open(ctx context.Context, cfg *config.Config, configDir string, log *slog.Logger) (storage.Repository, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil

	case config.DriverPostgres:
		if cfg.Storage.PostgresDSN == "" {
			return nil, fmt.Errorf("storage.driver is %q but storage.postgres_dsn is empty", config.DriverPostgres)
		}
		driver, err := postgres.NewDriver(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL repository: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return driver, nil

	case config.DriverSQLite, "":
		path, err := sqlitepath.ResolveSQLitePath(cfg.Storage.SQLitePath, configDir)
		if err != nil {
			return nil, err
		}
		driver, err := sqlite.NewDriver(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite repository: %w", err)
		}
		log.Info("using SQLite storage", "path", path)
		return driver, nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}

// WithEvents wraps repo so every successful save emits a report event.
// Without configured brokers events go to a publisher that drops them.
func WithEvents(repo storage.Repository, cfg *config.Config, log *slog.Logger) (*eventstream.NotifyingRepository, error) {
	var publisher eventstream.Publisher = nop.NewPublisher()

	if brokers := cfg.Events.Brokers(); len(brokers) > 0 {
		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   cfg.Events.KafkaTopic,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		log.Info("publishing report events",
			"brokers", cfg.Events.KafkaBrokers,
			"topic", cfg.Events.KafkaTopic,
		)
		publisher = p
	}

	host, _ := os.Hostname()
	source := eventstream.EventSource{
		Host:    host,
		Driver:  cfg.Storage.Driver,
		Version: utils.Version,
	}

	return eventstream.NewNotifyingRepository(repo, publisher, source, log), nil
}
