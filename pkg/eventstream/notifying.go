package eventstream

import (
	"context"
	"log/slog"
	"time"

	"github.com/papercomputeco/reportkit/pkg/logger"
	"github.com/papercomputeco/reportkit/pkg/storage"
)

// NotifyingRepository wraps a storage.Repository and publishes a
// ReportSavedEvent after every successful Save. A failed publish is logged
// and does not fail the save.
type NotifyingRepository struct {
	storage.Repository

	publisher Publisher
	source    EventSource
	logger    *slog.Logger
	now       func() time.Time
}

// NewNotifyingRepository wraps repo so that saves are published to p.
func NewNotifyingRepository(repo storage.Repository, p Publisher, source EventSource, log *slog.Logger) *NotifyingRepository {
	if log == nil {
		log = logger.Nop()
	}
	return &NotifyingRepository{
		Repository: repo,
		publisher:  p,
		source:     source,
		logger:     log,
		now:        time.Now,
	}
}

func (r *NotifyingRepository) Save(ctx context.Context, report *storage.Report) error {
	if err := r.Repository.Save(ctx, report); err != nil {
		return err
	}

	event := NewReportSavedEvent(report, r.source, r.now())
	if err := r.publisher.PublishReportSaved(ctx, event); err != nil {
		r.logger.Warn("failed to publish report saved event",
			"report_id", report.ID,
			"event_id", event.EventID,
			"error", err,
		)
	}
	return nil
}

// Close closes the publisher and then the wrapped repository.
func (r *NotifyingRepository) Close() error {
	pubErr := r.publisher.Close()
	if err := r.Repository.Close(); err != nil {
		return err
	}
	return pubErr
}
