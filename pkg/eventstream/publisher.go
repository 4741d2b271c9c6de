package eventstream

import "context"

// Publisher publishes report events to an event stream backend.
type Publisher interface {
	PublishReportSaved(ctx context.Context, event *ReportSavedEvent) error
	Close() error
}
