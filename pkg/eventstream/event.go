package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/reportkit/pkg/storage"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeReportSaved is emitted after a report definition is saved.
	EventTypeReportSaved = "reportkit.report.saved"
)

// ReportSavedEvent is a transport-neutral event payload for a saved report.
type ReportSavedEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Source        EventSource    `json:"source"`
	Report        storage.Report `json:"report"`
}

// EventSource identifies where the report was saved from.
type EventSource struct {
	Host    string `json:"host,omitempty"`
	Driver  string `json:"driver"`
	Version string `json:"version,omitempty"`
}

// NewReportSavedEvent builds an event for a report that was just saved.
func NewReportSavedEvent(report *storage.Report, source EventSource, now time.Time) *ReportSavedEvent {
	return &ReportSavedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeReportSaved,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     now.UTC(),
		Source:        source,
		Report:        *report.Clone(),
	}
}
