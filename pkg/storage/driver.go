// Package storage persists saved report definitions: the name, selected
// metrics, filters and record count needed to regenerate a report. Report
// data rows are never stored.
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/reportkit/pkg/filter"
)

// Report is a saved report definition.
type Report struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	MetricIDs   []string    `json:"metrics"`
	Filters     filter.Spec `json:"filters"`
	RecordCount int         `json:"recordCount"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// Repository defines the interface for persisting and retrieving saved
// reports. Implementations must be safe for concurrent use since the relay
// server reads while the CLI writes.
type Repository interface {
	// Save inserts or replaces a report by ID. A report without an ID is
	// assigned a new one, and a zero CreatedAt is set to now.
	Save(ctx context.Context, report *Report) error

	// List returns all reports, oldest first.
	List(ctx context.Context) ([]*Report, error)

	// Get retrieves a report by ID. Returns NotFoundError when absent.
	Get(ctx context.Context, id string) (*Report, error)

	// Close releases any resources held by the repository.
	Close() error
}

// Prepare fills in the ID and CreatedAt of a report about to be saved.
func Prepare(report *Report, now time.Time) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now.UTC()
	}
	if report.Filters == nil {
		report.Filters = filter.Spec{}
	}
	if report.MetricIDs == nil {
		report.MetricIDs = []string{}
	}
}

// Clone returns a deep copy so callers cannot mutate stored state.
func (r *Report) Clone() *Report {
	if r == nil {
		return nil
	}
	out := *r
	out.MetricIDs = append([]string(nil), r.MetricIDs...)
	out.Filters = r.Filters.Clone()
	return &out
}
