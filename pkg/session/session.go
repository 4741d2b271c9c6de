// Package session holds the mutable state behind one report being built:
// the selected metrics, the synthesized raw records, the active filters and
// everything derived from them.
//
// A Session has a single owner and does no locking. Every mutating method
// finishes by recomputing the filtered dataset and summary statistics, so
// derived state is never stale after a call returns.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/papercomputeco/reportkit/pkg/aggregate"
	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/filter"
	"github.com/papercomputeco/reportkit/pkg/logger"
	"github.com/papercomputeco/reportkit/pkg/record"
	"github.com/papercomputeco/reportkit/pkg/storage"
	"github.com/papercomputeco/reportkit/pkg/synth"
)

const (
	DefaultName        = "New Custom Report"
	DefaultRecordCount = 100
	MinRecordCount     = 10
	MaxRecordCount     = 1000
)

// State is the lifecycle stage of a session.
type State int

const (
	Idle State = iota
	Configuring
	Generated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Configuring:
		return "configuring"
	case Generated:
		return "generated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session is a report under construction.
type Session struct {
	synth  *synth.Synthesizer
	logger *slog.Logger

	state    State
	selected []catalog.Metric
	raw      record.Dataset
	filters  filter.Spec
	err      error

	name     string
	count    int
	reportID string

	filtered record.Dataset
	stats    map[string]aggregate.SummaryStats
}

// Option configures a Session.
type Option func(*Session)

// WithSynthesizer sets the record synthesizer used by Generate.
func WithSynthesizer(s *synth.Synthesizer) Option {
	return func(sess *Session) {
		sess.synth = s
	}
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(sess *Session) {
		sess.logger = l
	}
}

// New returns an idle session with default name and record count.
func New(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.synth == nil {
		s.synth = synth.New()
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	s.clear()
	return s
}

func (s *Session) clear() {
	s.state = Idle
	s.selected = nil
	s.raw = nil
	s.filters = filter.Spec{}
	s.err = nil
	s.name = DefaultName
	s.count = DefaultRecordCount
	s.reportID = ""
	s.filtered = nil
	s.stats = map[string]aggregate.SummaryStats{}
}

// SelectMetric adds the metric with the given id to the selection. Selecting
// an already selected metric is a no-op.
func (s *Session) SelectMetric(id string) error {
	m, ok := catalog.Lookup(id)
	if !ok {
		return &ValidationError{Message: fmt.Sprintf("Unknown metric: %s", id)}
	}
	if !s.IsSelected(id) {
		s.selected = append(s.selected, m)
		if s.state == Idle {
			s.state = Configuring
		}
	}
	s.recomputeDerived()
	return nil
}

// DeselectMetric removes a metric from the selection along with its filter.
func (s *Session) DeselectMetric(id string) {
	s.selected = slices.DeleteFunc(s.selected, func(m catalog.Metric) bool {
		return m.ID == id
	})
	delete(s.filters, id)
	if s.state == Configuring && len(s.selected) == 0 {
		s.state = Idle
	}
	s.recomputeDerived()
}

// ToggleMetric flips the selection state of a metric.
func (s *Session) ToggleMetric(id string) error {
	if s.IsSelected(id) {
		s.DeselectMetric(id)
		return nil
	}
	return s.SelectMetric(id)
}

// IsSelected reports whether the metric is part of the selection.
func (s *Session) IsSelected(id string) bool {
	return slices.ContainsFunc(s.selected, func(m catalog.Metric) bool {
		return m.ID == id
	})
}

// Generate synthesizes RecordCount records for the current selection.
// With nothing selected it returns a *ValidationError, which is also
// retained on the session until the next successful Generate or Reset.
func (s *Session) Generate() error {
	if len(s.selected) == 0 {
		s.err = &ValidationError{Message: EmptySelectionMessage}
		return s.err
	}

	s.raw = s.synth.Synthesize(s.selected, s.count)
	s.state = Generated
	s.err = nil
	s.logger.Debug("generated report data",
		"records", len(s.raw),
		"metrics", len(s.selected),
	)
	s.recomputeDerived()
	return nil
}

// SetFilter installs p as the predicate for a selected metric, replacing
// any previous one.
func (s *Session) SetFilter(id string, p filter.Predicate) error {
	if !s.IsSelected(id) {
		return &ValidationError{Message: fmt.Sprintf("Cannot filter on unselected metric: %s", id)}
	}
	if err := p.Validate(); err != nil {
		return &ValidationError{Message: fmt.Sprintf("Invalid filter for %s: %v", id, err)}
	}
	s.filters[id] = p
	s.recomputeDerived()
	return nil
}

// ClearFilter removes the predicate for a metric, if any.
func (s *Session) ClearFilter(id string) {
	delete(s.filters, id)
	s.recomputeDerived()
}

// ClearAllFilters removes every predicate.
func (s *Session) ClearAllFilters() {
	s.filters = filter.Spec{}
	s.recomputeDerived()
}

// Reset returns the session to Idle, dropping selection, data, filters,
// error, name and record count.
func (s *Session) Reset() {
	s.clear()
	s.recomputeDerived()
}

// SetName sets the report name. A blank name restores the default.
func (s *Session) SetName(name string) {
	if name == "" {
		name = DefaultName
	}
	s.name = name
}

// SetRecordCount sets how many records Generate produces, clamped to
// [MinRecordCount, MaxRecordCount].
func (s *Session) SetRecordCount(n int) {
	s.count = min(max(n, MinRecordCount), MaxRecordCount)
}

// recomputeDerived rebuilds the filtered dataset and summary statistics
// from the raw dataset, filters and selection.
func (s *Session) recomputeDerived() {
	if len(s.raw) == 0 {
		s.filtered = nil
		s.stats = map[string]aggregate.SummaryStats{}
		return
	}
	s.filtered = filter.Apply(s.raw, s.filters)
	s.stats = aggregate.ComputeSummaryStats(s.filtered, s.selected)
}

func (s *Session) State() State { return s.state }
func (s *Session) Name() string { return s.name }
func (s *Session) RecordCount() int { return s.count }

// Err returns the retained error from the last failed Generate.
func (s *Session) Err() error { return s.err }

// SelectedMetrics returns the selection in selection order.
func (s *Session) SelectedMetrics() []catalog.Metric {
	return slices.Clone(s.selected)
}

// Filters returns a copy of the active filters.
func (s *Session) Filters() filter.Spec {
	return s.filters.Clone()
}

// RawData returns the synthesized records.
func (s *Session) RawData() record.Dataset {
	return s.raw.Clone()
}

// FilteredData returns the records that pass the active filters.
func (s *Session) FilteredData() record.Dataset {
	return s.filtered.Clone()
}

// Stats returns summary statistics for each selected metric over the
// filtered data.
func (s *Session) Stats() map[string]aggregate.SummaryStats {
	out := make(map[string]aggregate.SummaryStats, len(s.stats))
	for k, v := range s.stats {
		out[k] = v
	}
	return out
}

// ChartSeries builds the chart series for a selected metric over the
// filtered data.
func (s *Session) ChartSeries(id string) ([]aggregate.Point, error) {
	i := slices.IndexFunc(s.selected, func(m catalog.Metric) bool {
		return m.ID == id
	})
	if i < 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("Metric is not selected: %s", id)}
	}
	return aggregate.BuildChartSeries(s.filtered, s.selected[i]), nil
}

// Snapshot returns the saveable definition of the report. Data rows are
// not part of it.
func (s *Session) Snapshot() storage.Report {
	return storage.Report{
		ID:          s.reportID,
		Name:        s.name,
		MetricIDs:   catalog.IDs(s.selected),
		Filters:     s.filters.Clone(),
		RecordCount: s.count,
	}
}

// Save persists the report definition. Saving again updates the same
// stored report.
func (s *Session) Save(ctx context.Context, repo storage.Repository) (*storage.Report, error) {
	if len(s.selected) == 0 {
		return nil, &ValidationError{Message: EmptySelectionMessage}
	}

	report := s.Snapshot()
	if err := repo.Save(ctx, &report); err != nil {
		return nil, fmt.Errorf("saving report: %w", err)
	}
	s.reportID = report.ID
	s.logger.Info("saved report", "id", report.ID, "name", report.Name)
	return &report, nil
}

// Restore loads a saved definition into a fresh session state. Metrics no
// longer in the catalog and filters that fail validation are dropped.
// The restored session is Configuring; call Generate for data.
func (s *Session) Restore(report *storage.Report) {
	s.clear()
	s.reportID = report.ID
	s.SetName(report.Name)
	if report.RecordCount > 0 {
		s.SetRecordCount(report.RecordCount)
	}

	for _, id := range report.MetricIDs {
		if err := s.SelectMetric(id); err != nil {
			s.logger.Warn("dropping unknown metric from saved report", "metric", id)
		}
	}
	for id, p := range report.Filters {
		if err := s.SetFilter(id, p); err != nil {
			s.logger.Warn("dropping filter from saved report", "metric", id, "error", err)
		}
	}
	s.recomputeDerived()
}
