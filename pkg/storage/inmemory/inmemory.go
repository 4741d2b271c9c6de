// Package inmemory provides a map-backed report repository for tests and
// one-shot CLI runs.
package inmemory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/papercomputeco/reportkit/pkg/storage"
)

// Driver implements storage.Repository using an in-memory map.
type Driver struct {
	// mu guards reports
	mu sync.RWMutex

	// reports is keyed by report ID
	reports map[string]*storage.Report

	now func() time.Time
}

// NewDriver creates a new in-memory repository.
func NewDriver() *Driver {
	return &Driver{
		reports: make(map[string]*storage.Report),
		now:     time.Now,
	}
}

// Save stores a copy of the report, replacing any report with the same ID.
func (s *Driver) Save(_ context.Context, report *storage.Report) error {
	if report == nil {
		return storage.ErrNilReport
	}

	storage.Prepare(report, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[report.ID] = report.Clone()
	return nil
}

// List returns copies of all reports, oldest first.
func (s *Driver) List(_ context.Context) ([]*storage.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*storage.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns a copy of the report with the given ID.
func (s *Driver) Get(_ context.Context, id string) (*storage.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return nil, storage.NotFoundError{ID: id}
	}
	return r.Clone(), nil
}

// Count returns the number of stored reports.
func (s *Driver) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reports)
}

// Close is a no-op for the in-memory repository.
func (s *Driver) Close() error {
	return nil
}
