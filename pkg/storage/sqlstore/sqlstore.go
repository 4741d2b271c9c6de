// Package sqlstore implements storage.Repository on top of ent's SQL driver
// and query builders. The sqlite and postgres drivers open the connection and
// hand it over with the matching ent dialect.
package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/reportkit/pkg/filter"
	"github.com/papercomputeco/reportkit/pkg/storage"
)

// timeLayout sorts lexicographically in UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const (
	table = "reports"

	colID          = "id"
	colName        = "name"
	colMetrics     = "metrics"
	colFilters     = "filters"
	colRecordCount = "record_count"
	colCreatedAt   = "created_at"
)

var columns = []string{colID, colName, colMetrics, colFilters, colRecordCount, colCreatedAt}

// Store is a report repository over an ent SQL driver.
type Store struct {
	drv *entsql.Driver
	now func() time.Time
}

// New wraps drv and creates the reports table if needed.
func New(ctx context.Context, drv *entsql.Driver) (*Store, error) {
	query, args := entsql.Dialect(drv.Dialect()).
		CreateTable(table).
		IfNotExists().
		Columns(
			entsql.Column(colID).Type("TEXT"),
			entsql.Column(colName).Type("TEXT").Attr("NOT NULL"),
			entsql.Column(colMetrics).Type("TEXT").Attr("NOT NULL"),
			entsql.Column(colFilters).Type("TEXT").Attr("NOT NULL"),
			entsql.Column(colRecordCount).Type("INTEGER").Attr("NOT NULL"),
			entsql.Column(colCreatedAt).Type("TEXT").Attr("NOT NULL"),
		).
		PrimaryKey(colID).
		Query()

	if err := drv.Exec(ctx, query, args, nil); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{drv: drv, now: time.Now}, nil
}

// Driver exposes the ent driver for driver-specific needs.
func (s *Store) Driver() *entsql.Driver {
	return s.drv
}

// Save upserts the report by ID.
func (s *Store) Save(ctx context.Context, report *storage.Report) error {
	if report == nil {
		return storage.ErrNilReport
	}
	storage.Prepare(report, s.now())

	metrics, err := json.Marshal(report.MetricIDs)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	filters, err := json.Marshal(report.Filters)
	if err != nil {
		return fmt.Errorf("encoding filters: %w", err)
	}

	query, args := entsql.Dialect(s.drv.Dialect()).
		Insert(table).
		Columns(columns...).
		Values(
			report.ID,
			report.Name,
			string(metrics),
			string(filters),
			report.RecordCount,
			report.CreatedAt.UTC().Format(timeLayout),
		).
		OnConflict(
			entsql.ConflictColumns(colID),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("saving report %s: %w", report.ID, err)
	}
	return nil
}

// List returns all reports, oldest first.
func (s *Store) List(ctx context.Context) ([]*storage.Report, error) {
	query, args := s.selectReports().
		OrderBy(colCreatedAt, colID).
		Query()

	out, err := s.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return out, nil
}

// Get retrieves a report by ID.
func (s *Store) Get(ctx context.Context, id string) (*storage.Report, error) {
	query, args := s.selectReports().
		Where(entsql.EQ(colID, id)).
		Limit(1).
		Query()

	out, err := s.query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("getting report %s: %w", id, err)
	}
	if len(out) == 0 {
		return nil, storage.NotFoundError{ID: id}
	}
	return out[0], nil
}

// DeleteAll removes every report.
func (s *Store) DeleteAll(ctx context.Context) error {
	query, args := entsql.Dialect(s.drv.Dialect()).Delete(table).Query()
	return s.drv.Exec(ctx, query, args, nil)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.drv.Close()
}

func (s *Store) selectReports() *entsql.Selector {
	return entsql.Dialect(s.drv.Dialect()).
		Select(columns...).
		From(entsql.Table(table))
}

func (s *Store) query(ctx context.Context, query string, args []any) ([]*storage.Report, error) {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*storage.Report{}
	for rows.Next() {
		r, err := scanReport(&rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*storage.Report, error) {
	var (
		r                storage.Report
		metrics, filters string
		createdAt        string
	)
	if err := sc.Scan(&r.ID, &r.Name, &metrics, &filters, &r.RecordCount, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning report: %w", err)
	}

	if err := json.Unmarshal([]byte(metrics), &r.MetricIDs); err != nil {
		return nil, fmt.Errorf("decoding metrics for %s: %w", r.ID, err)
	}
	r.Filters = filter.Spec{}
	if err := json.Unmarshal([]byte(filters), &r.Filters); err != nil {
		return nil, fmt.Errorf("decoding filters for %s: %w", r.ID, err)
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("decoding created_at for %s: %w", r.ID, err)
	}
	r.CreatedAt = t
	return &r, nil
}
