package export

import (
	"time"

	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/email"
	"github.com/papercomputeco/reportkit/pkg/record"
)

// NewSummary describes a dataset for the report email.
func NewSummary(ds record.Dataset, metrics []catalog.Metric, reportName string, now time.Time) email.Summary {
	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.Name)
	}
	return email.Summary{
		ReportName:  reportName,
		RecordCount: len(ds),
		MetricCount: len(metrics),
		Metrics:     names,
		GeneratedAt: now.UTC(),
	}
}

// NewEmailRequest packages a dataset as a send-report request.
func NewEmailRequest(to, reportName string, ds record.Dataset, metrics []catalog.Metric, now time.Time) (email.Request, error) {
	content, err := CSV(ds)
	if err != nil {
		return email.Request{}, err
	}
	return email.Request{
		Email:      to,
		ReportName: reportName,
		CSVContent: content,
		Summary:    NewSummary(ds, metrics, reportName, now),
	}, nil
}
