package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/pkg/eventstream"
	"github.com/papercomputeco/reportkit/pkg/filter"
	"github.com/papercomputeco/reportkit/pkg/storage"
)

var _ = Describe("Event", func() {
	It("marshals ReportSavedEvent with expected top-level keys", func() {
		now := time.Unix(1735689600, 0).UTC()
		report := &storage.Report{
			ID:          "r-1",
			Name:        "Weekly",
			MetricIDs:   []string{"score"},
			Filters:     filter.Spec{"score": filter.LessThan(50)},
			RecordCount: 100,
			CreatedAt:   now,
		}
		event := eventstream.NewReportSavedEvent(report, eventstream.EventSource{Driver: "sqlite"}, now)

		payload, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var got map[string]any
		Expect(json.Unmarshal(payload, &got)).To(Succeed())

		Expect(got).To(HaveKeyWithValue("schema_version", BeNumerically("==", 1)))
		Expect(got).To(HaveKeyWithValue("event_type", "reportkit.report.saved"))
		Expect(got).To(HaveKey("event_id"))
		Expect(got).To(HaveKey("emitted_at"))
		Expect(got).To(HaveKey("source"))
		Expect(got).To(HaveKey("report"))
		Expect(got["report"]).To(HaveKeyWithValue("id", "r-1"))
		Expect(event.EventID).To(HavePrefix("evt_"))
	})

	It("copies the report so later edits do not leak into the event", func() {
		report := &storage.Report{ID: "r-1", MetricIDs: []string{"score"}}
		event := eventstream.NewReportSavedEvent(report, eventstream.EventSource{}, time.Now())
		report.MetricIDs[0] = "attempts"
		Expect(event.Report.MetricIDs).To(Equal([]string{"score"}))
	})

	It("defines stable event constants", func() {
		Expect(eventstream.SchemaVersionV1).To(BeNumerically(">", 0))
		Expect(eventstream.EventTypeReportSaved).To(Equal("reportkit.report.saved"))
	})

	It("provides ErrNilReportEvent for nil payload validation", func() {
		Expect(eventstream.ErrNilReportEvent).To(MatchError("nil report event"))
	})
})
