package session_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/pkg/filter"
	"github.com/papercomputeco/reportkit/pkg/session"
	"github.com/papercomputeco/reportkit/pkg/storage"
	"github.com/papercomputeco/reportkit/pkg/storage/inmemory"
	"github.com/papercomputeco/reportkit/pkg/synth"
)

func newSession() *session.Session {
	s := synth.New(
		synth.WithRand(rand.New(rand.NewPCG(7, 11))),
		synth.WithClock(func() time.Time {
			return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
		}),
	)
	return session.New(session.WithSynthesizer(s))
}

var _ = Describe("Session", func() {
	var s *session.Session

	BeforeEach(func() {
		s = newSession()
	})

	Describe("New", func() {
		It("starts idle with defaults", func() {
			Expect(s.State()).To(Equal(session.Idle))
			Expect(s.Name()).To(Equal(session.DefaultName))
			Expect(s.RecordCount()).To(Equal(100))
			Expect(s.SelectedMetrics()).To(BeEmpty())
			Expect(s.FilteredData()).To(BeEmpty())
			Expect(s.Stats()).To(BeEmpty())
			Expect(s.Err()).NotTo(HaveOccurred())
		})
	})

	Describe("selection", func() {
		It("moves to configuring on first selection and back to idle when emptied", func() {
			Expect(s.SelectMetric("score")).To(Succeed())
			Expect(s.State()).To(Equal(session.Configuring))

			s.DeselectMetric("score")
			Expect(s.State()).To(Equal(session.Idle))
		})

		It("keeps selection order and ignores duplicates", func() {
			Expect(s.SelectMetric("score")).To(Succeed())
			Expect(s.SelectMetric("attempts")).To(Succeed())
			Expect(s.SelectMetric("score")).To(Succeed())

			ids := []string{}
			for _, m := range s.SelectedMetrics() {
				ids = append(ids, m.ID)
			}
			Expect(ids).To(Equal([]string{"score", "attempts"}))
		})

		It("rejects unknown metrics", func() {
			err := s.SelectMetric("nope")
			var verr *session.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(s.State()).To(Equal(session.Idle))
		})

		It("toggles membership", func() {
			Expect(s.ToggleMetric("score")).To(Succeed())
			Expect(s.IsSelected("score")).To(BeTrue())
			Expect(s.ToggleMetric("score")).To(Succeed())
			Expect(s.IsSelected("score")).To(BeFalse())
		})

		It("removes a metric's filter when it is deselected", func() {
			Expect(s.SelectMetric("score")).To(Succeed())
			Expect(s.SelectMetric("attempts")).To(Succeed())
			Expect(s.SetFilter("score", filter.LessThan(50))).To(Succeed())
			Expect(s.SetFilter("attempts", filter.GreaterThan(1))).To(Succeed())

			s.DeselectMetric("score")
			Expect(s.Filters()).To(HaveLen(1))
			Expect(s.Filters()).To(HaveKey("attempts"))
		})
	})

	Describe("Generate", func() {
		It("fails with a retained validation error when nothing is selected", func() {
			err := s.Generate()
			var verr *session.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(verr.Message).To(Equal("Please select at least one metric for your report"))
			Expect(s.State()).To(Equal(session.Idle))
			Expect(s.RawData()).To(BeEmpty())
			Expect(s.Err()).To(MatchError(err))
		})

		It("clears the retained error on success", func() {
			Expect(s.Generate()).NotTo(Succeed())
			Expect(s.SelectMetric("score")).To(Succeed())
			Expect(s.Generate()).To(Succeed())
			Expect(s.Err()).NotTo(HaveOccurred())
		})

		It("synthesizes the configured number of records and derives stats", func() {
			Expect(s.SelectMetric("score")).To(Succeed())
			Expect(s.Generate()).To(Succeed())

			Expect(s.State()).To(Equal(session.Generated))
			Expect(s.RawData()).To(HaveLen(100))
			Expect(s.FilteredData()).To(HaveLen(100))

			stats := s.Stats()["score"]
			Expect(stats.Count).To(Equal(100))
			Expect(*stats.Min).To(BeNumerically(">=", 0))
			Expect(*stats.Max).To(BeNumerically("<=", 99))
			Expect(*stats.Avg).To(BeNumerically(">=", *stats.Min))
			Expect(*stats.Avg).To(BeNumerically("<=", *stats.Max))
		})
	})

	Describe("filters", func() {
		BeforeEach(func() {
			Expect(s.SelectMetric("score")).To(Succeed())
			Expect(s.Generate()).To(Succeed())
		})

		It("re-derives filtered data and stats on every change", func() {
			Expect(s.SetFilter("score", filter.LessThan(50))).To(Succeed())
			filtered := s.FilteredData()
			Expect(len(filtered)).To(BeNumerically("<", 100))
			Expect(s.Stats()["score"].Count).To(Equal(len(filtered)))
			for _, r := range filtered {
				v, _ := r.Get("score")
				f, ok := v.Float()
				Expect(ok).To(BeTrue())
				Expect(f).To(BeNumerically("<", 50))
			}

			s.ClearFilter("score")
			Expect(s.FilteredData()).To(HaveLen(100))
			Expect(s.Stats()["score"].Count).To(Equal(100))
		})

		It("clears all filters", func() {
			Expect(s.SetFilter("score", filter.GreaterThan(90))).To(Succeed())
			s.ClearAllFilters()
			Expect(s.Filters()).To(BeEmpty())
			Expect(s.FilteredData()).To(HaveLen(100))
		})

		It("rejects filters on unselected metrics", func() {
			err := s.SetFilter("attempts", filter.LessThan(3))
			var verr *session.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(s.Filters()).To(BeEmpty())
		})

		It("rejects invalid predicates", func() {
			err := s.SetFilter("score", filter.Range(filter.Bound(10), filter.Bound(1)))
			var verr *session.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
			Expect(s.FilteredData()).To(HaveLen(100))
		})

		It("drops stats for a deselected metric but keeps the raw data", func() {
			Expect(s.SelectMetric("attempts")).To(Succeed())
			Expect(s.Generate()).To(Succeed())
			s.DeselectMetric("attempts")

			Expect(s.Stats()).NotTo(HaveKey("attempts"))
			Expect(s.RawData()[0].Has("attempts")).To(BeTrue())
			Expect(s.State()).To(Equal(session.Generated))
		})
	})

	Describe("Reset", func() {
		It("returns everything to defaults", func() {
			Expect(s.SelectMetric("score")).To(Succeed())
			s.SetName("Quarterly")
			s.SetRecordCount(500)
			Expect(s.Generate()).To(Succeed())
			Expect(s.SetFilter("score", filter.LessThan(10))).To(Succeed())

			s.Reset()
			Expect(s.State()).To(Equal(session.Idle))
			Expect(s.SelectedMetrics()).To(BeEmpty())
			Expect(s.RawData()).To(BeEmpty())
			Expect(s.FilteredData()).To(BeEmpty())
			Expect(s.Filters()).To(BeEmpty())
			Expect(s.Stats()).To(BeEmpty())
			Expect(s.Name()).To(Equal(session.DefaultName))
			Expect(s.RecordCount()).To(Equal(session.DefaultRecordCount))
		})
	})

	Describe("SetRecordCount", func() {
		DescribeTable("clamps to the allowed range",
			func(in, want int) {
				s.SetRecordCount(in)
				Expect(s.RecordCount()).To(Equal(want))
			},
			Entry("below minimum", 3, 10),
			Entry("negative", -5, 10),
			Entry("in range", 250, 250),
			Entry("above maximum", 5000, 1000),
		)
	})

	Describe("ChartSeries", func() {
		It("covers every filtered record", func() {
			Expect(s.SelectMetric("challenges")).To(Succeed())
			Expect(s.Generate()).To(Succeed())

			points, err := s.ChartSeries("challenges")
			Expect(err).NotTo(HaveOccurred())
			total := 0
			for _, p := range points {
				total += p.Count
			}
			Expect(total).To(Equal(100))
		})

		It("errors for unselected metrics", func() {
			_, err := s.ChartSeries("score")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Save and Restore", func() {
		It("round-trips the definition through a repository", func() {
			ctx := context.Background()
			repo := inmemory.NewDriver()

			Expect(s.SelectMetric("score")).To(Succeed())
			Expect(s.SelectMetric("login_status")).To(Succeed())
			Expect(s.SetFilter("login_status", filter.Equals("Active"))).To(Succeed())
			s.SetName("Logins")
			s.SetRecordCount(250)

			saved, err := s.Save(ctx, repo)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.ID).NotTo(BeEmpty())

			// Saving again updates the same report.
			s.SetName("Logins v2")
			again, err := s.Save(ctx, repo)
			Expect(err).NotTo(HaveOccurred())
			Expect(again.ID).To(Equal(saved.ID))
			Expect(repo.Count()).To(Equal(1))

			loaded, err := repo.Get(ctx, saved.ID)
			Expect(err).NotTo(HaveOccurred())

			restored := newSession()
			restored.Restore(loaded)
			Expect(restored.State()).To(Equal(session.Configuring))
			Expect(restored.Name()).To(Equal("Logins v2"))
			Expect(restored.RecordCount()).To(Equal(250))
			Expect(restored.Filters()).To(HaveKey("login_status"))
			Expect(restored.Snapshot().MetricIDs).To(Equal([]string{"score", "login_status"}))
		})

		It("refuses to save an empty selection", func() {
			_, err := s.Save(context.Background(), inmemory.NewDriver())
			var verr *session.ValidationError
			Expect(errors.As(err, &verr)).To(BeTrue())
		})

		It("drops unknown metrics and orphaned filters when restoring", func() {
			s.Restore(&storage.Report{
				Name:      "Old",
				MetricIDs: []string{"score", "retired_metric"},
				Filters: filter.Spec{
					"attempts": filter.LessThan(2),
					"score":    filter.GreaterThan(10),
				},
			})
			Expect(s.Snapshot().MetricIDs).To(Equal([]string{"score"}))
			Expect(s.Filters()).To(HaveLen(1))
			Expect(s.Filters()).To(HaveKey("score"))
			Expect(s.RecordCount()).To(Equal(session.DefaultRecordCount))
		})
	})
})
