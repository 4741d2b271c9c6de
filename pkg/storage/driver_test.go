package storage_test

import (
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/pkg/filter"
	"github.com/papercomputeco/reportkit/pkg/storage"
)

var _ = Describe("Prepare", func() {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.FixedZone("EST", -5*3600))

	It("assigns an id, a UTC creation time and empty collections", func() {
		r := &storage.Report{Name: "x"}
		storage.Prepare(r, now)
		Expect(r.ID).NotTo(BeEmpty())
		Expect(r.CreatedAt.Location()).To(Equal(time.UTC))
		Expect(r.CreatedAt.Equal(now)).To(BeTrue())
		Expect(r.MetricIDs).NotTo(BeNil())
		Expect(r.Filters).NotTo(BeNil())
	})

	It("keeps an existing id and creation time", func() {
		created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
		r := &storage.Report{ID: "fixed", CreatedAt: created}
		storage.Prepare(r, now)
		Expect(r.ID).To(Equal("fixed"))
		Expect(r.CreatedAt).To(Equal(created))
	})
})

var _ = Describe("Report.Clone", func() {
	It("copies metric ids and filters", func() {
		r := &storage.Report{
			MetricIDs: []string{"score"},
			Filters:   filter.Spec{"score": filter.LessThan(3)},
		}
		c := r.Clone()
		c.MetricIDs[0] = "attempts"
		c.Filters["attempts"] = filter.GreaterThan(1)

		Expect(r.MetricIDs).To(Equal([]string{"score"}))
		Expect(r.Filters).To(HaveLen(1))
	})

	It("returns nil for nil", func() {
		var r *storage.Report
		Expect(r.Clone()).To(BeNil())
	})
})

var _ = Describe("NotFoundError", func() {
	It("is detected through wrapping", func() {
		err := fmt.Errorf("loading: %w", storage.NotFoundError{ID: "abc"})
		Expect(storage.IsNotFound(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("report not found: abc"))
		Expect(storage.IsNotFound(storage.ErrNilReport)).To(BeFalse())
	})
})
