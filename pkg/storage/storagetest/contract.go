// Package storagetest holds the behavior every storage.Repository
// implementation must share, written as reusable ginkgo specs.
package storagetest

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/pkg/filter"
	"github.com/papercomputeco/reportkit/pkg/storage"
)

// NewReport builds a report definition for tests.
func NewReport(name string, createdAt time.Time) *storage.Report {
	return &storage.Report{
		Name:      name,
		MetricIDs: []string{"score", "challenges"},
		Filters: filter.Spec{
			"score":      filter.Range(filter.Bound(10), filter.Bound(50)),
			"challenges": filter.Equals("Completed"),
		},
		RecordCount: 100,
		CreatedAt:   createdAt,
	}
}

// DescribeRepository registers the shared repository specs. newRepo is
// called before each spec and the result closed after it.
func DescribeRepository(newRepo func() storage.Repository) {
	var (
		repo storage.Repository
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = newRepo()
	})

	AfterEach(func() {
		if repo != nil {
			Expect(repo.Close()).To(Succeed())
		}
	})

	Describe("Save and Get", func() {
		It("assigns an id and creation time", func() {
			r := NewReport("Weekly", time.Time{})
			Expect(repo.Save(ctx, r)).To(Succeed())
			Expect(r.ID).NotTo(BeEmpty())
			Expect(r.CreatedAt.IsZero()).To(BeFalse())
		})

		It("round-trips every field", func() {
			created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
			r := NewReport("Weekly", created)
			Expect(repo.Save(ctx, r)).To(Succeed())

			got, err := repo.Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Weekly"))
			Expect(got.MetricIDs).To(Equal([]string{"score", "challenges"}))
			Expect(got.Filters).To(Equal(r.Filters))
			Expect(got.RecordCount).To(Equal(100))
			Expect(got.CreatedAt.Equal(created)).To(BeTrue())
		})

		It("replaces a report saved under the same id", func() {
			r := NewReport("Draft", time.Now())
			Expect(repo.Save(ctx, r)).To(Succeed())

			r.Name = "Final"
			r.Filters = filter.Spec{}
			Expect(repo.Save(ctx, r)).To(Succeed())

			got, err := repo.Get(ctx, r.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Final"))
			Expect(got.Filters).To(BeEmpty())

			all, err := repo.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})

		It("returns NotFoundError for unknown ids", func() {
			_, err := repo.Get(ctx, "missing")
			Expect(err).To(HaveOccurred())
			Expect(storage.IsNotFound(err)).To(BeTrue())
		})

		It("rejects nil reports", func() {
			Expect(repo.Save(ctx, nil)).To(MatchError(storage.ErrNilReport))
		})
	})

	Describe("List", func() {
		It("returns an empty slice for an empty store", func() {
			all, err := repo.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).NotTo(BeNil())
			Expect(all).To(BeEmpty())
		})

		It("orders reports oldest first", func() {
			base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			Expect(repo.Save(ctx, NewReport("second", base.Add(time.Hour)))).To(Succeed())
			Expect(repo.Save(ctx, NewReport("first", base))).To(Succeed())
			Expect(repo.Save(ctx, NewReport("third", base.Add(48*time.Hour)))).To(Succeed())

			all, err := repo.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].Name).To(Equal("first"))
			Expect(all[1].Name).To(Equal("second"))
			Expect(all[2].Name).To(Equal("third"))
		})
	})
}
