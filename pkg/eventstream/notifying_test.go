package eventstream_test

import (
	"bytes"
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/pkg/eventstream"
	"github.com/papercomputeco/reportkit/pkg/logger"
	"github.com/papercomputeco/reportkit/pkg/storage"
	"github.com/papercomputeco/reportkit/pkg/storage/inmemory"
)

type recordingPublisher struct {
	events []*eventstream.ReportSavedEvent
	err    error
	closed bool
}

func (p *recordingPublisher) PublishReportSaved(_ context.Context, e *eventstream.ReportSavedEvent) error {
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

type failingRepo struct {
	storage.Repository
}

func (failingRepo) Save(context.Context, *storage.Report) error {
	return errors.New("disk full")
}

var _ = Describe("NotifyingRepository", func() {
	var (
		ctx context.Context
		pub *recordingPublisher
	)

	BeforeEach(func() {
		ctx = context.Background()
		pub = &recordingPublisher{}
	})

	It("publishes after a successful save", func() {
		repo := eventstream.NewNotifyingRepository(inmemory.NewDriver(), pub, eventstream.EventSource{Driver: "memory"}, nil)
		report := &storage.Report{Name: "Weekly", MetricIDs: []string{"score"}}

		Expect(repo.Save(ctx, report)).To(Succeed())
		Expect(pub.events).To(HaveLen(1))
		Expect(pub.events[0].Report.ID).To(Equal(report.ID))
		Expect(pub.events[0].Source.Driver).To(Equal("memory"))

		got, err := repo.Get(ctx, report.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Name).To(Equal("Weekly"))
	})

	It("does not publish when the save fails", func() {
		repo := eventstream.NewNotifyingRepository(failingRepo{}, pub, eventstream.EventSource{}, nil)
		Expect(repo.Save(ctx, &storage.Report{})).To(MatchError("disk full"))
		Expect(pub.events).To(BeEmpty())
	})

	It("logs and swallows publish failures", func() {
		var buf bytes.Buffer
		log := logger.New(logger.WithWriter(&buf), logger.WithJSON(true))
		pub.err = errors.New("broker down")

		repo := eventstream.NewNotifyingRepository(inmemory.NewDriver(), pub, eventstream.EventSource{}, log)
		Expect(repo.Save(ctx, &storage.Report{Name: "x"})).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("failed to publish report saved event"))
		Expect(buf.String()).To(ContainSubstring("broker down"))
		Expect(buf.String()).To(ContainSubstring(`"level":"WARN"`))
	})

	It("closes the publisher with the repository", func() {
		repo := eventstream.NewNotifyingRepository(inmemory.NewDriver(), pub, eventstream.EventSource{}, nil)
		Expect(repo.Close()).To(Succeed())
		Expect(pub.closed).To(BeTrue())
	})
})
