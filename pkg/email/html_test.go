package email_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/pkg/email"
)

var _ = Describe("Request.Validate", func() {
	DescribeTable("requires email, report name and CSV content",
		func(mutate func(*email.Request)) {
			req := sampleRequest()
			mutate(&req)
			Expect(req.Validate()).To(MatchError(email.ErrMissingFields))
		},
		Entry("no email", func(r *email.Request) { r.Email = "" }),
		Entry("no report name", func(r *email.Request) { r.ReportName = "" }),
		Entry("no CSV", func(r *email.Request) { r.CSVContent = "" }),
	)

	It("accepts a complete request", func() {
		Expect(sampleRequest().Validate()).To(Succeed())
	})
})

var _ = Describe("RenderReportHTML", func() {
	It("lists the summary and metrics", func() {
		html, err := email.RenderReportHTML(sampleRequest())
		Expect(err).NotTo(HaveOccurred())
		Expect(html).To(ContainSubstring("<h1>Custom Report: Weekly Scores</h1>"))
		Expect(html).To(ContainSubstring("<strong>Records:</strong> 1"))
		Expect(html).To(ContainSubstring("<li>Score</li>"))
		Expect(html).To(ContainSubstring("Jun 15, 2024 10:00 UTC"))
	})

	It("escapes user supplied text", func() {
		req := sampleRequest()
		req.ReportName = "<script>alert(1)</script>"
		html, err := email.RenderReportHTML(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(html).NotTo(ContainSubstring("<script>"))
		Expect(html).To(ContainSubstring("&lt;script&gt;"))
	})
})

var _ = Describe("NewReportMessage", func() {
	It("attaches the CSV and sets the subject", func() {
		msg, err := email.NewReportMessage(sampleRequest(), "", "weekly_scores.csv")
		Expect(err).NotTo(HaveOccurred())
		Expect(msg.To).To(Equal([]string{"someone@example.com"}))
		Expect(msg.Subject).To(Equal("Custom Report: Weekly Scores"))
		Expect(msg.Attachments).To(HaveLen(1))
		Expect(msg.Attachments[0].Filename).To(Equal("weekly_scores.csv"))
		Expect(msg.Attachments[0].ContentType).To(Equal("text/csv"))
		Expect(string(msg.Attachments[0].Content)).To(Equal(sampleRequest().CSVContent))
	})

	It("rejects incomplete requests", func() {
		req := sampleRequest()
		req.Email = ""
		_, err := email.NewReportMessage(req, "", "x.csv")
		Expect(err).To(MatchError(email.ErrMissingFields))
	})
})

var _ = Describe("NewResendSender", func() {
	It("requires an API key", func() {
		_, err := email.NewResendSender("")
		Expect(err).To(MatchError(email.ErrMissingAPIKey))
	})
})
