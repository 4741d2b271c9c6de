package export_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/export"
	"github.com/papercomputeco/reportkit/pkg/record"
)

func sample() record.Dataset {
	return record.Dataset{
		record.New("user-1",
			record.F("score", record.Number(42)),
			record.F("challenges", record.String(`Said "hi", left`)),
			record.F("completion_date", record.Null()),
		),
		record.New("user-2",
			record.F("score", record.Number(12.5)),
			record.F("challenges", record.String("Completed")),
		),
	}
}

func metrics(ids ...string) []catalog.Metric {
	out := make([]catalog.Metric, 0, len(ids))
	for _, id := range ids {
		out = append(out, catalog.MustLookup(id))
	}
	return out
}

var _ = Describe("WriteCSV", func() {
	It("writes an unquoted header and quoted cells", func() {
		var buf bytes.Buffer
		Expect(export.WriteCSV(&buf, sample())).To(Succeed())
		Expect(buf.String()).To(Equal(strings.Join([]string{
			"id,score,challenges,completion_date",
			`"user-1","42","Said ""hi"", left",""`,
			`"user-2","12.5","Completed",""`,
		}, "\n")))
	})

	It("has no trailing newline", func() {
		out, err := export.CSV(sample())
		Expect(err).NotTo(HaveOccurred())
		Expect(out).NotTo(HaveSuffix("\n"))
	})

	It("refuses empty datasets", func() {
		var buf bytes.Buffer
		Expect(export.WriteCSV(&buf, nil)).To(MatchError(export.ErrNoData))
		Expect(buf.Len()).To(BeZero())
	})
})

var _ = Describe("WritePowerBICSV", func() {
	It("leaves numeric cells of number metrics unquoted", func() {
		var buf bytes.Buffer
		err := export.WritePowerBICSV(&buf, sample(), metrics("score", "challenges", "completion_date"))
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(Equal(strings.Join([]string{
			"id,score,challenges,completion_date",
			`"user-1",42,"Said ""hi"", left",""`,
			`"user-2",12.5,"Completed",""`,
		}, "\n")))
	})

	It("quotes non-numeric text in number columns", func() {
		ds := record.Dataset{record.New("user-1", record.F("attempts", record.String("many")))}
		var buf bytes.Buffer
		Expect(export.WritePowerBICSV(&buf, ds, metrics("attempts"))).To(Succeed())
		Expect(buf.String()).To(HaveSuffix(`"user-1","many"`))
	})
})

var _ = Describe("Template", func() {
	It("describes the main table and dimension tables", func() {
		t := export.NewTemplate(metrics("score", "login_status", "last_login_date"))
		Expect(t.Version).To(Equal("1.0"))
		Expect(t.DatasetName).To(Equal("Custom Report Dataset"))
		Expect(t.Tables).To(HaveLen(2))

		main := t.Tables[0]
		Expect(main.Name).To(Equal("MetricsData"))
		Expect(main.Columns).To(Equal([]export.Column{
			{Name: "Score", DataType: catalog.DataTypeNumber},
			{Name: "Login Status", DataType: catalog.DataTypeString},
			{Name: "Last Login Date", DataType: catalog.DataTypeDate},
		}))
		Expect(t.Tables[1].Name).To(Equal("Login StatusDim"))
		Expect(t.Tables[1].Columns).To(HaveLen(2))
	})

	It("writes two-space indented JSON", func() {
		var buf bytes.Buffer
		Expect(export.WriteTemplate(&buf, metrics("score"))).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("\n  \"version\": \"1.0\""))
		Expect(buf.String()).To(HavePrefix("{"))
		Expect(buf.String()).To(HaveSuffix("}"))

		var decoded map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(HaveKey("tables"))
	})
})

var _ = Describe("filenames", func() {
	DescribeTable("SanitizeFilename",
		func(in, want string) {
			Expect(export.SanitizeFilename(in)).To(Equal(want))
		},
		Entry("spaces and case", "Weekly Report", "weekly_report"),
		Entry("punctuation", "Q1/Q2: scores!", "q1_q2__scores_"),
		Entry("non-ASCII letters", "Café", "caf_"),
		Entry("already clean", "report1", "report1"),
	)

	It("derives export filenames", func() {
		Expect(export.CSVFilename("My Report")).To(Equal("my_report.csv"))
		Expect(export.PowerBIFilename("My Report")).To(Equal("my_report_powerbi.csv"))
		Expect(export.TemplateFilename("My Report")).To(Equal("my_report_template.json"))
	})
})

var _ = Describe("NewEmailRequest", func() {
	It("renders the CSV and summary", func() {
		now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
		req, err := export.NewEmailRequest("a@example.com", "Scores", sample(), metrics("score", "challenges"), now)
		Expect(err).NotTo(HaveOccurred())
		Expect(req.CSVContent).To(HavePrefix("id,score,challenges"))
		Expect(req.Summary.RecordCount).To(Equal(2))
		Expect(req.Summary.MetricCount).To(Equal(2))
		Expect(req.Summary.Metrics).To(Equal([]string{"Score", "Challenges"}))
		Expect(req.Summary.GeneratedAt).To(Equal(now))
		Expect(req.Validate()).To(Succeed())
	})

	It("fails on empty data", func() {
		_, err := export.NewEmailRequest("a@example.com", "Scores", nil, nil, time.Now())
		Expect(err).To(MatchError(export.ErrNoData))
	})
})
