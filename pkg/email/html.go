package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const generatedLayout = "Jan 2, 2006 15:04 MST"

var reportTemplate = template.Must(template.New("report").Parse(`<h1>Custom Report: {{.ReportName}}</h1>
<p>Please find attached your custom report.</p>
<h2>Report Summary</h2>
<ul>
  <li><strong>Report Name:</strong> {{.Summary.ReportName}}</li>
  <li><strong>Records:</strong> {{.Summary.RecordCount}}</li>
  <li><strong>Metrics:</strong> {{.Summary.MetricCount}}</li>
  <li><strong>Generated:</strong> {{.Generated}}</li>
</ul>
<p>The metrics included in this report are:</p>
<ul>
{{- range .Summary.Metrics}}
  <li>{{.}}</li>
{{- end}}
</ul>
<p>Thank you for using reportkit!</p>
`))

// RenderReportHTML renders the email body for a send-report request.
// Every interpolated value is HTML-escaped.
func RenderReportHTML(req Request) (string, error) {
	generated := ""
	if !req.Summary.GeneratedAt.IsZero() {
		generated = req.Summary.GeneratedAt.UTC().Format(generatedLayout)
	}

	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		ReportName string
		Summary    Summary
		Generated  string
	}{
		ReportName: req.ReportName,
		Summary:    req.Summary,
		Generated:  generated,
	})
	if err != nil {
		return "", fmt.Errorf("rendering report email: %w", err)
	}
	return buf.String(), nil
}

// NewReportMessage builds the outgoing email for req with the CSV content
// attached as attachmentName.
func NewReportMessage(req Request, from, attachmentName string) (Message, error) {
	if err := req.Validate(); err != nil {
		return Message{}, err
	}

	body, err := RenderReportHTML(req)
	if err != nil {
		return Message{}, err
	}

	return Message{
		From:    from,
		To:      []string{req.Email},
		Subject: "Custom Report: " + req.ReportName,
		HTML:    body,
		Attachments: []Attachment{{
			Filename:    attachmentName,
			ContentType: "text/csv",
			Content:     []byte(req.CSVContent),
		}},
	}, nil
}
