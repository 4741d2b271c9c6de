// Package email carries report emails from the CLI to the relay service
// and from the relay service to the mail provider.
package email

import (
	"errors"
	"time"
)

// MissingFieldsMessage is returned by the relay when a request lacks a
// recipient, report name or CSV body.
const MissingFieldsMessage = "Missing required fields: email, reportName, or csvContent"

// ErrMissingFields is returned by Request.Validate.
var ErrMissingFields = errors.New(MissingFieldsMessage)

// Summary describes a report in the email body.
type Summary struct {
	ReportName  string    `json:"reportName"`
	RecordCount int       `json:"recordCount"`
	MetricCount int       `json:"metricCount"`
	Metrics     []string  `json:"metrics"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Request is the body of POST /api/send-report.
type Request struct {
	Email      string  `json:"email"`
	ReportName string  `json:"reportName"`
	CSVContent string  `json:"csvContent"`
	Summary    Summary `json:"summary"`
}

// Validate checks the fields the relay cannot work without.
func (r Request) Validate() error {
	if r.Email == "" || r.ReportName == "" || r.CSVContent == "" {
		return ErrMissingFields
	}
	return nil
}

// Response is the relay's reply.
type Response struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`

	// Simulated is set when the client substituted a local success for a
	// relay it could not reach. Never sent over the wire.
	Simulated bool `json:"-"`
}
