package api

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/reportkit/pkg/aggregate"
	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/chartrender"
	"github.com/papercomputeco/reportkit/pkg/email"
	"github.com/papercomputeco/reportkit/pkg/export"
	"github.com/papercomputeco/reportkit/pkg/filter"
	"github.com/papercomputeco/reportkit/pkg/session"
	"github.com/papercomputeco/reportkit/pkg/storage"
	"github.com/papercomputeco/reportkit/pkg/synth"
)

const (
	sentMessage       = "Report sent successfully"
	sendFailedMessage = "Failed to send email"
)

// ErrorResponse is the body of non-2xx responses outside send-report.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MetricResponse describes one catalog metric.
type MetricResponse struct {
	catalog.Metric
	DataType catalog.DataType                            `json:"dataType"`
	Chart    aggregate.ChartKind                         `json:"chart"`
	Controls map[catalog.FilterKind]catalog.FilterOption `json:"controls,omitempty"`
}

// ReportListResponse lists saved reports.
type ReportListResponse struct {
	Count   int               `json:"count"`
	Reports []*storage.Report `json:"reports"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleSendReport emails the CSV in the request body as an attachment.
func (s *Server) handleSendReport(c *fiber.Ctx) error {
	var req email.Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(email.Response{
			Success: false,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
	}

	msg, err := email.NewReportMessage(req, s.config.From, export.CSVFilename(req.ReportName))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(email.Response{
			Success: false,
			Message: email.MissingFieldsMessage,
		})
	}

	if s.sender == nil {
		return s.sendFailed(c, "email transport is not configured")
	}

	id, err := s.sender.Send(c.UserContext(), msg)
	if err != nil {
		s.logger.Error("failed to send report email",
			"report", req.ReportName,
			"error", err,
		)
		return s.sendFailed(c, err.Error())
	}

	s.logger.Info("report email sent",
		"report", req.ReportName,
		"message_id", id,
		"records", req.Summary.RecordCount,
	)

	return c.JSON(email.Response{
		Success:   true,
		Message:   sentMessage,
		MessageID: id,
	})
}

func (s *Server) sendFailed(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(email.Response{
		Success: false,
		Message: sendFailedMessage,
		Error:   reason,
	})
}

// handleListMetrics returns the metric catalog.
func (s *Server) handleListMetrics(c *fiber.Ctx) error {
	metrics := catalog.ListMetrics()
	out := make([]MetricResponse, 0, len(metrics))
	for _, m := range metrics {
		controls := make(map[catalog.FilterKind]catalog.FilterOption, len(m.FilterKinds))
		for _, kind := range m.FilterKinds {
			if opt, ok := catalog.OptionFor(kind); ok {
				controls[kind] = opt
			}
		}
		out = append(out, MetricResponse{
			Metric:   m,
			DataType: catalog.DataTypeFor(m.ID),
			Chart:    aggregate.RecommendChartKind(m.ID),
			Controls: controls,
		})
	}
	return c.JSON(out)
}

// handleListReports returns all saved report definitions, oldest first.
func (s *Server) handleListReports(c *fiber.Ctx) error {
	reports, err := s.repo.List(c.UserContext())
	if err != nil {
		s.logger.Error("failed to list reports", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list reports"})
	}

	return c.JSON(ReportListResponse{
		Count:   len(reports),
		Reports: reports,
	})
}

// handleGetReport returns one saved report definition.
func (s *Server) handleGetReport(c *fiber.Ctx) error {
	report, err := s.lookupReport(c)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

// handleReportChart regenerates data for a saved report and renders its
// charts as HTML. The optional "kind" query parameter overrides the chart
// kind for every metric.
func (s *Server) handleReportChart(c *fiber.Ctx) error {
	report, err := s.lookupReport(c)
	if err != nil {
		return err
	}

	var kind aggregate.ChartKind
	if raw := c.Query("kind"); raw != "" {
		k, ok := aggregate.ParseChartKind(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unknown chart kind: " + raw})
		}
		kind = k
	}

	metrics := make([]catalog.Metric, 0, len(report.MetricIDs))
	for _, id := range report.MetricIDs {
		if m, ok := catalog.Lookup(id); ok {
			metrics = append(metrics, m)
		}
	}

	// Synthesizers own their random source, so each request gets its own.
	ds := filter.Apply(synth.New().Synthesize(metrics, chartRecordCount(report.RecordCount)), report.Filters)

	var buf bytes.Buffer
	if err := chartrender.Page(&buf, report.Name, chartrender.NewCharts(ds, metrics, kind)); err != nil {
		s.logger.Error("failed to render chart", "report_id", report.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to render chart"})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// chartRecordCount bounds a stored record count the same way the session
// does. Rows written by other tools may hold anything.
func chartRecordCount(n int) int {
	return min(max(n, session.MinRecordCount), session.MaxRecordCount)
}

// lookupReport loads the report named by the :id route parameter, writing
// the error response itself when it cannot.
func (s *Server) lookupReport(c *fiber.Ctx) (*storage.Report, error) {
	id := c.Params("id")
	if id == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	report, err := s.repo.Get(c.UserContext(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "report not found"})
		}
		s.logger.Error("failed to get report", "id", id, "error", err)
		return nil, c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to get report"})
	}
	return report, nil
}
