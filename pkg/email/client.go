package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/papercomputeco/reportkit/pkg/logger"
)

const (
	// SendReportPath is the relay endpoint that accepts Requests.
	SendReportPath = "/api/send-report"

	// SimulatedMessage is the message of a simulated success.
	SimulatedMessage = "Email sent successfully (simulated)"

	defaultFailureMessage = "Failed to send email"
)

// Client posts report emails to a relay service.
type Client struct {
	relayURL          string
	httpClient        *http.Client
	simulateOnFailure bool
	logger            *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used to reach the relay.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithSimulateOnFailure makes Send report a simulated success when the relay
// cannot be reached or returns an unreadable body. A relay that answers
// success=false is still an error.
func WithSimulateOnFailure(simulate bool) ClientOption {
	return func(cl *Client) {
		cl.simulateOnFailure = simulate
	}
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) ClientOption {
	return func(cl *Client) {
		cl.logger = l
	}
}

// NewClient creates a relay client for the service at relayURL.
func NewClient(relayURL string, opts ...ClientOption) *Client {
	c := &Client{
		relayURL:   strings.TrimRight(relayURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers req to the relay. It makes exactly one attempt.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding send-report request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.relayURL+SendReportPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building send-report request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	c.logger.Debug("sending report email",
		"relay", c.relayURL,
		"report", req.ReportName,
		"bytes", len(req.CSVContent),
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.transportFailure(0, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return c.transportFailure(httpResp.StatusCode, err)
	}
	if !gjson.ValidBytes(raw) {
		return c.transportFailure(httpResp.StatusCode, fmt.Errorf("relay returned a non-JSON body (status %d)", httpResp.StatusCode))
	}

	parsed := gjson.ParseBytes(raw)
	resp := &Response{
		Success:   parsed.Get("success").Bool(),
		Message:   parsed.Get("message").String(),
		MessageID: parsed.Get("messageId").String(),
		Error:     parsed.Get("error").String(),
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = defaultFailureMessage
		}
		serviceErr := &ExternalServiceError{Message: msg, StatusCode: httpResp.StatusCode}
		if resp.Error != "" {
			serviceErr.Err = errors.New(resp.Error)
		}
		return resp, serviceErr
	}

	c.logger.Info("report email sent", "report", req.ReportName, "message_id", resp.MessageID)
	return resp, nil
}

func (c *Client) transportFailure(status int, err error) (*Response, error) {
	if c.simulateOnFailure {
		c.logger.Warn("relay unavailable, using simulated email response", "error", err)
		return &Response{
			Success:   true,
			Message:   SimulatedMessage,
			Simulated: true,
		}, nil
	}
	return nil, &ExternalServiceError{
		Message:    defaultFailureMessage,
		StatusCode: status,
		Err:        err,
	}
}
