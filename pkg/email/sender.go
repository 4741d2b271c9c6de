package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// DefaultFrom is the sender used when none is configured.
const DefaultFrom = "Custom Reports <reports@example.com>"

// Attachment is a file attached to a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is an outgoing email.
type Message struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages through a mail provider and returns the
// provider's message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ErrMissingAPIKey is returned when a Resend sender is built without a key.
var ErrMissingAPIKey = errors.New("resend API key is required")

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
}

// NewResendSender creates a Sender backed by Resend.
func NewResendSender(apiKey string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &ResendSender{client: resend.NewClient(apiKey)}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	from := msg.From
	if from == "" {
		from = DefaultFrom
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Content:     a.Content,
		})
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to send email via Resend: %w", err)
	}
	return sent.Id, nil
}
