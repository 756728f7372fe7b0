package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender for the given API key and from address.
// PRE: apiKey is a valid Resend API key; from is a valid sender address
// POST: Returns a ready-to-use sender
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send delivers msg via Resend.
// PRE: msg has a recipient and subject
// POST: Email is queued for delivery; returns the Resend message ID
func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend send failed: %w", err)
	}
	slog.Info("notify_event", "event", "resend_sent", "message_id", sent.Id, "to", msg.To)
	return sent.Id, nil
}
