package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"wealthline.backend/pkg/logger"
)

// Message is a single outgoing email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers transactional email (sign-in codes, password reset links).
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// emailSender is the slice of the Resend client the mailer needs.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer sends mail through the Resend API.
type ResendMailer struct {
	emails emailSender
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{emails: client.Emails, from: from}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	sent, err := m.emails.SendWithContext(ctx, params)
	if err != nil {
		logger.Error(ctx, "Resend send failed", zap.String("subject", msg.Subject), zap.Error(err))
		return fmt.Errorf("resend send failed: %w", err)
	}

	logger.Info(ctx, "Email sent", zap.String("message_id", sent.Id), zap.String("subject", msg.Subject))
	return nil
}

// LogMailer writes mail to the log. Used when no Resend key is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Info(ctx, "Email (not sent, mail disabled)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	return nil
}

// New picks the Resend mailer when an API key is present.
func New(apiKey, from string) Mailer {
	if apiKey == "" {
		return LogMailer{}
	}
	return NewResendMailer(apiKey, from)
}
