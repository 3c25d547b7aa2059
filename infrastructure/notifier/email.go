//go:generate go run go.uber.org/mock/mockgen -source=email.go -destination=../../mocks/mock_mailer.go -package=mocks
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"rental-chat/domain/notification"
	"rental-chat/errors"

	"github.com/mailgun/mailgun-go/v4"
)

// Mailer is the part of the mailgun client the email channel uses.
type Mailer interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, message *mailgun.Message) (string, string, error)
}

type EmailSender struct {
	mailer Mailer
	from   string
	log    *slog.Logger
}

func NewEmailSender(mailer Mailer, from string, log *slog.Logger) *EmailSender {
	return &EmailSender{mailer: mailer, from: from, log: log}
}

func NewMailgunMailer(domain, apiKey string) Mailer {
	return mailgun.NewMailgun(domain, apiKey)
}

func (s *EmailSender) Channel() notification.Channel {
	return notification.Email
}

func (s *EmailSender) Send(ctx context.Context, delivery notification.Delivery) (string, error) {
	if delivery.Email == "" {
		return "", fmt.Errorf("%w: %s has no email", errors.ErrMissingContact, delivery.RecipientID)
	}
	message := s.mailer.NewMessage(s.from, delivery.Subject, delivery.Body, delivery.Email)
	if err := message.AddTag(string(delivery.Type)); err != nil {
		s.log.Debug("Tag rejected", "notification_id", delivery.NotificationID, "error", err)
	}
	if err := message.AddVariable("notification_id", delivery.NotificationID.String()); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrChannelDispatch, err)
	}

	_, id, err := s.mailer.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("%w: mailgun: %v", errors.ErrChannelDispatch, err)
	}
	s.log.Debug("Email accepted", "notification_id", delivery.NotificationID, "provider_id", id)
	return id, nil
}
