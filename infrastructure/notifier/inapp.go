package notifier

import (
	"context"
	"log/slog"

	"rental-chat/domain/notification"
	"rental-chat/infrastructure/storage"
)

// InAppSender writes to the recipient's inbox. The inbox entry key doubles
// as the provider id.
type InAppSender struct {
	inbox storage.IInboxRepository
	log   *slog.Logger
}

func NewInAppSender(inbox storage.IInboxRepository, log *slog.Logger) *InAppSender {
	return &InAppSender{inbox: inbox, log: log}
}

func (s *InAppSender) Channel() notification.Channel {
	return notification.InApp
}

func (s *InAppSender) Send(ctx context.Context, delivery notification.Delivery) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	err := s.inbox.Put(notification.InboxEntry{
		NotificationID: delivery.NotificationID,
		RecipientID:    delivery.RecipientID,
		Type:           delivery.Type,
		Title:          delivery.Subject,
		Body:           delivery.Body,
		Data:           delivery.Data,
		CreatedAt:      delivery.CreatedAt,
	})
	if err != nil {
		return "", err
	}
	return "inbox:" + delivery.NotificationID.String(), nil
}
