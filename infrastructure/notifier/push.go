//go:generate go run go.uber.org/mock/mockgen -source=push.go -destination=../../mocks/mock_push_client.go -package=mocks
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"rental-chat/domain/notification"
	"rental-chat/errors"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

// PushClient is the part of the firebase messaging client the push channel uses.
type PushClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type PushSender struct {
	client PushClient
	log    *slog.Logger
}

func NewPushSender(client PushClient, log *slog.Logger) *PushSender {
	return &PushSender{client: client, log: log}
}

// NewFirebaseClient opens the messaging client from a service account file.
func NewFirebaseClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}
	return app.Messaging(ctx)
}

func (s *PushSender) Channel() notification.Channel {
	return notification.Push
}

func (s *PushSender) Send(ctx context.Context, delivery notification.Delivery) (string, error) {
	if delivery.PushToken == "" {
		return "", fmt.Errorf("%w: %s has no push token", errors.ErrMissingContact, delivery.RecipientID)
	}
	data := make(map[string]string, len(delivery.Data)+1)
	for k, v := range delivery.Data {
		data[k] = v
	}
	data["notification_id"] = delivery.NotificationID.String()

	id, err := s.client.Send(ctx, &messaging.Message{
		Token: delivery.PushToken,
		Notification: &messaging.Notification{
			Title: delivery.Subject,
			Body:  delivery.Body,
		},
		Data: data,
	})
	if err != nil {
		return "", fmt.Errorf("%w: fcm: %v", errors.ErrChannelDispatch, err)
	}
	s.log.Debug("Push accepted", "notification_id", delivery.NotificationID, "provider_id", id)
	return id, nil
}
