package services

import (
	"fmt"
	"log/slog"

	"rental-chat/domain/notification"
	"rental-chat/errors"
	"rental-chat/infrastructure/storage"

	"github.com/google/uuid"
)

type IDeliveryService interface {
	ListInbox(userID string, limit int) ([]notification.InboxEntry, error)
	ListNotifications(userID string, limit int) ([]notification.Notification, error)
	Deliveries(notificationID uuid.UUID, requesterID string) (NotificationReport, error)
}

// NotificationReport is a notification with its delivery log and the
// per-channel final outcome.
type NotificationReport struct {
	Notification notification.Notification
	Attempts     []notification.DeliveryAttempt
	Final        map[notification.Channel]notification.DeliveryAttempt
	Status       notification.Status
}

// DeliveryService is the read side of the notification path. Users only
// see their own notifications.
type DeliveryService struct {
	notifications storage.INotificationRepository
	deliveries    storage.IDeliveryRepository
	inbox         storage.IInboxRepository
	limit         int
	log           *slog.Logger
}

func NewDeliveryService(notifications storage.INotificationRepository, deliveries storage.IDeliveryRepository,
	inbox storage.IInboxRepository, limit int, log *slog.Logger) *DeliveryService {
	return &DeliveryService{notifications: notifications, deliveries: deliveries, inbox: inbox, limit: limit, log: log}
}

func (s *DeliveryService) ListInbox(userID string, limit int) ([]notification.InboxEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", errors.ErrValidation)
	}
	return s.inbox.List(userID, s.bound(limit))
}

func (s *DeliveryService) ListNotifications(userID string, limit int) ([]notification.Notification, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", errors.ErrValidation)
	}
	return s.notifications.ListByRecipient(userID, s.bound(limit))
}

func (s *DeliveryService) Deliveries(notificationID uuid.UUID, requesterID string) (NotificationReport, error) {
	n, err := s.notifications.Get(notificationID)
	if err != nil {
		return NotificationReport{}, err
	}
	if n.RecipientID != requesterID {
		return NotificationReport{}, fmt.Errorf("%w: notification %s belongs to another user", errors.ErrAccessDenied, notificationID)
	}
	attempts, err := s.deliveries.ByNotification(notificationID)
	if err != nil {
		return NotificationReport{}, err
	}
	return NotificationReport{
		Notification: n,
		Attempts:     attempts,
		Final:        notification.FinalAttempts(attempts),
		Status:       notification.Aggregate(attempts),
	}, nil
}

func (s *DeliveryService) bound(limit int) int {
	if limit <= 0 || limit > s.limit {
		return s.limit
	}
	return limit
}
