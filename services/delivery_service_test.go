package services

import (
	"testing"
	"time"

	"rental-chat/domain/notification"
	"rental-chat/errors"
	"rental-chat/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type deliveryFixture struct {
	notifications *mocks.MockINotificationRepository
	deliveries    *mocks.MockIDeliveryRepository
	inbox         *mocks.MockIInboxRepository
	service       *DeliveryService
}

func newDeliveryFixture(t *testing.T) deliveryFixture {
	ctrl := gomock.NewController(t)
	f := deliveryFixture{
		notifications: mocks.NewMockINotificationRepository(ctrl),
		deliveries:    mocks.NewMockIDeliveryRepository(ctrl),
		inbox:         mocks.NewMockIInboxRepository(ctrl),
	}
	f.service = NewDeliveryService(f.notifications, f.deliveries, f.inbox, 20, testLogger())
	return f
}

func TestDeliveryService_Deliveries_Report(t *testing.T) {
	req := require.New(t)
	f := newDeliveryFixture(t)
	now := time.Now().UTC()
	n := notification.Notification{ID: uuid.New(), RecipientID: "owner-1", Type: notification.MessageReceived,
		Channels: []notification.Channel{notification.Email, notification.Push}}

	// Given an email that succeeded on retry and a push that failed
	attempts := []notification.DeliveryAttempt{
		{ID: uuid.New(), NotificationID: n.ID, Channel: notification.Email, Outcome: notification.Timeout, Try: 1, AttemptedAt: now},
		{ID: uuid.New(), NotificationID: n.ID, Channel: notification.Push, Outcome: notification.Failure, Try: 1, AttemptedAt: now},
		{ID: uuid.New(), NotificationID: n.ID, Channel: notification.Email, Outcome: notification.Success, Try: 2, AttemptedAt: now.Add(time.Minute)},
	}
	f.notifications.EXPECT().Get(n.ID).Return(n, nil)
	f.deliveries.EXPECT().ByNotification(n.ID).Return(attempts, nil)

	// When the recipient reads the report
	report, err := f.service.Deliveries(n.ID, "owner-1")

	// Then the final outcome is per channel
	req.NoError(err)
	req.Len(report.Attempts, 3)
	req.Equal(notification.Success, report.Final[notification.Email].Outcome)
	req.Equal(notification.Failure, report.Final[notification.Push].Outcome)
	req.Equal(notification.StatusPartial, report.Status)
}

func TestDeliveryService_Deliveries_Other_User(t *testing.T) {
	f := newDeliveryFixture(t)
	n := notification.Notification{ID: uuid.New(), RecipientID: "owner-1"}
	f.notifications.EXPECT().Get(n.ID).Return(n, nil)

	_, err := f.service.Deliveries(n.ID, "guest-1")
	require.ErrorIs(t, err, errors.ErrAccessDenied)
}

func TestDeliveryService_Deliveries_Unknown(t *testing.T) {
	f := newDeliveryFixture(t)
	id := uuid.New()
	f.notifications.EXPECT().Get(id).Return(notification.Notification{}, errors.ErrNotificationMissing)

	_, err := f.service.Deliveries(id, "owner-1")
	require.ErrorIs(t, err, errors.ErrNotificationMissing)
}

func TestDeliveryService_Limits(t *testing.T) {
	req := require.New(t)
	f := newDeliveryFixture(t)

	// Given requests without limit, over the limit and under it
	f.inbox.EXPECT().List("owner-1", 20).Return(nil, nil).Times(2)
	f.notifications.EXPECT().ListByRecipient("owner-1", 5).Return(nil, nil)

	_, err := f.service.ListInbox("owner-1", 0)
	req.NoError(err)
	_, err = f.service.ListInbox("owner-1", 500)
	req.NoError(err)
	_, err = f.service.ListNotifications("owner-1", 5)
	req.NoError(err)

	// Then an empty user is rejected before any read
	_, err = f.service.ListInbox("", 5)
	req.ErrorIs(err, errors.ErrValidation)
}
