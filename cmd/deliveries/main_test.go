package main

import (
	"bytes"
	"testing"
	"time"

	"rental-chat/domain/notification"
	"rental-chat/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestQuery_Selects_Index(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIDeliveryRepository(ctrl)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	id := uuid.New()

	// Given each flag combination
	repository.EXPECT().ByNotification(id).Return(nil, nil)
	repository.EXPECT().ByRecipient("guest-1", now.Add(-time.Hour), now).Return(nil, nil)
	repository.EXPECT().Between(now.Add(-2*time.Hour), now).Return(nil, nil)

	// When querying
	_, err := query(repository, id.String(), "", time.Hour, now)
	req.NoError(err)
	_, err = query(repository, "", "guest-1", time.Hour, now)
	req.NoError(err)
	_, err = query(repository, "", "", 2*time.Hour, now)
	req.NoError(err)

	// Then an invalid id never reaches the repository
	_, err = query(repository, "not-a-uuid", "", time.Hour, now)
	req.Error(err)
}

func TestRender_Lists_Attempts(t *testing.T) {
	req := require.New(t)
	var out bytes.Buffer

	// Given a failed email then a successful retry
	notificationID := uuid.New()
	attempts := []notification.DeliveryAttempt{
		{ID: uuid.New(), NotificationID: notificationID, RecipientID: "owner-1", Channel: notification.Email,
			Outcome: notification.Failure, Error: "mailbox full", Try: 1, AttemptedAt: time.Now().UTC()},
		{ID: uuid.New(), NotificationID: notificationID, RecipientID: "owner-1", Channel: notification.Email,
			Outcome: notification.Success, ProviderMessageID: "mg-123", Try: 2, AttemptedAt: time.Now().UTC()},
	}

	// When rendering without colours
	render(&out, attempts, false)

	// Then both rows are printed
	req.Contains(out.String(), "mailbox full")
	req.Contains(out.String(), "mg-123")
	req.Contains(out.String(), "2 attempt(s)")
}
