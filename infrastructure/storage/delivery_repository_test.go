package storage

import (
	"testing"
	"time"

	"rental-chat/domain/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func attempt(notificationID uuid.UUID, channel notification.Channel, outcome notification.Outcome, at time.Time) notification.DeliveryAttempt {
	return notification.DeliveryAttempt{
		ID:             uuid.New(),
		NotificationID: notificationID,
		RecipientID:    "owner",
		Channel:        channel,
		Outcome:        outcome,
		Try:            1,
		AttemptedAt:    at,
	}
}

func TestDeliveryRepository_Append_Only_And_Final_Outcome(t *testing.T) {
	req := require.New(t)
	repo := NewDeliveryRepository(openBadger(t), testLogger())
	id := uuid.New()
	start := time.Now().UTC()

	// Given push pending, then failed, then succeeded on retry; email succeeded at once
	attempts := []notification.DeliveryAttempt{
		attempt(id, notification.Email, notification.Success, start),
		attempt(id, notification.Push, notification.Pending, start.Add(time.Millisecond)),
		attempt(id, notification.Push, notification.Timeout, start.Add(2*time.Millisecond)),
		attempt(id, notification.Push, notification.Success, start.Add(time.Minute)),
	}
	for _, a := range attempts {
		req.NoError(repo.Append(a))
	}

	// When writing the same attempt twice
	err := repo.Append(attempts[0])

	// Then the log refuses to overwrite it
	req.Error(err)

	all, err := repo.ByNotification(id)
	req.NoError(err)
	req.Len(all, 4)
	req.Equal(notification.Pending, all[1].Outcome)

	final, err := repo.FinalOutcome(id)
	req.NoError(err)
	req.Len(final, 2)
	req.Equal(notification.Success, final[notification.Email].Outcome)
	req.Equal(notification.Success, final[notification.Push].Outcome)
	req.Equal(attempts[3].ID, final[notification.Push].ID)
}

func TestDeliveryRepository_Time_Window_And_Recipient(t *testing.T) {
	req := require.New(t)
	repo := NewDeliveryRepository(openBadger(t), testLogger())
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	early := attempt(uuid.New(), notification.Email, notification.Success, start)
	inside := attempt(uuid.New(), notification.Push, notification.Failure, start.Add(time.Hour))
	late := attempt(uuid.New(), notification.InApp, notification.Success, start.Add(3*time.Hour))
	late.RecipientID = "renter"
	for _, a := range []notification.DeliveryAttempt{early, inside, late} {
		req.NoError(repo.Append(a))
	}

	window, err := repo.Between(start.Add(time.Minute), start.Add(2*time.Hour))
	req.NoError(err)
	req.Len(window, 1)
	req.Equal(inside.ID, window[0].ID)

	owner, err := repo.ByRecipient("owner", start, start.Add(24*time.Hour))
	req.NoError(err)
	req.Len(owner, 2)
	req.Equal(early.ID, owner[0].ID)
	req.Equal(inside.ID, owner[1].ID)
}
