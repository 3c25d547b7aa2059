package storage

import (
	"testing"
	"time"

	"rental-chat/domain/notification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestInboxRepository_Put_And_List(t *testing.T) {
	req := require.New(t)
	repo := NewInboxRepository(openBadger(t), testLogger())
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	// Given three entries for the owner and one for someone else
	var ids []uuid.UUID
	for i := range 3 {
		entry := notification.InboxEntry{
			NotificationID: uuid.New(),
			RecipientID:    "owner-1",
			Type:           notification.MessageReceived,
			Title:          "New message",
			CreatedAt:      start.Add(time.Duration(i) * time.Minute),
		}
		ids = append(ids, entry.NotificationID)
		req.NoError(repo.Put(entry))
	}
	req.NoError(repo.Put(notification.InboxEntry{NotificationID: uuid.New(), RecipientID: "owner-10", CreatedAt: start}))

	// When listing with a limit
	entries, err := repo.List("owner-1", 2)

	// Then the newest entries come first and the prefix does not leak
	req.NoError(err)
	req.Len(entries, 2)
	req.Equal(ids[2], entries[0].NotificationID)
	req.Equal(ids[1], entries[1].NotificationID)

	all, err := repo.List("owner-1", 0)
	req.NoError(err)
	req.Len(all, 3)
}

func TestInboxRepository_Put_Replaces_Retried_Entry(t *testing.T) {
	req := require.New(t)
	repo := NewInboxRepository(openBadger(t), testLogger())
	entry := notification.InboxEntry{
		NotificationID: uuid.New(),
		RecipientID:    "guest-1",
		Title:          "Booking confirmed",
		CreatedAt:      time.Now().UTC(),
	}

	// Given the same in_app delivery written twice
	req.NoError(repo.Put(entry))
	entry.Body = "BK250101ABC"
	req.NoError(repo.Put(entry))

	// Then the inbox keeps one entry with the latest body
	entries, err := repo.List("guest-1", 10)
	req.NoError(err)
	req.Len(entries, 1)
	req.Equal("BK250101ABC", entries[0].Body)
}
