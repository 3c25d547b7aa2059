package storage

import (
	"sync"
	"testing"
	"time"

	"rental-chat/domain/chat"
	"rental-chat/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestChatRepository_FindOrCreate_Is_Idempotent_On_Normalized_Key(t *testing.T) {
	req := require.New(t)
	repo := NewChatRepository(openBadger(t), testLogger())
	now := time.Now().UTC()

	// Given a chat created by the renter
	first, created, err := repo.FindOrCreate(chat.NewPairKey("renter", "owner", chat.Context{BookingID: "BK250101ABC"}), "", now)
	req.NoError(err)
	req.True(created)

	// When the owner opens the same conversation with swapped participants
	second, created, err := repo.FindOrCreate(chat.NewPairKey("owner", "renter", chat.Context{BookingID: "BK250101ABC"}), "", now)
	req.NoError(err)

	// Then the same chat is returned and nothing new is created
	req.False(created)
	req.Equal(first.ID, second.ID)
}

func TestChatRepository_FindOrCreate_Context_Separates_Chats(t *testing.T) {
	req := require.New(t)
	repo := NewChatRepository(openBadger(t), testLogger())
	now := time.Now().UTC()

	byProduct, _, err := repo.FindOrCreate(chat.NewPairKey("a", "b", chat.Context{ProductID: "p1"}), "", now)
	req.NoError(err)
	byBooking, _, err := repo.FindOrCreate(chat.NewPairKey("a", "b", chat.Context{ProductID: "p1", BookingID: "bk"}), "", now)
	req.NoError(err)
	plain, _, err := repo.FindOrCreate(chat.NewPairKey("a", "b", chat.Context{}), "", now)
	req.NoError(err)

	req.NotEqual(byProduct.ID, byBooking.ID)
	req.NotEqual(byProduct.ID, plain.ID)
	req.NotEqual(byBooking.ID, plain.ID)
}

func TestChatRepository_FindOrCreate_Concurrent_Creates_Once(t *testing.T) {
	req := require.New(t)
	repo := NewChatRepository(openBadger(t), testLogger())
	key := chat.NewPairKey("renter", "owner", chat.Context{ProductID: "tent"})

	// Given many concurrent callers for the same key
	const callers = 20
	var wg sync.WaitGroup
	ids := make([]uuid.UUID, callers)
	creations := make([]bool, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, created, err := repo.FindOrCreate(key, "", time.Now().UTC())
			ids[i], creations[i], errs[i] = c.ID, created, err
		}(i)
	}
	wg.Wait()

	// Then all of them see the same chat and exactly one created it
	createdCount := 0
	for i := 0; i < callers; i++ {
		req.NoError(errs[i])
		req.Equal(ids[0], ids[i])
		if creations[i] {
			createdCount++
		}
	}
	req.Equal(1, createdCount)

	chats, err := repo.ListByUser("renter")
	req.NoError(err)
	req.Len(chats, 1)
}

func TestChatRepository_Get_Unknown_Chat(t *testing.T) {
	req := require.New(t)
	repo := NewChatRepository(openBadger(t), testLogger())

	_, err := repo.Get(uuid.New())
	req.ErrorIs(err, errors.ErrChatNotFound)

	_, err = repo.Update(uuid.New(), func(c *chat.Chat) error { return nil })
	req.ErrorIs(err, errors.ErrChatNotFound)
}

func TestChatRepository_ListByUser_Orders_By_Activity_And_Sums_Unread(t *testing.T) {
	req := require.New(t)
	repo := NewChatRepository(openBadger(t), testLogger())
	now := time.Now().UTC()

	older, _, err := repo.FindOrCreate(chat.NewPairKey("u1", "u2", chat.Context{}), "", now)
	req.NoError(err)
	newer, _, err := repo.FindOrCreate(chat.NewPairKey("u1", "u3", chat.Context{}), "", now)
	req.NoError(err)

	_, err = repo.Update(older.ID, func(c *chat.Chat) error {
		at := now.Add(time.Minute)
		c.LastMessageAt = &at
		c.UnreadCount["u1"] = 2
		return nil
	})
	req.NoError(err)
	_, err = repo.Update(newer.ID, func(c *chat.Chat) error {
		at := now.Add(time.Hour)
		c.LastMessageAt = &at
		c.UnreadCount["u1"] = 3
		return nil
	})
	req.NoError(err)

	chats, err := repo.ListByUser("u1")
	req.NoError(err)
	req.Len(chats, 2)
	req.Equal(newer.ID, chats[0].ID)
	req.Equal(older.ID, chats[1].ID)

	total, err := repo.UnreadTotal("u1")
	req.NoError(err)
	req.Equal(5, total)
}
