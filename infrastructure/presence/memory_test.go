package presence

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"rental-chat/domain/chat"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Set_Is_Last_Write_Wins(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore()
	chatID := uuid.New()
	now := time.Now().UTC()

	req.NoError(store.Set(ctx, chat.TypingIndicator{ChatID: chatID, UserID: "renter", IsTyping: true, UpdatedAt: now}))
	req.NoError(store.Set(ctx, chat.TypingIndicator{ChatID: chatID, UserID: "renter", IsTyping: true, UpdatedAt: now.Add(time.Second)}))

	indicators, err := store.List(ctx, chatID)
	req.NoError(err)
	req.Len(indicators, 1)
	req.Equal(now.Add(time.Second), indicators[0].UpdatedAt)

	// Stopping removes the entry
	req.NoError(store.Set(ctx, chat.TypingIndicator{ChatID: chatID, UserID: "renter", IsTyping: false, UpdatedAt: now.Add(2 * time.Second)}))
	indicators, err = store.List(ctx, chatID)
	req.NoError(err)
	req.Empty(indicators)
}

func TestMemoryStore_Purge_Removes_Stale_Entries(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := NewMemoryStore()
	chatID := uuid.New()
	now := time.Now().UTC()

	req.NoError(store.Set(ctx, chat.TypingIndicator{ChatID: chatID, UserID: "old", IsTyping: true, UpdatedAt: now.Add(-time.Minute)}))
	req.NoError(store.Set(ctx, chat.TypingIndicator{ChatID: chatID, UserID: "fresh", IsTyping: true, UpdatedAt: now}))

	purged, err := store.Purge(ctx, now.Add(-10*time.Second))
	req.NoError(err)
	req.Equal(1, purged)

	indicators, err := store.List(ctx, chatID)
	req.NoError(err)
	req.Len(indicators, 1)
	req.Equal("fresh", indicators[0].UserID)
}

func TestValkeyStore_Decode_Skips_Malformed_Entries(t *testing.T) {
	req := require.New(t)
	store := NewValkeyStore(nil, 10*time.Second, logs.GetLoggerFromLevel(slog.LevelDebug))
	chatID := uuid.New()
	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	indicators := store.decode(chatID, map[string]string{
		"renter": "1735725600000000000",
		"owner":  "not-a-number",
	})

	req.Len(indicators, 1)
	req.Equal("renter", indicators[0].UserID)
	req.True(indicators[0].IsTyping)
	req.True(at.Equal(indicators[0].UpdatedAt))
}
