package services

import (
	"log/slog"
	"testing"
	"time"

	"rental-chat/infrastructure/storage"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type repositories struct {
	chats    *storage.ChatRepository
	messages *storage.MessageRepository
	blocks   *storage.BlockRepository
}

func newRepositories(t *testing.T) repositories {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return repositories{
		chats:    storage.NewChatRepository(db, log),
		messages: storage.NewMessageRepository(db, storage.NewMessageIndex(writer, log), log, 100),
		blocks:   storage.NewBlockRepository(db, log),
	}
}

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

// fixedClock moves forward by one second on every call.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}
