//go:generate go run go.uber.org/mock/mockgen -source=chat_repository.go -destination=../../mocks/mock_chat_repository.go -package=mocks
package storage

import (
	"fmt"
	"log/slog"
	"rental-chat/domain/chat"
	"rental-chat/errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type IChatRepository interface {
	FindOrCreate(key chat.PairKey, subject string, now time.Time) (chat.Chat, bool, error)
	Get(id uuid.UUID) (chat.Chat, error)
	Update(id uuid.UUID, fn func(c *chat.Chat) error) (chat.Chat, error)
	ListByUser(userID string) ([]chat.Chat, error)
	UnreadTotal(userID string) (int, error)
}

type ChatRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChatRepository(db *badger.DB, log *slog.Logger) *ChatRepository {
	return &ChatRepository{db: db, log: log}
}

func chatKey(id uuid.UUID) string {
	return fmt.Sprintf("chat:%s", id)
}

func pairKey(key chat.PairKey) string {
	return fmt.Sprintf("chatkey:%s", key)
}

func userChatKey(userID string, chatID uuid.UUID) string {
	return fmt.Sprintf("userchat:%s:%s", keyPart(userID), chatID)
}

// FindOrCreate returns the chat registered under the normalized pair key.
// The pair key row is the uniqueness constraint: two writers racing on the
// same key conflict at commit and the loser re-reads the winner's chat.
// The boolean reports whether this call created the chat.
func (r ChatRepository) FindOrCreate(key chat.PairKey, subject string, now time.Time) (chat.Chat, bool, error) {
	var result chat.Chat
	var created bool
	err := update(r.db, func(txn *badger.Txn) error {
		created = false
		item, err := txn.Get([]byte(pairKey(key)))
		switch {
		case err == nil:
			var id uuid.UUID
			if err = item.Value(func(val []byte) error {
				id, err = uuid.ParseBytes(val)
				return err
			}); err != nil {
				return err
			}
			return getJSON(txn, chatKey(id), &result)
		case errors.Is(err, badger.ErrKeyNotFound):
		default:
			return err
		}

		c := chat.NewChat(key, subject, now)
		if err = txn.Set([]byte(pairKey(key)), []byte(c.ID.String())); err != nil {
			return err
		}
		if err = setJSON(txn, chatKey(c.ID), c); err != nil {
			return err
		}
		for _, p := range c.Participants {
			if err = txn.Set([]byte(userChatKey(p, c.ID)), []byte(c.ID.String())); err != nil {
				return err
			}
		}
		result = c
		created = true
		return nil
	})
	if err != nil {
		return chat.Chat{}, false, err
	}
	if created {
		r.log.Debug("Chat created", "chat_id", result.ID, "key", key.String())
	}
	return result, created, nil
}

func (r ChatRepository) Get(id uuid.UUID) (chat.Chat, error) {
	var c chat.Chat
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, chatKey(id), &c)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return chat.Chat{}, fmt.Errorf("%w: %s", errors.ErrChatNotFound, id)
	}
	return c, err
}

// Update applies fn to the stored chat inside a retried transaction.
func (r ChatRepository) Update(id uuid.UUID, fn func(c *chat.Chat) error) (chat.Chat, error) {
	var c chat.Chat
	err := update(r.db, func(txn *badger.Txn) error {
		c = chat.Chat{}
		if err := getJSON(txn, chatKey(id), &c); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", errors.ErrChatNotFound, id)
			}
			return err
		}
		if err := fn(&c); err != nil {
			return err
		}
		return setJSON(txn, chatKey(id), c)
	})
	if err != nil {
		return chat.Chat{}, err
	}
	return c, nil
}

// ListByUser returns the user's chats, most recently active first.
func (r ChatRepository) ListByUser(userID string) ([]chat.Chat, error) {
	var chats []chat.Chat
	prefix := fmt.Sprintf("userchat:%s:", keyPart(userID))
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, prefix, false, func(item *badger.Item) (bool, error) {
			id, err := uuid.Parse(string(item.Key()[len(prefix):]))
			if err != nil {
				return false, err
			}
			var c chat.Chat
			if err = getJSON(txn, chatKey(id), &c); err != nil {
				return false, err
			}
			chats = append(chats, c)
			return true, nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return lastActivity(chats[i]).After(lastActivity(chats[j]))
	})
	return chats, nil
}

func (r ChatRepository) UnreadTotal(userID string) (int, error) {
	chats, err := r.ListByUser(userID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, c := range chats {
		total += c.UnreadFor(userID)
	}
	return total, nil
}

func lastActivity(c chat.Chat) time.Time {
	if c.LastMessageAt != nil {
		return *c.LastMessageAt
	}
	return c.CreatedAt
}
