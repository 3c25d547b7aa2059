//go:generate go run go.uber.org/mock/mockgen -source=message_repository.go -destination=../../mocks/mock_message_repository.go -package=mocks
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"rental-chat/domain/chat"
	"rental-chat/errors"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// Transition receives the stored message and its chat and returns the new
// versions. Returning changed=false writes nothing.
type Transition func(m chat.Message, c chat.Chat) (chat.Message, chat.Chat, bool, error)

type IMessageRepository interface {
	Append(message chat.Message, preview string) (chat.Message, chat.Chat, error)
	Get(id uuid.UUID) (chat.Message, error)
	Apply(id uuid.UUID, transition Transition) (chat.Message, chat.Chat, error)
	MarkChatRead(chatID uuid.UUID, readerID string, at time.Time) (int, error)
	List(chatID uuid.UUID, before *uuid.UUID, limit int) ([]chat.Message, *uuid.UUID, error)
	Search(ctx context.Context, chatID uuid.UUID, query string, page, size int) ([]chat.Message, error)
	Count(chatID uuid.UUID) (int, error)
}

type MessageRepository struct {
	db            *badger.DB
	index         IMessageIndex
	log           *slog.Logger
	limitMessages int
}

func NewMessageRepository(db *badger.DB, index IMessageIndex, log *slog.Logger, limitMessages int) *MessageRepository {
	return &MessageRepository{db: db, index: index, log: log, limitMessages: limitMessages}
}

// Sequences are zero padded to 20 digits so that lexicographic key order
// matches numeric order for the whole uint64 range.
func messageKey(chatID uuid.UUID, sequence uint64) string {
	return fmt.Sprintf("msg:%s:%020d", chatID, sequence)
}

func messagePrefix(chatID uuid.UUID) string {
	return fmt.Sprintf("msg:%s:", chatID)
}

func messageIDKey(id uuid.UUID) string {
	return fmt.Sprintf("msgid:%s", id)
}

func sequenceKey(chatID uuid.UUID) string {
	return fmt.Sprintf("chatseq:%s", chatID)
}

// Append stores a new message and assigns its sequence.
// The per-chat counter, the message row and the chat summary are written in
// one serializable transaction, so concurrent senders of the same chat
// conflict on the counter and are replayed instead of sharing a number.
func (r MessageRepository) Append(message chat.Message, preview string) (chat.Message, chat.Chat, error) {
	var stored chat.Message
	var c chat.Chat
	err := update(r.db, func(txn *badger.Txn) error {
		stored = message
		c = chat.Chat{}
		if err := getJSON(txn, chatKey(message.ChatID), &c); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", errors.ErrChatNotFound, message.ChatID)
			}
			return err
		}
		if message.ReplyTo != nil {
			if err := r.checkReplyTo(txn, message.ChatID, *message.ReplyTo); err != nil {
				return err
			}
		}
		sequence, err := nextSequence(txn, message.ChatID)
		if err != nil {
			return err
		}
		stored.Sequence = sequence
		if err = setJSON(txn, messageKey(stored.ChatID, sequence), stored); err != nil {
			return err
		}
		pointer := fmt.Sprintf("%s:%d", stored.ChatID, sequence)
		if err = txn.Set([]byte(messageIDKey(stored.ID)), []byte(pointer)); err != nil {
			return err
		}

		at := stored.CreatedAt
		c.LastSequence = sequence
		c.LastMessagePreview = preview
		c.LastMessageAt = &at
		c.UpdatedAt = at
		if c.UnreadCount == nil {
			c.UnreadCount = map[string]int{}
		}
		for _, other := range c.Others(stored.SenderID) {
			c.UnreadCount[other]++
		}
		for p := range c.Archived {
			c.Archived[p] = false
		}
		return setJSON(txn, chatKey(c.ID), c)
	})
	if err != nil {
		return chat.Message{}, chat.Chat{}, err
	}
	if err = r.index.Index(stored); err != nil {
		r.log.Warn("Unable to index message", "message_id", stored.ID, "error", err)
	}
	return stored, c, nil
}

func (r MessageRepository) checkReplyTo(txn *badger.Txn, chatID, replyTo uuid.UUID) error {
	parent, err := loadByID(txn, replyTo)
	if err != nil {
		if errors.Is(err, errors.ErrMessageNotFound) {
			return fmt.Errorf("%w: reply-to message %s does not exist", errors.ErrValidation, replyTo)
		}
		return err
	}
	if parent.ChatID != chatID {
		return fmt.Errorf("%w: reply-to message %s belongs to another chat", errors.ErrValidation, replyTo)
	}
	return nil
}

func nextSequence(txn *badger.Txn, chatID uuid.UUID) (uint64, error) {
	var current uint64
	item, err := txn.Get([]byte(sequenceKey(chatID)))
	switch {
	case err == nil:
		err = item.Value(func(val []byte) error {
			current, err = strconv.ParseUint(string(val), 10, 64)
			return err
		})
		if err != nil {
			return 0, err
		}
	case !errors.Is(err, badger.ErrKeyNotFound):
		return 0, err
	}
	next := current + 1
	return next, txn.Set([]byte(sequenceKey(chatID)), []byte(strconv.FormatUint(next, 10)))
}

func loadByID(txn *badger.Txn, id uuid.UUID) (chat.Message, error) {
	item, err := txn.Get([]byte(messageIDKey(id)))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return chat.Message{}, fmt.Errorf("%w: %s", errors.ErrMessageNotFound, id)
		}
		return chat.Message{}, err
	}
	var pointer string
	if err = item.Value(func(val []byte) error {
		pointer = string(val)
		return nil
	}); err != nil {
		return chat.Message{}, err
	}
	chatID, sequence, err := parsePointer(pointer)
	if err != nil {
		return chat.Message{}, err
	}
	var m chat.Message
	if err = getJSON(txn, messageKey(chatID, sequence), &m); err != nil {
		return chat.Message{}, err
	}
	return m, nil
}

func parsePointer(pointer string) (uuid.UUID, uint64, error) {
	raw, seq, ok := strings.Cut(pointer, ":")
	if !ok {
		return uuid.Nil, 0, fmt.Errorf("malformed message pointer %q", pointer)
	}
	chatID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, 0, err
	}
	sequence, err := strconv.ParseUint(seq, 10, 64)
	if err != nil {
		return uuid.Nil, 0, err
	}
	return chatID, sequence, nil
}

// Get returns the stored message, deleted content included.
// Callers exposing it must use Redacted.
func (r MessageRepository) Get(id uuid.UUID) (chat.Message, error) {
	var m chat.Message
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		m, err = loadByID(txn, id)
		return err
	})
	return m, err
}

// Apply runs a state transition on a message and its chat atomically.
func (r MessageRepository) Apply(id uuid.UUID, transition Transition) (chat.Message, chat.Chat, error) {
	var m chat.Message
	var c chat.Chat
	var changed bool
	err := update(r.db, func(txn *badger.Txn) error {
		current, err := loadByID(txn, id)
		if err != nil {
			return err
		}
		var owner chat.Chat
		if err = getJSON(txn, chatKey(current.ChatID), &owner); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", errors.ErrChatNotFound, current.ChatID)
			}
			return err
		}
		m, c, changed, err = transition(current, owner)
		if err != nil || !changed {
			return err
		}
		if err = setJSON(txn, messageKey(m.ChatID, m.Sequence), m); err != nil {
			return err
		}
		return setJSON(txn, chatKey(c.ID), c)
	})
	if err != nil {
		return chat.Message{}, chat.Chat{}, err
	}
	if changed {
		if err = r.index.Index(m); err != nil {
			r.log.Warn("Unable to reindex message", "message_id", m.ID, "error", err)
		}
	}
	return m, c, nil
}

// MarkChatRead moves every live message of the other participants to read
// and resets the reader's unread counter. It returns how many messages changed.
func (r MessageRepository) MarkChatRead(chatID uuid.UUID, readerID string, at time.Time) (int, error) {
	var changed int
	err := update(r.db, func(txn *badger.Txn) error {
		changed = 0
		var c chat.Chat
		if err := getJSON(txn, chatKey(chatID), &c); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", errors.ErrChatNotFound, chatID)
			}
			return err
		}
		var updated []chat.Message
		err := scan(txn, messagePrefix(chatID), false, func(item *badger.Item) (bool, error) {
			var m chat.Message
			if err := decode(item, &m); err != nil {
				return false, err
			}
			if m.SenderID == readerID || m.IsDeleted {
				return true, nil
			}
			if next, ok := m.MarkRead(at); ok {
				updated = append(updated, next)
			}
			return true, nil
		})
		if err != nil {
			return err
		}
		for _, m := range updated {
			if err = setJSON(txn, messageKey(chatID, m.Sequence), m); err != nil {
				return err
			}
		}
		if c.UnreadCount == nil {
			c.UnreadCount = map[string]int{}
		}
		c.UnreadCount[readerID] = 0
		changed = len(updated)
		return setJSON(txn, chatKey(chatID), c)
	})
	return changed, err
}

// List pages a chat from the most recent message backwards.
// The cursor is a message id resolved to its sequence, so a page boundary
// never moves when newer messages are appended. Deleted messages are redacted.
func (r MessageRepository) List(chatID uuid.UUID, before *uuid.UUID, limit int) ([]chat.Message, *uuid.UUID, error) {
	if limit <= 0 || limit > r.limitMessages {
		limit = r.limitMessages
	}
	var messages []chat.Message
	more := false
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix(chatID))
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		var seekKey []byte
		switch before {
		case nil:
			seekKey = append(append([]byte{}, prefix...), 0xFF)
		default:
			cursor, err := loadByID(txn, *before)
			if err != nil {
				return err
			}
			if cursor.ChatID != chatID {
				return fmt.Errorf("%w: cursor %s belongs to another chat", errors.ErrValidation, *before)
			}
			if cursor.Sequence <= 1 {
				return nil
			}
			seekKey = []byte(messageKey(chatID, cursor.Sequence-1))
		}

		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == limit {
				more = true
				break
			}
			var m chat.Message
			if err := decode(it.Item(), &m); err != nil {
				return err
			}
			messages = append(messages, m.Redacted())
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if !more {
		return messages, nil, nil
	}
	next := messages[len(messages)-1].ID
	return messages, &next, nil
}

// Search matches live content only. Hits whose row was deleted after indexing
// are dropped on load.
func (r MessageRepository) Search(ctx context.Context, chatID uuid.UUID, query string, page, size int) ([]chat.Message, error) {
	if size <= 0 || size > r.limitMessages {
		size = r.limitMessages
	}
	ids, err := r.index.Search(ctx, chatID, query, page*size, size)
	if err != nil {
		return nil, err
	}
	var messages []chat.Message
	err = r.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			m, err := loadByID(txn, id)
			if errors.Is(err, errors.ErrMessageNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if m.IsDeleted || m.ChatID != chatID {
				continue
			}
			messages = append(messages, m)
		}
		return nil
	})
	return messages, err
}

func (r MessageRepository) Count(chatID uuid.UUID) (int, error) {
	count := 0
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		return scanKeys(txn, messagePrefix(chatID), opts, func() { count++ })
	})
	return count, err
}

func scanKeys(txn *badger.Txn, prefix string, opts badger.IteratorOptions, fn func()) error {
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()
	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		fn()
	}
	return nil
}
