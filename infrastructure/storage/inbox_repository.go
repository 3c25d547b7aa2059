//go:generate go run go.uber.org/mock/mockgen -source=inbox_repository.go -destination=../../mocks/mock_inbox_repository.go -package=mocks
package storage

import (
	"fmt"
	"log/slog"
	"rental-chat/domain/notification"

	"github.com/dgraph-io/badger/v4"
)

type IInboxRepository interface {
	Put(entry notification.InboxEntry) error
	List(recipientID string, limit int) ([]notification.InboxEntry, error)
}

type InboxRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewInboxRepository(db *badger.DB, log *slog.Logger) *InboxRepository {
	return &InboxRepository{db: db, log: log}
}

// Put is keyed by notification so a retried in_app delivery replaces the
// entry instead of duplicating it.
func (r InboxRepository) Put(entry notification.InboxEntry) error {
	key := fmt.Sprintf("inbox:%s:%019d:%s", keyPart(entry.RecipientID), entry.CreatedAt.UnixNano(), entry.NotificationID)
	return update(r.db, func(txn *badger.Txn) error {
		return setJSON(txn, key, entry)
	})
}

// List returns the newest entries first.
func (r InboxRepository) List(recipientID string, limit int) ([]notification.InboxEntry, error) {
	var entries []notification.InboxEntry
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, fmt.Sprintf("inbox:%s:", keyPart(recipientID)), true, func(item *badger.Item) (bool, error) {
			var entry notification.InboxEntry
			if err := decode(item, &entry); err != nil {
				return false, err
			}
			entries = append(entries, entry)
			return limit <= 0 || len(entries) < limit, nil
		})
	})
	return entries, err
}
