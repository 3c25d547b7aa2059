//go:generate go run go.uber.org/mock/mockgen -source=notification_repository.go -destination=../../mocks/mock_notification_repository.go -package=mocks
package storage

import (
	"fmt"
	"log/slog"
	"rental-chat/domain/notification"
	"rental-chat/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

type INotificationRepository interface {
	Save(n notification.Notification) error
	Get(id uuid.UUID) (notification.Notification, error)
	ListByRecipient(recipientID string, limit int) ([]notification.Notification, error)
	ListCreatedBetween(from, to time.Time) ([]notification.Notification, error)
}

type NotificationRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewNotificationRepository(db *badger.DB, log *slog.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, log: log}
}

func notificationKey(id uuid.UUID) string {
	return fmt.Sprintf("notif:%s", id)
}

func notificationRecipientKey(n notification.Notification) string {
	return fmt.Sprintf("notifrcpt:%s:%019d:%s", keyPart(n.RecipientID), n.CreatedAt.UnixNano(), n.ID)
}

func notificationTimeKey(at time.Time, id uuid.UUID) string {
	return fmt.Sprintf("notifat:%019d:%s", at.UnixNano(), id)
}

// Save writes the notification and its recipient and time indexes.
func (r NotificationRepository) Save(n notification.Notification) error {
	return update(r.db, func(txn *badger.Txn) error {
		if err := setJSON(txn, notificationKey(n.ID), n); err != nil {
			return err
		}
		if err := txn.Set([]byte(notificationRecipientKey(n)), []byte(n.ID.String())); err != nil {
			return err
		}
		return txn.Set([]byte(notificationTimeKey(n.CreatedAt, n.ID)), []byte(n.ID.String()))
	})
}

func (r NotificationRepository) Get(id uuid.UUID) (notification.Notification, error) {
	var n notification.Notification
	err := r.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, notificationKey(id), &n)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return notification.Notification{}, fmt.Errorf("%w: %s", errors.ErrNotificationMissing, id)
	}
	return n, err
}

// ListByRecipient returns the newest notifications first.
func (r NotificationRepository) ListByRecipient(recipientID string, limit int) ([]notification.Notification, error) {
	var result []notification.Notification
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, fmt.Sprintf("notifrcpt:%s:", keyPart(recipientID)), true, func(item *badger.Item) (bool, error) {
			n, err := r.resolve(txn, item)
			if err != nil {
				return false, err
			}
			result = append(result, n)
			return limit <= 0 || len(result) < limit, nil
		})
	})
	return result, err
}

// ListCreatedBetween returns notifications created in [from, to), oldest first.
func (r NotificationRepository) ListCreatedBetween(from, to time.Time) ([]notification.Notification, error) {
	var result []notification.Notification
	err := r.db.View(func(txn *badger.Txn) error {
		return scanRange(txn, "notifat:", from, to, func(item *badger.Item) error {
			n, err := r.resolve(txn, item)
			if err != nil {
				return err
			}
			result = append(result, n)
			return nil
		})
	})
	return result, err
}

func (r NotificationRepository) resolve(txn *badger.Txn, item *badger.Item) (notification.Notification, error) {
	var n notification.Notification
	var id uuid.UUID
	err := item.Value(func(val []byte) error {
		var err error
		id, err = uuid.ParseBytes(val)
		return err
	})
	if err != nil {
		return n, err
	}
	err = getJSON(txn, notificationKey(id), &n)
	return n, err
}

// scanRange walks "{prefix}{unix_nano}:..." keys with a timestamp in [from, to).
func scanRange(txn *badger.Txn, prefix string, from, to time.Time, fn func(item *badger.Item) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	start := []byte(fmt.Sprintf("%s%019d", prefix, from.UnixNano()))
	end := fmt.Sprintf("%s%019d", prefix, to.UnixNano())
	for it.Seek(start); it.ValidForPrefix([]byte(prefix)); it.Next() {
		if string(it.Item().Key()) >= end {
			break
		}
		if err := fn(it.Item()); err != nil {
			return err
		}
	}
	return nil
}
