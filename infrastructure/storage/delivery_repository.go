//go:generate go run go.uber.org/mock/mockgen -source=delivery_repository.go -destination=../../mocks/mock_delivery_repository.go -package=mocks
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

// IDeliveryRepository is the append-only attempt log.
type IDeliveryRepository interface {
	Append(attempt notification.DeliveryAttempt) error
	ByNotification(notificationID uuid.UUID) ([]notification.DeliveryAttempt, error)
	ByRecipient(recipientID string, from, to time.Time) ([]notification.DeliveryAttempt, error)
	Between(from, to time.Time) ([]notification.DeliveryAttempt, error)
	FinalOutcome(notificationID uuid.UUID) (map[notification.Channel]notification.DeliveryAttempt, error)
}

type DeliveryRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewDeliveryRepository(db *badger.DB, log *slog.Logger) *DeliveryRepository {
	return &DeliveryRepository{db: db, log: log}
}

func attemptKey(a notification.DeliveryAttempt) string {
	return fmt.Sprintf("attempt:%s:%019d:%s", a.NotificationID, a.AttemptedAt.UnixNano(), a.ID)
}

func attemptTimeKey(a notification.DeliveryAttempt) string {
	return fmt.Sprintf("attemptat:%019d:%s", a.AttemptedAt.UnixNano(), a.ID)
}

func attemptRecipientKey(a notification.DeliveryAttempt) string {
	return fmt.Sprintf("attemptrcpt:%s:%019d:%s", keyPart(a.RecipientID), a.AttemptedAt.UnixNano(), a.ID)
}

// Append never overwrites: a second write of the same attempt id is refused.
// The row is duplicated under the time and recipient indexes so each query
// is a single prefix scan.
func (r DeliveryRepository) Append(attempt notification.DeliveryAttempt) error {
	return update(r.db, func(txn *badger.Txn) error {
		key := attemptKey(attempt)
		if _, err := txn.Get([]byte(key)); err == nil {
			return fmt.Errorf("attempt %s already recorded", attempt.ID)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		for _, k := range []string{key, attemptTimeKey(attempt), attemptRecipientKey(attempt)} {
			if err := setJSON(txn, k, attempt); err != nil {
				return err
			}
		}
		return nil
	})
}

// ByNotification returns every attempt of a notification, oldest first.
func (r DeliveryRepository) ByNotification(notificationID uuid.UUID) ([]notification.DeliveryAttempt, error) {
	var attempts []notification.DeliveryAttempt
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, fmt.Sprintf("attempt:%s:", notificationID), false, func(item *badger.Item) (bool, error) {
			var a notification.DeliveryAttempt
			if err := decode(item, &a); err != nil {
				return false, err
			}
			attempts = append(attempts, a)
			return true, nil
		})
	})
	return attempts, err
}

func (r DeliveryRepository) ByRecipient(recipientID string, from, to time.Time) ([]notification.DeliveryAttempt, error) {
	return r.window(fmt.Sprintf("attemptrcpt:%s:", keyPart(recipientID)), from, to)
}

func (r DeliveryRepository) Between(from, to time.Time) ([]notification.DeliveryAttempt, error) {
	return r.window("attemptat:", from, to)
}

func (r DeliveryRepository) window(prefix string, from, to time.Time) ([]notification.DeliveryAttempt, error) {
	var attempts []notification.DeliveryAttempt
	err := r.db.View(func(txn *badger.Txn) error {
		return scanRange(txn, prefix, from, to, func(item *badger.Item) error {
			var a notification.DeliveryAttempt
			if err := decode(item, &a); err != nil {
				return err
			}
			attempts = append(attempts, a)
			return nil
		})
	})
	return attempts, err
}

// FinalOutcome is the latest terminal attempt per channel.
func (r DeliveryRepository) FinalOutcome(notificationID uuid.UUID) (map[notification.Channel]notification.DeliveryAttempt, error) {
	attempts, err := r.ByNotification(notificationID)
	if err != nil {
		return nil, err
	}
	return notification.FinalAttempts(attempts), nil
}
