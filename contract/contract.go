//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"rental-chat/domain"
	"rental-chat/domain/chat"
	"rental-chat/domain/notification"
	"time"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// It is only used to label logs during supervision.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// UserDirectory is the external identity service. Read only.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (domain.Participant, error)
}

// ContextDirectory resolves listing labels. A missing product or booking
// is reported with found=false, never as an error.
type ContextDirectory interface {
	GetProductTitle(ctx context.Context, productID string) (title string, found bool, err error)
	GetBookingNumber(ctx context.Context, bookingID string) (number string, found bool, err error)
}

// Sender delivers one rendered notification on one channel.
type Sender interface {
	Channel() notification.Channel
	Send(ctx context.Context, delivery notification.Delivery) (providerMessageID string, err error)
}

// PresenceStore keeps typing indicators. Entries are best effort.
type PresenceStore interface {
	Set(ctx context.Context, indicator chat.TypingIndicator) error
	List(ctx context.Context, chatID uuid.UUID) ([]chat.TypingIndicator, error)
	Purge(ctx context.Context, olderThan time.Time) (int, error)
}

// EventPublisher hands an event over to the fan-out side without waiting for it.
type EventPublisher interface {
	Publish(event notification.Event)
}

// Dispatcher runs one fan-out synchronously.
type Dispatcher interface {
	Dispatch(ctx context.Context, event notification.Event) notification.DispatchOutcome
	Redeliver(ctx context.Context, n notification.Notification, channel notification.Channel, try int) notification.ChannelResult
}

// ChatReader is the read side of the chat directory the fan-out needs.
type ChatReader interface {
	Get(id uuid.UUID) (chat.Chat, error)
}

// NotificationStore persists a notification before any channel is tried.
type NotificationStore interface {
	Save(n notification.Notification) error
}

// AttemptRecorder appends one delivery attempt to the delivery record.
type AttemptRecorder interface {
	Append(attempt notification.DeliveryAttempt) error
}
