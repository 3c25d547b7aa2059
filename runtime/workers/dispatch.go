package workers

import (
	"context"
	"log/slog"

	"rental-chat/contract"
	"rental-chat/domain/notification"
)

var (
	_ contract.EventPublisher = (*EventQueue)(nil)
	_ contract.Worker         = (*DispatchWorker)(nil)
)

// EventQueue hands notification events from the write path to the dispatch
// workers. Publish never blocks: a full queue drops the event.
type EventQueue struct {
	events chan notification.Event
	log    *slog.Logger
}

func NewEventQueue(size int, log *slog.Logger) *EventQueue {
	return &EventQueue{events: make(chan notification.Event, size), log: log}
}

func (q *EventQueue) Publish(event notification.Event) {
	select {
	case q.events <- event:
	default:
		q.log.Warn("Notification queue full, dropping event",
			"event_id", event.ID, "type", event.Type, "chat_id", event.ChatID)
	}
}

func (q *EventQueue) Len() int { return len(q.events) }

func (q *EventQueue) Cap() int { return cap(q.events) }

// DispatchWorker is one consumer of the queue. Several of them run side by side.
type DispatchWorker struct {
	queue      *EventQueue
	dispatcher contract.Dispatcher
	log        *slog.Logger
}

func NewDispatchWorker(queue *EventQueue, dispatcher contract.Dispatcher, log *slog.Logger) *DispatchWorker {
	return &DispatchWorker{queue: queue, dispatcher: dispatcher, log: log}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping dispatch worker")
			return ctx.Err()
		case event := <-w.queue.events:
			outcome := w.dispatcher.Dispatch(ctx, event)
			w.log.Debug("Event dispatched", "event_id", event.ID, "type", event.Type,
				"status", outcome.Status(), "results", len(outcome.Results))
		}
	}
}
