package workers

import (
	"context"
	"testing"
	"time"

	"rental-chat/domain/notification"
	"rental-chat/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventQueue_DropsWhenFull(t *testing.T) {
	req := require.New(t)
	queue := NewEventQueue(2, testLogger())

	// When more events than the capacity are published
	for i := 0; i < 5; i++ {
		queue.Publish(notification.Event{ID: uuid.New(), Type: notification.MessageReceived})
	}

	// Then Publish returned every time and the extra events are gone
	req.Equal(2, queue.Len())
	req.Equal(2, queue.Cap())
}

func TestDispatchWorker_ConsumesQueue(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	dispatcher := mocks.NewMockDispatcher(ctrl)
	queue := NewEventQueue(10, testLogger())

	events := []notification.Event{
		{ID: uuid.New(), Type: notification.MessageReceived},
		{ID: uuid.New(), Type: notification.ChatBlocked},
	}
	seen := make(chan uuid.UUID, len(events))
	dispatcher.EXPECT().Dispatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e notification.Event) notification.DispatchOutcome {
			seen <- e.ID
			return notification.DispatchOutcome{EventID: e.ID}
		}).Times(len(events))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- NewDispatchWorker(queue, dispatcher, testLogger()).Run(ctx) }()

	for _, e := range events {
		queue.Publish(e)
	}
	for _, e := range events {
		select {
		case id := <-seen:
			req.Equal(e.ID, id)
		case <-time.After(time.Second):
			req.Fail("event not dispatched")
		}
	}

	cancel()
	req.ErrorIs(<-done, context.Canceled)
}
