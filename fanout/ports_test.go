package fanout

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"rental-chat/domain"
	"rental-chat/domain/chat"
	"rental-chat/domain/notification"
	"rental-chat/mocks"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEngine_Dispatch_Store_Failures_Do_Not_Stop_Delivery(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	conversation := chat.Chat{ID: uuid.New(), Participants: [2]string{"owner", "renter"}}
	chats := mocks.NewMockChatReader(ctrl)
	notifications := mocks.NewMockNotificationStore(ctrl)
	deliveries := mocks.NewMockAttemptRecorder(ctrl)
	users := mocks.NewMockUserDirectory(ctrl)
	listings := mocks.NewMockContextDirectory(ctrl)
	email := mocks.NewMockSender(ctrl)

	// Given a chat reader and stores that reject every write
	chats.EXPECT().Get(conversation.ID).Return(conversation, nil).AnyTimes()
	listings.EXPECT().GetProductTitle(gomock.Any(), gomock.Any()).Return("", false, nil).AnyTimes()
	listings.EXPECT().GetBookingNumber(gomock.Any(), gomock.Any()).Return("", false, nil).AnyTimes()
	users.EXPECT().GetUser(gomock.Any(), "renter").Return(domain.Participant{ID: "renter", DisplayName: "Uma"}, nil).AnyTimes()
	users.EXPECT().GetUser(gomock.Any(), "owner").Return(domain.Participant{ID: "owner", DisplayName: "Olivia", Email: "olivia@example.com"}, nil).AnyTimes()
	notifications.EXPECT().Save(gomock.Any()).Return(fmt.Errorf("disk full"))
	deliveries.EXPECT().Append(gomock.Any()).DoAndReturn(func(a notification.DeliveryAttempt) error {
		req.Equal("owner", a.RecipientID)
		req.Equal(notification.Success, a.Outcome)
		return fmt.Errorf("disk full")
	})
	email.EXPECT().Channel().Return(notification.Email).AnyTimes()
	email.EXPECT().Send(gomock.Any(), gomock.Any()).Return("mailgun-1", nil)

	catalogue, err := DefaultCatalogue("en")
	req.NoError(err)
	enricher := NewChatEnricher(log, chats, users, listings, NewPreviewBuilder(nil, 100))
	engine := NewEngine(log, chats, notifications, deliveries, users, enricher, catalogue,
		Config{AttemptTimeout: time.Second, DispatchTimeout: 2 * time.Second, DefaultLocale: "en"}, email)

	// When dispatching a message event
	outcome := engine.Dispatch(context.Background(), notification.Event{
		ID:         uuid.New(),
		Type:       notification.MessageReceived,
		ChatID:     conversation.ID,
		MessageID:  uuid.New(),
		SenderID:   "renter",
		Variables:  map[string]string{"content": "Hi"},
		Channels:   []notification.Channel{notification.Email},
		OccurredAt: time.Now().UTC(),
	})

	// Then the owner is still reached by email
	req.Len(outcome.Results, 1)
	result, ok := outcome.Find("owner", notification.Email)
	req.True(ok)
	req.Equal(notification.Success, result.Outcome)
	req.Equal("mailgun-1", result.ProviderMessageID)
}
