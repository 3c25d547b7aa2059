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
	"rental-chat/errors"
	"rental-chat/infrastructure/storage"
	"rental-chat/mocks"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type engineFixture struct {
	engine        *Engine
	chat          chat.Chat
	users         *mocks.MockUserDirectory
	listings      *mocks.MockContextDirectory
	email         *mocks.MockSender
	push          *mocks.MockSender
	deliveries    *storage.DeliveryRepository
	notifications *storage.NotificationRepository
}

func newEngineFixture(t *testing.T, config Config) engineFixture {
	t.Helper()
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	chats := storage.NewChatRepository(db, log)
	c, _, err := chats.FindOrCreate(chat.NewPairKey("renter", "owner", chat.Context{BookingID: "bk-1"}), "", time.Now().UTC())
	req.NoError(err)

	f := engineFixture{
		chat:          c,
		users:         mocks.NewMockUserDirectory(ctrl),
		listings:      mocks.NewMockContextDirectory(ctrl),
		email:         mocks.NewMockSender(ctrl),
		push:          mocks.NewMockSender(ctrl),
		deliveries:    storage.NewDeliveryRepository(db, log),
		notifications: storage.NewNotificationRepository(db, log),
	}
	f.email.EXPECT().Channel().Return(notification.Email).AnyTimes()
	f.push.EXPECT().Channel().Return(notification.Push).AnyTimes()
	f.listings.EXPECT().GetBookingNumber(gomock.Any(), "bk-1").Return("BK250101ABC", true, nil).AnyTimes()

	catalogue, err := DefaultCatalogue("en")
	req.NoError(err)
	enricher := NewChatEnricher(log, chats, f.users, f.listings, NewPreviewBuilder(nil, 100))
	f.engine = NewEngine(log, chats, f.notifications, f.deliveries, f.users, enricher, catalogue, config, f.email, f.push)
	return f
}

func (f engineFixture) knownUsers() {
	f.users.EXPECT().GetUser(gomock.Any(), "renter").Return(domain.Participant{ID: "renter", DisplayName: "Uma"}, nil).AnyTimes()
	f.users.EXPECT().GetUser(gomock.Any(), "owner").Return(domain.Participant{
		ID:          "owner",
		DisplayName: "Olivia",
		Email:       "olivia@example.com",
		PushToken:   "device-token",
		Locale:      "en",
	}, nil).AnyTimes()
}

func (f engineFixture) messageEvent(channels ...notification.Channel) notification.Event {
	return notification.Event{
		ID:         uuid.New(),
		Type:       notification.MessageReceived,
		ChatID:     f.chat.ID,
		MessageID:  uuid.New(),
		SenderID:   "renter",
		Variables:  map[string]string{"content": "Is this still available?"},
		Channels:   channels,
		OccurredAt: time.Now().UTC(),
	}
}

func TestEngine_Dispatch_Email_Success_Push_Timeout(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(t, Config{AttemptTimeout: 50 * time.Millisecond, DispatchTimeout: 2 * time.Second, DefaultLocale: "en"})
	f.knownUsers()

	// Given email accepting the message and push hanging past its timeout
	f.email.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, d notification.Delivery) (string, error) {
		req.Equal("olivia@example.com", d.Email)
		req.Equal("New message from Uma about booking BK250101ABC", d.Subject)
		req.Contains(d.Body, "Is this still available?")
		return "mailgun-1", nil
	})
	f.push.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ notification.Delivery) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	// When dispatching on email and push
	outcome := f.engine.Dispatch(context.Background(), f.messageEvent(notification.Email, notification.Push))

	// Then email succeeded and push timed out, for the owner only
	req.Len(outcome.Results, 2)
	email, ok := outcome.Find("owner", notification.Email)
	req.True(ok)
	req.Equal(notification.Success, email.Outcome)
	req.Equal("mailgun-1", email.ProviderMessageID)
	push, ok := outcome.Find("owner", notification.Push)
	req.True(ok)
	req.Equal(notification.Timeout, push.Outcome)
	req.Equal(notification.StatusPartial, outcome.Status())

	// And both attempts are in the delivery log
	attempts, err := f.deliveries.ByNotification(email.NotificationID)
	req.NoError(err)
	req.Len(attempts, 2)
	final := notification.FinalAttempts(attempts)
	req.Equal(notification.Success, final[notification.Email].Outcome)
	req.Equal(notification.Timeout, final[notification.Push].Outcome)

	n, err := f.notifications.Get(email.NotificationID)
	req.NoError(err)
	req.Equal("owner", n.RecipientID)
	req.Equal("New message from Uma", n.Title)
}

func TestEngine_Dispatch_Failure_Of_One_Channel_Does_Not_Affect_Other(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(t, Config{AttemptTimeout: time.Second, DispatchTimeout: 2 * time.Second, DefaultLocale: "en"})
	f.knownUsers()

	f.email.EXPECT().Send(gomock.Any(), gomock.Any()).Return("", fmt.Errorf("%w: mailgun down", errors.ErrChannelDispatch))
	f.push.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, notification.Delivery) (string, error) {
		panic("boom")
	})

	outcome := f.engine.Dispatch(context.Background(), f.messageEvent(notification.Email, notification.Push, notification.InApp))

	req.Len(outcome.Results, 3)
	email, _ := outcome.Find("owner", notification.Email)
	req.Equal(notification.Failure, email.Outcome)
	req.Contains(email.Error, "mailgun down")
	push, _ := outcome.Find("owner", notification.Push)
	req.Equal(notification.Failure, push.Outcome)
	inApp, _ := outcome.Find("owner", notification.InApp)
	req.Equal(notification.Failure, inApp.Outcome)
	req.Contains(inApp.Error, errors.ErrChannelUnavailable.Error())
	req.Equal(notification.StatusFailed, outcome.Status())
}

func TestEngine_Dispatch_Missing_Template_Is_Scoped_To_Channel(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(t, Config{AttemptTimeout: time.Second, DispatchTimeout: 2 * time.Second, DefaultLocale: "en"})
	f.knownUsers()

	// Given a chat blocked event: only push has no template for it
	f.email.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)
	f.push.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)
	event := notification.Event{
		ID:         uuid.New(),
		Type:       notification.ChatBlocked,
		ChatID:     f.chat.ID,
		SenderID:   "owner",
		Recipients: []string{"renter"},
		Channels:   []notification.Channel{notification.Push},
	}

	// When dispatching
	outcome := f.engine.Dispatch(context.Background(), event)

	// Then the push channel reports a render error and nothing is sent
	req.Len(outcome.Results, 1)
	req.Equal(notification.Failure, outcome.Results[0].Outcome)
	req.Contains(outcome.Results[0].Error, errors.ErrTemplateRender.Error())
}

func TestEngine_Dispatch_Outer_Timeout_Reports_Pending_Then_Records_Result(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(t, Config{AttemptTimeout: 2 * time.Second, DispatchTimeout: 50 * time.Millisecond, DefaultLocale: "en"})
	f.knownUsers()

	// Given a slow but successful push provider
	f.push.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, notification.Delivery) (string, error) {
		time.Sleep(300 * time.Millisecond)
		return "fcm-1", nil
	})

	// When the dispatch call gives up before the provider answers
	outcome := f.engine.Dispatch(context.Background(), f.messageEvent(notification.Push))

	// Then the caller sees pending
	req.Len(outcome.Results, 1)
	req.Equal(notification.Pending, outcome.Results[0].Outcome)
	req.Equal(notification.StatusPending, outcome.Status())

	// And the eventual success is appended after the pending row
	id := outcome.Results[0].NotificationID
	req.Eventually(func() bool {
		attempts, err := f.deliveries.ByNotification(id)
		return err == nil && len(attempts) == 2
	}, 2*time.Second, 20*time.Millisecond)
	final, err := f.deliveries.FinalOutcome(id)
	req.NoError(err)
	req.Equal(notification.Success, final[notification.Push].Outcome)
	req.Equal("fcm-1", final[notification.Push].ProviderMessageID)
}

func TestEngine_Dispatch_Unknown_Recipient_Is_Recorded(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(t, Config{AttemptTimeout: time.Second, DispatchTimeout: 2 * time.Second, DefaultLocale: "en"})
	f.users.EXPECT().GetUser(gomock.Any(), gomock.Any()).Return(domain.Participant{}, fmt.Errorf("directory unavailable")).AnyTimes()
	f.email.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)

	outcome := f.engine.Dispatch(context.Background(), f.messageEvent(notification.Email))

	req.Len(outcome.Results, 1)
	req.Equal(notification.Failure, outcome.Results[0].Outcome)
	req.Contains(outcome.Results[0].Error, errors.ErrUnknownRecipient.Error())

	attempts, err := f.deliveries.ByNotification(outcome.Results[0].NotificationID)
	req.NoError(err)
	req.Len(attempts, 1)
}

func TestEngine_Redeliver_Appends_New_Attempt(t *testing.T) {
	req := require.New(t)
	f := newEngineFixture(t, Config{AttemptTimeout: time.Second, DispatchTimeout: 2 * time.Second, DefaultLocale: "en"})
	f.knownUsers()

	gomock.InOrder(
		f.email.EXPECT().Send(gomock.Any(), gomock.Any()).Return("", fmt.Errorf("%w: 503", errors.ErrChannelDispatch)),
		f.email.EXPECT().Send(gomock.Any(), gomock.Any()).Return("mailgun-2", nil),
	)
	outcome := f.engine.Dispatch(context.Background(), f.messageEvent(notification.Email))
	id := outcome.Results[0].NotificationID
	n, err := f.notifications.Get(id)
	req.NoError(err)

	result := f.engine.Redeliver(context.Background(), n, notification.Email, 2)

	req.Equal(notification.Success, result.Outcome)
	attempts, err := f.deliveries.ByNotification(id)
	req.NoError(err)
	req.Len(attempts, 2)
	req.Equal(notification.Failure, attempts[0].Outcome)
	req.Equal(2, attempts[1].Try)
	req.Equal(notification.StatusDelivered, notification.Aggregate(attempts))
}
