package server

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"rental-chat/auth"
	"rental-chat/infrastructure/grpc/codec"
	"rental-chat/infrastructure/presence"
	"rental-chat/infrastructure/storage"
	"rental-chat/mocks"
	"rental-chat/services"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

type harness struct {
	client *MessagingClient
	tokens *auth.TokenManager
}

func newHarness(t *testing.T) harness {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })

	chats := storage.NewChatRepository(db, log)
	messages := storage.NewMessageRepository(db, storage.NewMessageIndex(writer, log), log, 50)
	blocks := services.NewBlockService(storage.NewBlockRepository(db, log), log)
	publisher := mocks.NewMockEventPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any()).AnyTimes()

	srv := NewMessagingServer(log,
		services.NewChatService(chats, blocks, nil, publisher, log),
		services.NewMessageService(chats, messages, blocks, publisher, services.MessageConfig{MaxContentLength: 2000, PreviewLength: 100, PageSize: 50}, log),
		blocks,
		services.NewPresenceService(chats, presence.NewMemoryStore(), 10*time.Second, log),
		services.NewDeliveryService(storage.NewNotificationRepository(db, log), storage.NewDeliveryRepository(db, log), storage.NewInboxRepository(db, log), 50, log),
	)

	tokens, err := auth.NewTokenManager("a-test-secret-long-enough")
	require.NoError(t, err)

	listener := bufconn.Listen(bufSize)
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(auth.UnaryInterceptor(tokens, PublicMethods...)))
	RegisterMessagingServer(s, srv)
	go func() { _ = s.Serve(listener) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return listener.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codec.Name)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return harness{client: NewMessagingClient(conn), tokens: tokens}
}

func (h harness) as(t *testing.T, userID string) context.Context {
	token, err := h.tokens.Generate(userID, nil, time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func TestMessagingServer_Conversation(t *testing.T) {
	req := require.New(t)
	h := newHarness(t)
	renter, owner := h.as(t, "renter-1"), h.as(t, "owner-1")

	// Given a chat opened by the renter
	var c ChatResponse
	req.NoError(h.client.Invoke(renter, "FindOrCreateChat", &FindOrCreateChatRequest{OtherUserID: "owner-1", ProductID: "drill-7", Subject: "Cordless drill"}, &c))
	req.ElementsMatch([]string{"owner-1", "renter-1"}, c.Participants)

	// When the renter writes and the owner reads
	var sent MessageResponse
	req.NoError(h.client.Invoke(renter, "SendMessage", &SendMessageRequest{ChatID: c.ID, Content: "Still available this weekend?"}, &sent))
	req.Equal(uint64(1), sent.Sequence)
	req.Equal("text", sent.Kind)

	var unread UnreadTotalResponse
	req.NoError(h.client.Invoke(owner, "UnreadTotal", &Empty{}, &unread))
	req.Equal(1, unread.Total)

	var read MessageResponse
	req.NoError(h.client.Invoke(owner, "MarkRead", &MessageRequest{MessageID: sent.ID}, &read))
	req.Equal("read", read.Status)
	req.NotNil(read.ReadAt)

	// Then the log and counters agree
	var page ListMessagesResponse
	req.NoError(h.client.Invoke(owner, "ListMessages", &ListMessagesRequest{ChatID: c.ID}, &page))
	req.Len(page.Messages, 1)
	req.Equal("Still available this weekend?", page.Messages[0].Content)
	req.NoError(h.client.Invoke(owner, "UnreadTotal", &Empty{}, &unread))
	req.Zero(unread.Total)

	var hits ListMessagesResponse
	req.NoError(h.client.Invoke(owner, "SearchMessages", &SearchMessagesRequest{ChatID: c.ID, Query: "weekend"}, &hits))
	req.Len(hits.Messages, 1)
}

func TestMessagingServer_Errors(t *testing.T) {
	h := newHarness(t)
	renter := h.as(t, "renter-1")

	t.Run("should serve health without a token", func(t *testing.T) {
		req := require.New(t)
		var health HealthResponse
		req.NoError(h.client.Invoke(context.Background(), "Health", &Empty{}, &health))
		req.Equal("SERVING", health.Status)
	})

	t.Run("should require a token", func(t *testing.T) {
		req := require.New(t)
		var c ChatResponse
		err := h.client.Invoke(context.Background(), "FindOrCreateChat", &FindOrCreateChatRequest{OtherUserID: "owner-1"}, &c)
		req.Equal(codes.Unauthenticated, status.Code(err))
	})

	t.Run("should map domain errors to grpc codes", func(t *testing.T) {
		req := require.New(t)
		var c ChatResponse
		req.NoError(h.client.Invoke(renter, "FindOrCreateChat", &FindOrCreateChatRequest{OtherUserID: "owner-1", Subject: "Tent"}, &c))

		var m MessageResponse
		err := h.client.Invoke(renter, "SendMessage", &SendMessageRequest{ChatID: "not-a-uuid", Content: "hi"}, &m)
		req.Equal(codes.InvalidArgument, status.Code(err))

		err = h.client.Invoke(renter, "SendMessage", &SendMessageRequest{ChatID: c.ID, Content: "hi", Kind: "video"}, &m)
		req.Equal(codes.InvalidArgument, status.Code(err))

		err = h.client.Invoke(h.as(t, "stranger"), "GetChat", &ChatRequest{ChatID: c.ID}, &c)
		req.Equal(codes.PermissionDenied, status.Code(err))

		var owner Empty
		req.NoError(h.client.Invoke(h.as(t, "owner-1"), "BlockUser", &BlockUserRequest{UserID: "renter-1"}, &owner))
		err = h.client.Invoke(renter, "SendMessage", &SendMessageRequest{ChatID: c.ID, Content: "hello?"}, &m)
		req.Equal(codes.FailedPrecondition, status.Code(err))

		var report DeliveriesResponse
		err = h.client.Invoke(renter, "GetDeliveries", &NotificationRequest{NotificationID: c.ID}, &report)
		req.Equal(codes.NotFound, status.Code(err))
	})
}
