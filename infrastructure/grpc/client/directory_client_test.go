package client

import (
	"context"
	"net"
	"testing"
	"time"

	"rental-chat/errors"
	"rental-chat/infrastructure/grpc/codec"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// fakeDirectory serves a fixed catalogue through an unknown-service handler,
// the way the real directory answers JSON calls.
type fakeDirectory struct {
	users    map[string]UserResponse
	products map[string]string
	bookings map[string]string
}

func (f fakeDirectory) handle(_ any, stream grpc.ServerStream) error {
	method, _ := grpc.MethodFromServerStream(stream)
	switch method {
	case "/" + directoryService + "/GetUser":
		var in GetUserRequest
		if err := stream.RecvMsg(&in); err != nil {
			return err
		}
		user, ok := f.users[in.UserID]
		if !ok {
			return status.Error(codes.NotFound, "no such user")
		}
		return stream.SendMsg(&user)
	case "/" + directoryService + "/GetProduct":
		var in GetProductRequest
		if err := stream.RecvMsg(&in); err != nil {
			return err
		}
		title, ok := f.products[in.ProductID]
		if !ok {
			return status.Error(codes.NotFound, "no such product")
		}
		return stream.SendMsg(&ProductResponse{Title: title})
	case "/" + directoryService + "/GetBooking":
		var in GetBookingRequest
		if err := stream.RecvMsg(&in); err != nil {
			return err
		}
		if in.BookingID == "broken" {
			return status.Error(codes.Unavailable, "directory down")
		}
		return stream.SendMsg(&BookingResponse{Number: f.bookings[in.BookingID]})
	default:
		return status.Error(codes.Unimplemented, method)
	}
}

func newDirectoryClient(t *testing.T) *DirectoryClient {
	t.Helper()
	fake := fakeDirectory{
		users:    map[string]UserResponse{"owner-1": {ID: "owner-1", DisplayName: "Camille", Email: "camille@example.com", Locale: "fr"}},
		products: map[string]string{"drill-7": "Cordless drill"},
		bookings: map[string]string{"booking-42": "BK250101ABC"},
	}
	listener := bufconn.Listen(1024 * 1024)
	s := grpc.NewServer(grpc.UnknownServiceHandler(fake.handle))
	go func() { _ = s.Serve(listener) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return listener.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codec.Name)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewDirectoryClient(conn, time.Second, logs.GetLoggerFromString("DEBUG"))
}

func TestDirectoryClient(t *testing.T) {
	client := newDirectoryClient(t)
	ctx := context.Background()

	t.Run("should resolve a user", func(t *testing.T) {
		req := require.New(t)
		user, err := client.GetUser(ctx, "owner-1")
		req.NoError(err)
		req.Equal("Camille", user.DisplayName)
		req.Equal("fr", user.Locale)
	})

	t.Run("should report unknown users", func(t *testing.T) {
		_, err := client.GetUser(ctx, "ghost")
		require.ErrorIs(t, err, errors.ErrUnknownRecipient)
	})

	t.Run("should resolve listing labels", func(t *testing.T) {
		req := require.New(t)
		title, found, err := client.GetProductTitle(ctx, "drill-7")
		req.NoError(err)
		req.True(found)
		req.Equal("Cordless drill", title)

		_, found, err = client.GetProductTitle(ctx, "unknown")
		req.NoError(err)
		req.False(found)

		number, found, err := client.GetBookingNumber(ctx, "booking-42")
		req.NoError(err)
		req.True(found)
		req.Equal("BK250101ABC", number)

		_, _, err = client.GetBookingNumber(ctx, "broken")
		req.Equal(codes.Unavailable, status.Code(err))
	})
}
