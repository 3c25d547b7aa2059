package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rental-chat/contract"
	"rental-chat/domain"
	"rental-chat/errors"
	"rental-chat/infrastructure/grpc/codec"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

const directoryService = "rentalchat.DirectoryService"

var (
	_ contract.UserDirectory    = (*DirectoryClient)(nil)
	_ contract.ContextDirectory = (*DirectoryClient)(nil)
)

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

type UserResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PushToken   string `json:"push_token"`
	Locale      string `json:"locale"`
}

type GetProductRequest struct {
	ProductID string `json:"product_id"`
}

type ProductResponse struct {
	Title string `json:"title"`
}

type GetBookingRequest struct {
	BookingID string `json:"booking_id"`
}

type BookingResponse struct {
	Number string `json:"number"`
}

// DirectoryClient reads users, products and bookings from the marketplace
// directory service. Each call is bounded by timeout.
type DirectoryClient struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
	log     *slog.Logger
}

func NewDirectoryClient(conn grpc.ClientConnInterface, timeout time.Duration, log *slog.Logger) *DirectoryClient {
	return &DirectoryClient{conn: conn, timeout: timeout, log: log}
}

// Dial opens a plaintext connection negotiating the JSON codec.
func Dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(codec.Name)),
	)
}

func (c *DirectoryClient) invoke(ctx context.Context, method string, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.conn.Invoke(ctx, "/"+directoryService+"/"+method, in, out, grpc.CallContentSubtype(codec.Name))
}

func (c *DirectoryClient) GetUser(ctx context.Context, userID string) (domain.Participant, error) {
	var res UserResponse
	if err := c.invoke(ctx, "GetUser", &GetUserRequest{UserID: userID}, &res); err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.Participant{}, fmt.Errorf("%w: %s", errors.ErrUnknownRecipient, userID)
		}
		return domain.Participant{}, err
	}
	return domain.Participant{
		ID:          res.ID,
		DisplayName: res.DisplayName,
		Email:       res.Email,
		PushToken:   res.PushToken,
		Locale:      res.Locale,
	}, nil
}

// GetProductTitle reports found=false when the directory does not know the product.
func (c *DirectoryClient) GetProductTitle(ctx context.Context, productID string) (string, bool, error) {
	var res ProductResponse
	err := c.invoke(ctx, "GetProduct", &GetProductRequest{ProductID: productID}, &res)
	return lookup(res.Title, err)
}

func (c *DirectoryClient) GetBookingNumber(ctx context.Context, bookingID string) (string, bool, error) {
	var res BookingResponse
	err := c.invoke(ctx, "GetBooking", &GetBookingRequest{BookingID: bookingID}, &res)
	return lookup(res.Number, err)
}

func lookup(value string, err error) (string, bool, error) {
	if status.Code(err) == codes.NotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, value != "", nil
}
