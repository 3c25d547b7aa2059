package fanout

import (
	"context"
	"fmt"
	"log/slog"

	"rental-chat/contract"
	"rental-chat/domain/chat"
	"rental-chat/domain/notification"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	genericListing = "your listing"
	genericBooking = "your booking"
	genericSender  = "Someone"
)

// Enricher computes the template variables shared by all recipients of an event.
type Enricher interface {
	Enrich(ctx context.Context, event notification.Event) map[string]string
}

// ChatEnricher adds sender name, censored preview and listing labels.
// Directory failures degrade to generic labels.
type ChatEnricher struct {
	log      *slog.Logger
	chats    contract.ChatReader
	users    contract.UserDirectory
	listings contract.ContextDirectory
	preview  PreviewBuilder
}

func NewChatEnricher(log *slog.Logger, chats contract.ChatReader, users contract.UserDirectory,
	listings contract.ContextDirectory, preview PreviewBuilder) *ChatEnricher {
	return &ChatEnricher{log: log, chats: chats, users: users, listings: listings, preview: preview}
}

func (c *ChatEnricher) Enrich(ctx context.Context, event notification.Event) map[string]string {
	vars := lo.Assign(event.Variables)
	if event.ChatID != uuid.Nil {
		vars["chat_id"] = event.ChatID.String()
	}
	if event.MessageID != uuid.Nil {
		vars["message_id"] = event.MessageID.String()
	}
	if content, ok := vars["content"]; ok {
		vars["preview"] = c.preview.Build(content)
		delete(vars, "content")
	}
	if _, ok := vars["sender_name"]; !ok && event.SenderID != "" {
		vars["sender_name"] = c.senderName(ctx, event.SenderID)
	}
	if _, ok := vars["context_label"]; !ok {
		c.labels(ctx, event.ChatID, vars)
	}
	return vars
}

func (c *ChatEnricher) senderName(ctx context.Context, senderID string) string {
	sender, err := c.users.GetUser(ctx, senderID)
	if err != nil || sender.DisplayName == "" {
		if err != nil {
			c.log.Debug("Sender lookup failed", "sender_id", senderID, "error", err)
		}
		return genericSender
	}
	return sender.DisplayName
}

func (c *ChatEnricher) labels(ctx context.Context, chatID uuid.UUID, vars map[string]string) {
	vars["product_title"] = genericListing
	vars["booking_number"] = genericBooking
	vars["context_label"] = genericListing
	if chatID == uuid.Nil {
		return
	}
	conversation, err := c.chats.Get(chatID)
	if err != nil {
		c.log.Debug("Chat lookup failed", "chat_id", chatID, "error", err)
		return
	}
	product := c.productTitle(ctx, conversation)
	booking := c.bookingNumber(ctx, conversation)
	if product != "" {
		vars["product_title"] = product
		vars["context_label"] = product
	}
	if booking != "" {
		vars["booking_number"] = booking
		vars["context_label"] = fmt.Sprintf("booking %s", booking)
	}
	if conversation.Subject != "" {
		vars["subject"] = conversation.Subject
	}
}

func (c *ChatEnricher) productTitle(ctx context.Context, conversation chat.Chat) string {
	if conversation.ProductID == "" || c.listings == nil {
		return ""
	}
	title, found, err := c.listings.GetProductTitle(ctx, conversation.ProductID)
	if err != nil || !found {
		c.log.Debug("Product label unavailable", "product_id", conversation.ProductID, "error", err)
		return ""
	}
	return title
}

func (c *ChatEnricher) bookingNumber(ctx context.Context, conversation chat.Chat) string {
	if conversation.BookingID == "" || c.listings == nil {
		return ""
	}
	number, found, err := c.listings.GetBookingNumber(ctx, conversation.BookingID)
	if err != nil || !found {
		c.log.Debug("Booking label unavailable", "booking_id", conversation.BookingID, "error", err)
		return ""
	}
	return number
}
