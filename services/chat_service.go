package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rental-chat/contract"
	"rental-chat/domain/chat"
	"rental-chat/domain/notification"
	"rental-chat/errors"
	"rental-chat/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatService interface {
	FindOrCreate(ctx context.Context, cmd chat.FindOrCreateCommand) (chat.Chat, error)
	Get(chatID uuid.UUID, requesterID string) (chat.Chat, error)
	Archive(chatID uuid.UUID, requesterID string, archived bool) (chat.Chat, error)
	Block(chatID uuid.UUID, blockedBy, reason string) (chat.Chat, error)
	Unblock(chatID uuid.UUID, requesterID string) (chat.Chat, error)
	ListChats(userID string, includeArchived bool) ([]chat.Chat, error)
	UnreadTotal(userID string) (int, error)
}

// ChatService is the chat directory.
type ChatService struct {
	chats     storage.IChatRepository
	blocks    IBlockService
	listings  contract.ContextDirectory
	publisher contract.EventPublisher
	log       *slog.Logger
	now       func() time.Time
}

func NewChatService(chats storage.IChatRepository, blocks IBlockService, listings contract.ContextDirectory,
	publisher contract.EventPublisher, log *slog.Logger) *ChatService {
	return &ChatService{chats: chats, blocks: blocks, listings: listings, publisher: publisher, log: log, now: utcNow}
}

// FindOrCreate returns the single chat of a (pair, product, booking) key.
// A new chat is refused when the two users block each other; an existing
// one is still returned so its history stays readable.
func (s *ChatService) FindOrCreate(ctx context.Context, cmd chat.FindOrCreateCommand) (chat.Chat, error) {
	if err := validateStruct(cmd); err != nil {
		return chat.Chat{}, err
	}
	blocked, err := s.blocks.IsBlocked(cmd.ParticipantA, cmd.ParticipantB)
	if err != nil {
		return chat.Chat{}, err
	}
	if blocked {
		return s.existing(cmd)
	}
	subject := cmd.Subject
	if subject == "" {
		subject = s.subject(ctx, cmd)
	}
	c, created, err := s.chats.FindOrCreate(cmd.Key(), subject, s.now())
	if err != nil {
		return chat.Chat{}, err
	}
	if created {
		s.log.Info("Chat opened", "chat_id", c.ID, "product_id", c.ProductID, "booking_id", c.BookingID)
	}
	return c, nil
}

func (s *ChatService) existing(cmd chat.FindOrCreateCommand) (chat.Chat, error) {
	chats, err := s.chats.ListByUser(cmd.ParticipantA)
	if err != nil {
		return chat.Chat{}, err
	}
	key := cmd.Key()
	c, found := lo.Find(chats, func(c chat.Chat) bool { return c.Key() == key })
	if !found {
		return chat.Chat{}, fmt.Errorf("%w: %s and %s block each other", errors.ErrRecipientBlocked, cmd.ParticipantA, cmd.ParticipantB)
	}
	return c, nil
}

// subject labels the chat from its listing context. Lookup failures fall
// back to a generic label.
func (s *ChatService) subject(ctx context.Context, cmd chat.FindOrCreateCommand) string {
	if s.listings == nil {
		return ""
	}
	if cmd.BookingID != "" {
		number, found, err := s.listings.GetBookingNumber(ctx, cmd.BookingID)
		if err == nil && found {
			return fmt.Sprintf("Booking %s", number)
		}
		s.log.Debug("Booking label unavailable", "booking_id", cmd.BookingID, "error", err)
		return "Your booking"
	}
	if cmd.ProductID != "" {
		title, found, err := s.listings.GetProductTitle(ctx, cmd.ProductID)
		if err == nil && found {
			return title
		}
		s.log.Debug("Product label unavailable", "product_id", cmd.ProductID, "error", err)
		return "Your listing"
	}
	return ""
}

func (s *ChatService) Get(chatID uuid.UUID, requesterID string) (chat.Chat, error) {
	c, err := s.chats.Get(chatID)
	if err != nil {
		return chat.Chat{}, err
	}
	if !c.HasParticipant(requesterID) {
		return chat.Chat{}, fmt.Errorf("%w: %s is not a participant of %s", errors.ErrAccessDenied, requesterID, chatID)
	}
	return c, nil
}

// Archive hides the chat for the requester only.
func (s *ChatService) Archive(chatID uuid.UUID, requesterID string, archived bool) (chat.Chat, error) {
	return s.chats.Update(chatID, func(c *chat.Chat) error {
		if !c.HasParticipant(requesterID) {
			return fmt.Errorf("%w: %s is not a participant of %s", errors.ErrAccessDenied, requesterID, chatID)
		}
		if c.Archived == nil {
			c.Archived = map[string]bool{}
		}
		c.Archived[requesterID] = archived
		c.UpdatedAt = s.now()
		return nil
	})
}

// Block flags the chat and records a block relation toward the counterpart.
// The counterpart gets an in-app notice.
func (s *ChatService) Block(chatID uuid.UUID, blockedBy, reason string) (chat.Chat, error) {
	c, err := s.Get(chatID, blockedBy)
	if err != nil {
		return chat.Chat{}, err
	}
	counterpart := c.Counterpart(blockedBy)
	if err = s.blocks.Block(blockedBy, counterpart, reason); err != nil {
		return chat.Chat{}, err
	}
	wasBlocked := c.IsBlocked
	c, err = s.chats.Update(chatID, func(c *chat.Chat) error {
		if c.IsBlocked {
			return nil
		}
		at := s.now()
		c.IsBlocked = true
		c.BlockedBy = blockedBy
		c.BlockedAt = &at
		c.UpdatedAt = at
		return nil
	})
	if err != nil {
		return chat.Chat{}, err
	}
	if !wasBlocked {
		s.publisher.Publish(notification.Event{
			ID:         uuid.New(),
			Type:       notification.ChatBlocked,
			ChatID:     chatID,
			SenderID:   blockedBy,
			Recipients: []string{counterpart},
			Channels:   []notification.Channel{notification.InApp},
			OccurredAt: s.now(),
		})
	}
	return c, nil
}

// Unblock is reserved to the participant who blocked the chat.
func (s *ChatService) Unblock(chatID uuid.UUID, requesterID string) (chat.Chat, error) {
	c, err := s.Get(chatID, requesterID)
	if err != nil {
		return chat.Chat{}, err
	}
	if !c.IsBlocked {
		return c, nil
	}
	if c.BlockedBy != requesterID {
		return chat.Chat{}, fmt.Errorf("%w: only %s can unblock %s", errors.ErrAccessDenied, c.BlockedBy, chatID)
	}
	if err = s.blocks.Unblock(requesterID, c.Counterpart(requesterID)); err != nil {
		return chat.Chat{}, err
	}
	return s.chats.Update(chatID, func(c *chat.Chat) error {
		c.IsBlocked = false
		c.BlockedBy = ""
		c.BlockedAt = nil
		c.UpdatedAt = s.now()
		return nil
	})
}

func (s *ChatService) ListChats(userID string, includeArchived bool) ([]chat.Chat, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", errors.ErrValidation)
	}
	chats, err := s.chats.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if includeArchived {
		return chats, nil
	}
	return lo.Filter(chats, func(c chat.Chat, _ int) bool { return !c.IsArchivedFor(userID) }), nil
}

func (s *ChatService) UnreadTotal(userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", errors.ErrValidation)
	}
	return s.chats.UnreadTotal(userID)
}
