package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rental-chat/contract"
	"rental-chat/domain/chat"
	"rental-chat/errors"
	"rental-chat/infrastructure/storage"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IPresenceService interface {
	SetTyping(ctx context.Context, chatID uuid.UUID, userID string, isTyping bool) error
	GetTypingUsers(ctx context.Context, chatID uuid.UUID, requesterID string) ([]string, error)
}

// PresenceService tracks who is typing. Indicators older than ttl are
// ignored on read even if the store still holds them.
type PresenceService struct {
	chats storage.IChatRepository
	store contract.PresenceStore
	ttl   time.Duration
	log   *slog.Logger
	now   func() time.Time
}

func NewPresenceService(chats storage.IChatRepository, store contract.PresenceStore, ttl time.Duration, log *slog.Logger) *PresenceService {
	return &PresenceService{chats: chats, store: store, ttl: ttl, log: log, now: utcNow}
}

// SetTyping is best effort: a store failure is logged, never returned.
func (s *PresenceService) SetTyping(ctx context.Context, chatID uuid.UUID, userID string, isTyping bool) error {
	if err := s.checkParticipant(chatID, userID); err != nil {
		return err
	}
	err := s.store.Set(ctx, chat.TypingIndicator{ChatID: chatID, UserID: userID, IsTyping: isTyping, UpdatedAt: s.now()})
	if err != nil {
		s.log.Warn("Unable to store typing indicator", "chat_id", chatID, "user_id", userID, "error", err)
	}
	return nil
}

// GetTypingUsers never reports the requester.
func (s *PresenceService) GetTypingUsers(ctx context.Context, chatID uuid.UUID, requesterID string) ([]string, error) {
	if err := s.checkParticipant(chatID, requesterID); err != nil {
		return nil, err
	}
	indicators, err := s.store.List(ctx, chatID)
	if err != nil {
		s.log.Warn("Unable to read typing indicators", "chat_id", chatID, "error", err)
		return []string{}, nil
	}
	now := s.now()
	return lo.FilterMap(indicators, func(t chat.TypingIndicator, _ int) (string, bool) {
		return t.UserID, t.UserID != requesterID && t.IsFresh(now, s.ttl)
	}), nil
}

func (s *PresenceService) checkParticipant(chatID uuid.UUID, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user", errors.ErrValidation)
	}
	c, err := s.chats.Get(chatID)
	if err != nil {
		return err
	}
	if !c.HasParticipant(userID) {
		return fmt.Errorf("%w: %s is not a participant of %s", errors.ErrAccessDenied, userID, chatID)
	}
	return nil
}
