package presence

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"rental-chat/domain/chat"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

// ValkeyStore shares typing indicators between several server instances.
// Each chat is one hash of user id -> last update in unix nanoseconds; the
// hash expires one TTL after its last write.
type ValkeyStore struct {
	client valkey.Client
	ttl    time.Duration
	log    *slog.Logger
}

func NewValkeyStore(client valkey.Client, ttl time.Duration, log *slog.Logger) *ValkeyStore {
	return &ValkeyStore{client: client, ttl: ttl, log: log}
}

func typingKey(chatID uuid.UUID) string {
	return fmt.Sprintf("typing:%s", chatID)
}

func (s *ValkeyStore) Set(ctx context.Context, indicator chat.TypingIndicator) error {
	key := typingKey(indicator.ChatID)
	if !indicator.IsTyping {
		return s.client.Do(ctx, s.client.B().Hdel().Key(key).Field(indicator.UserID).Build()).Error()
	}
	at := strconv.FormatInt(indicator.UpdatedAt.UnixNano(), 10)
	for _, result := range s.client.DoMulti(ctx,
		s.client.B().Hset().Key(key).FieldValue().FieldValue(indicator.UserID, at).Build(),
		s.client.B().Pexpire().Key(key).Milliseconds(s.ttl.Milliseconds()).Build(),
	) {
		if err := result.Error(); err != nil {
			return err
		}
	}
	return nil
}

func (s *ValkeyStore) List(ctx context.Context, chatID uuid.UUID) ([]chat.TypingIndicator, error) {
	fields, err := s.client.Do(ctx, s.client.B().Hgetall().Key(typingKey(chatID)).Build()).AsStrMap()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	return s.decode(chatID, fields), nil
}

func (s *ValkeyStore) decode(chatID uuid.UUID, fields map[string]string) []chat.TypingIndicator {
	indicators := make([]chat.TypingIndicator, 0, len(fields))
	for userID, raw := range fields {
		nanos, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.log.Warn("Skipping malformed typing entry", "chat_id", chatID, "user_id", userID, "error", err)
			continue
		}
		indicators = append(indicators, chat.TypingIndicator{
			ChatID:    chatID,
			UserID:    userID,
			IsTyping:  true,
			UpdatedAt: time.Unix(0, nanos).UTC(),
		})
	}
	return indicators
}

// Purge is left to key expiry.
func (s *ValkeyStore) Purge(context.Context, time.Time) (int, error) {
	return 0, nil
}
