package chat

import (
	"time"

	"github.com/google/uuid"
)

// BlockRelation is stored in one direction but enforced both ways.
type BlockRelation struct {
	BlockerID string
	BlockedID string
	Reason    string
	CreatedAt time.Time
}

// TypingIndicator is ephemeral presence, never part of the chat history.
type TypingIndicator struct {
	ChatID    uuid.UUID
	UserID    string
	IsTyping  bool
	UpdatedAt time.Time
}

// IsFresh reports whether the indicator is still inside its TTL.
func (t TypingIndicator) IsFresh(now time.Time, ttl time.Duration) bool {
	return t.IsTyping && now.Sub(t.UpdatedAt) <= ttl
}
