package chat

import (
	"github.com/google/uuid"
)

type FindOrCreateCommand struct {
	ParticipantA string `validate:"required"`
	ParticipantB string `validate:"required,nefield=ParticipantA"`
	ProductID    string
	BookingID    string
	Subject      string `validate:"max=200"`
}

func (c FindOrCreateCommand) Key() PairKey {
	return NewPairKey(c.ParticipantA, c.ParticipantB, Context{ProductID: c.ProductID, BookingID: c.BookingID})
}

type SendMessageCommand struct {
	ChatID      uuid.UUID `validate:"required"`
	SenderID    string    `validate:"required"`
	Content     string
	Kind        string       `validate:"required"`
	ReplyTo     *uuid.UUID   `validate:"omitempty"`
	Attachments []Attachment `validate:"max=10,dive"`
}

type EditMessageCommand struct {
	MessageID uuid.UUID `validate:"required"`
	EditorID  string    `validate:"required"`
	Content   string    `validate:"required"`
}

// ListMessagesQuery pages backwards from Before (exclusive), newest first.
type ListMessagesQuery struct {
	ChatID      uuid.UUID `validate:"required"`
	RequesterID string    `validate:"required"`
	Before      *uuid.UUID
	Limit       int `validate:"gte=0,lte=200"`
}

type SearchMessagesQuery struct {
	ChatID      uuid.UUID `validate:"required"`
	RequesterID string    `validate:"required"`
	Query       string    `validate:"required,max=256"`
	Page        int       `validate:"gte=0"`
}

// MessagePage is one page of a chat log. NextCursor is nil on the last page.
type MessagePage struct {
	Messages   []Message
	NextCursor *uuid.UUID
}
