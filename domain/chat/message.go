package chat

import (
	"fmt"
	"time"

	"rental-chat/errors"

	"github.com/google/uuid"
)

type Kind string

const (
	KindText   Kind = "text"
	KindImage  Kind = "image"
	KindFile   Kind = "file"
	KindSystem Kind = "system"
)

// ParseKind rejects anything outside the supported set instead of
// narrowing it to text.
func ParseKind(raw string) (Kind, error) {
	switch k := Kind(raw); k {
	case KindText, KindImage, KindFile, KindSystem:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unsupported message kind %q", errors.ErrValidation, raw)
	}
}

// DeliveryStatus is the message-level lifecycle, independent of notification delivery.
type DeliveryStatus string

const (
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
)

func (s DeliveryStatus) rank() int {
	switch s {
	case StatusDelivered:
		return 1
	case StatusRead:
		return 2
	default:
		return 0
	}
}

// Attachment is kept in the order it was sent.
type Attachment struct {
	URL  string `validate:"required,url"`
	Type string `validate:"required"`
	Name string `validate:"max=255"`
	Size int64  `validate:"gte=0"`
}

// Message is an entry of the append-only log of a chat.
type Message struct {
	ID            uuid.UUID
	ChatID        uuid.UUID
	SenderID      string
	Content       string
	Kind          Kind
	ReplyTo       *uuid.UUID
	Status        DeliveryStatus
	DeliveredAt   *time.Time
	ReadAt        *time.Time
	IsEdited      bool
	EditedContent string
	EditedAt      *time.Time
	IsDeleted     bool
	DeletedBy     string
	DeletedAt     *time.Time
	Attachments   []Attachment
	Sequence      uint64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MarkDelivered moves sent -> delivered. Any later state is left untouched.
func (m Message) MarkDelivered(at time.Time) (Message, bool) {
	if m.Status.rank() >= StatusDelivered.rank() {
		return m, false
	}
	m.Status = StatusDelivered
	m.DeliveredAt = &at
	m.UpdatedAt = at
	return m, true
}

// MarkRead moves the message to read, possibly skipping delivered.
// Calling it again keeps the first ReadAt.
func (m Message) MarkRead(at time.Time) (Message, bool) {
	if m.Status == StatusRead {
		return m, false
	}
	m.Status = StatusRead
	m.ReadAt = &at
	m.UpdatedAt = at
	return m, true
}

// Edit replaces the content. EditedContent keeps only the text being replaced.
func (m Message) Edit(editorID, content string, at time.Time) (Message, error) {
	if m.IsDeleted {
		return m, errors.ErrMessageDeleted
	}
	if m.SenderID != editorID {
		return m, fmt.Errorf("%w: only the sender can edit message %s", errors.ErrAccessDenied, m.ID)
	}
	m.EditedContent = m.Content
	m.Content = content
	m.IsEdited = true
	m.EditedAt = &at
	m.UpdatedAt = at
	return m, nil
}

// Delete is terminal; the row and its sequence survive.
func (m Message) Delete(deleterID string, at time.Time) (Message, error) {
	if m.IsDeleted {
		return m, errors.ErrMessageDeleted
	}
	if m.SenderID != deleterID {
		return m, fmt.Errorf("%w: only the sender can delete message %s", errors.ErrAccessDenied, m.ID)
	}
	m.IsDeleted = true
	m.DeletedBy = deleterID
	m.DeletedAt = &at
	m.UpdatedAt = at
	return m, nil
}

// Redacted is the read-API view: deleted messages keep ids, flags and
// sequence but lose their content.
func (m Message) Redacted() Message {
	if !m.IsDeleted {
		return m
	}
	m.Content = ""
	m.EditedContent = ""
	m.Attachments = nil
	return m
}
