// Package notification holds the fan-out vocabulary: events, per-recipient
// notifications and the append-only delivery attempt log.
package notification

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	MessageReceived Type = "MESSAGE_RECEIVED"
	ChatBlocked     Type = "CHAT_BLOCKED"
)

type Channel string

const (
	Email Channel = "email"
	Push  Channel = "push"
	InApp Channel = "in_app"
)

var AllChannels = []Channel{Email, Push, InApp}

// Event triggers a dispatch. For MessageReceived the recipients are resolved
// from the chat; other types must list them explicitly.
type Event struct {
	ID         uuid.UUID
	Type       Type
	ChatID     uuid.UUID
	MessageID  uuid.UUID
	SenderID   string
	Recipients []string
	Variables  map[string]string
	Channels   []Channel
	Locale     string
	OccurredAt time.Time
}

// Notification is created once per (event, recipient).
// Variables and Locale are kept so a channel can be re-rendered on retry.
type Notification struct {
	ID          uuid.UUID
	EventID     uuid.UUID
	RecipientID string
	Type        Type
	Title       string
	Body        string
	Channels    []Channel
	Locale      string
	Variables   map[string]string
	CreatedAt   time.Time
}

type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
	Timeout Outcome = "timeout"
	Pending Outcome = "pending"
)

// IsTerminal is false only for pending placeholders written when the
// dispatch call gave up waiting on a still-running task.
func (o Outcome) IsTerminal() bool {
	return o != Pending
}

// DeliveryAttempt is immutable once written. Retries append new rows.
type DeliveryAttempt struct {
	ID                uuid.UUID
	NotificationID    uuid.UUID
	RecipientID       string
	Channel           Channel
	Outcome           Outcome
	ProviderMessageID string
	Error             string
	Try               int
	AttemptedAt       time.Time
}

// Delivery is what a channel sender receives.
type Delivery struct {
	NotificationID uuid.UUID
	Type           Type
	RecipientID    string
	DisplayName    string
	Email          string
	PushToken      string
	Subject        string
	Body           string
	Data           map[string]string
	CreatedAt      time.Time
}

// InboxEntry is what the in_app channel leaves for the recipient.
type InboxEntry struct {
	NotificationID uuid.UUID
	RecipientID    string
	Type           Type
	Title          string
	Body           string
	Data           map[string]string
	CreatedAt      time.Time
}
