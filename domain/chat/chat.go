// Package chat defines the conversation model shared by the chat directory,
// the message store and the presence tracker.
package chat

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Context scopes a chat to a marketplace product and/or booking.
type Context struct {
	ProductID string
	BookingID string
}

// PairKey is the normalized uniqueness key of a chat:
// at most one chat exists per (participant pair, product, booking).
type PairKey struct {
	First     string
	Second    string
	ProductID string
	BookingID string
}

// NewPairKey orders the participants so that (a, b) and (b, a) share the same key.
func NewPairKey(a, b string, ctx Context) PairKey {
	participants := []string{a, b}
	sort.Strings(participants)
	return PairKey{
		First:     participants[0],
		Second:    participants[1],
		ProductID: ctx.ProductID,
		BookingID: ctx.BookingID,
	}
}

// String length-prefixes every field, so two different keys never render
// the same even when ids contain separators.
func (k PairKey) String() string {
	var b strings.Builder
	for _, field := range []string{k.First, k.Second, k.ProductID, k.BookingID} {
		b.WriteString(strconv.Itoa(len(field)))
		b.WriteByte(':')
		b.WriteString(field)
	}
	return b.String()
}

// Chat is a durable two-party conversation.
type Chat struct {
	ID                 uuid.UUID
	Participants       [2]string
	ProductID          string
	BookingID          string
	Subject            string
	LastMessagePreview string
	LastMessageAt      *time.Time
	LastSequence       uint64
	UnreadCount        map[string]int
	Archived           map[string]bool
	IsBlocked          bool
	BlockedBy          string
	BlockedAt          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewChat builds a fresh chat for a normalized key.
func NewChat(key PairKey, subject string, now time.Time) Chat {
	return Chat{
		ID:           uuid.New(),
		Participants: [2]string{key.First, key.Second},
		ProductID:    key.ProductID,
		BookingID:    key.BookingID,
		Subject:      subject,
		UnreadCount:  map[string]int{key.First: 0, key.Second: 0},
		Archived:     map[string]bool{key.First: false, key.Second: false},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (c Chat) Key() PairKey {
	return NewPairKey(c.Participants[0], c.Participants[1], Context{ProductID: c.ProductID, BookingID: c.BookingID})
}

func (c Chat) HasParticipant(userID string) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// Counterpart returns the other participant, or "" when userID is not part of the chat.
func (c Chat) Counterpart(userID string) string {
	switch userID {
	case c.Participants[0]:
		return c.Participants[1]
	case c.Participants[1]:
		return c.Participants[0]
	default:
		return ""
	}
}

// Others lists every participant except userID.
func (c Chat) Others(userID string) []string {
	var others []string
	for _, p := range c.Participants {
		if p != userID {
			others = append(others, p)
		}
	}
	return others
}

func (c Chat) IsArchivedFor(userID string) bool {
	return c.Archived[userID]
}

func (c Chat) UnreadFor(userID string) int {
	return c.UnreadCount[userID]
}
