package presence

import (
	"context"
	"sync"
	"time"

	"rental-chat/domain/chat"

	"github.com/google/uuid"
)

// MemoryStore keeps typing indicators in process. Stale entries stay until
// the next Purge; readers filter them by age.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]map[string]chat.TypingIndicator
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[uuid.UUID]map[string]chat.TypingIndicator)}
}

// Set is last-write-wins. Stopping to type removes the entry.
func (s *MemoryStore) Set(_ context.Context, indicator chat.TypingIndicator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, ok := s.entries[indicator.ChatID]
	if !indicator.IsTyping {
		if ok {
			delete(users, indicator.UserID)
			if len(users) == 0 {
				delete(s.entries, indicator.ChatID)
			}
		}
		return nil
	}
	if !ok {
		users = make(map[string]chat.TypingIndicator)
		s.entries[indicator.ChatID] = users
	}
	users[indicator.UserID] = indicator
	return nil
}

func (s *MemoryStore) List(_ context.Context, chatID uuid.UUID) ([]chat.TypingIndicator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	indicators := make([]chat.TypingIndicator, 0, len(s.entries[chatID]))
	for _, indicator := range s.entries[chatID] {
		indicators = append(indicators, indicator)
	}
	return indicators, nil
}

// Purge drops entries last updated before olderThan and reports how many went away.
func (s *MemoryStore) Purge(_ context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for chatID, users := range s.entries {
		for userID, indicator := range users {
			if indicator.UpdatedAt.Before(olderThan) {
				delete(users, userID)
				purged++
			}
		}
		if len(users) == 0 {
			delete(s.entries, chatID)
		}
	}
	return purged, nil
}
