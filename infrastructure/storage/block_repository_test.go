package storage

import (
	"testing"
	"time"

	"rental-chat/domain/chat"

	"github.com/stretchr/testify/require"
)

func TestBlockRepository_Block_Is_Mutual_And_Idempotent(t *testing.T) {
	req := require.New(t)
	repo := NewBlockRepository(openBadger(t), testLogger())

	// Given owner blocking renter
	created, err := repo.Block(chat.BlockRelation{BlockerID: "owner", BlockedID: "renter", Reason: "spam", CreatedAt: time.Now().UTC()})
	req.NoError(err)
	req.True(created)

	// When blocking again with another reason
	created, err = repo.Block(chat.BlockRelation{BlockerID: "owner", BlockedID: "renter", Reason: "again", CreatedAt: time.Now().UTC()})
	req.NoError(err)

	// Then nothing changes and both directions are blocked
	req.False(created)
	for _, pair := range [][2]string{{"owner", "renter"}, {"renter", "owner"}} {
		blocked, err := repo.IsBlocked(pair[0], pair[1])
		req.NoError(err)
		req.True(blocked)
	}
	relations, err := repo.ListBlockedBy("owner")
	req.NoError(err)
	req.Len(relations, 1)
	req.Equal("spam", relations[0].Reason)

	blocked, err := repo.IsBlocked("renter", "stranger")
	req.NoError(err)
	req.False(blocked)
}

func TestBlockRepository_Unblock(t *testing.T) {
	req := require.New(t)
	repo := NewBlockRepository(openBadger(t), testLogger())
	_, err := repo.Block(chat.BlockRelation{BlockerID: "owner", BlockedID: "renter", CreatedAt: time.Now().UTC()})
	req.NoError(err)

	// The blocked side has no relation of its own to remove
	removed, err := repo.Unblock("renter", "owner")
	req.NoError(err)
	req.False(removed)

	removed, err = repo.Unblock("owner", "renter")
	req.NoError(err)
	req.True(removed)

	blocked, err := repo.IsBlocked("renter", "owner")
	req.NoError(err)
	req.False(blocked)
}
