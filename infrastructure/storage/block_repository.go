//go:generate go run go.uber.org/mock/mockgen -source=block_repository.go -destination=../../mocks/mock_block_repository.go -package=mocks
package storage

import (
	"fmt"
	"log/slog"
	"rental-chat/domain/chat"
	"rental-chat/errors"

	"github.com/dgraph-io/badger/v4"
)

type IBlockRepository interface {
	Block(relation chat.BlockRelation) (bool, error)
	Unblock(blockerID, blockedID string) (bool, error)
	IsBlocked(userA, userB string) (bool, error)
	ListBlockedBy(blockerID string) ([]chat.BlockRelation, error)
}

type BlockRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBlockRepository(db *badger.DB, log *slog.Logger) *BlockRepository {
	return &BlockRepository{db: db, log: log}
}

func blockKey(blockerID, blockedID string) string {
	return fmt.Sprintf("block:%s:%s", keyPart(blockerID), keyPart(blockedID))
}

// Block stores the directional relation. An existing relation is kept as is
// and the call reports false.
func (r BlockRepository) Block(relation chat.BlockRelation) (bool, error) {
	var created bool
	err := update(r.db, func(txn *badger.Txn) error {
		created = false
		key := blockKey(relation.BlockerID, relation.BlockedID)
		_, err := txn.Get([]byte(key))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		created = true
		return setJSON(txn, key, relation)
	})
	if err != nil {
		return false, err
	}
	if created {
		r.log.Debug("User blocked", "blocker", relation.BlockerID, "blocked", relation.BlockedID)
	}
	return created, nil
}

func (r BlockRepository) Unblock(blockerID, blockedID string) (bool, error) {
	var removed bool
	err := update(r.db, func(txn *badger.Txn) error {
		removed = false
		key := []byte(blockKey(blockerID, blockedID))
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		removed = true
		return txn.Delete(key)
	})
	return removed, err
}

// IsBlocked is true when either user blocked the other.
func (r BlockRepository) IsBlocked(userA, userB string) (bool, error) {
	blocked := false
	err := r.db.View(func(txn *badger.Txn) error {
		for _, key := range []string{blockKey(userA, userB), blockKey(userB, userA)} {
			_, err := txn.Get([]byte(key))
			if err == nil {
				blocked = true
				return nil
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	return blocked, err
}

func (r BlockRepository) ListBlockedBy(blockerID string) ([]chat.BlockRelation, error) {
	var relations []chat.BlockRelation
	err := r.db.View(func(txn *badger.Txn) error {
		return scan(txn, fmt.Sprintf("block:%s:", keyPart(blockerID)), false, func(item *badger.Item) (bool, error) {
			var relation chat.BlockRelation
			if err := decode(item, &relation); err != nil {
				return false, err
			}
			relations = append(relations, relation)
			return true, nil
		})
	})
	return relations, err
}
