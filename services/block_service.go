package services

import (
	"fmt"
	"log/slog"
	"time"

	"rental-chat/domain/chat"
	"rental-chat/errors"
	"rental-chat/infrastructure/storage"
)

type IBlockService interface {
	IsBlocked(userA, userB string) (bool, error)
	Block(blockerID, blockedID, reason string) error
	Unblock(blockerID, blockedID string) error
	ListBlocked(blockerID string) ([]chat.BlockRelation, error)
}

type blockRequest struct {
	BlockerID string `validate:"required"`
	BlockedID string `validate:"required,nefield=BlockerID"`
	Reason    string `validate:"max=500"`
}

// BlockService is the block list guard. Relations are directional,
// checks are mutual.
type BlockService struct {
	blocks storage.IBlockRepository
	log    *slog.Logger
	now    func() time.Time
}

func NewBlockService(blocks storage.IBlockRepository, log *slog.Logger) *BlockService {
	return &BlockService{blocks: blocks, log: log, now: utcNow}
}

func (s *BlockService) IsBlocked(userA, userB string) (bool, error) {
	return s.blocks.IsBlocked(userA, userB)
}

// Block is an idempotent upsert: blocking twice keeps the first relation.
func (s *BlockService) Block(blockerID, blockedID, reason string) error {
	if err := validateStruct(blockRequest{BlockerID: blockerID, BlockedID: blockedID, Reason: reason}); err != nil {
		return err
	}
	created, err := s.blocks.Block(chat.BlockRelation{
		BlockerID: blockerID,
		BlockedID: blockedID,
		Reason:    reason,
		CreatedAt: s.now(),
	})
	if err != nil {
		return err
	}
	if created {
		s.log.Info("User blocked", "blocker", blockerID, "blocked", blockedID)
	}
	return nil
}

// Unblock lifts the relation the caller created. The blocked side cannot lift it.
func (s *BlockService) Unblock(blockerID, blockedID string) error {
	if err := validateStruct(blockRequest{BlockerID: blockerID, BlockedID: blockedID}); err != nil {
		return err
	}
	removed, err := s.blocks.Unblock(blockerID, blockedID)
	if err != nil {
		return err
	}
	if !removed {
		s.log.Debug("No block relation to lift", "blocker", blockerID, "blocked", blockedID)
		return nil
	}
	s.log.Info("User unblocked", "blocker", blockerID, "blocked", blockedID)
	return nil
}

func (s *BlockService) ListBlocked(blockerID string) ([]chat.BlockRelation, error) {
	if blockerID == "" {
		return nil, fmt.Errorf("%w: blocker id is required", errors.ErrValidation)
	}
	return s.blocks.ListBlockedBy(blockerID)
}
