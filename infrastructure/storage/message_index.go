//go:generate go run go.uber.org/mock/mockgen -source=message_index.go -destination=../../mocks/mock_message_index.go -package=mocks
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"rental-chat/domain/chat"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
)

const (
	fieldContent  = "content"
	fieldChatID   = "chat_id"
	fieldSequence = "sequence"
)

// IMessageIndex is the full-text side of the message store.
// Only live messages are indexed.
type IMessageIndex interface {
	Index(message chat.Message) error
	Remove(messageID uuid.UUID) error
	Search(ctx context.Context, chatID uuid.UUID, query string, from, size int) ([]uuid.UUID, error)
}

type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

func (i MessageIndex) Index(message chat.Message) error {
	if message.IsDeleted {
		return i.Remove(message.ID)
	}
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField(fieldContent, message.Content)).
		AddField(bluge.NewKeywordField(fieldChatID, message.ChatID.String())).
		AddField(bluge.NewNumericField(fieldSequence, float64(message.Sequence)).StoreValue().Sortable())
	if err := i.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message %s: %w", message.ID, err)
	}
	return nil
}

func (i MessageIndex) Remove(messageID uuid.UUID) error {
	return i.writer.Delete(bluge.Identifier(messageID.String()))
}

// Search returns matching message ids of one chat, highest sequence first.
// Every query term must be present.
func (i MessageIndex) Search(ctx context.Context, chatID uuid.UUID, query string, from, size int) ([]uuid.UUID, error) {
	reader, err := i.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	q := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(query).SetField(fieldContent).SetOperator(bluge.MatchQueryOperatorAnd)).
		AddMust(bluge.NewTermQuery(chatID.String()).SetField(fieldChatID))
	request := bluge.NewTopNSearch(size, q).
		SetFrom(from).
		SortBy([]string{"-" + fieldSequence})

	iter, err := reader.Search(ctx, request)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	match, err := iter.Next()
	for err == nil && match != nil {
		var visitErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				id, parseErr := uuid.ParseBytes(value)
				if parseErr != nil {
					visitErr = parseErr
					return false
				}
				ids = append(ids, id)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = iter.Next()
	}
	if err != nil {
		return nil, err
	}
	i.log.Debug("Message search", "chat_id", chatID, "query", query, "hits", len(ids))
	return ids, nil
}
