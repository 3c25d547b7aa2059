package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"rental-chat/contract"
	"rental-chat/domain/chat"
	"rental-chat/domain/mimetypes"
	"rental-chat/domain/notification"
	"rental-chat/errors"
	"rental-chat/fanout"
	"rental-chat/infrastructure/storage"

	"github.com/google/uuid"
)

const deletedPreview = "Message deleted"

type IMessageService interface {
	Send(ctx context.Context, cmd chat.SendMessageCommand) (chat.Message, error)
	MarkDelivered(messageID uuid.UUID, recipientID string) (chat.Message, error)
	MarkRead(messageID uuid.UUID, readerID string) (chat.Message, error)
	MarkChatRead(chatID uuid.UUID, readerID string) (int, error)
	Edit(cmd chat.EditMessageCommand) (chat.Message, error)
	SoftDelete(messageID uuid.UUID, deleterID string) (chat.Message, error)
	List(query chat.ListMessagesQuery) (chat.MessagePage, error)
	Search(ctx context.Context, query chat.SearchMessagesQuery) ([]chat.Message, error)
}

type MessageConfig struct {
	MaxContentLength int
	PreviewLength    int
	PageSize         int
}

// MessageService is the message store. A send is complete once the message
// row is committed; its notification is only handed to the publisher.
type MessageService struct {
	chats     storage.IChatRepository
	messages  storage.IMessageRepository
	blocks    IBlockService
	publisher contract.EventPublisher
	config    MessageConfig
	log       *slog.Logger
	now       func() time.Time
}

func NewMessageService(chats storage.IChatRepository, messages storage.IMessageRepository, blocks IBlockService,
	publisher contract.EventPublisher, config MessageConfig, log *slog.Logger) *MessageService {
	return &MessageService{
		chats:     chats,
		messages:  messages,
		blocks:    blocks,
		publisher: publisher,
		config:    config,
		log:       log,
		now:       utcNow,
	}
}

func (s *MessageService) Send(ctx context.Context, cmd chat.SendMessageCommand) (chat.Message, error) {
	if err := validateStruct(cmd); err != nil {
		return chat.Message{}, err
	}
	kind, err := chat.ParseKind(cmd.Kind)
	if err != nil {
		return chat.Message{}, err
	}
	content := strings.TrimSpace(cmd.Content)
	if err = s.checkContent(kind, content, cmd.Attachments); err != nil {
		return chat.Message{}, err
	}

	c, err := s.chats.Get(cmd.ChatID)
	if err != nil {
		return chat.Message{}, err
	}
	if !c.HasParticipant(cmd.SenderID) {
		return chat.Message{}, fmt.Errorf("%w: %s is not a participant of %s", errors.ErrAccessDenied, cmd.SenderID, cmd.ChatID)
	}
	if err = s.checkNotBlocked(c, cmd.SenderID); err != nil {
		return chat.Message{}, err
	}

	now := s.now()
	message, _, err := s.messages.Append(chat.Message{
		ID:          uuid.New(),
		ChatID:      cmd.ChatID,
		SenderID:    cmd.SenderID,
		Content:     content,
		Kind:        kind,
		ReplyTo:     cmd.ReplyTo,
		Status:      chat.StatusSent,
		Attachments: cmd.Attachments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, fanout.Truncate(previewSource(kind, content), s.config.PreviewLength))
	if err != nil {
		return chat.Message{}, err
	}
	s.log.Debug("Message stored", "chat_id", message.ChatID, "message_id", message.ID, "sequence", message.Sequence)

	if kind != chat.KindSystem {
		s.publisher.Publish(notification.Event{
			ID:         uuid.New(),
			Type:       notification.MessageReceived,
			ChatID:     message.ChatID,
			MessageID:  message.ID,
			SenderID:   message.SenderID,
			Variables:  map[string]string{"content": previewSource(kind, content)},
			OccurredAt: now,
		})
	}
	return message, nil
}

// checkNotBlocked runs before any write. A block registered after this
// check does not undo the send.
func (s *MessageService) checkNotBlocked(c chat.Chat, senderID string) error {
	if c.IsBlocked {
		return fmt.Errorf("%w: chat %s is blocked", errors.ErrRecipientBlocked, c.ID)
	}
	for _, other := range c.Others(senderID) {
		blocked, err := s.blocks.IsBlocked(senderID, other)
		if err != nil {
			return err
		}
		if blocked {
			return fmt.Errorf("%w: %s and %s block each other", errors.ErrRecipientBlocked, senderID, other)
		}
	}
	return nil
}

func (s *MessageService) checkContent(kind chat.Kind, content string, attachments []chat.Attachment) error {
	if s.config.MaxContentLength > 0 && utf8.RuneCountInString(content) > s.config.MaxContentLength {
		return fmt.Errorf("%w: content exceeds %d characters", errors.ErrValidation, s.config.MaxContentLength)
	}
	switch kind {
	case chat.KindText, chat.KindSystem:
		if content == "" {
			return fmt.Errorf("%w: empty content", errors.ErrValidation)
		}
	case chat.KindImage, chat.KindFile:
		if len(attachments) == 0 {
			return fmt.Errorf("%w: %s message without attachment", errors.ErrValidation, kind)
		}
	}
	for i, attachment := range attachments {
		mime := mimetypes.Normalize(attachment.Type)
		if mime == mimetypes.Unknown {
			return fmt.Errorf("%w: attachment %d has unsupported type %q", errors.ErrValidation, i, attachment.Type)
		}
		if kind == chat.KindImage && !mimetypes.IsImage(mime) {
			return fmt.Errorf("%w: attachment %d is not an image", errors.ErrValidation, i)
		}
	}
	return nil
}

func previewSource(kind chat.Kind, content string) string {
	if content != "" {
		return content
	}
	switch kind {
	case chat.KindImage:
		return "Sent a photo"
	case chat.KindFile:
		return "Sent a file"
	default:
		return ""
	}
}

// MarkDelivered is a no-op for the sender and for messages already delivered or read.
func (s *MessageService) MarkDelivered(messageID uuid.UUID, recipientID string) (chat.Message, error) {
	m, _, err := s.messages.Apply(messageID, func(m chat.Message, c chat.Chat) (chat.Message, chat.Chat, bool, error) {
		if !c.HasParticipant(recipientID) {
			return m, c, false, fmt.Errorf("%w: %s is not a participant of %s", errors.ErrAccessDenied, recipientID, c.ID)
		}
		if m.SenderID == recipientID {
			return m, c, false, nil
		}
		next, changed := m.MarkDelivered(s.now())
		return next, c, changed, nil
	})
	return m.Redacted(), err
}

// MarkRead keeps the first read timestamp. Reading a message lowers the
// reader's unread counter once.
func (s *MessageService) MarkRead(messageID uuid.UUID, readerID string) (chat.Message, error) {
	m, _, err := s.messages.Apply(messageID, func(m chat.Message, c chat.Chat) (chat.Message, chat.Chat, bool, error) {
		if !c.HasParticipant(readerID) {
			return m, c, false, fmt.Errorf("%w: %s is not a participant of %s", errors.ErrAccessDenied, readerID, c.ID)
		}
		if m.SenderID == readerID {
			return m, c, false, nil
		}
		next, changed := m.MarkRead(s.now())
		if changed && !m.IsDeleted {
			decrementUnread(&c, readerID)
		}
		return next, c, changed, nil
	})
	return m.Redacted(), err
}

func (s *MessageService) MarkChatRead(chatID uuid.UUID, readerID string) (int, error) {
	c, err := s.chats.Get(chatID)
	if err != nil {
		return 0, err
	}
	if !c.HasParticipant(readerID) {
		return 0, fmt.Errorf("%w: %s is not a participant of %s", errors.ErrAccessDenied, readerID, chatID)
	}
	return s.messages.MarkChatRead(chatID, readerID, s.now())
}

// Edit is reserved to the sender. The chat preview follows the edit when
// the message is the latest one.
func (s *MessageService) Edit(cmd chat.EditMessageCommand) (chat.Message, error) {
	if err := validateStruct(cmd); err != nil {
		return chat.Message{}, err
	}
	content := strings.TrimSpace(cmd.Content)
	if content == "" {
		return chat.Message{}, fmt.Errorf("%w: empty content", errors.ErrValidation)
	}
	if s.config.MaxContentLength > 0 && utf8.RuneCountInString(content) > s.config.MaxContentLength {
		return chat.Message{}, fmt.Errorf("%w: content exceeds %d characters", errors.ErrValidation, s.config.MaxContentLength)
	}
	m, _, err := s.messages.Apply(cmd.MessageID, func(m chat.Message, c chat.Chat) (chat.Message, chat.Chat, bool, error) {
		next, err := m.Edit(cmd.EditorID, content, s.now())
		if err != nil {
			return m, c, false, err
		}
		if next.Sequence == c.LastSequence {
			c.LastMessagePreview = fanout.Truncate(content, s.config.PreviewLength)
		}
		c.UpdatedAt = next.UpdatedAt
		return next, c, true, nil
	})
	if err != nil {
		return chat.Message{}, err
	}
	s.log.Debug("Message edited", "message_id", m.ID)
	return m, nil
}

// SoftDelete keeps the row and its sequence; only the content disappears.
func (s *MessageService) SoftDelete(messageID uuid.UUID, deleterID string) (chat.Message, error) {
	m, _, err := s.messages.Apply(messageID, func(m chat.Message, c chat.Chat) (chat.Message, chat.Chat, bool, error) {
		next, err := m.Delete(deleterID, s.now())
		if err != nil {
			return m, c, false, err
		}
		if next.Sequence == c.LastSequence {
			c.LastMessagePreview = deletedPreview
		}
		if next.Status != chat.StatusRead {
			for _, other := range c.Others(next.SenderID) {
				decrementUnread(&c, other)
			}
		}
		c.UpdatedAt = next.UpdatedAt
		return next, c, true, nil
	})
	if err != nil {
		return chat.Message{}, err
	}
	s.log.Debug("Message deleted", "message_id", m.ID, "deleted_by", deleterID)
	return m.Redacted(), nil
}

func (s *MessageService) List(query chat.ListMessagesQuery) (chat.MessagePage, error) {
	if err := validateStruct(query); err != nil {
		return chat.MessagePage{}, err
	}
	if err := s.checkAccess(query.ChatID, query.RequesterID); err != nil {
		return chat.MessagePage{}, err
	}
	limit := query.Limit
	if limit == 0 {
		limit = s.config.PageSize
	}
	messages, next, err := s.messages.List(query.ChatID, query.Before, limit)
	if err != nil {
		return chat.MessagePage{}, err
	}
	return chat.MessagePage{Messages: messages, NextCursor: next}, nil
}

func (s *MessageService) Search(ctx context.Context, query chat.SearchMessagesQuery) ([]chat.Message, error) {
	if err := validateStruct(query); err != nil {
		return nil, err
	}
	if err := s.checkAccess(query.ChatID, query.RequesterID); err != nil {
		return nil, err
	}
	return s.messages.Search(ctx, query.ChatID, query.Query, query.Page, s.config.PageSize)
}

func (s *MessageService) checkAccess(chatID uuid.UUID, requesterID string) error {
	c, err := s.chats.Get(chatID)
	if err != nil {
		return err
	}
	if !c.HasParticipant(requesterID) {
		return fmt.Errorf("%w: %s is not a participant of %s", errors.ErrAccessDenied, requesterID, chatID)
	}
	return nil
}

func decrementUnread(c *chat.Chat, userID string) {
	if c.UnreadCount == nil || c.UnreadCount[userID] == 0 {
		return
	}
	c.UnreadCount[userID]--
}
