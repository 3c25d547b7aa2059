package server

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"rental-chat/domain/chat"
	"rental-chat/domain/notification"
	"rental-chat/errors"
	"rental-chat/services"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type Empty struct{}

type HealthResponse struct {
	Status string `json:"status"`
}

type FindOrCreateChatRequest struct {
	OtherUserID string `json:"other_user_id"`
	ProductID   string `json:"product_id,omitempty"`
	BookingID   string `json:"booking_id,omitempty"`
	Subject     string `json:"subject,omitempty"`
}

type ChatRequest struct {
	ChatID string `json:"chat_id"`
}

type ListChatsRequest struct {
	IncludeArchived bool `json:"include_archived"`
}

type ArchiveChatRequest struct {
	ChatID   string `json:"chat_id"`
	Archived bool   `json:"archived"`
}

type BlockChatRequest struct {
	ChatID string `json:"chat_id"`
	Reason string `json:"reason,omitempty"`
}

type BlockUserRequest struct {
	UserID string `json:"user_id"`
	Reason string `json:"reason,omitempty"`
}

type UserRequest struct {
	UserID string `json:"user_id"`
}

type AttachmentDTO struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Size int64  `json:"size,omitempty"`
}

type SendMessageRequest struct {
	ChatID      string          `json:"chat_id"`
	Content     string          `json:"content"`
	Kind        string          `json:"kind"`
	ReplyTo     string          `json:"reply_to,omitempty"`
	Attachments []AttachmentDTO `json:"attachments,omitempty"`
}

type MessageRequest struct {
	MessageID string `json:"message_id"`
}

type EditMessageRequest struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
}

type ListMessagesRequest struct {
	ChatID string `json:"chat_id"`
	Before string `json:"before,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type SearchMessagesRequest struct {
	ChatID string `json:"chat_id"`
	Query  string `json:"query"`
	Page   int    `json:"page,omitempty"`
}

type SetTypingRequest struct {
	ChatID   string `json:"chat_id"`
	IsTyping bool   `json:"is_typing"`
}

type ListRequest struct {
	Limit int `json:"limit,omitempty"`
}

type NotificationRequest struct {
	NotificationID string `json:"notification_id"`
}

type ChatResponse struct {
	ID                 string     `json:"id"`
	Participants       []string   `json:"participants"`
	ProductID          string     `json:"product_id,omitempty"`
	BookingID          string     `json:"booking_id,omitempty"`
	Subject            string     `json:"subject"`
	LastMessagePreview string     `json:"last_message_preview,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	UnreadCount        int        `json:"unread_count"`
	Archived           bool       `json:"archived"`
	IsBlocked          bool       `json:"is_blocked"`
	BlockedBy          string     `json:"blocked_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type ListChatsResponse struct {
	Chats []ChatResponse `json:"chats"`
}

type MessageResponse struct {
	ID            string          `json:"id"`
	ChatID        string          `json:"chat_id"`
	SenderID      string          `json:"sender_id"`
	Content       string          `json:"content"`
	Kind          string          `json:"kind"`
	ReplyTo       string          `json:"reply_to,omitempty"`
	Status        string          `json:"status"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty"`
	ReadAt        *time.Time      `json:"read_at,omitempty"`
	IsEdited      bool            `json:"is_edited"`
	EditedContent string          `json:"edited_content,omitempty"`
	EditedAt      *time.Time      `json:"edited_at,omitempty"`
	IsDeleted     bool            `json:"is_deleted"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
	Attachments   []AttachmentDTO `json:"attachments,omitempty"`
	Sequence      uint64          `json:"sequence"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type ListMessagesResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

type MarkChatReadResponse struct {
	Updated int `json:"updated"`
}

type BlockedUserResponse struct {
	UserID    string    `json:"user_id"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ListBlockedResponse struct {
	Blocked []BlockedUserResponse `json:"blocked"`
}

type TypingResponse struct {
	UserIDs []string `json:"user_ids"`
}

type UnreadTotalResponse struct {
	Total int `json:"total"`
}

type InboxEntryResponse struct {
	NotificationID string            `json:"notification_id"`
	Type           string            `json:"type"`
	Title          string            `json:"title"`
	Body           string            `json:"body"`
	Data           map[string]string `json:"data,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

type ListInboxResponse struct {
	Entries []InboxEntryResponse `json:"entries"`
}

type AttemptResponse struct {
	ID                string    `json:"id"`
	Channel           string    `json:"channel"`
	Outcome           string    `json:"outcome"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	Error             string    `json:"error,omitempty"`
	Try               int       `json:"try"`
	AttemptedAt       time.Time `json:"attempted_at"`
}

type DeliveriesResponse struct {
	NotificationID string            `json:"notification_id"`
	Type           string            `json:"type"`
	Status         string            `json:"status"`
	Final          []AttemptResponse `json:"final"`
	Attempts       []AttemptResponse `json:"attempts"`
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", errors.ErrValidation, field)
	}
	return id, nil
}

func parseOptionalID(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := parseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func toChatResponse(c chat.Chat, viewer string) ChatResponse {
	return ChatResponse{
		ID:                 c.ID.String(),
		Participants:       c.Participants[:],
		ProductID:          c.ProductID,
		BookingID:          c.BookingID,
		Subject:            c.Subject,
		LastMessagePreview: c.LastMessagePreview,
		LastMessageAt:      c.LastMessageAt,
		UnreadCount:        c.UnreadFor(viewer),
		Archived:           c.IsArchivedFor(viewer),
		IsBlocked:          c.IsBlocked,
		BlockedBy:          c.BlockedBy,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func toMessageResponse(m chat.Message) MessageResponse {
	m = m.Redacted()
	res := MessageResponse{
		ID:            m.ID.String(),
		ChatID:        m.ChatID.String(),
		SenderID:      m.SenderID,
		Content:       m.Content,
		Kind:          string(m.Kind),
		Status:        string(m.Status),
		DeliveredAt:   m.DeliveredAt,
		ReadAt:        m.ReadAt,
		IsEdited:      m.IsEdited,
		EditedContent: m.EditedContent,
		EditedAt:      m.EditedAt,
		IsDeleted:     m.IsDeleted,
		DeletedAt:     m.DeletedAt,
		Sequence:      m.Sequence,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		Attachments: lo.Map(m.Attachments, func(a chat.Attachment, _ int) AttachmentDTO {
			return AttachmentDTO{URL: a.URL, Type: a.Type, Name: a.Name, Size: a.Size}
		}),
	}
	if m.ReplyTo != nil {
		res.ReplyTo = m.ReplyTo.String()
	}
	return res
}

func toMessagesResponse(messages []chat.Message, next *uuid.UUID) ListMessagesResponse {
	res := ListMessagesResponse{Messages: lo.Map(messages, func(m chat.Message, _ int) MessageResponse {
		return toMessageResponse(m)
	})}
	if next != nil {
		res.NextCursor = next.String()
	}
	return res
}

func toAttachments(dtos []AttachmentDTO) []chat.Attachment {
	return lo.Map(dtos, func(a AttachmentDTO, _ int) chat.Attachment {
		return chat.Attachment{URL: a.URL, Type: a.Type, Name: a.Name, Size: a.Size}
	})
}

func toAttemptResponse(a notification.DeliveryAttempt) AttemptResponse {
	return AttemptResponse{
		ID:                a.ID.String(),
		Channel:           string(a.Channel),
		Outcome:           string(a.Outcome),
		ProviderMessageID: a.ProviderMessageID,
		Error:             a.Error,
		Try:               a.Try,
		AttemptedAt:       a.AttemptedAt,
	}
}

func toDeliveriesResponse(report services.NotificationReport) DeliveriesResponse {
	final := lo.Values(report.Final)
	slices.SortFunc(final, func(a, b notification.DeliveryAttempt) int { return strings.Compare(string(a.Channel), string(b.Channel)) })
	return DeliveriesResponse{
		NotificationID: report.Notification.ID.String(),
		Type:           string(report.Notification.Type),
		Status:         string(report.Status),
		Final:          lo.Map(final, func(a notification.DeliveryAttempt, _ int) AttemptResponse { return toAttemptResponse(a) }),
		Attempts:       lo.Map(report.Attempts, func(a notification.DeliveryAttempt, _ int) AttemptResponse { return toAttemptResponse(a) }),
	}
}
