package server

import (
	"context"
	"log/slog"

	"rental-chat/auth"
	"rental-chat/domain/chat"
	"rental-chat/domain/notification"
	"rental-chat/errors"
	"rental-chat/services"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// MessagingServer exposes the chat services over gRPC. The caller is always
// the authenticated user; request bodies never carry an acting user id.
type MessagingServer struct {
	chats      services.IChatService
	messages   services.IMessageService
	blocks     services.IBlockService
	presence   services.IPresenceService
	deliveries services.IDeliveryService
	log        *slog.Logger
}

func NewMessagingServer(log *slog.Logger, chats services.IChatService, messages services.IMessageService,
	blocks services.IBlockService, presence services.IPresenceService, deliveries services.IDeliveryService) *MessagingServer {
	return &MessagingServer{
		chats:      chats,
		messages:   messages,
		blocks:     blocks,
		presence:   presence,
		deliveries: deliveries,
		log:        log,
	}
}

func caller(ctx context.Context) (string, error) {
	id, ok := auth.CallerID(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "caller identity is missing")
	}
	return id, nil
}

func (s *MessagingServer) Health(context.Context, *Empty) (*HealthResponse, error) {
	return &HealthResponse{Status: "SERVING"}, nil
}

func (s *MessagingServer) FindOrCreateChat(ctx context.Context, req *FindOrCreateChatRequest) (*ChatResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.chats.FindOrCreate(ctx, chat.FindOrCreateCommand{
		ParticipantA: user,
		ParticipantB: req.OtherUserID,
		ProductID:    req.ProductID,
		BookingID:    req.BookingID,
		Subject:      req.Subject,
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return lo.ToPtr(toChatResponse(c, user)), nil
}

func (s *MessagingServer) GetChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	chatID, err := parseID("chat_id", req.ChatID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	c, err := s.chats.Get(chatID, user)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return lo.ToPtr(toChatResponse(c, user)), nil
}

func (s *MessagingServer) ListChats(ctx context.Context, req *ListChatsRequest) (*ListChatsResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	chats, err := s.chats.ListChats(user, req.IncludeArchived)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &ListChatsResponse{Chats: lo.Map(chats, func(c chat.Chat, _ int) ChatResponse {
		return toChatResponse(c, user)
	})}, nil
}

func (s *MessagingServer) ArchiveChat(ctx context.Context, req *ArchiveChatRequest) (*ChatResponse, error) {
	return s.onChat(ctx, req.ChatID, func(user string, c uuid.UUID) (chat.Chat, error) {
		return s.chats.Archive(c, user, req.Archived)
	})
}

func (s *MessagingServer) BlockChat(ctx context.Context, req *BlockChatRequest) (*ChatResponse, error) {
	return s.onChat(ctx, req.ChatID, func(user string, c uuid.UUID) (chat.Chat, error) {
		return s.chats.Block(c, user, req.Reason)
	})
}

func (s *MessagingServer) UnblockChat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	return s.onChat(ctx, req.ChatID, func(user string, c uuid.UUID) (chat.Chat, error) {
		return s.chats.Unblock(c, user)
	})
}

func (s *MessagingServer) onChat(ctx context.Context, rawID string, fn func(user string, chatID uuid.UUID) (chat.Chat, error)) (*ChatResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	chatID, err := parseID("chat_id", rawID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	c, err := fn(user, chatID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return lo.ToPtr(toChatResponse(c, user)), nil
}

func (s *MessagingServer) BlockUser(ctx context.Context, req *BlockUserRequest) (*Empty, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err = s.blocks.Block(user, req.UserID, req.Reason); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &Empty{}, nil
}

func (s *MessagingServer) UnblockUser(ctx context.Context, req *UserRequest) (*Empty, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	if err = s.blocks.Unblock(user, req.UserID); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &Empty{}, nil
}

func (s *MessagingServer) ListBlockedUsers(ctx context.Context, _ *Empty) (*ListBlockedResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	relations, err := s.blocks.ListBlocked(user)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &ListBlockedResponse{Blocked: lo.Map(relations, func(r chat.BlockRelation, _ int) BlockedUserResponse {
		return BlockedUserResponse{UserID: r.BlockedID, Reason: r.Reason, CreatedAt: r.CreatedAt}
	})}, nil
}

func (s *MessagingServer) SendMessage(ctx context.Context, req *SendMessageRequest) (*MessageResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	chatID, err := parseID("chat_id", req.ChatID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	replyTo, err := parseOptionalID("reply_to", req.ReplyTo)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	kind := req.Kind
	if kind == "" {
		kind = string(chat.KindText)
	}
	m, err := s.messages.Send(ctx, chat.SendMessageCommand{
		ChatID:      chatID,
		SenderID:    user,
		Content:     req.Content,
		Kind:        kind,
		ReplyTo:     replyTo,
		Attachments: toAttachments(req.Attachments),
	})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return lo.ToPtr(toMessageResponse(m)), nil
}

func (s *MessagingServer) ListMessages(ctx context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	chatID, err := parseID("chat_id", req.ChatID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	before, err := parseOptionalID("before", req.Before)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	page, err := s.messages.List(chat.ListMessagesQuery{ChatID: chatID, RequesterID: user, Before: before, Limit: req.Limit})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return lo.ToPtr(toMessagesResponse(page.Messages, page.NextCursor)), nil
}

func (s *MessagingServer) SearchMessages(ctx context.Context, req *SearchMessagesRequest) (*ListMessagesResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	chatID, err := parseID("chat_id", req.ChatID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	messages, err := s.messages.Search(ctx, chat.SearchMessagesQuery{ChatID: chatID, RequesterID: user, Query: req.Query, Page: req.Page})
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return lo.ToPtr(toMessagesResponse(messages, nil)), nil
}

func (s *MessagingServer) MarkDelivered(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	return s.onMessage(ctx, req.MessageID, s.messages.MarkDelivered)
}

func (s *MessagingServer) MarkRead(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	return s.onMessage(ctx, req.MessageID, s.messages.MarkRead)
}

func (s *MessagingServer) DeleteMessage(ctx context.Context, req *MessageRequest) (*MessageResponse, error) {
	return s.onMessage(ctx, req.MessageID, s.messages.SoftDelete)
}

func (s *MessagingServer) EditMessage(ctx context.Context, req *EditMessageRequest) (*MessageResponse, error) {
	return s.onMessage(ctx, req.MessageID, func(messageID uuid.UUID, user string) (chat.Message, error) {
		return s.messages.Edit(chat.EditMessageCommand{MessageID: messageID, EditorID: user, Content: req.Content})
	})
}

func (s *MessagingServer) onMessage(ctx context.Context, rawID string, fn func(messageID uuid.UUID, user string) (chat.Message, error)) (*MessageResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	messageID, err := parseID("message_id", rawID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	m, err := fn(messageID, user)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return lo.ToPtr(toMessageResponse(m)), nil
}

func (s *MessagingServer) MarkChatRead(ctx context.Context, req *ChatRequest) (*MarkChatReadResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	chatID, err := parseID("chat_id", req.ChatID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	updated, err := s.messages.MarkChatRead(chatID, user)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &MarkChatReadResponse{Updated: updated}, nil
}

func (s *MessagingServer) SetTyping(ctx context.Context, req *SetTypingRequest) (*Empty, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	chatID, err := parseID("chat_id", req.ChatID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	if err = s.presence.SetTyping(ctx, chatID, user, req.IsTyping); err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &Empty{}, nil
}

func (s *MessagingServer) GetTyping(ctx context.Context, req *ChatRequest) (*TypingResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	chatID, err := parseID("chat_id", req.ChatID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	users, err := s.presence.GetTypingUsers(ctx, chatID, user)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &TypingResponse{UserIDs: users}, nil
}

func (s *MessagingServer) UnreadTotal(ctx context.Context, _ *Empty) (*UnreadTotalResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.chats.UnreadTotal(user)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &UnreadTotalResponse{Total: total}, nil
}

func (s *MessagingServer) ListInbox(ctx context.Context, req *ListRequest) (*ListInboxResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.deliveries.ListInbox(user, req.Limit)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return &ListInboxResponse{Entries: lo.Map(entries, func(e notification.InboxEntry, _ int) InboxEntryResponse {
		return InboxEntryResponse{
			NotificationID: e.NotificationID.String(),
			Type:           string(e.Type),
			Title:          e.Title,
			Body:           e.Body,
			Data:           e.Data,
			CreatedAt:      e.CreatedAt,
		}
	})}, nil
}

func (s *MessagingServer) GetDeliveries(ctx context.Context, req *NotificationRequest) (*DeliveriesResponse, error) {
	user, err := caller(ctx)
	if err != nil {
		return nil, err
	}
	notificationID, err := parseID("notification_id", req.NotificationID)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	report, err := s.deliveries.Deliveries(notificationID, user)
	if err != nil {
		return nil, errors.MapToGRPCError(err)
	}
	return lo.ToPtr(toDeliveriesResponse(report)), nil
}
