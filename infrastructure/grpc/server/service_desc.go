package server

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "rentalchat.MessagingService"

// FullMethod is the route grpc uses for a method of the messaging service.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// PublicMethods are reachable without a bearer token.
var PublicMethods = []string{FullMethod("Health")}

// MessagingService is the contract registered with grpc.
type MessagingService interface {
	Health(context.Context, *Empty) (*HealthResponse, error)
	FindOrCreateChat(context.Context, *FindOrCreateChatRequest) (*ChatResponse, error)
	GetChat(context.Context, *ChatRequest) (*ChatResponse, error)
	ListChats(context.Context, *ListChatsRequest) (*ListChatsResponse, error)
	ArchiveChat(context.Context, *ArchiveChatRequest) (*ChatResponse, error)
	BlockChat(context.Context, *BlockChatRequest) (*ChatResponse, error)
	UnblockChat(context.Context, *ChatRequest) (*ChatResponse, error)
	BlockUser(context.Context, *BlockUserRequest) (*Empty, error)
	UnblockUser(context.Context, *UserRequest) (*Empty, error)
	ListBlockedUsers(context.Context, *Empty) (*ListBlockedResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*MessageResponse, error)
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	SearchMessages(context.Context, *SearchMessagesRequest) (*ListMessagesResponse, error)
	MarkDelivered(context.Context, *MessageRequest) (*MessageResponse, error)
	MarkRead(context.Context, *MessageRequest) (*MessageResponse, error)
	MarkChatRead(context.Context, *ChatRequest) (*MarkChatReadResponse, error)
	EditMessage(context.Context, *EditMessageRequest) (*MessageResponse, error)
	DeleteMessage(context.Context, *MessageRequest) (*MessageResponse, error)
	SetTyping(context.Context, *SetTypingRequest) (*Empty, error)
	GetTyping(context.Context, *ChatRequest) (*TypingResponse, error)
	UnreadTotal(context.Context, *Empty) (*UnreadTotalResponse, error)
	ListInbox(context.Context, *ListRequest) (*ListInboxResponse, error)
	GetDeliveries(context.Context, *NotificationRequest) (*DeliveriesResponse, error)
}

var _ MessagingService = (*MessagingServer)(nil)

// unary builds the method descriptor the protoc plugin would generate,
// decoding into Req with whatever codec the call negotiated.
func unary[Req any, Resp any](name string, call func(MessagingService, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			service := srv.(MessagingService)
			if interceptor == nil {
				return call(service, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(service, ctx, req.(*Req))
			})
		},
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MessagingService)(nil),
	Methods: []grpc.MethodDesc{
		unary("Health", MessagingService.Health),
		unary("FindOrCreateChat", MessagingService.FindOrCreateChat),
		unary("GetChat", MessagingService.GetChat),
		unary("ListChats", MessagingService.ListChats),
		unary("ArchiveChat", MessagingService.ArchiveChat),
		unary("BlockChat", MessagingService.BlockChat),
		unary("UnblockChat", MessagingService.UnblockChat),
		unary("BlockUser", MessagingService.BlockUser),
		unary("UnblockUser", MessagingService.UnblockUser),
		unary("ListBlockedUsers", MessagingService.ListBlockedUsers),
		unary("SendMessage", MessagingService.SendMessage),
		unary("ListMessages", MessagingService.ListMessages),
		unary("SearchMessages", MessagingService.SearchMessages),
		unary("MarkDelivered", MessagingService.MarkDelivered),
		unary("MarkRead", MessagingService.MarkRead),
		unary("MarkChatRead", MessagingService.MarkChatRead),
		unary("EditMessage", MessagingService.EditMessage),
		unary("DeleteMessage", MessagingService.DeleteMessage),
		unary("SetTyping", MessagingService.SetTyping),
		unary("GetTyping", MessagingService.GetTyping),
		unary("UnreadTotal", MessagingService.UnreadTotal),
		unary("ListInbox", MessagingService.ListInbox),
		unary("GetDeliveries", MessagingService.GetDeliveries),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "rentalchat/messaging.json",
}

func RegisterMessagingServer(s grpc.ServiceRegistrar, srv MessagingService) {
	s.RegisterService(&ServiceDesc, srv)
}

// MessagingClient is the calling side, used by tests and tooling.
type MessagingClient struct {
	conn grpc.ClientConnInterface
}

func NewMessagingClient(conn grpc.ClientConnInterface) *MessagingClient {
	return &MessagingClient{conn: conn}
}

// Invoke calls one method by name. out must be a pointer to the response type.
func (c *MessagingClient) Invoke(ctx context.Context, method string, in, out any, opts ...grpc.CallOption) error {
	return c.conn.Invoke(ctx, FullMethod(method), in, out, opts...)
}
