package rpcv1

import (
	"context"

	"google.golang.org/grpc"
)

const (
	MessageService_ListMessages_FullMethodName   = "/huddle.v1.MessageService/ListMessages"
	MessageService_SendMessage_FullMethodName    = "/huddle.v1.MessageService/SendMessage"
	MessageService_SearchMessages_FullMethodName = "/huddle.v1.MessageService/SearchMessages"
	MessageService_WatchMessages_FullMethodName  = "/huddle.v1.MessageService/WatchMessages"
)

// MessageService_WatchMessagesServer is the server side of WatchMessages.
type MessageService_WatchMessagesServer = grpc.ServerStreamingServer[EventEnvelope]

// MessageService_WatchMessagesClient is the client side of WatchMessages.
type MessageService_WatchMessagesClient = grpc.ServerStreamingClient[EventEnvelope]

// MessageServiceServer serves message history, sends and the live insert feed.
type MessageServiceServer interface {
	ListMessages(context.Context, *ListMessagesRequest) (*ListMessagesResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	SearchMessages(context.Context, *SearchMessagesRequest) (*SearchMessagesResponse, error)
	WatchMessages(*WatchMessagesRequest, MessageService_WatchMessagesServer) error
}

func messageServer(srv any) MessageServiceServer { return srv.(MessageServiceServer) }

func _MessageService_WatchMessages_Handler(srv any, stream grpc.ServerStream) error {
	m := new(WatchMessagesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return messageServer(srv).WatchMessages(m, &grpc.GenericServerStream[WatchMessagesRequest, EventEnvelope]{ServerStream: stream})
}

var MessageService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "huddle.v1.MessageService",
	HandlerType: (*MessageServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListMessages",
			Handler: unary(MessageService_ListMessages_FullMethodName, func(srv any, ctx context.Context, req *ListMessagesRequest) (*ListMessagesResponse, error) {
				return messageServer(srv).ListMessages(ctx, req)
			}),
		},
		{
			MethodName: "SendMessage",
			Handler: unary(MessageService_SendMessage_FullMethodName, func(srv any, ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
				return messageServer(srv).SendMessage(ctx, req)
			}),
		},
		{
			MethodName: "SearchMessages",
			Handler: unary(MessageService_SearchMessages_FullMethodName, func(srv any, ctx context.Context, req *SearchMessagesRequest) (*SearchMessagesResponse, error) {
				return messageServer(srv).SearchMessages(ctx, req)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchMessages",
			Handler:       _MessageService_WatchMessages_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "huddle/v1/message.proto",
}

func RegisterMessageServiceServer(s grpc.ServiceRegistrar, srv MessageServiceServer) {
	s.RegisterService(&MessageService_ServiceDesc, srv)
}

type MessageServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewMessageServiceClient(cc grpc.ClientConnInterface) *MessageServiceClient {
	return &MessageServiceClient{cc: cc}
}

func (c *MessageServiceClient) ListMessages(ctx context.Context, in *ListMessagesRequest, opts ...grpc.CallOption) (*ListMessagesResponse, error) {
	return invoke[ListMessagesResponse](ctx, c.cc, MessageService_ListMessages_FullMethodName, in, opts)
}

func (c *MessageServiceClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c.cc, MessageService_SendMessage_FullMethodName, in, opts)
}

func (c *MessageServiceClient) SearchMessages(ctx context.Context, in *SearchMessagesRequest, opts ...grpc.CallOption) (*SearchMessagesResponse, error) {
	return invoke[SearchMessagesResponse](ctx, c.cc, MessageService_SearchMessages_FullMethodName, in, opts)
}

func (c *MessageServiceClient) WatchMessages(ctx context.Context, in *WatchMessagesRequest, opts ...grpc.CallOption) (MessageService_WatchMessagesClient, error) {
	stream, err := c.cc.NewStream(ctx, &MessageService_ServiceDesc.Streams[0], MessageService_WatchMessages_FullMethodName, withCodec(opts)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[WatchMessagesRequest, EventEnvelope]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
