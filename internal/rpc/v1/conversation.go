package rpcv1

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ConversationService_ListConversations_FullMethodName = "/huddle.v1.ConversationService/ListConversations"
	ConversationService_GetConversation_FullMethodName   = "/huddle.v1.ConversationService/GetConversation"
	ConversationService_CreateDirect_FullMethodName      = "/huddle.v1.ConversationService/CreateDirect"
	ConversationService_CreateChannel_FullMethodName     = "/huddle.v1.ConversationService/CreateChannel"
	ConversationService_CloneChannel_FullMethodName      = "/huddle.v1.ConversationService/CloneChannel"
	ConversationService_ListMembers_FullMethodName       = "/huddle.v1.ConversationService/ListMembers"
	ConversationService_AddMember_FullMethodName         = "/huddle.v1.ConversationService/AddMember"
	ConversationService_RemoveMember_FullMethodName      = "/huddle.v1.ConversationService/RemoveMember"
)

// ConversationServiceServer manages conversations and their rosters.
type ConversationServiceServer interface {
	ListConversations(context.Context, *ListConversationsRequest) (*ListConversationsResponse, error)
	GetConversation(context.Context, *GetConversationRequest) (*GetConversationResponse, error)
	CreateDirect(context.Context, *CreateDirectRequest) (*CreateDirectResponse, error)
	CreateChannel(context.Context, *CreateChannelRequest) (*ChannelResponse, error)
	CloneChannel(context.Context, *CloneChannelRequest) (*ChannelResponse, error)
	ListMembers(context.Context, *ListMembersRequest) (*ListMembersResponse, error)
	AddMember(context.Context, *AddMemberRequest) (*MemberChangeResponse, error)
	RemoveMember(context.Context, *RemoveMemberRequest) (*MemberChangeResponse, error)
}

func conversationServer(srv any) ConversationServiceServer { return srv.(ConversationServiceServer) }

var ConversationService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "huddle.v1.ConversationService",
	HandlerType: (*ConversationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListConversations",
			Handler: unary(ConversationService_ListConversations_FullMethodName, func(srv any, ctx context.Context, req *ListConversationsRequest) (*ListConversationsResponse, error) {
				return conversationServer(srv).ListConversations(ctx, req)
			}),
		},
		{
			MethodName: "GetConversation",
			Handler: unary(ConversationService_GetConversation_FullMethodName, func(srv any, ctx context.Context, req *GetConversationRequest) (*GetConversationResponse, error) {
				return conversationServer(srv).GetConversation(ctx, req)
			}),
		},
		{
			MethodName: "CreateDirect",
			Handler: unary(ConversationService_CreateDirect_FullMethodName, func(srv any, ctx context.Context, req *CreateDirectRequest) (*CreateDirectResponse, error) {
				return conversationServer(srv).CreateDirect(ctx, req)
			}),
		},
		{
			MethodName: "CreateChannel",
			Handler: unary(ConversationService_CreateChannel_FullMethodName, func(srv any, ctx context.Context, req *CreateChannelRequest) (*ChannelResponse, error) {
				return conversationServer(srv).CreateChannel(ctx, req)
			}),
		},
		{
			MethodName: "CloneChannel",
			Handler: unary(ConversationService_CloneChannel_FullMethodName, func(srv any, ctx context.Context, req *CloneChannelRequest) (*ChannelResponse, error) {
				return conversationServer(srv).CloneChannel(ctx, req)
			}),
		},
		{
			MethodName: "ListMembers",
			Handler: unary(ConversationService_ListMembers_FullMethodName, func(srv any, ctx context.Context, req *ListMembersRequest) (*ListMembersResponse, error) {
				return conversationServer(srv).ListMembers(ctx, req)
			}),
		},
		{
			MethodName: "AddMember",
			Handler: unary(ConversationService_AddMember_FullMethodName, func(srv any, ctx context.Context, req *AddMemberRequest) (*MemberChangeResponse, error) {
				return conversationServer(srv).AddMember(ctx, req)
			}),
		},
		{
			MethodName: "RemoveMember",
			Handler: unary(ConversationService_RemoveMember_FullMethodName, func(srv any, ctx context.Context, req *RemoveMemberRequest) (*MemberChangeResponse, error) {
				return conversationServer(srv).RemoveMember(ctx, req)
			}),
		},
	},
	Metadata: "huddle/v1/conversation.proto",
}

func RegisterConversationServiceServer(s grpc.ServiceRegistrar, srv ConversationServiceServer) {
	s.RegisterService(&ConversationService_ServiceDesc, srv)
}

type ConversationServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewConversationServiceClient(cc grpc.ClientConnInterface) *ConversationServiceClient {
	return &ConversationServiceClient{cc: cc}
}

func (c *ConversationServiceClient) ListConversations(ctx context.Context, in *ListConversationsRequest, opts ...grpc.CallOption) (*ListConversationsResponse, error) {
	return invoke[ListConversationsResponse](ctx, c.cc, ConversationService_ListConversations_FullMethodName, in, opts)
}

func (c *ConversationServiceClient) GetConversation(ctx context.Context, in *GetConversationRequest, opts ...grpc.CallOption) (*GetConversationResponse, error) {
	return invoke[GetConversationResponse](ctx, c.cc, ConversationService_GetConversation_FullMethodName, in, opts)
}

func (c *ConversationServiceClient) CreateDirect(ctx context.Context, in *CreateDirectRequest, opts ...grpc.CallOption) (*CreateDirectResponse, error) {
	return invoke[CreateDirectResponse](ctx, c.cc, ConversationService_CreateDirect_FullMethodName, in, opts)
}

func (c *ConversationServiceClient) CreateChannel(ctx context.Context, in *CreateChannelRequest, opts ...grpc.CallOption) (*ChannelResponse, error) {
	return invoke[ChannelResponse](ctx, c.cc, ConversationService_CreateChannel_FullMethodName, in, opts)
}

func (c *ConversationServiceClient) CloneChannel(ctx context.Context, in *CloneChannelRequest, opts ...grpc.CallOption) (*ChannelResponse, error) {
	return invoke[ChannelResponse](ctx, c.cc, ConversationService_CloneChannel_FullMethodName, in, opts)
}

func (c *ConversationServiceClient) ListMembers(ctx context.Context, in *ListMembersRequest, opts ...grpc.CallOption) (*ListMembersResponse, error) {
	return invoke[ListMembersResponse](ctx, c.cc, ConversationService_ListMembers_FullMethodName, in, opts)
}

func (c *ConversationServiceClient) AddMember(ctx context.Context, in *AddMemberRequest, opts ...grpc.CallOption) (*MemberChangeResponse, error) {
	return invoke[MemberChangeResponse](ctx, c.cc, ConversationService_AddMember_FullMethodName, in, opts)
}

func (c *ConversationServiceClient) RemoveMember(ctx context.Context, in *RemoveMemberRequest, opts ...grpc.CallOption) (*MemberChangeResponse, error) {
	return invoke[MemberChangeResponse](ctx, c.cc, ConversationService_RemoveMember_FullMethodName, in, opts)
}
