package api

import (
	"context"

	"github.com/matheus3301/huddle/internal/platform"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	"github.com/matheus3301/huddle/internal/store"
)

// ConversationService implements the ConversationService gRPC service.
type ConversationService struct {
	svc *platform.Service
}

// NewConversationService creates a new conversation service.
func NewConversationService(svc *platform.Service) *ConversationService {
	return &ConversationService{svc: svc}
}

func (s *ConversationService) ListConversations(ctx context.Context, req *rpcv1.ListConversationsRequest) (*rpcv1.ListConversationsResponse, error) {
	convs, err := s.svc.ListConversations(ctx, req.UserId)
	if err != nil {
		return nil, toStatus("list conversations", err)
	}
	out := make([]*rpcv1.Conversation, 0, len(convs))
	for _, c := range convs {
		out = append(out, summaryToWire(c))
	}
	return &rpcv1.ListConversationsResponse{Conversations: out}, nil
}

func (s *ConversationService) GetConversation(ctx context.Context, req *rpcv1.GetConversationRequest) (*rpcv1.GetConversationResponse, error) {
	c, err := s.svc.GetConversation(ctx, req.Id)
	if err != nil {
		return nil, toStatus("get conversation", err)
	}
	return &rpcv1.GetConversationResponse{Conversation: conversationToWire(c)}, nil
}

func (s *ConversationService) CreateDirect(ctx context.Context, req *rpcv1.CreateDirectRequest) (*rpcv1.CreateDirectResponse, error) {
	c, created, err := s.svc.CreateDirect(ctx, req.UserId, req.PeerId)
	if err != nil {
		return nil, toStatus("create direct", err)
	}
	return &rpcv1.CreateDirectResponse{Conversation: conversationToWire(c), Created: created}, nil
}

func (s *ConversationService) CreateChannel(ctx context.Context, req *rpcv1.CreateChannelRequest) (*rpcv1.ChannelResponse, error) {
	c, err := s.svc.CreateChannel(ctx, req.OwnerId, req.Name, req.Description)
	if err != nil {
		return nil, toStatus("create channel", err)
	}
	return &rpcv1.ChannelResponse{Conversation: conversationToWire(c)}, nil
}

func (s *ConversationService) CloneChannel(ctx context.Context, req *rpcv1.CloneChannelRequest) (*rpcv1.ChannelResponse, error) {
	c, err := s.svc.CloneChannel(ctx, req.UserId, req.ChannelId)
	if err != nil {
		return nil, toStatus("clone channel", err)
	}
	return &rpcv1.ChannelResponse{Conversation: conversationToWire(c)}, nil
}

func (s *ConversationService) ListMembers(ctx context.Context, req *rpcv1.ListMembersRequest) (*rpcv1.ListMembersResponse, error) {
	members, err := s.svc.ListMembers(ctx, req.ConversationId)
	if err != nil {
		return nil, toStatus("list members", err)
	}
	out := make([]*rpcv1.Member, 0, len(members))
	for _, m := range members {
		out = append(out, memberToWire(m))
	}
	return &rpcv1.ListMembersResponse{Members: out}, nil
}

func (s *ConversationService) AddMember(ctx context.Context, req *rpcv1.AddMemberRequest) (*rpcv1.MemberChangeResponse, error) {
	if err := s.svc.AddMember(ctx, req.ActorId, req.ConversationId, req.UserId, store.Role(req.Role)); err != nil {
		return nil, toStatus("add member", err)
	}
	return &rpcv1.MemberChangeResponse{Success: true}, nil
}

func (s *ConversationService) RemoveMember(ctx context.Context, req *rpcv1.RemoveMemberRequest) (*rpcv1.MemberChangeResponse, error) {
	if err := s.svc.RemoveMember(ctx, req.ActorId, req.ConversationId, req.UserId); err != nil {
		return nil, toStatus("remove member", err)
	}
	return &rpcv1.MemberChangeResponse{Success: true}, nil
}
