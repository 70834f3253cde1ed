package api

import (
	"errors"

	"github.com/matheus3301/huddle/internal/platform"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	"github.com/matheus3301/huddle/internal/store"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// toStatus maps platform errors to gRPC status codes.
func toStatus(op string, err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, platform.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, platform.ErrInvalidArgument):
		code = codes.InvalidArgument
	case errors.Is(err, platform.ErrPermissionDenied):
		code = codes.PermissionDenied
	}
	return grpcstatus.Errorf(code, "%s: %v", op, err)
}

func messageToWire(m intsync.Message) *rpcv1.Message {
	return &rpcv1.Message{
		Id:              m.ID,
		ConversationId:  m.ConversationID,
		SenderId:        m.SenderID,
		SenderEmail:     m.SenderEmail,
		Content:         m.Content,
		CreatedAtUnixMs: m.CreatedAt,
	}
}

func storeMessageToWire(m store.Message) *rpcv1.Message {
	return &rpcv1.Message{
		Id:              m.ID,
		ConversationId:  m.ConversationID,
		SenderId:        m.SenderID,
		SenderEmail:     m.SenderEmail,
		Content:         m.Content,
		CreatedAtUnixMs: m.CreatedAt,
	}
}

func conversationToWire(c *store.Conversation) *rpcv1.Conversation {
	return &rpcv1.Conversation{
		Id:                  c.ID,
		Kind:                string(c.Kind),
		Name:                c.Name,
		Description:         c.Description,
		CreatedBy:           c.CreatedBy,
		CreatedAtUnixMs:     c.CreatedAt,
		MemberCount:         int32(c.MemberCount),
		LastMessageAtUnixMs: c.LastMessageAt,
		LastMessagePreview:  c.LastMessagePreview,
	}
}

func summaryToWire(c intsync.Conversation) *rpcv1.Conversation {
	return &rpcv1.Conversation{
		Id:                  c.ID,
		Kind:                c.Kind,
		Name:                c.Name,
		Description:         c.Description,
		MemberCount:         int32(c.MemberCount),
		LastMessageAtUnixMs: c.LastMessageAt,
		LastMessagePreview:  c.LastMessagePreview,
	}
}

func memberToWire(m store.Member) *rpcv1.Member {
	return &rpcv1.Member{
		ConversationId: m.ConversationID,
		UserId:         m.UserID,
		Role:           string(m.Role),
		JoinedAtUnixMs: m.JoinedAt,
		Name:           m.Name,
		Email:          m.Email,
	}
}

func profileToWire(p *store.Profile) *rpcv1.Profile {
	return &rpcv1.Profile{
		Id:         p.ID,
		FullName:   p.FullName,
		Email:      p.Email,
		AvatarUrl:  p.AvatarURL,
		Department: p.Department,
		Phone:      p.Phone,
		Bio:        p.Bio,
	}
}

func profileFromWire(p *rpcv1.Profile) *store.Profile {
	return &store.Profile{
		ID:         p.Id,
		FullName:   p.FullName,
		Email:      p.Email,
		AvatarURL:  p.AvatarUrl,
		Department: p.Department,
		Phone:      p.Phone,
		Bio:        p.Bio,
	}
}
