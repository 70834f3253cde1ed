package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/store"
	"go.uber.org/zap"
)

const copySuffix = " (Copy)"

// GetConversation returns a conversation summary.
func (s *Service) GetConversation(ctx context.Context, id string) (*store.Conversation, error) {
	return s.requireConversation(id)
}

// CreateDirect returns the direct conversation between userID and peerID,
// creating it when none exists. created reports whether a new one was made.
func (s *Service) CreateDirect(ctx context.Context, userID, peerID string) (conv *store.Conversation, created bool, err error) {
	if userID == "" || peerID == "" {
		return nil, false, fmt.Errorf("%w: both participants are required", ErrInvalidArgument)
	}
	if userID == peerID {
		return nil, false, fmt.Errorf("%w: cannot start a direct conversation with yourself", ErrInvalidArgument)
	}
	if _, err := s.requireProfile(peerID); err != nil {
		return nil, false, err
	}

	existing, err := s.db.FindDirect(userID, peerID)
	if err != nil {
		return nil, false, fmt.Errorf("find direct: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	conv = &store.Conversation{Kind: store.KindDirect, CreatedBy: userID}
	members := []store.Member{
		{UserID: userID, Role: store.RoleMember},
		{UserID: peerID, Role: store.RoleMember},
	}
	if err := s.db.CreateConversation(conv, members); err != nil {
		return nil, false, fmt.Errorf("create direct: %w", err)
	}
	s.publish(bus.KindConversationCreated, conv.ID, *conv)
	s.logger.Info("direct conversation created", zap.String("conversation", conv.ID), zap.String("peer", peerID))
	return conv, true, nil
}

// CreateChannel creates a channel owned by ownerID.
func (s *Service) CreateChannel(ctx context.Context, ownerID, name, description string) (*store.Conversation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: channel name is required", ErrInvalidArgument)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidArgument)
	}
	return s.createChannel(ownerID, name, strings.TrimSpace(description))
}

// CloneChannel copies a channel's name and description into a new channel
// whose only member is userID, as owner.
func (s *Service) CloneChannel(ctx context.Context, userID, channelID string) (*store.Conversation, error) {
	src, err := s.requireConversation(channelID)
	if err != nil {
		return nil, err
	}
	if src.Kind != store.KindChannel {
		return nil, fmt.Errorf("%w: only channels can be cloned", ErrInvalidArgument)
	}
	if _, err := s.requireMember(channelID, userID); err != nil {
		return nil, err
	}
	return s.createChannel(userID, src.Name+copySuffix, src.Description)
}

func (s *Service) createChannel(ownerID, name, description string) (*store.Conversation, error) {
	conv := &store.Conversation{Kind: store.KindChannel, Name: name, Description: description, CreatedBy: ownerID}
	if err := s.db.CreateConversation(conv, []store.Member{{UserID: ownerID, Role: store.RoleOwner}}); err != nil {
		return nil, fmt.Errorf("create channel: %w", err)
	}
	s.publish(bus.KindConversationCreated, conv.ID, *conv)
	s.logger.Info("channel created", zap.String("conversation", conv.ID), zap.String("name", name))
	return conv, nil
}

// ListMembers returns the roster of a conversation.
func (s *Service) ListMembers(ctx context.Context, conversationID string) ([]store.Member, error) {
	if _, err := s.requireConversation(conversationID); err != nil {
		return nil, err
	}
	members, err := s.db.ListMembers(conversationID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// AddMember adds userID to a channel. actorID must be an owner or admin.
// An empty role means member; owner cannot be granted.
func (s *Service) AddMember(ctx context.Context, actorID, conversationID, userID string, role store.Role) error {
	if role == "" {
		role = store.RoleMember
	}
	if role != store.RoleMember && role != store.RoleAdmin {
		return fmt.Errorf("%w: role %q cannot be granted", ErrInvalidArgument, role)
	}
	if err := s.authorizeRosterChange(actorID, conversationID); err != nil {
		return err
	}
	if _, err := s.requireProfile(userID); err != nil {
		return err
	}
	if existing, err := s.db.GetMember(conversationID, userID); err != nil {
		return fmt.Errorf("get member: %w", err)
	} else if existing != nil && existing.Role == store.RoleOwner {
		return fmt.Errorf("%w: the owner's role cannot change", ErrPermissionDenied)
	}

	if err := s.db.AddMember(conversationID, userID, role); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	s.publish(bus.KindMemberAdded, conversationID, store.Member{ConversationID: conversationID, UserID: userID, Role: role})
	return nil
}

// RemoveMember removes userID from a channel. actorID must be an owner or
// admin, and the owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, actorID, conversationID, userID string) error {
	if err := s.authorizeRosterChange(actorID, conversationID); err != nil {
		return err
	}
	target, err := s.db.GetMember(conversationID, userID)
	if err != nil {
		return fmt.Errorf("get member: %w", err)
	}
	if target == nil {
		return fmt.Errorf("%w: %s is not a member", ErrNotFound, userID)
	}
	if target.Role == store.RoleOwner {
		return fmt.Errorf("%w: the owner cannot be removed", ErrPermissionDenied)
	}
	if _, err := s.db.RemoveMember(conversationID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	s.publish(bus.KindMemberRemoved, conversationID, *target)
	return nil
}

func (s *Service) authorizeRosterChange(actorID, conversationID string) error {
	conv, err := s.requireConversation(conversationID)
	if err != nil {
		return err
	}
	if conv.Kind == store.KindDirect {
		return fmt.Errorf("%w: direct conversations have a fixed roster", ErrInvalidArgument)
	}
	actor, err := s.requireMember(conversationID, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.CanManage() {
		return fmt.Errorf("%w: %s cannot manage members", ErrPermissionDenied, actorID)
	}
	return nil
}

func (s *Service) requireMember(conversationID, userID string) (*store.Member, error) {
	m, err := s.db.GetMember(conversationID, userID)
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s is not a member of %s", ErrPermissionDenied, userID, conversationID)
	}
	return m, nil
}
