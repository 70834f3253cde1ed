package platform

import (
	"context"
	"fmt"
	"strings"
	gosync "sync"
	"time"

	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/metrics"
	"github.com/matheus3301/huddle/internal/store"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"go.uber.org/zap"
)

// Service is the in-process backend: persistence in sqlite and a realtime
// insert feed on the bus. It implements intsync.Store.
type Service struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger

	// sendMu makes publish order match timestamp order, so a feed that
	// overflows has seen nothing newer than the first message it missed.
	sendMu gosync.Mutex
}

var (
	_ intsync.Store        = (*Service)(nil)
	_ intsync.SinceFetcher = (*Service)(nil)
)

// New creates a Service. logger may be nil.
func New(db *store.DB, b *bus.Bus, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, bus: b, logger: logger}
}

func (s *Service) publish(kind, topic string, payload any) {
	s.bus.Publish(bus.Event{Kind: kind, Topic: topic, Timestamp: time.Now(), Payload: payload})
}

func (s *Service) requireConversation(id string) (*store.Conversation, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: conversation id is required", ErrInvalidArgument)
	}
	c, err := s.db.GetConversation(id)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: conversation %s", ErrNotFound, id)
	}
	return c, nil
}

// FetchMessages returns the full history of a conversation, oldest first.
func (s *Service) FetchMessages(ctx context.Context, conversationID string) ([]intsync.Message, error) {
	if _, err := s.requireConversation(conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.db.ListMessages(conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return toSyncMessages(msgs), nil
}

// FetchMessagesSince returns messages with CreatedAt >= afterMillis, oldest first.
func (s *Service) FetchMessagesSince(ctx context.Context, conversationID string, afterMillis int64) ([]intsync.Message, error) {
	if _, err := s.requireConversation(conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.db.ListMessagesSince(conversationID, afterMillis, "")
	if err != nil {
		return nil, fmt.Errorf("list messages since: %w", err)
	}
	return toSyncMessages(msgs), nil
}

// SendMessage stores a message from a member and publishes it on the insert feed.
func (s *Service) SendMessage(ctx context.Context, nm intsync.NewMessage) (intsync.Message, error) {
	content := strings.TrimSpace(nm.Content)
	if content == "" {
		return intsync.Message{}, fmt.Errorf("%w: message content is empty", ErrInvalidArgument)
	}
	if nm.SenderID == "" {
		return intsync.Message{}, fmt.Errorf("%w: sender id is required", ErrInvalidArgument)
	}
	if _, err := s.requireConversation(nm.ConversationID); err != nil {
		return intsync.Message{}, err
	}
	ok, err := s.db.IsMember(nm.ConversationID, nm.SenderID)
	if err != nil {
		return intsync.Message{}, fmt.Errorf("check membership: %w", err)
	}
	if !ok {
		return intsync.Message{}, fmt.Errorf("%w: %s is not a member of %s", ErrPermissionDenied, nm.SenderID, nm.ConversationID)
	}

	m := store.Message{ConversationID: nm.ConversationID, SenderID: nm.SenderID, Content: content}
	s.sendMu.Lock()
	if err := s.db.InsertMessage(&m); err != nil {
		s.sendMu.Unlock()
		return intsync.Message{}, fmt.Errorf("insert message: %w", err)
	}
	s.publish(bus.KindMessageCreated, m.ConversationID, m)
	s.sendMu.Unlock()
	metrics.IncMessagesCreated()
	s.logger.Debug("message created",
		zap.String("conversation", m.ConversationID),
		zap.String("id", m.ID),
		zap.String("sender", m.SenderID))
	return toSyncMessage(m), nil
}

// FetchIdentities resolves display identities. Unknown users are absent from the result.
func (s *Service) FetchIdentities(ctx context.Context, userIDs []string) (map[string]intsync.Identity, error) {
	profiles, err := s.db.GetProfiles(userIDs)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	out := make(map[string]intsync.Identity, len(profiles))
	for id, p := range profiles {
		ident := store.IdentityOf(p)
		out[id] = intsync.Identity{UserID: ident.UserID, DisplayName: ident.DisplayName, Avatar: ident.Avatar}
	}
	return out, nil
}

// ListConversations returns the user's conversations, most recent first.
// Direct conversations are titled with the other participant's display name.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]intsync.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	convs, err := s.db.ListConversationsForUser(userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	out := make([]intsync.Conversation, 0, len(convs))
	for _, c := range convs {
		if c.Kind == store.KindDirect {
			c.Name = s.directTitle(c.ID, userID)
		}
		out = append(out, toSyncConversation(c))
	}
	return out, nil
}

func (s *Service) directTitle(conversationID, userID string) string {
	members, err := s.db.ListMembers(conversationID)
	if err != nil {
		s.logger.Warn("list direct members", zap.String("conversation", conversationID), zap.Error(err))
		return intsync.UnknownSender
	}
	for _, m := range members {
		if m.UserID == userID {
			continue
		}
		p := store.Profile{ID: m.UserID, FullName: m.Name, Email: m.Email}
		if name := p.DisplayName(); name != "" {
			return name
		}
	}
	return intsync.UnknownSender
}

// SearchMessages searches the messages of conversations userID belongs to.
func (s *Service) SearchMessages(ctx context.Context, userID, query, conversationID string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is empty", ErrInvalidArgument)
	}
	results, err := s.db.SearchMessages(userID, query, conversationID, 50)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	return results, nil
}

// Stats reports store totals.
type Stats struct {
	Conversations int
	Messages      int
}

// Stats returns conversation and message totals.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.Conversations, err = s.db.ConversationCount(); err != nil {
		return st, fmt.Errorf("count conversations: %w", err)
	}
	if st.Messages, err = s.db.MessageCount(); err != nil {
		return st, fmt.Errorf("count messages: %w", err)
	}
	return st, nil
}
