package client

import (
	"context"
	"errors"
	"fmt"
	gosync "sync"

	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"go.uber.org/zap"
)

// Remote adapts the daemon API to the synchronizer's Store contract.
type Remote struct {
	c      *Client
	logger *zap.Logger
}

var (
	_ intsync.Store        = (*Remote)(nil)
	_ intsync.SinceFetcher = (*Remote)(nil)
)

// NewRemote returns a Store backed by the daemon connection.
func NewRemote(c *Client, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{c: c, logger: logger}
}

func (r *Remote) FetchMessages(ctx context.Context, conversationID string) ([]intsync.Message, error) {
	return r.listMessages(ctx, &rpcv1.ListMessagesRequest{ConversationId: conversationID})
}

func (r *Remote) FetchMessagesSince(ctx context.Context, conversationID string, afterMillis int64) ([]intsync.Message, error) {
	return r.listMessages(ctx, &rpcv1.ListMessagesRequest{ConversationId: conversationID, AfterUnixMs: afterMillis})
}

func (r *Remote) listMessages(ctx context.Context, req *rpcv1.ListMessagesRequest) ([]intsync.Message, error) {
	resp, err := r.c.Message.ListMessages(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make([]intsync.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, fromWire(m))
	}
	return out, nil
}

func (r *Remote) SendMessage(ctx context.Context, nm intsync.NewMessage) (intsync.Message, error) {
	resp, err := r.c.Message.SendMessage(ctx, &rpcv1.SendMessageRequest{
		ConversationId: nm.ConversationID,
		SenderId:       nm.SenderID,
		Content:        nm.Content,
	})
	if err != nil {
		return intsync.Message{}, err
	}
	return fromWire(resp.Message), nil
}

func (r *Remote) FetchIdentities(ctx context.Context, userIDs []string) (map[string]intsync.Identity, error) {
	resp, err := r.c.Profile.ResolveIdentities(ctx, &rpcv1.ResolveIdentitiesRequest{UserIds: userIDs})
	if err != nil {
		return nil, err
	}
	out := make(map[string]intsync.Identity, len(resp.Identities))
	for _, id := range resp.Identities {
		out[id.UserId] = intsync.Identity{UserID: id.UserId, DisplayName: id.DisplayName, Avatar: id.Avatar}
	}
	return out, nil
}

func (r *Remote) ListConversations(ctx context.Context, userID string) ([]intsync.Conversation, error) {
	resp, err := r.c.Conversation.ListConversations(ctx, &rpcv1.ListConversationsRequest{UserId: userID})
	if err != nil {
		return nil, err
	}
	out := make([]intsync.Conversation, 0, len(resp.Conversations))
	for _, c := range resp.Conversations {
		out = append(out, intsync.Conversation{
			ID:                 c.Id,
			Kind:               c.Kind,
			Name:               c.Name,
			Description:        c.Description,
			MemberCount:        int(c.MemberCount),
			LastMessageAt:      c.LastMessageAtUnixMs,
			LastMessagePreview: c.LastMessagePreview,
		})
	}
	return out, nil
}

// Subscribe opens a WatchMessages stream and returns once the daemon
// confirms its side of the feed is registered.
func (r *Remote) Subscribe(ctx context.Context, conversationID string, onInsert func(intsync.Message)) (intsync.Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	stream, err := r.c.Message.WatchMessages(ctx, &rpcv1.WatchMessagesRequest{ConversationId: conversationID})
	if err != nil {
		cancel()
		return nil, err
	}

	first, err := stream.Recv()
	if err != nil {
		cancel()
		return nil, err
	}
	if first.Kind != rpcv1.EventKindReady {
		cancel()
		return nil, fmt.Errorf("watch %s: expected %s, got %s", conversationID, rpcv1.EventKindReady, first.Kind)
	}

	sub := &watchSub{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sub.done)
		for {
			env, err := stream.Recv()
			if err != nil {
				// A cancelled context is a clean end.
				if ctx.Err() == nil {
					sub.setErr(err)
				} else if cause := context.Cause(ctx); !errors.Is(cause, context.Canceled) {
					sub.setErr(cause)
				}
				return
			}
			if env.Message == nil {
				r.logger.Debug("ignoring watch event", zap.String("kind", env.Kind))
				continue
			}
			onInsert(fromWire(env.Message))
		}
	}()
	return sub, nil
}

type watchSub struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  gosync.Mutex
	err error
}

func (s *watchSub) Done() <-chan struct{} { return s.done }

func (s *watchSub) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *watchSub) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *watchSub) Close() { s.cancel() }

func fromWire(m *rpcv1.Message) intsync.Message {
	if m == nil {
		return intsync.Message{}
	}
	return intsync.Message{
		ID:             m.Id,
		ConversationID: m.ConversationId,
		SenderID:       m.SenderId,
		SenderEmail:    m.SenderEmail,
		Content:        m.Content,
		CreatedAt:      m.CreatedAtUnixMs,
	}
}
