package platform

import (
	"context"
	"fmt"
	gosync "sync"

	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/metrics"
	"github.com/matheus3301/huddle/internal/store"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"go.uber.org/zap"
)

const subscriptionBuffer = 256

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  gosync.Mutex
	err error
}

func (s *subscription) Done() <-chan struct{} { return s.done }

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *subscription) Close() { s.cancel() }

// Subscribe delivers message.created events for one conversation to onInsert,
// in publish order, until ctx ends or the subscription is closed.
func (s *Service) Subscribe(ctx context.Context, conversationID string, onInsert func(intsync.Message)) (intsync.Subscription, error) {
	if _, err := s.requireConversation(conversationID); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(ctx)
	feed := s.bus.SubscribeFeed(bus.Filter{Namespace: bus.KindMessageCreated, Topic: conversationID}, subscriptionBuffer)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}
	metrics.IncLiveSubscriptions()

	go func() {
		defer close(sub.done)
		defer metrics.DecLiveSubscriptions()
		defer feed.Close()
		for {
			select {
			case evt := <-feed.C:
				m, ok := evt.Payload.(store.Message)
				if !ok {
					s.logger.Warn("unexpected message.created payload", zap.Any("payload", evt.Payload))
					continue
				}
				onInsert(toSyncMessage(m))
			case <-feed.Overflow():
				s.logger.Warn("insert feed overflowed", zap.String("conversation", conversationID))
				sub.setErr(fmt.Errorf("conversation %s: %w", conversationID, bus.ErrOverflow))
				return
			case <-ctx.Done():
				// Cancellation is a clean end. Anything else, like a deadline, is reported.
				if err := context.Cause(ctx); err != context.Canceled {
					sub.setErr(err)
				}
				return
			}
		}
	}()
	return sub, nil
}
