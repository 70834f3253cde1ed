package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/metrics"
	"github.com/matheus3301/huddle/internal/platform"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	"github.com/matheus3301/huddle/internal/store"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

const watchBuffer = 256

// MessageService implements the MessageService gRPC service.
type MessageService struct {
	svc    *platform.Service
	bus    *bus.Bus
	logger *zap.Logger
}

// NewMessageService creates a new message service.
func NewMessageService(svc *platform.Service, b *bus.Bus, logger *zap.Logger) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageService{svc: svc, bus: b, logger: logger}
}

func (s *MessageService) ListMessages(ctx context.Context, req *rpcv1.ListMessagesRequest) (*rpcv1.ListMessagesResponse, error) {
	var (
		msgs []intsync.Message
		err  error
	)
	if req.AfterUnixMs > 0 {
		msgs, err = s.svc.FetchMessagesSince(ctx, req.ConversationId, req.AfterUnixMs)
	} else {
		msgs, err = s.svc.FetchMessages(ctx, req.ConversationId)
	}
	if err != nil {
		return nil, toStatus("list messages", err)
	}

	out := make([]*rpcv1.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageToWire(m))
	}
	return &rpcv1.ListMessagesResponse{Messages: out}, nil
}

func (s *MessageService) SendMessage(ctx context.Context, req *rpcv1.SendMessageRequest) (*rpcv1.SendMessageResponse, error) {
	m, err := s.svc.SendMessage(ctx, intsync.NewMessage{
		ConversationID: req.ConversationId,
		SenderID:       req.SenderId,
		Content:        req.Content,
	})
	if err != nil {
		return nil, toStatus("send message", err)
	}
	return &rpcv1.SendMessageResponse{Message: messageToWire(m)}, nil
}

func (s *MessageService) SearchMessages(ctx context.Context, req *rpcv1.SearchMessagesRequest) (*rpcv1.SearchMessagesResponse, error) {
	results, err := s.svc.SearchMessages(ctx, req.UserId, req.Query, req.ConversationId)
	if err != nil {
		return nil, toStatus("search messages", err)
	}
	out := make([]*rpcv1.SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, &rpcv1.SearchResult{Message: storeMessageToWire(r.Message), Snippet: r.Snippet})
	}
	return &rpcv1.SearchMessagesResponse{Results: out}, nil
}

// WatchMessages streams message.created events for one conversation. The
// first envelope is EventKindReady, sent once the bus subscription exists.
func (s *MessageService) WatchMessages(req *rpcv1.WatchMessagesRequest, stream rpcv1.MessageService_WatchMessagesServer) error {
	if _, err := s.svc.GetConversation(stream.Context(), req.ConversationId); err != nil {
		return toStatus("watch messages", err)
	}

	feed := s.bus.SubscribeFeed(bus.Filter{Namespace: bus.KindMessageCreated, Topic: req.ConversationId}, watchBuffer)
	defer feed.Close()
	metrics.IncLiveSubscriptions()
	defer metrics.DecLiveSubscriptions()

	if err := stream.Send(&rpcv1.EventEnvelope{
		EventId:          uuid.New().String(),
		OccurredAtUnixMs: time.Now().UnixMilli(),
		Kind:             rpcv1.EventKindReady,
		ConversationId:   req.ConversationId,
	}); err != nil {
		return err
	}

	for {
		select {
		case evt := <-feed.C:
			m, ok := evt.Payload.(store.Message)
			if !ok {
				s.logger.Warn("unexpected message.created payload", zap.Any("payload", evt.Payload))
				continue
			}
			if err := stream.Send(&rpcv1.EventEnvelope{
				EventId:          uuid.New().String(),
				OccurredAtUnixMs: evt.Timestamp.UnixMilli(),
				Kind:             evt.Kind,
				ConversationId:   evt.Topic,
				Message:          storeMessageToWire(m),
			}); err != nil {
				return err
			}
		case <-feed.Overflow():
			s.logger.Warn("watch stream fell behind", zap.String("conversation", req.ConversationId))
			return grpcstatus.Errorf(codes.ResourceExhausted, "watch %s: %v", req.ConversationId, bus.ErrOverflow)
		case <-stream.Context().Done():
			return nil
		}
	}
}
