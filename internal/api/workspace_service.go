package api

import (
	"context"
	"time"

	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/platform"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
)

// WorkspaceService implements the WorkspaceService gRPC service.
type WorkspaceService struct {
	workspace string
	startedAt time.Time
	svc       *platform.Service
	bus       *bus.Bus
}

// NewWorkspaceService creates a new workspace service.
func NewWorkspaceService(workspace string, svc *platform.Service, b *bus.Bus) *WorkspaceService {
	return &WorkspaceService{
		workspace: workspace,
		startedAt: time.Now(),
		svc:       svc,
		bus:       b,
	}
}

func (s *WorkspaceService) GetStatus(ctx context.Context, _ *rpcv1.GetStatusRequest) (*rpcv1.GetStatusResponse, error) {
	resp := &rpcv1.GetStatusResponse{
		Workspace:   s.workspace,
		UptimeMs:    time.Since(s.startedAt).Milliseconds(),
		Subscribers: int32(s.bus.Subscribers()),
	}

	// Counts are best effort.
	if stats, err := s.svc.Stats(ctx); err == nil {
		resp.ConversationCount = int32(stats.Conversations)
		resp.MessageCount = int32(stats.Messages)
	}
	return resp, nil
}
