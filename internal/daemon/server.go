package daemon

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/matheus3301/huddle/internal/api"
	"github.com/matheus3301/huddle/internal/metrics"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Services are the RPC handlers the server exposes.
type Services struct {
	fx.In

	Workspace    *api.WorkspaceService
	Conversation *api.ConversationService
	Message      *api.MessageService
	Profile      *api.ProfileService
}

func (s Services) register(srv *grpc.Server) {
	rpcv1.RegisterWorkspaceServiceServer(srv, s.Workspace)
	rpcv1.RegisterConversationServiceServer(srv, s.Conversation)
	rpcv1.RegisterMessageServiceServer(srv, s.Message)
	rpcv1.RegisterProfileServiceServer(srv, s.Profile)
}

// Server owns the daemon's gRPC listener on the workspace socket.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
	path   string
	logger *zap.Logger
}

// NewServer listens on the workspace socket and registers svcs. The socket is
// only reachable by the current user.
func NewServer(p Params, svcs Services, logger *zap.Logger) (*Server, error) {
	path := p.socketPath()
	lis, err := listenUnix(path)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(metrics.GRPCUnaryInterceptor()),
		grpc.ChainStreamInterceptor(metrics.GRPCStreamInterceptor()),
	)
	svcs.register(srv)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	return &Server{grpc: srv, health: hs, lis: lis, path: path, logger: logger}, nil
}

// listenUnix binds path, replacing any leftover socket. The caller holds the
// workspace lock, so a leftover socket has no live owner.
func listenUnix(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	lis, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen unix socket: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		_ = lis.Close()
		return nil, fmt.Errorf("chmod socket: %w", err)
	}
	return lis, nil
}

// Serve handles RPCs until Stop is called.
func (s *Server) Serve() error {
	s.logger.Info("gRPC server listening", zap.String("socket", s.path))
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return s.grpc.Serve(s.lis)
}

// Stop marks the server not serving, drains in-flight RPCs and removes the
// socket. Open WatchMessages streams end when ctx is done.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("gRPC server stopping")
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
	_ = os.Remove(s.path)
}
