package client

import (
	"fmt"

	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Client wraps gRPC connections to the daemon.
type Client struct {
	conn         *grpc.ClientConn
	Workspace    *rpcv1.WorkspaceServiceClient
	Conversation *rpcv1.ConversationServiceClient
	Message      *rpcv1.MessageServiceClient
	Profile      *rpcv1.ProfileServiceClient
	Health       healthpb.HealthClient
}

// New dials the daemon's Unix domain socket and returns typed service clients.
func New(socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("dial daemon: %w", err)
	}
	return FromConn(conn), nil
}

// FromConn builds service clients over an existing connection.
func FromConn(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:         conn,
		Workspace:    rpcv1.NewWorkspaceServiceClient(conn),
		Conversation: rpcv1.NewConversationServiceClient(conn),
		Message:      rpcv1.NewMessageServiceClient(conn),
		Profile:      rpcv1.NewProfileServiceClient(conn),
		Health:       healthpb.NewHealthClient(conn),
	}
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
