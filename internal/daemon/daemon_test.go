package daemon

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/huddle/internal/lock"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/matheus3301/huddle/internal/tui/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func testParams(t *testing.T) Params {
	t.Helper()
	// Use /tmp for short socket paths (macOS 104-char limit).
	tmpDir, err := os.MkdirTemp("/tmp", "huddle-fx-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })
	return Params{
		Workspace:  "fxtest",
		SocketPath: filepath.Join(tmpDir, "d.sock"),
		BaseDir:    tmpDir,
		LogLevel:   "error",
	}
}

func startDaemon(t *testing.T, p Params) *client.Client {
	t.Helper()
	app := fxtest.New(t, Module(p), fx.NopLogger)
	app.RequireStart()
	t.Cleanup(app.RequireStop)

	c, err := client.New(p.SocketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.Eventually(t, func() bool {
		resp, err := c.Health.Check(context.Background(), &healthpb.HealthCheckRequest{})
		return err == nil && resp.Status == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 20*time.Millisecond)
	return c
}

func TestFxModuleWiring(t *testing.T) {
	p := testParams(t)
	c := startDaemon(t, p)

	resp, err := c.Workspace.GetStatus(context.Background(), &rpcv1.GetStatusRequest{})
	require.NoError(t, err)
	assert.Equal(t, "fxtest", resp.Workspace)
	assert.Zero(t, resp.ConversationCount)

	info, err := os.Stat(p.SocketPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	assert.FileExists(t, filepath.Join(p.BaseDir, "huddle.db"))
	assert.FileExists(t, filepath.Join(p.BaseDir, "logs", "huddled.log"))
	owner, ok := lock.Holder(p.lockPath())
	require.True(t, ok)
	assert.Equal(t, os.Getpid(), owner.PID)
	assert.Equal(t, p.SocketPath, owner.Socket)
}

func TestStopRemovesSocketAndLock(t *testing.T) {
	p := testParams(t)
	app := fxtest.New(t, Module(p), fx.NopLogger)
	app.RequireStart()
	app.RequireStop()

	_, err := os.Stat(p.SocketPath)
	assert.True(t, os.IsNotExist(err), "socket should be removed, stat err = %v", err)
	_, held := lock.Holder(p.lockPath())
	assert.False(t, held)
}

// A second daemon on the same workspace must fail on the lock before it
// touches the first daemon's socket.
func TestSecondDaemonRefused(t *testing.T) {
	p := testParams(t)
	c := startDaemon(t, p)

	second := p
	second.SocketPath = filepath.Join(p.BaseDir, "other.sock")
	app := fx.New(Module(second), fx.NopLogger)
	err := app.Err()
	require.Error(t, err)
	var held *lock.HeldError
	require.True(t, errors.As(err, &held), "want HeldError, got %v", err)
	assert.Equal(t, p.SocketPath, held.Owner.Socket)

	_, err = c.Workspace.GetStatus(context.Background(), &rpcv1.GetStatusRequest{})
	assert.NoError(t, err, "first daemon should keep serving")
	_, statErr := os.Stat(second.SocketPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestHTTPGatewayStarts(t *testing.T) {
	p := testParams(t)
	p.HTTPAddr = "127.0.0.1:0"
	c := startDaemon(t, p)

	_, err := c.Workspace.GetStatus(context.Background(), &rpcv1.GetStatusRequest{})
	assert.NoError(t, err)
}

// TestConversationEndToEnd drives two synchronizers through the daemon:
// one user's send shows up in the other's open view with a resolved sender.
func TestConversationEndToEnd(t *testing.T) {
	p := testParams(t)
	c := startDaemon(t, p)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, prof := range []*rpcv1.Profile{
		{Id: "ann", FullName: "Ann Lee", Email: "ann@example.com"},
		{Id: "bob", Email: "bob.stone@example.com"},
	} {
		_, err := c.Profile.UpsertProfile(ctx, &rpcv1.UpsertProfileRequest{Profile: prof})
		require.NoError(t, err)
	}
	dm, err := c.Conversation.CreateDirect(ctx, &rpcv1.CreateDirectRequest{UserId: "ann", PeerId: "bob"})
	require.NoError(t, err)
	convID := dm.Conversation.Id

	remote := client.NewRemote(c, nil)
	annView := intsync.New(remote, nil, nil)
	defer annView.Close()
	bobView := intsync.New(remote, nil, nil)
	defer bobView.Close()

	require.NoError(t, annView.Open(ctx, convID))
	require.NoError(t, bobView.Open(ctx, convID))
	assert.Empty(t, annView.Messages())

	require.NoError(t, bobView.Send(ctx, convID, "lunch?", "bob"))
	require.NoError(t, annView.Send(ctx, convID, "sure", "ann"))

	for _, view := range []*intsync.Synchronizer{annView, bobView} {
		require.Eventually(t, func() bool {
			msgs := view.Messages()
			return len(msgs) == 2 && msgs[0].Sender.Resolved && msgs[1].Sender.Resolved
		}, 2*time.Second, 10*time.Millisecond)

		msgs := view.Messages()
		assert.Equal(t, "lunch?", msgs[0].Content)
		assert.Equal(t, "bob.stone", msgs[0].Sender.Name)
		assert.Equal(t, "sure", msgs[1].Content)
		assert.Equal(t, "Ann Lee", msgs[1].Sender.Name)
	}

	status, err := c.Workspace.GetStatus(ctx, &rpcv1.GetStatusRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, status.MessageCount)
	assert.EqualValues(t, 1, status.ConversationCount)
}

func TestParamsPaths(t *testing.T) {
	p := Params{Workspace: "w", BaseDir: "/base"}
	assert.Equal(t, "/base/daemon.sock", p.socketPath())
	assert.Equal(t, "/base/LOCK", p.lockPath())
	assert.Equal(t, "/base/huddle.db", p.dbPath())
	assert.Equal(t, "/base/logs/huddled.log", p.logPath())

	p.SocketPath = "/run/x.sock"
	assert.Equal(t, "/run/x.sock", p.socketPath())
}
