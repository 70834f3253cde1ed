package client

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matheus3301/huddle/internal/api"
	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/platform"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	"github.com/matheus3301/huddle/internal/store"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/health"
)

type fixture struct {
	svc    *platform.Service
	srv    *grpc.Server
	client *Client
	remote *Remote
	socket string
	dmID   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tmpDir, err := os.MkdirTemp("/tmp", "huddle-client-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	db, err := store.Open(filepath.Join(tmpDir, "huddle.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	svc := platform.New(db, b, nil)
	ctx := context.Background()
	for _, p := range []store.Profile{
		{ID: "ann", FullName: "Ann Lee", Email: "ann@example.com"},
		{ID: "bob", Email: "bob.stone@example.com"},
	} {
		_, err := svc.UpsertProfile(ctx, &p)
		require.NoError(t, err)
	}
	dm, _, err := svc.CreateDirect(ctx, "ann", "bob")
	require.NoError(t, err)

	srv := grpc.NewServer()
	rpcv1.RegisterWorkspaceServiceServer(srv, api.NewWorkspaceService("test", svc, b))
	rpcv1.RegisterConversationServiceServer(srv, api.NewConversationService(svc))
	rpcv1.RegisterMessageServiceServer(srv, api.NewMessageService(svc, b, nil))
	rpcv1.RegisterProfileServiceServer(srv, api.NewProfileService(svc))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	socketPath := filepath.Join(tmpDir, "d.sock")
	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)
	go func() { _ = srv.Serve(listener) }()
	t.Cleanup(srv.Stop)

	c, err := New(socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &fixture{svc: svc, srv: srv, client: c, remote: NewRemote(c, nil), socket: socketPath, dmID: dm.ID}
}

func TestRemoteFetchAndSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.remote.SendMessage(ctx, intsync.NewMessage{ConversationID: f.dmID, SenderID: "ann", Content: "one"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "ann@example.com", first.SenderEmail)

	second, err := f.remote.SendMessage(ctx, intsync.NewMessage{ConversationID: f.dmID, SenderID: "bob", Content: "two"})
	require.NoError(t, err)

	msgs, err := f.remote.FetchMessages(ctx, f.dmID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)

	tail, err := f.remote.FetchMessagesSince(ctx, f.dmID, second.CreatedAt)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, second.ID, tail[0].ID)

	_, err = f.remote.SendMessage(ctx, intsync.NewMessage{ConversationID: f.dmID, SenderID: "mallory", Content: "x"})
	assert.Error(t, err)
}

func TestRemoteIdentitiesAndConversations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ids, err := f.remote.FetchIdentities(ctx, []string{"ann", "bob", "ghost"})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, "Ann Lee", ids["ann"].DisplayName)
	assert.Equal(t, "bob.stone", ids["bob"].DisplayName)
	_, ok := ids["ghost"]
	assert.False(t, ok)

	convs, err := f.remote.ListConversations(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, f.dmID, convs[0].ID)
	assert.Equal(t, "bob.stone", convs[0].Name)
	assert.Equal(t, 2, convs[0].MemberCount)
}

func TestRemoteSubscribeDeliversInserts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	got := make(chan intsync.Message, 4)
	sub, err := f.remote.Subscribe(ctx, f.dmID, func(m intsync.Message) { got <- m })
	require.NoError(t, err)

	// Subscribe returns after the daemon registered the feed, so this insert
	// must arrive.
	sent, err := f.svc.SendMessage(ctx, intsync.NewMessage{ConversationID: f.dmID, SenderID: "bob", Content: "ping"})
	require.NoError(t, err)

	select {
	case m := <-got:
		assert.Equal(t, sent.ID, m.ID)
		assert.Equal(t, "ping", m.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("insert not delivered")
	}

	sub.Close()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after Close")
	}
	assert.NoError(t, sub.Err())
	sub.Close()
}

func TestRemoteSubscribeUnknownConversation(t *testing.T) {
	f := newFixture(t)

	_, err := f.remote.Subscribe(context.Background(), "missing", func(intsync.Message) {})
	assert.Error(t, err)
}

func TestRemoteSubscriptionReportsDrop(t *testing.T) {
	f := newFixture(t)

	sub, err := f.remote.Subscribe(context.Background(), f.dmID, func(intsync.Message) {})
	require.NoError(t, err)

	f.srv.Stop()

	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after server stop")
	}
	assert.Error(t, sub.Err())
}

func TestSynchronizerOverRemote(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := f.svc.SendMessage(ctx, intsync.NewMessage{ConversationID: f.dmID, SenderID: "ann", Content: "history"})
	require.NoError(t, err)

	s := intsync.New(f.remote, nil, nil)
	defer s.Close()
	require.NoError(t, s.Open(ctx, f.dmID))

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Ann Lee", msgs[0].Sender.Name)

	require.NoError(t, s.Send(ctx, f.dmID, "  live one  ", "bob"))

	require.Eventually(t, func() bool {
		msgs := s.Messages()
		return len(msgs) == 2 && msgs[1].Sender.Resolved
	}, 2*time.Second, 10*time.Millisecond)

	msgs = s.Messages()
	assert.Equal(t, "live one", msgs[1].Content)
	assert.Equal(t, "bob.stone", msgs[1].Sender.Name)
}

func TestHealthClient(t *testing.T) {
	f := newFixture(t)

	resp, err := f.client.Health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestProbe(t *testing.T) {
	f := newFixture(t)
	assert.True(t, Probe(f.socket))
	assert.False(t, Probe(filepath.Join(t.TempDir(), "absent.sock")))
}

func TestWaitForDaemonTimesOut(t *testing.T) {
	start := time.Now()
	assert.False(t, WaitForDaemon(filepath.Join(t.TempDir(), "absent.sock"), 100*time.Millisecond))
	assert.Less(t, time.Since(start), 3*time.Second)
}
