package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/platform"
	"github.com/matheus3301/huddle/internal/store"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway(t *testing.T) (*Gateway, *platform.Service, *httptest.Server) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "web.db"))
	require.NoError(t, err)
	_, err = db.Migrate()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	b := bus.New()
	svc := platform.New(db, b, nil)
	for _, p := range []store.Profile{
		{ID: "ann", FullName: "Ann Lee", Email: "ann@example.com"},
		{ID: "bob", FullName: "Bob Stone", Email: "bob@example.com"},
	} {
		_, err := svc.UpsertProfile(context.Background(), &p)
		require.NoError(t, err)
	}

	g := NewGateway("127.0.0.1:0", svc, b, nil)
	srv := httptest.NewServer(g.Router())
	t.Cleanup(srv.Close)
	return g, svc, srv
}

func TestHealthz(t *testing.T) {
	_, _, srv := testGateway(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsExposesRequestCounter(t *testing.T) {
	_, _, srv := testGateway(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(data), `route="/healthz"`)
}

func TestWatchUnknownConversation(t *testing.T) {
	_, _, srv := testGateway(t)

	resp, err := http.Get(srv.URL + "/ws/conversations/nope")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWatchStreamsNewMessages(t *testing.T) {
	_, svc, srv := testGateway(t)
	ctx := context.Background()

	conv, _, err := svc.CreateDirect(ctx, "ann", "bob")
	require.NoError(t, err)
	other, err := svc.CreateChannel(ctx, "ann", "general", "")
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/conversations/" + conv.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	_, err = svc.SendMessage(ctx, intsync.NewMessage{ConversationID: other.ID, SenderID: "ann", Content: "elsewhere"})
	require.NoError(t, err)
	sent, err := svc.SendMessage(ctx, intsync.NewMessage{ConversationID: conv.ID, SenderID: "bob", Content: "hi ann"})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var evt MessageEvent
	require.NoError(t, conn.ReadJSON(&evt))

	assert.Equal(t, bus.KindMessageCreated, evt.Kind)
	assert.Equal(t, sent.ID, evt.ID)
	assert.Equal(t, conv.ID, evt.ConversationID)
	assert.Equal(t, "hi ann", evt.Content)
	assert.Equal(t, "bob@example.com", evt.SenderEmail)
}

func TestGatewayStartStop(t *testing.T) {
	g := NewGateway("127.0.0.1:0", nil, bus.New(), nil)
	require.NoError(t, g.Start())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, g.Stop(ctx))
}
