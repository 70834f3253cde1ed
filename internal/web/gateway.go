// Package web serves the daemon's HTTP side: health, Prometheus metrics and
// a websocket feed of new messages per conversation.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/metrics"
	"github.com/matheus3301/huddle/internal/platform"
	"github.com/matheus3301/huddle/internal/store"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	feedBuffer   = 256
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// MessageEvent is the JSON frame pushed to websocket clients.
type MessageEvent struct {
	Kind           string `json:"kind"`
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	SenderEmail    string `json:"sender_email,omitempty"`
	Content        string `json:"content"`
	CreatedAt      int64  `json:"created_at"`
}

// Gateway is the daemon's HTTP server.
type Gateway struct {
	svc    *platform.Service
	bus    *bus.Bus
	logger *zap.Logger
	server *http.Server
}

// NewGateway creates a gateway bound to addr. Nothing listens until Start.
func NewGateway(addr string, svc *platform.Service, b *bus.Bus, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{svc: svc, bus: b, logger: logger}
	g.server = &http.Server{
		Addr:              addr,
		Handler:           g.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return g
}

// Router returns the gateway's routes.
func (g *Gateway) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.HTTPMiddleware(routeTemplate))
	r.HandleFunc("/healthz", g.health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/ws/conversations/{id}", g.watch).Methods(http.MethodGet)
	return r
}

// Start listens and serves until Stop. It returns once the listener is bound.
func (g *Gateway) Start() error {
	ln, err := net.Listen("tcp", g.server.Addr)
	if err != nil {
		return err
	}
	g.logger.Info("HTTP gateway starting", zap.String("addr", ln.Addr().String()))
	go func() {
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("HTTP gateway error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (g *Gateway) Stop(ctx context.Context) error {
	g.logger.Info("HTTP gateway stopping")
	return g.server.Shutdown(ctx)
}

func (g *Gateway) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (g *Gateway) watch(w http.ResponseWriter, r *http.Request) {
	convID := mux.Vars(r)["id"]
	if _, err := g.svc.GetConversation(r.Context(), convID); err != nil {
		if errors.Is(err, platform.ErrNotFound) {
			http.Error(w, "conversation not found", http.StatusNotFound)
			return
		}
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}

	// Subscribe before the upgrade so nothing published after the
	// handshake is missed.
	feed := g.bus.SubscribeFeed(bus.Filter{Namespace: bus.KindMessageCreated, Topic: convID}, feedBuffer)
	defer feed.Close()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.IncWSActive()
	defer metrics.DecWSActive()
	g.logger.Debug("websocket connected", zap.String("conversation", convID))

	// Inbound frames are ignored; reading surfaces the client's close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					g.logger.Debug("websocket read ended", zap.Error(err))
				}
				return
			}
		}
	}()

	for {
		select {
		case evt := <-feed.C:
			m, ok := evt.Payload.(store.Message)
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(MessageEvent{
				Kind:           evt.Kind,
				ID:             m.ID,
				ConversationID: m.ConversationID,
				SenderID:       m.SenderID,
				SenderEmail:    m.SenderEmail,
				Content:        m.Content,
				CreatedAt:      m.CreatedAt,
			}); err != nil {
				g.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-feed.Overflow():
			// The client has missed messages; it must reconnect and refetch.
			g.logger.Warn("websocket feed fell behind", zap.String("conversation", convID))
			msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, bus.ErrOverflow.Error())
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeTimeout))
			return
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

// routeTemplate labels requests by their mux route so ids do not explode
// metric cardinality.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "other"
}
