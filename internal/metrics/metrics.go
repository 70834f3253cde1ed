package metrics

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the daemon.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
	grpcServerHandlingSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huddle_grpc_server_handling_seconds",
			Help:    "gRPC unary handler latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"grpc_service", "grpc_method"},
	)
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_http_requests_total",
			Help: "Total number of HTTP requests processed by the gateway.",
		},
		[]string{"method", "route", "status"},
	)
	messagesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_messages_created_total",
			Help: "Total number of messages persisted.",
		},
	)
	busDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_bus_dropped_events_total",
			Help: "Events dropped because a bus subscriber was full.",
		},
		[]string{"kind"},
	)
	liveSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_live_subscriptions",
			Help: "Number of open message subscriptions.",
		},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "huddle_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	syncEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_sync_events_total",
			Help: "Messages seen by the synchronizer, by outcome.",
		},
		[]string{"outcome"},
	)
	identityLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_identity_lookups_total",
			Help: "Sender identity lookups, by result.",
		},
		[]string{"result"},
	)
)

// Synchronizer outcomes. Foreign events belong to another conversation.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeStale     = "stale"
	OutcomeForeign   = "foreign"
)

// Identity lookup results.
const (
	LookupFound    = "found"
	LookupNotFound = "not_found"
	LookupError    = "error"
)

func init() {
	prometheus.MustRegister(
		grpcServerHandledTotal,
		grpcServerHandlingSeconds,
		httpRequestsTotal,
		messagesCreatedTotal,
		busDroppedTotal,
		liveSubscriptions,
		wsActiveConnections,
		syncEventsTotal,
		identityLookupsTotal,
	)
}

// GRPCUnaryInterceptor counts and times unary calls.
func GRPCUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, status.Code(err).String()).Inc()
		grpcServerHandlingSeconds.WithLabelValues(service, method).Observe(time.Since(start).Seconds())
		return resp, err
	}
}

// GRPCStreamInterceptor counts streaming calls when they finish.
func GRPCStreamInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, status.Code(err).String()).Inc()
		return err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// HTTPMiddleware counts requests by the route template reported by route(r).
func HTTPMiddleware(route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			httpRequestsTotal.WithLabelValues(r.Method, route(r), strconv.Itoa(rec.status)).Inc()
		})
	}
}

func IncMessagesCreated() {
	messagesCreatedTotal.Inc()
}

func IncBusDropped(kind string) {
	busDroppedTotal.WithLabelValues(kind).Inc()
}

func IncLiveSubscriptions() {
	liveSubscriptions.Inc()
}

func DecLiveSubscriptions() {
	liveSubscriptions.Dec()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncSyncEvent(outcome string) {
	syncEventsTotal.WithLabelValues(outcome).Inc()
}

func IncIdentityLookup(result string) {
	identityLookupsTotal.WithLabelValues(result).Inc()
}
