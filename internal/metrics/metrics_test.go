package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestSplitFullMethod(t *testing.T) {
	svc, method := splitFullMethod("/huddle.v1.MessageService/SendMessage")
	if svc != "huddle.v1.MessageService" || method != "SendMessage" {
		t.Errorf("splitFullMethod = %q, %q", svc, method)
	}
	svc, method = splitFullMethod("garbage")
	if svc != "unknown" || method != "unknown" {
		t.Errorf("splitFullMethod(garbage) = %q, %q", svc, method)
	}
}

func TestGRPCUnaryInterceptorCountsCodes(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/huddle.v1.ProfileService/GetProfile"}
	ok := grpcServerHandledTotal.WithLabelValues("huddle.v1.ProfileService", "GetProfile", codes.OK.String())
	notFound := grpcServerHandledTotal.WithLabelValues("huddle.v1.ProfileService", "GetProfile", codes.NotFound.String())
	beforeOK := testutil.ToFloat64(ok)
	beforeNotFound := testutil.ToFloat64(notFound)

	intercept := GRPCUnaryInterceptor()
	_, _ = intercept(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return "fine", nil
	})
	_, err := intercept(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("interceptor changed the handler error: %v", err)
	}

	if got := testutil.ToFloat64(ok) - beforeOK; got != 1 {
		t.Errorf("OK count delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(notFound) - beforeNotFound; got != 1 {
		t.Errorf("NotFound count delta = %v, want 1", got)
	}
}

func TestHTTPMiddlewareRecordsStatus(t *testing.T) {
	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418")
	before := testutil.ToFloat64(counter)

	h := HTTPMiddleware(func(*http.Request) string { return "/teapot" })(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("request count delta = %v, want 1", got)
	}
}

func TestStatusRecorderHijackUnsupported(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	if _, _, err := rec.Hijack(); err == nil {
		t.Error("Hijack() on a recorder should fail")
	}
	if rec.Unwrap() == nil {
		t.Error("Unwrap() returned nil")
	}
}

func TestGauges(t *testing.T) {
	before := testutil.ToFloat64(liveSubscriptions)
	IncLiveSubscriptions()
	IncLiveSubscriptions()
	DecLiveSubscriptions()
	if got := testutil.ToFloat64(liveSubscriptions) - before; got != 1 {
		t.Errorf("live subscriptions delta = %v, want 1", got)
	}
	DecLiveSubscriptions()

	beforeWS := testutil.ToFloat64(wsActiveConnections)
	IncWSActive()
	DecWSActive()
	if got := testutil.ToFloat64(wsActiveConnections); got != beforeWS {
		t.Errorf("ws active = %v, want %v", got, beforeWS)
	}
}

func TestCounters(t *testing.T) {
	stale := syncEventsTotal.WithLabelValues(OutcomeStale)
	lookupErr := identityLookupsTotal.WithLabelValues(LookupError)
	dropped := busDroppedTotal.WithLabelValues("message.created")
	b1, b2, b3, b4 := testutil.ToFloat64(stale), testutil.ToFloat64(lookupErr), testutil.ToFloat64(dropped), testutil.ToFloat64(messagesCreatedTotal)

	IncSyncEvent(OutcomeStale)
	IncIdentityLookup(LookupError)
	IncBusDropped("message.created")
	IncMessagesCreated()

	for name, delta := range map[string]float64{
		"stale":   testutil.ToFloat64(stale) - b1,
		"lookup":  testutil.ToFloat64(lookupErr) - b2,
		"dropped": testutil.ToFloat64(dropped) - b3,
		"created": testutil.ToFloat64(messagesCreatedTotal) - b4,
	} {
		if delta != 1 {
			t.Errorf("%s delta = %v, want 1", name, delta)
		}
	}
}

func TestGRPCStreamInterceptorPassesError(t *testing.T) {
	boom := errors.New("boom")
	info := &grpc.StreamServerInfo{FullMethod: "/huddle.v1.MessageService/WatchMessages", IsServerStream: true}
	err := GRPCStreamInterceptor()(nil, nil, info, func(any, grpc.ServerStream) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("stream interceptor error = %v, want boom", err)
	}
}
