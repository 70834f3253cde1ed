package sync

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	gosync "sync"
	"testing"
	"time"

	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/metrics"
	"github.com/matheus3301/huddle/internal/status"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSub struct {
	conversationID string
	onInsert       func(Message)
	done           chan struct{}
	once           gosync.Once
	err            error
	closed         bool
}

func (f *fakeSub) Done() <-chan struct{} { return f.done }
func (f *fakeSub) Err() error            { return f.err }

func (f *fakeSub) Close() {
	f.once.Do(func() {
		f.closed = true
		close(f.done)
	})
}

func (f *fakeSub) push(m Message) { f.onInsert(m) }

func (f *fakeSub) isClosed() bool {
	select {
	case <-f.done:
		return f.closed
	default:
		return false
	}
}

func (f *fakeSub) drop(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

type fakeStore struct {
	mu            gosync.Mutex
	messages      map[string][]Message
	identities    map[string]Identity
	fetchErr      error
	subErr        error
	sendErr       error
	identityErr   error
	subGate       chan struct{}
	subWaiting    int
	fetchGates    map[string]chan struct{}
	identityGates map[string]chan struct{}
	fetchStarted  chan string
	identityCalls [][]string
	sinceCalls    []int64
	sendCalls     []NewMessage
	subs          []*fakeSub
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		messages:      make(map[string][]Message),
		identities:    make(map[string]Identity),
		fetchGates:    make(map[string]chan struct{}),
		identityGates: make(map[string]chan struct{}),
		fetchStarted:  make(chan string, 16),
	}
}

func (f *fakeStore) FetchMessages(ctx context.Context, conversationID string) ([]Message, error) {
	f.fetchStarted <- conversationID
	f.mu.Lock()
	gate := f.fetchGates[conversationID]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return slices.Clone(f.messages[conversationID]), nil
}

func (f *fakeStore) FetchMessagesSince(ctx context.Context, conversationID string, afterMillis int64) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinceCalls = append(f.sinceCalls, afterMillis)
	var out []Message
	for _, m := range f.messages[conversationID] {
		if m.CreatedAt >= afterMillis {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) Subscribe(ctx context.Context, conversationID string, onInsert func(Message)) (Subscription, error) {
	f.mu.Lock()
	gate := f.subGate
	if gate != nil {
		f.subWaiting++
	}
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	sub := &fakeSub{conversationID: conversationID, onInsert: onInsert, done: make(chan struct{})}
	f.subs = append(f.subs, sub)
	return sub, nil
}

func (f *fakeStore) SendMessage(ctx context.Context, msg NewMessage) (Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls = append(f.sendCalls, msg)
	if f.sendErr != nil {
		return Message{}, f.sendErr
	}
	return Message{ID: fmt.Sprintf("sent-%d", len(f.sendCalls)), ConversationID: msg.ConversationID}, nil
}

func (f *fakeStore) FetchIdentities(ctx context.Context, userIDs []string) (map[string]Identity, error) {
	f.mu.Lock()
	f.identityCalls = append(f.identityCalls, slices.Clone(userIDs))
	gate := f.identityGates[userIDs[0]]
	delete(f.identityGates, userIDs[0])
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	out := make(map[string]Identity)
	for _, id := range userIDs {
		if ident, ok := f.identities[id]; ok {
			out[id] = ident
		}
	}
	return out, nil
}

func (f *fakeStore) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	return []Conversation{{ID: "c1", Kind: "channel", Name: "general"}}, nil
}

func (f *fakeStore) lastSub(t *testing.T) *fakeSub {
	t.Helper()
	var sub *fakeSub
	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		if len(f.subs) == 0 {
			return false
		}
		sub = f.subs[len(f.subs)-1]
		return true
	}, time.Second, time.Millisecond)
	return sub
}

func (f *fakeStore) lookups() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.identityCalls)
}

func msg(id string, ts int64, sender string) Message {
	return Message{ID: id, ConversationID: "c1", SenderID: sender, Content: "text " + id, CreatedAt: ts}
}

func ids(msgs []Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func waitFor(t *testing.T, s *Synchronizer, cond func([]Message) bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(s.Messages()) }, time.Second, time.Millisecond)
}

// History [m1@10, m2@20] followed by live m3@30 yields [m1 m2 m3].
func TestOpenMergesHistoryAndLive(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("m1", 10, "u1"), msg("m2", 20, "u1")}
	s := New(st, nil, nil)

	require.NoError(t, s.Open(context.Background(), "c1"))
	assert.Equal(t, status.Live, s.State())
	assert.Equal(t, "c1", s.ConversationID())

	st.lastSub(t).push(msg("m3", 30, "u1"))
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(s.Messages()))
}

// A live event for m2 lands before the slow fetch returns [m1, m2].
func TestLiveEventBeforeFetchIsNotDuplicated(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("m1", 10, "u1"), msg("m2", 20, "u1")}
	gate := make(chan struct{})
	st.fetchGates["c1"] = gate
	s := New(st, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.Open(context.Background(), "c1") }()

	<-st.fetchStarted
	st.lastSub(t).push(msg("m2", 20, "u1"))
	assert.Equal(t, []string{"m2"}, ids(s.Messages()))
	assert.Equal(t, status.Loading, s.State())

	close(gate)
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"m1", "m2"}, ids(s.Messages()))
}

func TestSendBlankTextMakesNoStoreCall(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("m1", 10, "u1")}
	s := New(st, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))
	before := s.Messages()

	for _, text := range []string{"", "   ", "\n\t "} {
		err := s.Send(context.Background(), "c1", text, "u1")
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Empty(t, st.sendCalls)
	assert.Equal(t, before, s.Messages())
}

func TestNotFoundIdentityFallsBack(t *testing.T) {
	st := newFakeStore()
	withEmail := msg("m2", 20, "u8")
	withEmail.SenderEmail = "dana.k@example.com"
	st.messages["c1"] = []Message{msg("m1", 10, "u9"), withEmail}
	s := New(st, nil, nil)

	require.NoError(t, s.Open(context.Background(), "c1"))
	got := s.Messages()
	require.Len(t, got, 2)
	assert.Equal(t, UnknownSender, got[0].Sender.Name)
	assert.False(t, got[0].Sender.Resolved)
	assert.Equal(t, "dana.k", got[1].Sender.Name)

	// NotFound is cached: another message from u9 does not look it up again.
	st.lastSub(t).push(msg("m3", 30, "u9"))
	assert.Equal(t, UnknownSender, s.Messages()[2].Sender.Name)
	assert.Len(t, st.lookups(), 1)
}

// Closing while a fetch is pending must keep its result out of the next view.
func TestCloseDiscardsPendingFetch(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("m1", 10, "u1"), msg("m2", 20, "u1")}
	st.messages["c2"] = []Message{{ID: "x1", ConversationID: "c2", SenderID: "u2", CreatedAt: 5}}
	gate := make(chan struct{})
	st.fetchGates["c1"] = gate
	s := New(st, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.Open(context.Background(), "c1") }()
	<-st.fetchStarted

	s.Close()
	assert.Equal(t, status.Closed, s.State())
	require.NoError(t, s.Open(context.Background(), "c2"))

	close(gate)
	assert.ErrorIs(t, <-errc, ErrSuperseded)
	assert.Equal(t, []string{"x1"}, ids(s.Messages()))
	assert.Equal(t, "c2", s.ConversationID())
	assert.Equal(t, status.Live, s.State())
}

func TestStaleIdentityLookupIsDiscarded(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("m1", 10, "u1")}
	st.messages["c2"] = []Message{{ID: "x1", ConversationID: "c2", SenderID: "u2", CreatedAt: 5}}
	st.identities["u1"] = Identity{UserID: "u1", DisplayName: "Ann Lee"}
	gate := make(chan struct{})
	st.identityGates["u1"] = gate
	s := New(st, nil, nil)

	errc := make(chan error, 1)
	go func() { errc <- s.Open(context.Background(), "c1") }()
	require.Eventually(t, func() bool { return len(st.lookups()) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, s.Open(context.Background(), "c2"))
	close(gate)
	assert.ErrorIs(t, <-errc, ErrSuperseded)

	s.mu.Lock()
	_, cached := s.identities["u1"]
	s.mu.Unlock()
	assert.False(t, cached, "late lookup from c1 must not populate c2's cache")
	assert.Equal(t, []string{"x1"}, ids(s.Messages()))
}

func TestHistoryIdentitiesAreBatched(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("m1", 10, "u1"), msg("m2", 20, "u2"), msg("m3", 30, "u1"), msg("m4", 40, "u3")}
	st.identities["u1"] = Identity{UserID: "u1", DisplayName: "Ann Lee", Avatar: "a.png"}
	st.identities["u2"] = Identity{UserID: "u2", DisplayName: "Bob Stone"}
	s := New(st, nil, nil)

	require.NoError(t, s.Open(context.Background(), "c1"))

	calls := st.lookups()
	require.Len(t, calls, 1)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, calls[0])

	got := s.Messages()
	assert.Equal(t, Sender{Name: "Ann Lee", Avatar: "a.png", Resolved: true}, got[0].Sender)
	assert.Equal(t, "Bob Stone", got[1].Sender.Name)
	assert.Equal(t, "Ann Lee", got[2].Sender.Name)
	assert.Equal(t, UnknownSender, got[3].Sender.Name)
}

func TestLiveSenderIsPatchedAfterInsert(t *testing.T) {
	st := newFakeStore()
	st.identities["u2"] = Identity{UserID: "u2", DisplayName: "Bob Stone"}
	gate := make(chan struct{})
	st.identityGates["u2"] = gate
	s := New(st, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))

	live := msg("m1", 10, "u2")
	live.SenderEmail = "bob@example.com"
	st.lastSub(t).push(live)

	// Displayed immediately with the fallback while the lookup is pending.
	got := s.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].Sender.Name)
	assert.False(t, got[0].Sender.Resolved)

	close(gate)
	waitFor(t, s, func(msgs []Message) bool { return msgs[0].Sender.Resolved })
	assert.Equal(t, "Bob Stone", s.Messages()[0].Sender.Name)
}

func TestConcurrentLookupsForSameSenderCoalesce(t *testing.T) {
	st := newFakeStore()
	st.identities["u3"] = Identity{UserID: "u3", DisplayName: "Cy"}
	gate := make(chan struct{})
	st.identityGates["u3"] = gate
	s := New(st, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))

	sub := st.lastSub(t)
	for i := range 3 {
		sub.push(msg(fmt.Sprintf("m%d", i), int64(10+i), "u3"))
	}
	close(gate)

	waitFor(t, s, func(msgs []Message) bool {
		for _, m := range msgs {
			if !m.Sender.Resolved {
				return false
			}
		}
		return len(msgs) == 3
	})
	assert.Len(t, st.lookups(), 1)
}

func TestLookupErrorIsNotCached(t *testing.T) {
	st := newFakeStore()
	st.identityErr = errors.New("profiles unavailable")
	st.identities["u1"] = Identity{UserID: "u1", DisplayName: "Ann Lee"}
	st.messages["c1"] = []Message{msg("m1", 10, "u1")}
	s := New(st, nil, nil)

	require.NoError(t, s.Open(context.Background(), "c1"))
	assert.Equal(t, UnknownSender, s.Messages()[0].Sender.Name)

	st.mu.Lock()
	st.identityErr = nil
	st.mu.Unlock()

	st.lastSub(t).push(msg("m2", 20, "u1"))
	waitFor(t, s, func(msgs []Message) bool { return msgs[0].Sender.Resolved && msgs[1].Sender.Resolved })
	assert.Len(t, st.lookups(), 2)
}

func TestOrderingBreaksTiesByID(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("b", 10, "u1"), msg("c", 5, "u1")}
	s := New(st, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))

	st.lastSub(t).push(msg("a", 10, "u1"))
	assert.Equal(t, []string{"c", "a", "b"}, ids(s.Messages()))
}

// Random interleavings of fetched batches and live events with overlapping
// ids always yield each id once, in (CreatedAt, ID) order.
func TestInterleavingsDedupAndOrder(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := range 200 {
		st := newFakeStore()
		s := New(st, nil, nil)
		require.NoError(t, s.Open(context.Background(), "c1"))
		s.mu.Lock()
		gen := s.gen
		s.mu.Unlock()

		pool := make([]Message, 30)
		for i := range pool {
			pool[i] = msg(fmt.Sprintf("m%02d", i), int64(rng.IntN(10)), fmt.Sprintf("u%d", rng.IntN(3)))
		}
		want := make(map[string]bool)
		for range 60 {
			m := pool[rng.IntN(len(pool))]
			want[m.ID] = true
			if rng.IntN(2) == 0 {
				s.applyLive(gen, m)
				continue
			}
			batch := []Message{m}
			for range rng.IntN(4) {
				extra := pool[rng.IntN(len(pool))]
				want[extra.ID] = true
				batch = append(batch, extra)
			}
			_, ok := s.applyBatch(gen, batch)
			require.True(t, ok)
		}

		got := s.Messages()
		require.Len(t, got, len(want), "round %d", round)
		seen := make(map[string]bool)
		for i, m := range got {
			require.False(t, seen[m.ID], "round %d: duplicate %s", round, m.ID)
			seen[m.ID] = true
			require.NotEmpty(t, m.Sender.Name)
			if i > 0 {
				require.True(t, got[i-1].Less(m), "round %d: %s before %s", round, got[i-1].ID, m.ID)
			}
		}
		s.Close()
	}
}

func TestFetchFailureLeavesEmptyLiveView(t *testing.T) {
	b := bus.New()
	events, unsub := b.Subscribe("sync.fetch_failed", 4)
	defer unsub()

	st := newFakeStore()
	st.fetchErr = errors.New("connection refused")
	s := New(st, b, nil)

	err := s.Open(context.Background(), "c1")
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "c1", fetchErr.ConversationID)
	assert.Empty(t, s.Messages())
	assert.Equal(t, status.Live, s.State())

	evt := <-events
	assert.Equal(t, "c1", evt.Topic)
}

func TestSubscribeFailureDegradesToSnapshot(t *testing.T) {
	b := bus.New()
	events, unsub := b.Subscribe(bus.KindSyncDegraded, 4)
	defer unsub()

	st := newFakeStore()
	st.subErr = errors.New("realtime unavailable")
	st.messages["c1"] = []Message{msg("m1", 10, "u1")}
	s := New(st, b, nil)

	require.NoError(t, s.Open(context.Background(), "c1"))
	assert.True(t, s.Degraded())
	assert.Equal(t, []string{"m1"}, ids(s.Messages()))
	assert.Equal(t, status.Live, s.State())

	evt := <-events
	var subErr *SubscriptionError
	require.ErrorAs(t, evt.Payload.(error), &subErr)
}

func TestDroppedSubscriptionResyncsFromCursor(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("m1", 10, "u1"), msg("m2", 20, "u1")}
	s := New(st, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))

	first := st.lastSub(t)
	first.drop(errors.New("stream reset"))
	require.Eventually(t, s.Degraded, time.Second, time.Millisecond)

	st.mu.Lock()
	st.messages["c1"] = append(st.messages["c1"], msg("m3", 30, "u1"))
	st.mu.Unlock()

	require.NoError(t, s.Resync(context.Background()))
	assert.False(t, s.Degraded())
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids(s.Messages()))
	assert.Equal(t, []int64{20}, st.sinceCalls)

	second := st.lastSub(t)
	require.NotSame(t, first, second)
	second.push(msg("m4", 40, "u1"))
	assert.Len(t, s.Messages(), 4)
}

// plainStore hides FetchMessagesSince so Resync falls back to a full fetch.
type plainStore struct{ Store }

func TestResyncWithoutCursorRefetchesEverything(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("m1", 10, "u1")}
	s := New(plainStore{st}, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))
	<-st.fetchStarted

	require.NoError(t, s.Resync(context.Background()))
	select {
	case conv := <-st.fetchStarted:
		assert.Equal(t, "c1", conv)
	default:
		t.Fatal("expected a full refetch")
	}
	assert.Empty(t, st.sinceCalls)
	assert.Equal(t, []string{"m1"}, ids(s.Messages()))
}

func TestConcurrentResyncKeepsOneSubscription(t *testing.T) {
	st := newFakeStore()
	s := New(st, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))
	st.lastSub(t).drop(errors.New("stream reset"))
	require.Eventually(t, s.Degraded, time.Second, time.Millisecond)

	gate := make(chan struct{})
	st.mu.Lock()
	st.subGate = gate
	st.mu.Unlock()

	var wg gosync.WaitGroup
	for range 2 {
		wg.Go(func() { assert.NoError(t, s.Resync(context.Background())) })
	}
	require.Eventually(t, func() bool {
		st.mu.Lock()
		defer st.mu.Unlock()
		return st.subWaiting == 2
	}, time.Second, time.Millisecond)
	close(gate)
	wg.Wait()
	assert.False(t, s.Degraded())

	st.mu.Lock()
	resubs := slices.Clone(st.subs[1:])
	st.mu.Unlock()
	require.Len(t, resubs, 2)
	open := 0
	for _, sub := range resubs {
		if !sub.isClosed() {
			open++
		}
	}
	assert.Equal(t, 1, open, "the extra subscription is closed right away")

	s.Close()
	for _, sub := range resubs {
		assert.True(t, sub.isClosed())
	}
}

func syncEvents(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "huddle_sync_events_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "outcome" && l.GetValue() == outcome {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestLiveEventForOtherConversationIsCountedForeign(t *testing.T) {
	st := newFakeStore()
	s := New(st, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))
	before := syncEvents(t, metrics.OutcomeForeign)

	other := msg("x1", 10, "u1")
	other.ConversationID = "c2"
	st.lastSub(t).push(other)

	assert.Empty(t, s.Messages())
	assert.Equal(t, before+1, syncEvents(t, metrics.OutcomeForeign))
}

func TestResyncRequiresOpenConversation(t *testing.T) {
	s := New(newFakeStore(), nil, nil)
	assert.ErrorIs(t, s.Resync(context.Background()), ErrNotOpen)
}

func TestSend(t *testing.T) {
	b := bus.New()
	events, unsub := b.Subscribe(bus.KindMessageSendFailed, 4)
	defer unsub()

	st := newFakeStore()
	s := New(st, b, nil)

	assert.ErrorIs(t, s.Send(context.Background(), "c1", "hi", "u1"), ErrNotOpen)
	require.NoError(t, s.Open(context.Background(), "c1"))
	assert.ErrorIs(t, s.Send(context.Background(), "c2", "hi", "u1"), ErrNotOpen)

	require.NoError(t, s.Send(context.Background(), "c1", "  hello  ", "u1"))
	require.Len(t, st.sendCalls, 1)
	assert.Equal(t, NewMessage{ConversationID: "c1", SenderID: "u1", Content: "hello"}, st.sendCalls[0])
	assert.Empty(t, s.Messages(), "no optimistic insert")

	st.sendErr = errors.New("permission denied")
	err := s.Send(context.Background(), "c1", "again", "u1")
	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Len(t, st.sendCalls, 2, "no automatic retry")

	evt := <-events
	assert.Equal(t, "c1", evt.Topic)
}

func TestOpenImplicitlyClosesPrevious(t *testing.T) {
	st := newFakeStore()
	st.messages["c1"] = []Message{msg("m1", 10, "u1")}
	s := New(st, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))
	old := st.lastSub(t)

	require.NoError(t, s.Open(context.Background(), "c2"))
	assert.True(t, old.closed)

	old.push(msg("late", 99, "u1"))
	assert.Empty(t, s.Messages())
}

func TestCloseIsIdempotent(t *testing.T) {
	b := bus.New()
	events, unsub := b.Subscribe(bus.KindSyncStateChanged, 16)
	defer unsub()

	st := newFakeStore()
	s := New(st, b, nil)
	s.Close()

	require.NoError(t, s.Open(context.Background(), "c1"))
	s.Close()
	s.Close()
	assert.Equal(t, status.Closed, s.State())
	assert.Empty(t, s.ConversationID())
	assert.Empty(t, s.Messages())

	var got []status.State
	for len(events) > 0 {
		got = append(got, (<-events).Payload.(status.StatusChange).To)
	}
	assert.Equal(t, []status.State{status.Loading, status.Live, status.Closed}, got)
}

func TestChangesSignalsUpdates(t *testing.T) {
	st := newFakeStore()
	s := New(st, nil, nil)
	require.NoError(t, s.Open(context.Background(), "c1"))

	// Drain whatever Open produced.
	select {
	case <-s.Changes():
	default:
	}
	st.lastSub(t).push(msg("m1", 10, "u1"))
	select {
	case <-s.Changes():
	case <-time.After(time.Second):
		t.Fatal("no change signal after live insert")
	}
}

func TestConversationsPassThrough(t *testing.T) {
	s := New(newFakeStore(), nil, nil)
	convs, err := s.Conversations(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "general", convs[0].Name)
}
