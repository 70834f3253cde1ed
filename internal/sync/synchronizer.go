package sync

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	gosync "sync"
	"time"

	"github.com/matheus3301/huddle/internal/bus"
	"github.com/matheus3301/huddle/internal/metrics"
	"github.com/matheus3301/huddle/internal/status"
	"go.uber.org/zap"
)

// UnknownSender is displayed when a sender has neither a profile name nor an email.
const UnknownSender = "Unknown"

const defaultIdentityTimeout = 5 * time.Second

var errSubscriptionEnded = errors.New("subscription ended")

type identityEntry struct {
	identity Identity
	found    bool
}

// teardown holds what must be released after the lock is dropped.
type teardown struct {
	open   bool
	sub    Subscription
	cancel context.CancelFunc
}

func (t teardown) release() {
	if t.sub != nil {
		t.sub.Close()
	}
	if t.cancel != nil {
		t.cancel()
	}
}

// Synchronizer keeps one open conversation as an ordered, deduplicated view
// merged from a historical fetch and a live insert feed.
//
// Every Open starts a new generation. Fetch results, live events and identity
// lookups started under an older generation are dropped when they land.
// The mutex is never held across a Store call.
type Synchronizer struct {
	store           Store
	bus             *bus.Bus
	logger          *zap.Logger
	machine         *status.Machine
	identityTimeout time.Duration
	changes         chan struct{}

	mu             gosync.Mutex
	gen            uint64
	conversationID string
	runCtx         context.Context
	cancel         context.CancelFunc
	sub            Subscription
	degraded       bool
	byID           map[string]*Message
	order          []*Message
	identities     map[string]identityEntry
	pending        map[string]struct{}
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithIdentityTimeout bounds each identity lookup.
func WithIdentityTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.identityTimeout = d
		}
	}
}

// New creates a Synchronizer over st. The bus and logger may be nil.
func New(st Store, b *bus.Bus, logger *zap.Logger, opts ...Option) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Synchronizer{
		store:           st,
		bus:             b,
		logger:          logger,
		machine:         status.NewMachine(b),
		identityTimeout: defaultIdentityTimeout,
		changes:         make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open closes any open conversation, subscribes to conversationID's inserts
// and loads its history. The subscription is requested before the fetch so no
// insert can fall between them.
//
// A failed fetch returns *FetchError and leaves an empty, live view. A failed
// subscription does not fail Open; the view is marked degraded instead.
func (s *Synchronizer) Open(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	old := s.teardownLocked()
	s.gen++
	gen := s.gen
	runCtx, cancel := context.WithCancel(context.Background())
	s.conversationID = conversationID
	s.runCtx, s.cancel = runCtx, cancel
	s.byID = make(map[string]*Message)
	s.order = nil
	s.identities = make(map[string]identityEntry)
	s.pending = make(map[string]struct{})
	s.degraded = false
	s.transitionLocked(status.Loading, conversationID)
	s.mu.Unlock()
	old.release()
	s.notify()

	sub, err := s.store.Subscribe(runCtx, conversationID, func(m Message) { s.applyLive(gen, m) })
	if err != nil {
		s.markDegraded(gen, nil, err)
	} else if !s.attach(gen, sub) {
		return ErrSuperseded
	}

	fetchCtx, stop := context.WithCancel(ctx)
	defer stop()
	defer context.AfterFunc(runCtx, stop)()

	msgs, err := s.store.FetchMessages(fetchCtx, conversationID)
	if err != nil {
		if !s.finishLoading(gen) {
			return ErrSuperseded
		}
		fetchErr := &FetchError{ConversationID: conversationID, Err: err}
		s.logger.Warn("history fetch failed", zap.String("conversation", conversationID), zap.Error(err))
		s.publish(bus.KindSyncFetchFailed, conversationID, fetchErr)
		return fetchErr
	}

	unknown, ok := s.applyBatch(gen, msgs)
	if !ok {
		return ErrSuperseded
	}
	s.resolve(fetchCtx, gen, unknown)

	if !s.finishLoading(gen) {
		return ErrSuperseded
	}
	s.logger.Debug("conversation open",
		zap.String("conversation", conversationID),
		zap.Int("messages", len(msgs)),
		zap.Bool("degraded", s.Degraded()))
	return nil
}

// Close cancels the subscription and discards the view and identity cache.
// It is a no-op when nothing is open.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	old := s.teardownLocked()
	s.mu.Unlock()
	if old.open {
		old.release()
		s.notify()
	}
}

// Send submits text to the open conversation. Blank text returns
// ErrEmptyMessage without contacting the Store. The message is not inserted
// locally; it arrives through the live feed.
func (s *Synchronizer) Send(ctx context.Context, conversationID, text, senderID string) error {
	content := strings.TrimSpace(text)
	if content == "" {
		return ErrEmptyMessage
	}
	s.mu.Lock()
	open := s.conversationID
	s.mu.Unlock()
	if open == "" || open != conversationID {
		return ErrNotOpen
	}

	_, err := s.store.SendMessage(ctx, NewMessage{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
	})
	if err != nil {
		sendErr := &SendError{ConversationID: conversationID, Err: err}
		s.logger.Warn("send failed", zap.String("conversation", conversationID), zap.Error(err))
		s.publish(bus.KindMessageSendFailed, conversationID, sendErr)
		return sendErr
	}
	return nil
}

// Resync re-establishes a dropped subscription and catches up on missed
// messages, from the newest known timestamp when the Store supports it.
func (s *Synchronizer) Resync(ctx context.Context) error {
	s.mu.Lock()
	if s.conversationID == "" {
		s.mu.Unlock()
		return ErrNotOpen
	}
	gen, conversationID, runCtx := s.gen, s.conversationID, s.runCtx
	needSub := s.sub == nil
	var after int64
	if n := len(s.order); n > 0 {
		after = s.order[n-1].CreatedAt
	}
	s.mu.Unlock()

	if needSub {
		sub, err := s.store.Subscribe(runCtx, conversationID, func(m Message) { s.applyLive(gen, m) })
		if err != nil {
			subErr := &SubscriptionError{ConversationID: conversationID, Err: err}
			s.logger.Warn("resubscribe failed", zap.String("conversation", conversationID), zap.Error(err))
			s.publish(bus.KindSyncDegraded, conversationID, subErr)
			return subErr
		}
		if !s.attach(gen, sub) {
			return ErrSuperseded
		}
		s.notify()
	}

	fetchCtx, stop := context.WithCancel(ctx)
	defer stop()
	defer context.AfterFunc(runCtx, stop)()

	var (
		msgs []Message
		err  error
	)
	if sf, ok := s.store.(SinceFetcher); ok && after > 0 {
		msgs, err = sf.FetchMessagesSince(fetchCtx, conversationID, after)
	} else {
		msgs, err = s.store.FetchMessages(fetchCtx, conversationID)
	}
	if err != nil {
		if !s.isCurrent(gen) {
			return ErrSuperseded
		}
		fetchErr := &FetchError{ConversationID: conversationID, Err: err}
		s.publish(bus.KindSyncFetchFailed, conversationID, fetchErr)
		return fetchErr
	}

	unknown, ok := s.applyBatch(gen, msgs)
	if !ok {
		return ErrSuperseded
	}
	s.resolve(fetchCtx, gen, unknown)
	return nil
}

// Conversations lists the conversations userID belongs to.
func (s *Synchronizer) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	return s.store.ListConversations(ctx, userID)
}

// Messages returns a snapshot of the open conversation ordered by (CreatedAt, ID).
func (s *Synchronizer) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.order))
	for i, m := range s.order {
		out[i] = *m
	}
	return out
}

// ConversationID returns the open conversation, or empty.
func (s *Synchronizer) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Degraded reports whether the live feed is unavailable and the view is a snapshot.
func (s *Synchronizer) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// State returns the handle's lifecycle state.
func (s *Synchronizer) State() status.State {
	return s.machine.Current()
}

// Changes returns a channel signalled after every view update. Signals coalesce.
func (s *Synchronizer) Changes() <-chan struct{} {
	return s.changes
}

func (s *Synchronizer) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (s *Synchronizer) publish(kind, topic string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(bus.Event{Kind: kind, Topic: topic, Timestamp: time.Now(), Payload: payload})
}

func (s *Synchronizer) transitionLocked(to status.State, conversationID string) {
	if err := s.machine.Transition(to, conversationID); err != nil {
		s.logger.Error("sync state transition", zap.Error(err))
	}
}

func (s *Synchronizer) teardownLocked() teardown {
	if s.conversationID == "" {
		return teardown{}
	}
	t := teardown{open: true, sub: s.sub, cancel: s.cancel}
	s.gen++
	s.transitionLocked(status.Closed, s.conversationID)
	s.conversationID = ""
	s.sub, s.cancel, s.runCtx = nil, nil, nil
	s.byID, s.order, s.identities, s.pending = nil, nil, nil, nil
	s.degraded = false
	return t
}

func (s *Synchronizer) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen
}

func (s *Synchronizer) finishLoading(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	if s.machine.Current() == status.Loading {
		s.transitionLocked(status.Live, s.conversationID)
	}
	return true
}

// attach makes sub the live feed of gen. It returns false when gen is no
// longer current. If a concurrent Open or Resync attached a feed first, that
// one is kept. Any sub that is not kept is closed.
func (s *Synchronizer) attach(gen uint64, sub Subscription) bool {
	s.mu.Lock()
	current := s.gen == gen
	if !current || s.sub != nil {
		s.mu.Unlock()
		sub.Close()
		return current
	}
	s.sub = sub
	s.degraded = false
	go s.watch(gen, sub)
	s.mu.Unlock()
	return true
}

func (s *Synchronizer) watch(gen uint64, sub Subscription) {
	<-sub.Done()
	err := sub.Err()
	if err == nil {
		err = errSubscriptionEnded
	}
	s.markDegraded(gen, sub, err)
}

// markDegraded records a failed or dropped subscription. A nil sub means the
// subscription was never established.
func (s *Synchronizer) markDegraded(gen uint64, sub Subscription, cause error) {
	s.mu.Lock()
	if s.gen != gen || s.sub != sub {
		s.mu.Unlock()
		return
	}
	s.sub = nil
	s.degraded = true
	conversationID := s.conversationID
	s.mu.Unlock()

	subErr := &SubscriptionError{ConversationID: conversationID, Err: cause}
	s.logger.Warn("live feed unavailable, view is read-only",
		zap.String("conversation", conversationID), zap.Error(cause))
	s.publish(bus.KindSyncDegraded, conversationID, subErr)
	s.notify()
}

func (s *Synchronizer) applyLive(gen uint64, m Message) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		metrics.IncSyncEvent(metrics.OutcomeStale)
		return
	}
	if m.ConversationID != "" && m.ConversationID != s.conversationID {
		s.mu.Unlock()
		metrics.IncSyncEvent(metrics.OutcomeForeign)
		return
	}
	m.ConversationID = s.conversationID
	if !s.insertLocked(m) {
		s.mu.Unlock()
		metrics.IncSyncEvent(metrics.OutcomeDuplicate)
		return
	}
	lookup := s.claimLocked([]string{m.SenderID})
	ctx := s.runCtx
	s.mu.Unlock()

	metrics.IncSyncEvent(metrics.OutcomeApplied)
	s.notify()
	if len(lookup) > 0 {
		go s.resolve(ctx, gen, lookup)
	}
}

// applyBatch merges fetched messages and claims lookups for unknown senders.
// Returns false when gen is no longer current.
func (s *Synchronizer) applyBatch(gen uint64, msgs []Message) ([]string, bool) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		metrics.IncSyncEvent(metrics.OutcomeStale)
		return nil, false
	}
	applied := 0
	senders := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if m.ConversationID != "" && m.ConversationID != s.conversationID {
			metrics.IncSyncEvent(metrics.OutcomeForeign)
			continue
		}
		m.ConversationID = s.conversationID
		if s.insertLocked(m) {
			applied++
			metrics.IncSyncEvent(metrics.OutcomeApplied)
		} else {
			metrics.IncSyncEvent(metrics.OutcomeDuplicate)
		}
		senders = append(senders, m.SenderID)
	}
	unknown := s.claimLocked(senders)
	s.mu.Unlock()

	if applied > 0 {
		s.notify()
	}
	return unknown, true
}

// insertLocked adds m in (CreatedAt, ID) order. Returns false if the id is known.
func (s *Synchronizer) insertLocked(m Message) bool {
	if _, ok := s.byID[m.ID]; ok {
		return false
	}
	m.Sender = s.senderLocked(m)
	p := &m
	s.byID[m.ID] = p
	i, _ := slices.BinarySearchFunc(s.order, p, compareMessages)
	s.order = slices.Insert(s.order, i, p)
	return true
}

func compareMessages(a, b *Message) int {
	if c := cmp.Compare(a.CreatedAt, b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// claimLocked returns the distinct ids that are neither cached nor being
// looked up, and marks them in flight.
func (s *Synchronizer) claimLocked(ids []string) []string {
	var out []string
	for _, id := range ids {
		if _, ok := s.identities[id]; ok {
			continue
		}
		if _, ok := s.pending[id]; ok {
			continue
		}
		s.pending[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Synchronizer) senderLocked(m Message) Sender {
	sender := Sender{Name: fallbackName(m.SenderEmail)}
	if e, ok := s.identities[m.SenderID]; ok && e.found {
		sender.Resolved = true
		sender.Avatar = e.identity.Avatar
		if name := strings.TrimSpace(e.identity.DisplayName); name != "" {
			sender.Name = name
		}
	}
	return sender
}

func fallbackName(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return UnknownSender
	}
	return local
}

// resolve looks up ids in one batch and patches every message they sent.
// NotFound is cached for the session; transport errors are not.
func (s *Synchronizer) resolve(ctx context.Context, gen uint64, ids []string) {
	if len(ids) == 0 {
		return
	}
	lookupCtx, cancel := context.WithTimeout(ctx, s.identityTimeout)
	found, err := s.store.FetchIdentities(lookupCtx, ids)
	cancel()

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		metrics.IncSyncEvent(metrics.OutcomeStale)
		return
	}
	for _, id := range ids {
		delete(s.pending, id)
	}
	if err != nil {
		s.mu.Unlock()
		metrics.IncIdentityLookup(metrics.LookupError)
		s.logger.Warn("identity lookup failed", zap.Strings("users", ids), zap.Error(err))
		return
	}

	patch := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		ident, ok := found[id]
		s.identities[id] = identityEntry{identity: ident, found: ok}
		if ok {
			metrics.IncIdentityLookup(metrics.LookupFound)
			patch[id] = struct{}{}
		} else {
			metrics.IncIdentityLookup(metrics.LookupNotFound)
		}
	}
	for _, m := range s.order {
		if _, ok := patch[m.SenderID]; ok {
			m.Sender = s.senderLocked(*m)
		}
	}
	s.mu.Unlock()

	if len(patch) > 0 {
		s.notify()
	}
}
