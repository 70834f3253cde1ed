package bus

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrOverflow reports that a Feed fell behind and missed at least one event.
var ErrOverflow = errors.New("bus: subscriber overflowed")

// Bus is an in-process publish/subscribe event bus with namespace and topic filtering.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*subscription
	next   int
	onDrop func(Event)
}

// Filter selects which events a subscriber receives. Namespace is matched as a prefix
// of Event.Kind; a non-empty Topic must match Event.Topic exactly.
type Filter struct {
	Namespace string
	Topic     string
}

func (f Filter) matches(evt Event) bool {
	if !strings.HasPrefix(evt.Kind, f.Namespace) {
		return false
	}
	return f.Topic == "" || f.Topic == evt.Topic
}

type subscription struct {
	filter Filter
	ch     chan Event

	// overflow is non-nil for feeds. It is closed on the first drop, and the
	// feed receives nothing after that.
	overflow   chan struct{}
	overflowed atomic.Bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithDropHook registers a callback invoked whenever an event is dropped because a
// subscriber's buffer is full. The hook runs with the bus read lock held.
func WithDropHook(fn func(Event)) Option {
	return func(b *Bus) { b.onDrop = fn }
}

// New creates a new event bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		subs: make(map[int]*subscription),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends an event to all subscribers whose filter matches it.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if !sub.filter.matches(evt) || sub.overflowed.Load() {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			// Subscriber is full; never block the publisher.
			if b.onDrop != nil {
				b.onDrop(evt)
			}
			if sub.overflow != nil && sub.overflowed.CompareAndSwap(false, true) {
				close(sub.overflow)
			}
		}
	}
}

// Subscribe returns a channel that receives events matching the given namespace prefix.
// bufSize controls the channel buffer. Returns the channel and an unsubscribe function.
func (b *Bus) Subscribe(namespace string, bufSize int) (<-chan Event, func()) {
	return b.SubscribeFilter(Filter{Namespace: namespace}, bufSize)
}

// SubscribeFilter is Subscribe with an explicit filter. The unsubscribe function is
// idempotent and never closes the returned channel.
func (b *Bus) SubscribeFilter(filter Filter, bufSize int) (<-chan Event, func()) {
	sub := &subscription{filter: filter, ch: make(chan Event, bufSize)}
	return sub.ch, b.add(sub)
}

// Feed is a subscription for consumers that cannot tolerate gaps. Where a
// plain subscription skips events it has no room for, a Feed stops at the
// first one: Overflow is closed and C receives nothing newer.
type Feed struct {
	C        <-chan Event
	overflow chan struct{}
	unsub    func()
}

// Overflow is closed once the feed has missed an event.
func (f *Feed) Overflow() <-chan struct{} { return f.overflow }

// Close unsubscribes. It is idempotent.
func (f *Feed) Close() { f.unsub() }

// SubscribeFeed is SubscribeFilter with overflow detection.
func (b *Bus) SubscribeFeed(filter Filter, bufSize int) *Feed {
	sub := &subscription{
		filter:   filter,
		ch:       make(chan Event, bufSize),
		overflow: make(chan struct{}),
	}
	return &Feed{C: sub.ch, overflow: sub.overflow, unsub: b.add(sub)}
}

func (b *Bus) add(sub *subscription) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Subscribers returns the number of active subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
