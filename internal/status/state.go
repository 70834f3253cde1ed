// Package status tracks the lifecycle of the synchronizer's conversation
// handle and announces every change on the bus.
package status

import (
	"fmt"
	"sync"
	"time"

	"github.com/matheus3301/huddle/internal/bus"
)

// State represents the lifecycle state of a conversation handle.
type State string

const (
	Closed  State = "CLOSED"
	Loading State = "LOADING"
	Live    State = "LIVE"
)

// There is no error state: a failed fetch or subscription still lands in Live
// with a degraded view.
var next = map[State]map[State]bool{
	Closed:  {Loading: true},
	Loading: {Live: true, Closed: true},
	Live:    {Closed: true},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	return next[from][to]
}

// TransitionError rejects a move the lifecycle does not allow.
type TransitionError struct {
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// StatusChange is the payload of bus.KindSyncStateChanged.
type StatusChange struct {
	ConversationID string
	From           State
	To             State
}

// Machine holds the current state and the conversation it is bound to.
type Machine struct {
	mu           sync.RWMutex
	current      State
	conversation string
	bus          *bus.Bus
}

// NewMachine returns a Closed machine. b may be nil.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{current: Closed, bus: b}
}

func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Conversation is empty while Closed.
func (m *Machine) Conversation() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conversation
}

// Transition moves to `to` on behalf of conversationID and publishes the
// change. A disallowed move returns *TransitionError and changes nothing.
func (m *Machine) Transition(to State, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.current
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	m.current = to
	m.conversation = conversationID
	if to == Closed {
		m.conversation = ""
	}

	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindSyncStateChanged,
			Topic:     conversationID,
			Timestamp: time.Now(),
			Payload:   StatusChange{ConversationID: conversationID, From: from, To: to},
		})
	}
	return nil
}
