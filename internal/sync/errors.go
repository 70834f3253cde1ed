package sync

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned by Send for blank text. No Store call is made.
	ErrEmptyMessage = errors.New("sync: message is empty")
	// ErrNotOpen is returned when an operation targets a conversation that is not open.
	ErrNotOpen = errors.New("sync: conversation is not open")
	// ErrSuperseded is returned by Open and Resync when the conversation was
	// closed or replaced before loading finished.
	ErrSuperseded = errors.New("sync: conversation closed while loading")
	// ErrIdentityNotFound is returned by stores for a single missing profile.
	ErrIdentityNotFound = errors.New("sync: identity not found")
)

// FetchError reports a failed historical load. The view stays empty or partial.
type FetchError struct {
	ConversationID string
	Err            error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch messages for %s: %v", e.ConversationID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubscriptionError reports a live feed that failed to start or dropped.
type SubscriptionError struct {
	ConversationID string
	Err            error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscribe to %s: %v", e.ConversationID, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// SendError reports a rejected message submission. It is never retried.
type SendError struct {
	ConversationID string
	Err            error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send message to %s: %v", e.ConversationID, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
