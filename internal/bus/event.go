package bus

import "time"

// Event kinds published by the platform and the client synchronizer.
const (
	KindMessageCreated      = "message.created"
	KindMessageSendFailed   = "message.send_failed"
	KindConversationCreated = "conversation.created"
	KindMemberAdded         = "conversation.member_added"
	KindMemberRemoved       = "conversation.member_removed"
	KindSyncStateChanged    = "sync.state_changed"
	KindSyncFetchFailed     = "sync.fetch_failed"
	KindSyncDegraded        = "sync.degraded"
)

// Event represents a domain event published on the bus.
// Topic scopes the event to a single conversation; it is empty for global events.
type Event struct {
	Kind      string
	Topic     string
	Timestamp time.Time
	Payload   any
}
