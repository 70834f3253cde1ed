package sync

import "context"

// Message is one message in a synchronized conversation view.
// ID and CreatedAt (unix ms) are assigned by the Store; Sender is attached locally.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderEmail    string
	Content        string
	CreatedAt      int64
	Sender         Sender
}

// Sender is the display identity attached to a message. Name is never empty.
// Resolved is true once a profile was found for the sender.
type Sender struct {
	Name     string
	Avatar   string
	Resolved bool
}

// Less reports whether m orders before o by (CreatedAt, ID).
func (m Message) Less(o Message) bool {
	if m.CreatedAt != o.CreatedAt {
		return m.CreatedAt < o.CreatedAt
	}
	return m.ID < o.ID
}

// NewMessage is a create-message command. The Store assigns ID and timestamp.
type NewMessage struct {
	ConversationID string
	SenderID       string
	Content        string
}

// Identity is a sender's display identity as known to the Store.
type Identity struct {
	UserID      string
	DisplayName string
	Avatar      string
}

// Conversation is a conversation summary as listed for a user.
type Conversation struct {
	ID                 string
	Kind               string
	Name               string
	Description        string
	MemberCount        int
	LastMessageAt      int64
	LastMessagePreview string
}

// Subscription is a live feed of inserts for one conversation.
// Done is closed when the feed ends, after which Err reports why.
// Close is idempotent.
type Subscription interface {
	Done() <-chan struct{}
	Err() error
	Close()
}

// Store is the backend collaborator the synchronizer reads from and writes to.
//
// FetchIdentities returns an entry only for users it found; a missing key
// means the profile does not exist.
type Store interface {
	FetchMessages(ctx context.Context, conversationID string) ([]Message, error)
	Subscribe(ctx context.Context, conversationID string, onInsert func(Message)) (Subscription, error)
	SendMessage(ctx context.Context, msg NewMessage) (Message, error)
	FetchIdentities(ctx context.Context, userIDs []string) (map[string]Identity, error)
	ListConversations(ctx context.Context, userID string) ([]Conversation, error)
}

// SinceFetcher is implemented by stores that can return the tail of a
// conversation: messages with CreatedAt >= afterMillis, ascending.
type SinceFetcher interface {
	FetchMessagesSince(ctx context.Context, conversationID string, afterMillis int64) ([]Message, error)
}
