package model

import (
	"context"
	"errors"
	"strings"
	"sync"

	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	intsync "github.com/matheus3301/huddle/internal/sync"
	"github.com/matheus3301/huddle/internal/tui/client"
)

// ErrNoUser is returned by operations that need an acting user when none is set.
var ErrNoUser = errors.New("no acting user: pass --user or set user_id in config")

// ViewModel caches daemon state for the views. Message state for the open
// conversation lives in the synchronizer; the view model only forwards to it.
type ViewModel struct {
	mu sync.RWMutex

	client        *client.Client
	sync          *intsync.Synchronizer
	userID        string
	status        *rpcv1.GetStatusResponse
	conversations []intsync.Conversation
}

// NewViewModel creates a view model over the daemon client and a synchronizer
// that reads through it.
func NewViewModel(c *client.Client, s *intsync.Synchronizer, userID string) *ViewModel {
	return &ViewModel{
		client: c,
		sync:   s,
		userID: userID,
	}
}

// UserID returns the acting user.
func (vm *ViewModel) UserID() string { return vm.userID }

// Synchronizer returns the underlying synchronizer.
func (vm *ViewModel) Synchronizer() *intsync.Synchronizer { return vm.sync }

// LoadStatus fetches daemon status.
func (vm *ViewModel) LoadStatus(ctx context.Context) error {
	resp, err := vm.client.Workspace.GetStatus(ctx, &rpcv1.GetStatusRequest{})
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.status = resp
	vm.mu.Unlock()
	return nil
}

// LoadConversations fetches the acting user's conversations.
func (vm *ViewModel) LoadConversations(ctx context.Context) error {
	if vm.userID == "" {
		return ErrNoUser
	}
	convs, err := vm.sync.Conversations(ctx, vm.userID)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.conversations = convs
	vm.mu.Unlock()
	return nil
}

// Open switches the synchronizer to conversationID.
func (vm *ViewModel) Open(ctx context.Context, conversationID string) error {
	return vm.sync.Open(ctx, conversationID)
}

// Close releases the open conversation.
func (vm *ViewModel) Close() {
	vm.sync.Close()
}

// Resync resubscribes the open conversation and fetches what was missed.
func (vm *ViewModel) Resync(ctx context.Context) error {
	return vm.sync.Resync(ctx)
}

// Send submits text to the open conversation as the acting user.
func (vm *ViewModel) Send(ctx context.Context, text string) error {
	if vm.userID == "" {
		return ErrNoUser
	}
	id := vm.sync.ConversationID()
	if id == "" {
		return intsync.ErrNotOpen
	}
	return vm.sync.Send(ctx, id, text, vm.userID)
}

// Search runs a message search over the acting user's conversations.
func (vm *ViewModel) Search(ctx context.Context, query string) ([]*rpcv1.SearchResult, error) {
	if vm.userID == "" {
		return nil, ErrNoUser
	}
	resp, err := vm.client.Message.SearchMessages(ctx, &rpcv1.SearchMessagesRequest{
		UserId: vm.userID,
		Query:  strings.TrimSpace(query),
	})
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Members lists the members of a conversation.
func (vm *ViewModel) Members(ctx context.Context, conversationID string) ([]*rpcv1.Member, error) {
	resp, err := vm.client.Conversation.ListMembers(ctx, &rpcv1.ListMembersRequest{ConversationId: conversationID})
	if err != nil {
		return nil, err
	}
	return resp.Members, nil
}

// Messages returns the open conversation's view.
func (vm *ViewModel) Messages() []intsync.Message {
	return vm.sync.Messages()
}

// Conversations returns a snapshot of the conversation list.
func (vm *ViewModel) Conversations() []intsync.Conversation {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.conversations
}

// Conversation looks up a listed conversation by id.
func (vm *ViewModel) Conversation(id string) (intsync.Conversation, bool) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, c := range vm.conversations {
		if c.ID == id {
			return c, true
		}
	}
	return intsync.Conversation{}, false
}

// ConversationName returns the display name for id, or id itself.
func (vm *ViewModel) ConversationName(id string) string {
	if c, ok := vm.Conversation(id); ok && c.Name != "" {
		return c.Name
	}
	return id
}

// Status returns a snapshot of daemon status, or nil before the first load.
func (vm *ViewModel) Status() *rpcv1.GetStatusResponse {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.status
}
