package rpcv1

// Message is a persisted message.
type Message struct {
	Id              string `json:"id"`
	ConversationId  string `json:"conversation_id"`
	SenderId        string `json:"sender_id"`
	SenderEmail     string `json:"sender_email,omitempty"`
	Content         string `json:"content"`
	CreatedAtUnixMs int64  `json:"created_at_unix_ms"`
}

// Conversation is a direct conversation or a channel summary.
type Conversation struct {
	Id                  string `json:"id"`
	Kind                string `json:"kind"`
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	CreatedBy           string `json:"created_by,omitempty"`
	CreatedAtUnixMs     int64  `json:"created_at_unix_ms,omitempty"`
	MemberCount         int32  `json:"member_count"`
	LastMessageAtUnixMs int64  `json:"last_message_at_unix_ms,omitempty"`
	LastMessagePreview  string `json:"last_message_preview,omitempty"`
}

// Member is a conversation participant.
type Member struct {
	ConversationId string `json:"conversation_id"`
	UserId         string `json:"user_id"`
	Role           string `json:"role"`
	JoinedAtUnixMs int64  `json:"joined_at_unix_ms"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
}

// Profile is a user profile.
type Profile struct {
	Id         string `json:"id"`
	FullName   string `json:"full_name,omitempty"`
	Email      string `json:"email,omitempty"`
	AvatarUrl  string `json:"avatar_url,omitempty"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Bio        string `json:"bio,omitempty"`
}

// Identity is a sender's display identity.
type Identity struct {
	UserId      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// SearchResult is a matching message with a highlighted snippet.
type SearchResult struct {
	Message *Message `json:"message"`
	Snippet string   `json:"snippet"`
}

// EventKindReady is sent once on WatchMessages after the server-side
// subscription is registered. Inserts published after it are delivered.
const EventKindReady = "watch.ready"

// EventEnvelope wraps a streamed event.
type EventEnvelope struct {
	EventId          string   `json:"event_id"`
	OccurredAtUnixMs int64    `json:"occurred_at_unix_ms"`
	Kind             string   `json:"kind"`
	ConversationId   string   `json:"conversation_id,omitempty"`
	Message          *Message `json:"message,omitempty"`
}

type GetStatusRequest struct{}

type GetStatusResponse struct {
	Workspace         string `json:"workspace"`
	UptimeMs          int64  `json:"uptime_ms"`
	ConversationCount int32  `json:"conversation_count"`
	MessageCount      int32  `json:"message_count"`
	Subscribers       int32  `json:"subscribers"`
}

type ListConversationsRequest struct {
	UserId string `json:"user_id"`
}

type ListConversationsResponse struct {
	Conversations []*Conversation `json:"conversations"`
}

type GetConversationRequest struct {
	Id string `json:"id"`
}

type GetConversationResponse struct {
	Conversation *Conversation `json:"conversation"`
}

type CreateDirectRequest struct {
	UserId string `json:"user_id"`
	PeerId string `json:"peer_id"`
}

type CreateDirectResponse struct {
	Conversation *Conversation `json:"conversation"`
	Created      bool          `json:"created"`
}

type CreateChannelRequest struct {
	OwnerId     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CloneChannelRequest struct {
	UserId    string `json:"user_id"`
	ChannelId string `json:"channel_id"`
}

type ChannelResponse struct {
	Conversation *Conversation `json:"conversation"`
}

type ListMembersRequest struct {
	ConversationId string `json:"conversation_id"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

type AddMemberRequest struct {
	ActorId        string `json:"actor_id"`
	ConversationId string `json:"conversation_id"`
	UserId         string `json:"user_id"`
	Role           string `json:"role,omitempty"`
}

type RemoveMemberRequest struct {
	ActorId        string `json:"actor_id"`
	ConversationId string `json:"conversation_id"`
	UserId         string `json:"user_id"`
}

type MemberChangeResponse struct {
	Success bool `json:"success"`
}

// ListMessagesRequest lists a conversation's history. A positive
// AfterUnixMs returns only messages created at or after it.
type ListMessagesRequest struct {
	ConversationId string `json:"conversation_id"`
	AfterUnixMs    int64  `json:"after_unix_ms,omitempty"`
}

type ListMessagesResponse struct {
	Messages []*Message `json:"messages"`
}

type SendMessageRequest struct {
	ConversationId string `json:"conversation_id"`
	SenderId       string `json:"sender_id"`
	Content        string `json:"content"`
}

type SendMessageResponse struct {
	Message *Message `json:"message"`
}

type SearchMessagesRequest struct {
	UserId         string `json:"user_id"`
	Query          string `json:"query"`
	ConversationId string `json:"conversation_id,omitempty"`
}

type SearchMessagesResponse struct {
	Results []*SearchResult `json:"results"`
}

type WatchMessagesRequest struct {
	ConversationId string `json:"conversation_id"`
}

type GetProfileRequest struct {
	Id string `json:"id"`
}

type UpsertProfileRequest struct {
	Profile *Profile `json:"profile"`
}

type ProfileResponse struct {
	Profile *Profile `json:"profile"`
}

type ListProfilesRequest struct {
	ExcludeId string `json:"exclude_id,omitempty"`
	Query     string `json:"query,omitempty"`
}

type ListProfilesResponse struct {
	Profiles []*Profile `json:"profiles"`
}

type ResolveIdentitiesRequest struct {
	UserIds []string `json:"user_ids"`
}

// ResolveIdentitiesResponse carries one entry per user found; unknown users are omitted.
type ResolveIdentitiesResponse struct {
	Identities []*Identity `json:"identities"`
}
