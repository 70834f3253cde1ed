package store

import "strings"

// Kind distinguishes direct conversations from channels.
type Kind string

const (
	KindDirect  Kind = "direct"
	KindChannel Kind = "channel"
)

// Role is a participant's role inside a conversation.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// CanManage reports whether the role may change a conversation's roster.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Profile is a user's profile record.
type Profile struct {
	ID         string
	FullName   string
	Email      string
	AvatarURL  string
	Department string
	Phone      string
	Bio        string
}

// DisplayName returns the full name, else the local part of the email.
// Returns empty if neither is set.
func (p *Profile) DisplayName() string {
	if name := strings.TrimSpace(p.FullName); name != "" {
		return name
	}
	return EmailLocalPart(p.Email)
}

// EmailLocalPart returns the part of an email address before '@'.
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	return local
}

// Identity is the display identity of a message sender.
type Identity struct {
	UserID      string
	DisplayName string
	Avatar      string
}

// IdentityOf derives a sender identity from a profile.
func IdentityOf(p *Profile) Identity {
	return Identity{UserID: p.ID, DisplayName: p.DisplayName(), Avatar: p.AvatarURL}
}

// Conversation is a direct chat or a channel, with its summary fields.
type Conversation struct {
	ID                 string
	Kind               Kind
	Name               string
	Description        string
	CreatedBy          string
	CreatedAt          int64
	MemberCount        int
	LastMessageAt      int64
	LastMessagePreview string
}

// Member is one participant of a conversation.
type Member struct {
	ConversationID string
	UserID         string
	Role           Role
	JoinedAt       int64
	Name           string
	Email          string
}

// Message is a persisted message. ID and CreatedAt (unix ms) are assigned by the store.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	SenderEmail    string
	Content        string
	CreatedAt      int64
}

// SearchResult holds a message with a search snippet.
type SearchResult struct {
	Message Message
	Snippet string
}
