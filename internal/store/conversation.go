package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const conversationColumns = `c.id, c.kind, c.name, c.description, c.created_by, c.created_at,
	(SELECT COUNT(*) FROM participants p WHERE p.conversation_id = c.id),
	c.last_message_at, c.last_message_preview`

func scanConversation(row interface{ Scan(...any) error }) (*Conversation, error) {
	var c Conversation
	if err := row.Scan(&c.ID, &c.Kind, &c.Name, &c.Description, &c.CreatedBy, &c.CreatedAt,
		&c.MemberCount, &c.LastMessageAt, &c.LastMessagePreview); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateConversation inserts a conversation together with its initial members in
// one transaction. ID and CreatedAt are assigned when empty.
func (db *DB) CreateConversation(c *Conversation, members []Member) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().UnixMilli()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO conversations (id, kind, name, description, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Kind, c.Name, c.Description, c.CreatedBy, c.CreatedAt); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	for _, m := range members {
		if _, err := tx.Exec(`
			INSERT INTO participants (conversation_id, user_id, role, joined_at)
			VALUES (?, ?, ?, ?)`,
			c.ID, m.UserID, m.Role, c.CreatedAt); err != nil {
			return fmt.Errorf("insert participant %s: %w", m.UserID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	c.MemberCount = len(members)
	return nil
}

// GetConversation returns a conversation by ID, or nil if it does not exist.
func (db *DB) GetConversation(id string) (*Conversation, error) {
	c, err := scanConversation(db.QueryRow(`SELECT `+conversationColumns+` FROM conversations c WHERE c.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListConversationsForUser returns the conversations userID participates in,
// most recently active first.
func (db *DB) ListConversationsForUser(userID string, limit int) ([]Conversation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(`
		SELECT `+conversationColumns+`
		FROM conversations c
		JOIN participants me ON me.conversation_id = c.id AND me.user_id = ?
		ORDER BY MAX(c.last_message_at, c.created_at) DESC, c.id
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var convs []Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

// FindDirect returns the direct conversation between two users, or nil.
func (db *DB) FindDirect(a, b string) (*Conversation, error) {
	c, err := scanConversation(db.QueryRow(`
		SELECT `+conversationColumns+`
		FROM conversations c
		WHERE c.kind = 'direct'
		  AND EXISTS (SELECT 1 FROM participants p WHERE p.conversation_id = c.id AND p.user_id = ?)
		  AND EXISTS (SELECT 1 FROM participants p WHERE p.conversation_id = c.id AND p.user_id = ?)
		ORDER BY c.created_at
		LIMIT 1`, a, b))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ConversationCount returns the total number of conversations.
func (db *DB) ConversationCount() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&n)
	return n, err
}
