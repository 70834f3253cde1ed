package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const previewLen = 80

const messageColumns = `id, conversation_id, sender_id, sender_email, content, created_at`

func scanMessage(row interface{ Scan(...any) error }, m *Message) error {
	return row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.SenderEmail, &m.Content, &m.CreatedAt)
}

// InsertMessage persists a new message and bumps the conversation summary.
// ID is assigned when empty. CreatedAt is assigned by the store and is strictly
// greater than every earlier message of the same conversation. SenderEmail is
// copied from the sender's profile when not set.
func (db *DB) InsertMessage(m *Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var last int64
	if err := tx.QueryRow(`SELECT COALESCE(MAX(created_at), 0) FROM messages WHERE conversation_id = ?`,
		m.ConversationID).Scan(&last); err != nil {
		return fmt.Errorf("last timestamp: %w", err)
	}
	m.CreatedAt = max(time.Now().UnixMilli(), last+1)

	if m.SenderEmail == "" {
		err := tx.QueryRow(`SELECT email FROM profiles WHERE id = ?`, m.SenderID).Scan(&m.SenderEmail)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("sender email: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO messages (`+messageColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.ConversationID, m.SenderID, m.SenderEmail, m.Content, m.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if _, err := tx.Exec(`
		UPDATE conversations SET last_message_at = ?, last_message_preview = ?
		WHERE id = ?`, m.CreatedAt, Preview(m.Content), m.ConversationID); err != nil {
		return fmt.Errorf("update preview: %w", err)
	}
	return tx.Commit()
}

// GetMessage returns a message by ID, or nil if it does not exist.
func (db *DB) GetMessage(id string) (*Message, error) {
	var m Message
	err := scanMessage(db.QueryRow(`SELECT `+messageColumns+` FROM messages WHERE id = ?`, id), &m)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages returns the full history of a conversation ordered by
// (created_at, id) ascending.
func (db *DB) ListMessages(conversationID string) ([]Message, error) {
	return db.queryMessages(`
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at, id`, conversationID)
}

// ListMessagesSince returns messages ordered after the cursor (afterTs, afterID),
// ascending. An empty afterID with afterTs 0 returns the full history.
func (db *DB) ListMessagesSince(conversationID string, afterTs int64, afterID string) ([]Message, error) {
	return db.queryMessages(`
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = ? AND (created_at > ? OR (created_at = ? AND id > ?))
		ORDER BY created_at, id`, conversationID, afterTs, afterTs, afterID)
}

func (db *DB) queryMessages(query string, args ...any) ([]Message, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MessageCount returns the total number of stored messages.
func (db *DB) MessageCount() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n)
	return n, err
}

// Preview collapses whitespace and truncates content for conversation listings.
func Preview(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen-3]) + "..."
}
