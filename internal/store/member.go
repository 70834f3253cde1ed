package store

import (
	"database/sql"
	"time"
)

// AddMember adds a participant to a conversation. Adding an existing member
// updates its role.
func (db *DB) AddMember(conversationID, userID string, role Role) error {
	_, err := db.Exec(`
		INSERT INTO participants (conversation_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(conversation_id, user_id) DO UPDATE SET role = excluded.role`,
		conversationID, userID, role, time.Now().UnixMilli())
	return err
}

// RemoveMember removes a participant. Reports whether a row was deleted.
func (db *DB) RemoveMember(conversationID, userID string) (bool, error) {
	res, err := db.Exec(`DELETE FROM participants WHERE conversation_id = ? AND user_id = ?`, conversationID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetMember returns one participant, or nil if userID is not a member.
func (db *DB) GetMember(conversationID, userID string) (*Member, error) {
	var m Member
	err := db.QueryRow(`
		SELECT p.conversation_id, p.user_id, p.role, p.joined_at,
		       COALESCE(pr.full_name, ''), COALESCE(pr.email, '')
		FROM participants p
		LEFT JOIN profiles pr ON pr.id = p.user_id
		WHERE p.conversation_id = ? AND p.user_id = ?`, conversationID, userID).
		Scan(&m.ConversationID, &m.UserID, &m.Role, &m.JoinedAt, &m.Name, &m.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// IsMember reports whether userID participates in the conversation.
func (db *DB) IsMember(conversationID, userID string) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM participants WHERE conversation_id = ? AND user_id = ?`,
		conversationID, userID).Scan(&n)
	return n > 0, err
}

// ListMembers returns the participants of a conversation, owners first.
func (db *DB) ListMembers(conversationID string) ([]Member, error) {
	rows, err := db.Query(`
		SELECT p.conversation_id, p.user_id, p.role, p.joined_at,
		       COALESCE(pr.full_name, ''), COALESCE(pr.email, '')
		FROM participants p
		LEFT JOIN profiles pr ON pr.id = p.user_id
		WHERE p.conversation_id = ?
		ORDER BY CASE p.role WHEN 'owner' THEN 0 WHEN 'admin' THEN 1 ELSE 2 END, p.joined_at, p.user_id`,
		conversationID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ConversationID, &m.UserID, &m.Role, &m.JoinedAt, &m.Name, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
