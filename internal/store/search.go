package store

import (
	"strings"
	"unicode/utf8"
)

const snippetRadius = 32

// SearchMessages performs a case-insensitive substring search over the messages
// of conversations userID participates in. A non-empty conversationID narrows
// the search to that conversation. Results are newest first.
func (db *DB) SearchMessages(userID, query, conversationID string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	q := `
		SELECT m.id, m.conversation_id, m.sender_id, m.sender_email, m.content, m.created_at
		FROM messages m
		JOIN participants p ON p.conversation_id = m.conversation_id AND p.user_id = ?
		WHERE m.content LIKE ? ESCAPE '\'`

	args := []any{userID, "%" + escapeLike(query) + "%"}
	if conversationID != "" {
		q += " AND m.conversation_id = ?"
		args = append(args, conversationID)
	}
	q += " ORDER BY m.created_at DESC, m.id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := scanMessage(rows, &r.Message); err != nil {
			return nil, err
		}
		r.Snippet = Snippet(r.Message.Content, query)
		results = append(results, r)
	}
	return results, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Snippet returns the text around the first case-insensitive match of query,
// with the match wrapped in << >>. Elided text is marked with "...".
func Snippet(content, query string) string {
	lower := strings.ToLower(content)
	if len(lower) != len(content) {
		// Lowercasing changed byte offsets.
		return Preview(content)
	}
	idx := strings.Index(lower, strings.ToLower(query))
	if idx < 0 {
		return Preview(content)
	}
	end := idx + len(query)

	start := idx
	for n := 0; start > 0 && n < snippetRadius; n++ {
		_, size := utf8.DecodeLastRuneInString(content[:start])
		start -= size
	}
	stop := end
	for n := 0; stop < len(content) && n < snippetRadius; n++ {
		_, size := utf8.DecodeRuneInString(content[stop:])
		stop += size
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("...")
	}
	b.WriteString(content[start:idx])
	b.WriteString("<<")
	b.WriteString(content[idx:end])
	b.WriteString(">>")
	b.WriteString(content[end:stop])
	if stop < len(content) {
		b.WriteString("...")
	}
	return b.String()
}
