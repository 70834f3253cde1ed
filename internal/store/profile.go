package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const profileColumns = `id, full_name, email, avatar_url, department, phone, bio`

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.AvatarURL, &p.Department, &p.Phone, &p.Bio); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertProfile inserts or updates a profile. Empty fields keep their stored value.
func (db *DB) UpsertProfile(p *Profile) error {
	now := time.Now().UnixMilli()
	_, err := db.Exec(`
		INSERT INTO profiles (id, full_name, email, avatar_url, department, phone, bio, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = CASE WHEN excluded.full_name != '' THEN excluded.full_name ELSE profiles.full_name END,
			email = CASE WHEN excluded.email != '' THEN excluded.email ELSE profiles.email END,
			avatar_url = CASE WHEN excluded.avatar_url != '' THEN excluded.avatar_url ELSE profiles.avatar_url END,
			department = CASE WHEN excluded.department != '' THEN excluded.department ELSE profiles.department END,
			phone = CASE WHEN excluded.phone != '' THEN excluded.phone ELSE profiles.phone END,
			bio = CASE WHEN excluded.bio != '' THEN excluded.bio ELSE profiles.bio END,
			updated_at = excluded.updated_at`,
		p.ID, p.FullName, p.Email, p.AvatarURL, p.Department, p.Phone, p.Bio, now)
	return err
}

// GetProfile returns a profile by ID, or nil if it does not exist.
func (db *DB) GetProfile(id string) (*Profile, error) {
	p, err := scanProfile(db.QueryRow(`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfiles returns the profiles for the given IDs keyed by ID.
// Unknown IDs are absent from the map.
func (db *DB) GetProfiles(ids []string) (map[string]*Profile, error) {
	out := make(map[string]*Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := db.Query(`SELECT `+profileColumns+` FROM profiles WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// ListProfiles returns profiles other than excludeID whose name or email contains
// query (case-insensitive), ordered by display name.
func (db *DB) ListProfiles(excludeID, query string, limit int) ([]Profile, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + strings.TrimSpace(query) + "%"
	rows, err := db.Query(`
		SELECT `+profileColumns+`
		FROM profiles
		WHERE id != ? AND (full_name LIKE ? OR email LIKE ?)
		ORDER BY COALESCE(NULLIF(full_name, ''), email) COLLATE NOCASE
		LIMIT ?`, excludeID, pattern, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
