package platform

import (
	"context"
	"fmt"
	"strings"

	"github.com/matheus3301/huddle/internal/store"
)

// GetProfile returns a user's profile.
func (s *Service) GetProfile(ctx context.Context, id string) (*store.Profile, error) {
	return s.requireProfile(id)
}

// UpsertProfile creates or updates a profile. Empty fields keep their stored value.
func (s *Service) UpsertProfile(ctx context.Context, p *store.Profile) (*store.Profile, error) {
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		return nil, fmt.Errorf("%w: profile id is required", ErrInvalidArgument)
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidArgument, p.Email)
	}
	if err := s.db.UpsertProfile(p); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return s.requireProfile(p.ID)
}

// ListProfiles is the people picker: every profile but excludeID whose name
// or email contains query.
func (s *Service) ListProfiles(ctx context.Context, excludeID, query string) ([]store.Profile, error) {
	profiles, err := s.db.ListProfiles(excludeID, query, 0)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *Service) requireProfile(id string) (*store.Profile, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	p, err := s.db.GetProfile(id)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	return p, nil
}
