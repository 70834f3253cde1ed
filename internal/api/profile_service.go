package api

import (
	"context"

	"github.com/matheus3301/huddle/internal/platform"
	rpcv1 "github.com/matheus3301/huddle/internal/rpc/v1"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

// ProfileService implements the ProfileService gRPC service.
type ProfileService struct {
	svc *platform.Service
}

// NewProfileService creates a new profile service.
func NewProfileService(svc *platform.Service) *ProfileService {
	return &ProfileService{svc: svc}
}

func (s *ProfileService) GetProfile(ctx context.Context, req *rpcv1.GetProfileRequest) (*rpcv1.ProfileResponse, error) {
	p, err := s.svc.GetProfile(ctx, req.Id)
	if err != nil {
		return nil, toStatus("get profile", err)
	}
	return &rpcv1.ProfileResponse{Profile: profileToWire(p)}, nil
}

func (s *ProfileService) UpsertProfile(ctx context.Context, req *rpcv1.UpsertProfileRequest) (*rpcv1.ProfileResponse, error) {
	if req.Profile == nil {
		return nil, grpcstatus.Errorf(codes.InvalidArgument, "upsert profile: profile is required")
	}
	p, err := s.svc.UpsertProfile(ctx, profileFromWire(req.Profile))
	if err != nil {
		return nil, toStatus("upsert profile", err)
	}
	return &rpcv1.ProfileResponse{Profile: profileToWire(p)}, nil
}

func (s *ProfileService) ListProfiles(ctx context.Context, req *rpcv1.ListProfilesRequest) (*rpcv1.ListProfilesResponse, error) {
	profiles, err := s.svc.ListProfiles(ctx, req.ExcludeId, req.Query)
	if err != nil {
		return nil, toStatus("list profiles", err)
	}
	out := make([]*rpcv1.Profile, 0, len(profiles))
	for i := range profiles {
		out = append(out, profileToWire(&profiles[i]))
	}
	return &rpcv1.ListProfilesResponse{Profiles: out}, nil
}

func (s *ProfileService) ResolveIdentities(ctx context.Context, req *rpcv1.ResolveIdentitiesRequest) (*rpcv1.ResolveIdentitiesResponse, error) {
	found, err := s.svc.FetchIdentities(ctx, req.UserIds)
	if err != nil {
		return nil, toStatus("resolve identities", err)
	}
	out := make([]*rpcv1.Identity, 0, len(found))
	for _, id := range req.UserIds {
		ident, ok := found[id]
		if !ok {
			continue
		}
		out = append(out, &rpcv1.Identity{UserId: ident.UserID, DisplayName: ident.DisplayName, Avatar: ident.Avatar})
	}
	return &rpcv1.ResolveIdentitiesResponse{Identities: out}, nil
}
