package rpcv1

import (
	"context"

	"google.golang.org/grpc"
)

const (
	ProfileService_GetProfile_FullMethodName        = "/huddle.v1.ProfileService/GetProfile"
	ProfileService_UpsertProfile_FullMethodName     = "/huddle.v1.ProfileService/UpsertProfile"
	ProfileService_ListProfiles_FullMethodName      = "/huddle.v1.ProfileService/ListProfiles"
	ProfileService_ResolveIdentities_FullMethodName = "/huddle.v1.ProfileService/ResolveIdentities"
)

// ProfileServiceServer serves profiles and sender identities.
type ProfileServiceServer interface {
	GetProfile(context.Context, *GetProfileRequest) (*ProfileResponse, error)
	UpsertProfile(context.Context, *UpsertProfileRequest) (*ProfileResponse, error)
	ListProfiles(context.Context, *ListProfilesRequest) (*ListProfilesResponse, error)
	ResolveIdentities(context.Context, *ResolveIdentitiesRequest) (*ResolveIdentitiesResponse, error)
}

func profileServer(srv any) ProfileServiceServer { return srv.(ProfileServiceServer) }

var ProfileService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "huddle.v1.ProfileService",
	HandlerType: (*ProfileServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetProfile",
			Handler: unary(ProfileService_GetProfile_FullMethodName, func(srv any, ctx context.Context, req *GetProfileRequest) (*ProfileResponse, error) {
				return profileServer(srv).GetProfile(ctx, req)
			}),
		},
		{
			MethodName: "UpsertProfile",
			Handler: unary(ProfileService_UpsertProfile_FullMethodName, func(srv any, ctx context.Context, req *UpsertProfileRequest) (*ProfileResponse, error) {
				return profileServer(srv).UpsertProfile(ctx, req)
			}),
		},
		{
			MethodName: "ListProfiles",
			Handler: unary(ProfileService_ListProfiles_FullMethodName, func(srv any, ctx context.Context, req *ListProfilesRequest) (*ListProfilesResponse, error) {
				return profileServer(srv).ListProfiles(ctx, req)
			}),
		},
		{
			MethodName: "ResolveIdentities",
			Handler: unary(ProfileService_ResolveIdentities_FullMethodName, func(srv any, ctx context.Context, req *ResolveIdentitiesRequest) (*ResolveIdentitiesResponse, error) {
				return profileServer(srv).ResolveIdentities(ctx, req)
			}),
		},
	},
	Metadata: "huddle/v1/profile.proto",
}

func RegisterProfileServiceServer(s grpc.ServiceRegistrar, srv ProfileServiceServer) {
	s.RegisterService(&ProfileService_ServiceDesc, srv)
}

type ProfileServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProfileServiceClient(cc grpc.ClientConnInterface) *ProfileServiceClient {
	return &ProfileServiceClient{cc: cc}
}

func (c *ProfileServiceClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, ProfileService_GetProfile_FullMethodName, in, opts)
}

func (c *ProfileServiceClient) UpsertProfile(ctx context.Context, in *UpsertProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, ProfileService_UpsertProfile_FullMethodName, in, opts)
}

func (c *ProfileServiceClient) ListProfiles(ctx context.Context, in *ListProfilesRequest, opts ...grpc.CallOption) (*ListProfilesResponse, error) {
	return invoke[ListProfilesResponse](ctx, c.cc, ProfileService_ListProfiles_FullMethodName, in, opts)
}

func (c *ProfileServiceClient) ResolveIdentities(ctx context.Context, in *ResolveIdentitiesRequest, opts ...grpc.CallOption) (*ResolveIdentitiesResponse, error) {
	return invoke[ResolveIdentitiesResponse](ctx, c.cc, ProfileService_ResolveIdentities_FullMethodName, in, opts)
}
