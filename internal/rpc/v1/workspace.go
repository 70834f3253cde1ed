package rpcv1

import (
	"context"

	"google.golang.org/grpc"
)

const WorkspaceService_GetStatus_FullMethodName = "/huddle.v1.WorkspaceService/GetStatus"

// WorkspaceServiceServer reports daemon status.
type WorkspaceServiceServer interface {
	GetStatus(context.Context, *GetStatusRequest) (*GetStatusResponse, error)
}

var WorkspaceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "huddle.v1.WorkspaceService",
	HandlerType: (*WorkspaceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler: unary(WorkspaceService_GetStatus_FullMethodName, func(srv any, ctx context.Context, req *GetStatusRequest) (*GetStatusResponse, error) {
				return srv.(WorkspaceServiceServer).GetStatus(ctx, req)
			}),
		},
	},
	Metadata: "huddle/v1/workspace.proto",
}

func RegisterWorkspaceServiceServer(s grpc.ServiceRegistrar, srv WorkspaceServiceServer) {
	s.RegisterService(&WorkspaceService_ServiceDesc, srv)
}

type WorkspaceServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewWorkspaceServiceClient(cc grpc.ClientConnInterface) *WorkspaceServiceClient {
	return &WorkspaceServiceClient{cc: cc}
}

func (c *WorkspaceServiceClient) GetStatus(ctx context.Context, in *GetStatusRequest, opts ...grpc.CallOption) (*GetStatusResponse, error) {
	return invoke[GetStatusResponse](ctx, c.cc, WorkspaceService_GetStatus_FullMethodName, in, opts)
}
