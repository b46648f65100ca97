package v1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "workforce.v1.WorkforceAnalytics"

const (
	WorkforceAnalytics_ImportDataset_FullMethodName   = "/workforce.v1.WorkforceAnalytics/ImportDataset"
	WorkforceAnalytics_ListSubgroups_FullMethodName   = "/workforce.v1.WorkforceAnalytics/ListSubgroups"
	WorkforceAnalytics_AnalyzeSubgroup_FullMethodName = "/workforce.v1.WorkforceAnalytics/AnalyzeSubgroup"
	WorkforceAnalytics_ExportAnalysis_FullMethodName  = "/workforce.v1.WorkforceAnalytics/ExportAnalysis"
)

// WorkforceAnalyticsClient is the client API for the WorkforceAnalytics service.
type WorkforceAnalyticsClient interface {
	ImportDataset(ctx context.Context, in *ImportDatasetRequest, opts ...grpc.CallOption) (*ImportDatasetResponse, error)
	ListSubgroups(ctx context.Context, in *ListSubgroupsRequest, opts ...grpc.CallOption) (*ListSubgroupsResponse, error)
	AnalyzeSubgroup(ctx context.Context, in *AnalyzeSubgroupRequest, opts ...grpc.CallOption) (*AnalyzeSubgroupResponse, error)
	ExportAnalysis(ctx context.Context, in *ExportAnalysisRequest, opts ...grpc.CallOption) (*ExportAnalysisResponse, error)
}

type workforceAnalyticsClient struct {
	cc grpc.ClientConnInterface
}

func NewWorkforceAnalyticsClient(cc grpc.ClientConnInterface) WorkforceAnalyticsClient {
	return &workforceAnalyticsClient{cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *workforceAnalyticsClient) ImportDataset(ctx context.Context, in *ImportDatasetRequest, opts ...grpc.CallOption) (*ImportDatasetResponse, error) {
	return invoke[ImportDatasetRequest, ImportDatasetResponse](ctx, c.cc, WorkforceAnalytics_ImportDataset_FullMethodName, in, opts)
}

func (c *workforceAnalyticsClient) ListSubgroups(ctx context.Context, in *ListSubgroupsRequest, opts ...grpc.CallOption) (*ListSubgroupsResponse, error) {
	return invoke[ListSubgroupsRequest, ListSubgroupsResponse](ctx, c.cc, WorkforceAnalytics_ListSubgroups_FullMethodName, in, opts)
}

func (c *workforceAnalyticsClient) AnalyzeSubgroup(ctx context.Context, in *AnalyzeSubgroupRequest, opts ...grpc.CallOption) (*AnalyzeSubgroupResponse, error) {
	return invoke[AnalyzeSubgroupRequest, AnalyzeSubgroupResponse](ctx, c.cc, WorkforceAnalytics_AnalyzeSubgroup_FullMethodName, in, opts)
}

func (c *workforceAnalyticsClient) ExportAnalysis(ctx context.Context, in *ExportAnalysisRequest, opts ...grpc.CallOption) (*ExportAnalysisResponse, error) {
	return invoke[ExportAnalysisRequest, ExportAnalysisResponse](ctx, c.cc, WorkforceAnalytics_ExportAnalysis_FullMethodName, in, opts)
}

// WorkforceAnalyticsServer is the server API for the WorkforceAnalytics service.
// Implementations must embed UnimplementedWorkforceAnalyticsServer.
type WorkforceAnalyticsServer interface {
	ImportDataset(context.Context, *ImportDatasetRequest) (*ImportDatasetResponse, error)
	ListSubgroups(context.Context, *ListSubgroupsRequest) (*ListSubgroupsResponse, error)
	AnalyzeSubgroup(context.Context, *AnalyzeSubgroupRequest) (*AnalyzeSubgroupResponse, error)
	ExportAnalysis(context.Context, *ExportAnalysisRequest) (*ExportAnalysisResponse, error)
	mustEmbedUnimplementedWorkforceAnalyticsServer()
}

type UnimplementedWorkforceAnalyticsServer struct{}

func (UnimplementedWorkforceAnalyticsServer) ImportDataset(context.Context, *ImportDatasetRequest) (*ImportDatasetResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ImportDataset not implemented")
}
func (UnimplementedWorkforceAnalyticsServer) ListSubgroups(context.Context, *ListSubgroupsRequest) (*ListSubgroupsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListSubgroups not implemented")
}
func (UnimplementedWorkforceAnalyticsServer) AnalyzeSubgroup(context.Context, *AnalyzeSubgroupRequest) (*AnalyzeSubgroupResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method AnalyzeSubgroup not implemented")
}
func (UnimplementedWorkforceAnalyticsServer) ExportAnalysis(context.Context, *ExportAnalysisRequest) (*ExportAnalysisResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ExportAnalysis not implemented")
}
func (UnimplementedWorkforceAnalyticsServer) mustEmbedUnimplementedWorkforceAnalyticsServer() {}

func RegisterWorkforceAnalyticsServer(s grpc.ServiceRegistrar, srv WorkforceAnalyticsServer) {
	s.RegisterService(&WorkforceAnalytics_ServiceDesc, srv)
}

// unaryHandler decodes the request and calls the server method. A body that
// does not decode into the request message is the caller's error.
func unaryHandler[Req, Resp any](fullMethod string, call func(WorkforceAnalyticsServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "malformed request: %s", status.Convert(err).Message())
		}
		if interceptor == nil {
			return call(srv.(WorkforceAnalyticsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(WorkforceAnalyticsServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// WorkforceAnalytics_ServiceDesc is the grpc.ServiceDesc for the WorkforceAnalytics service.
var WorkforceAnalytics_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WorkforceAnalyticsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ImportDataset",
			Handler:    unaryHandler(WorkforceAnalytics_ImportDataset_FullMethodName, WorkforceAnalyticsServer.ImportDataset),
		},
		{
			MethodName: "ListSubgroups",
			Handler:    unaryHandler(WorkforceAnalytics_ListSubgroups_FullMethodName, WorkforceAnalyticsServer.ListSubgroups),
		},
		{
			MethodName: "AnalyzeSubgroup",
			Handler:    unaryHandler(WorkforceAnalytics_AnalyzeSubgroup_FullMethodName, WorkforceAnalyticsServer.AnalyzeSubgroup),
		},
		{
			MethodName: "ExportAnalysis",
			Handler:    unaryHandler(WorkforceAnalytics_ExportAnalysis_FullMethodName, WorkforceAnalyticsServer.ExportAnalysis),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "workforce/v1/workforce.proto",
}
