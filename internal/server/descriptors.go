package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// The services exchange protobuf well-known types only, so their descriptors
// are declared here instead of being generated from a .proto file.
const (
	JobsServiceName    = "jobtracker.v1.JobsService"
	ExtractServiceName = "jobtracker.v1.ExtractService"
	ExportServiceName  = "jobtracker.v1.ExportService"
)

type JobsServer interface {
	ListJobs(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetJob(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	SubmitJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteJob(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
	SetStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Stats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

type ExtractServer interface {
	ExtractText(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	ExtractImage(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type ExportServer interface {
	ExportJobs(context.Context, *structpb.Struct) (*wrapperspb.BytesValue, error)
}

func fullMethod(service, method string) string {
	return "/" + service + "/" + method
}

// unary builds a MethodDesc with the same shape protoc-gen-go-grpc emits.
func unary[Req proto.Message, Resp proto.Message, S any](service, method string, newReq func() Req, call func(S, context.Context, Req) (Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newReq()
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(service, method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func newString() *wrapperspb.StringValue { return new(wrapperspb.StringValue) }
func newStruct() *structpb.Struct        { return new(structpb.Struct) }
func newEmpty() *emptypb.Empty           { return new(emptypb.Empty) }

var JobsServiceDesc = grpc.ServiceDesc{
	ServiceName: JobsServiceName,
	HandlerType: (*JobsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(JobsServiceName, "ListJobs", newString, JobsServer.ListJobs),
		unary(JobsServiceName, "GetJob", newString, JobsServer.GetJob),
		unary(JobsServiceName, "SubmitJob", newStruct, JobsServer.SubmitJob),
		unary(JobsServiceName, "DeleteJob", newString, JobsServer.DeleteJob),
		unary(JobsServiceName, "SetStatus", newStruct, JobsServer.SetStatus),
		unary(JobsServiceName, "Stats", newEmpty, JobsServer.Stats),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobtracker/v1/jobs.proto",
}

var ExtractServiceDesc = grpc.ServiceDesc{
	ServiceName: ExtractServiceName,
	HandlerType: (*ExtractServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ExtractServiceName, "ExtractText", newString, ExtractServer.ExtractText),
		unary(ExtractServiceName, "ExtractImage", newStruct, ExtractServer.ExtractImage),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobtracker/v1/extract.proto",
}

var ExportServiceDesc = grpc.ServiceDesc{
	ServiceName: ExportServiceName,
	HandlerType: (*ExportServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(ExportServiceName, "ExportJobs", newStruct, ExportServer.ExportJobs),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jobtracker/v1/export.proto",
}

func RegisterJobsServer(s grpc.ServiceRegistrar, srv JobsServer) {
	s.RegisterService(&JobsServiceDesc, srv)
}

func RegisterExtractServer(s grpc.ServiceRegistrar, srv ExtractServer) {
	s.RegisterService(&ExtractServiceDesc, srv)
}

func RegisterExportServer(s grpc.ServiceRegistrar, srv ExportServer) {
	s.RegisterService(&ExportServiceDesc, srv)
}
