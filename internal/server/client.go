package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the jobtracker services over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp proto.Message](ctx context.Context, c *Client, service, method string, in proto.Message, out Resp, opts ...grpc.CallOption) (Resp, error) {
	if err := c.cc.Invoke(ctx, fullMethod(service, method), in, out, opts...); err != nil {
		var zero Resp
		return zero, err
	}
	return out, nil
}

func (c *Client) ListJobs(ctx context.Context, filter string) (*structpb.Struct, error) {
	return invoke(ctx, c, JobsServiceName, "ListJobs", wrapperspb.String(filter), new(structpb.Struct))
}

func (c *Client) GetJob(ctx context.Context, id string) (*structpb.Struct, error) {
	return invoke(ctx, c, JobsServiceName, "GetJob", wrapperspb.String(id), new(structpb.Struct))
}

func (c *Client) SubmitJob(ctx context.Context, job map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(job)
	if err != nil {
		return nil, err
	}
	return invoke(ctx, c, JobsServiceName, "SubmitJob", in, new(structpb.Struct))
}

func (c *Client) DeleteJob(ctx context.Context, id string) error {
	_, err := invoke(ctx, c, JobsServiceName, "DeleteJob", wrapperspb.String(id), new(emptypb.Empty))
	return err
}

func (c *Client) SetStatus(ctx context.Context, id, status string) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"id": id, "status": status})
	if err != nil {
		return nil, err
	}
	return invoke(ctx, c, JobsServiceName, "SetStatus", in, new(structpb.Struct))
}

func (c *Client) Stats(ctx context.Context) (*structpb.Struct, error) {
	return invoke(ctx, c, JobsServiceName, "Stats", &emptypb.Empty{}, new(structpb.Struct))
}

func (c *Client) ExtractText(ctx context.Context, text string) (*structpb.Struct, error) {
	return invoke(ctx, c, ExtractServiceName, "ExtractText", wrapperspb.String(text), new(structpb.Struct))
}

func (c *Client) ExtractImage(ctx context.Context, req map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	return invoke(ctx, c, ExtractServiceName, "ExtractImage", in, new(structpb.Struct))
}

func (c *Client) ExportJobs(ctx context.Context, filter, fromDate, toDate string) ([]byte, error) {
	in, err := structpb.NewStruct(map[string]any{"filter": filter, "from_date": fromDate, "to_date": toDate})
	if err != nil {
		return nil, err
	}
	out, err := invoke(ctx, c, ExportServiceName, "ExportJobs", in, new(wrapperspb.BytesValue))
	if err != nil {
		return nil, err
	}
	return out.GetValue(), nil
}
