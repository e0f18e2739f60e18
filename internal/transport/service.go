package transport

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The Transform service carries records as google.protobuf.Struct.
// Request: column -> value. Response: {"columns": [...], "values": [...]}.
const (
	ServiceName = "pitchflow.v1.Transform"
	applyMethod = "/pitchflow.v1.Transform/Apply"
)

type TransformServer interface {
	Apply(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterTransformServer(s grpc.ServiceRegistrar, srv TransformServer) {
	s.RegisterService(&transformServiceDesc, srv)
}

func applyHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TransformServer).Apply(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: applyMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TransformServer).Apply(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var transformServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TransformServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Apply", Handler: applyHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pitchflow/v1/transform",
}

type TransformClient struct {
	cc grpc.ClientConnInterface
}

func NewTransformClient(cc grpc.ClientConnInterface) *TransformClient {
	return &TransformClient{cc: cc}
}

func (c *TransformClient) Apply(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, applyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
