package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Messages are protobuf well-known types, so no generated message code is
// needed; the descriptor below mirrors what protoc-gen-go-grpc emits for
//
//	service CollectionControl {
//	  rpc GetStatus(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc LookupSymbol(google.protobuf.StringValue) returns (google.protobuf.ListValue);
//	  rpc Rebuild(google.protobuf.Empty) returns (google.protobuf.Struct);
//	  rpc ExcludeVenue(google.protobuf.StringValue) returns (google.protobuf.Struct);
//	}
const ServiceName = "collections.v1.CollectionControl"

// CollectionControlServer is the server API for the CollectionControl service.
type CollectionControlServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	LookupSymbol(context.Context, *wrapperspb.StringValue) (*structpb.ListValue, error)
	Rebuild(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ExcludeVenue(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------

func RegisterCollectionControlServer(s grpc.ServiceRegistrar, srv CollectionControlServer) {
	s.RegisterService(&CollectionControl_ServiceDesc, srv)
}

var CollectionControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CollectionControlServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod("GetStatus", CollectionControlServer.GetStatus),
		unaryMethod("LookupSymbol", CollectionControlServer.LookupSymbol),
		unaryMethod("Rebuild", CollectionControlServer.Rebuild),
		unaryMethod("ExcludeVenue", CollectionControlServer.ExcludeVenue),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "collections/v1/control.proto",
}

// -----------------------------------------------------------------------------

func unaryMethod[Req any, Resp any](name string, call func(CollectionControlServer, context.Context, *Req) (Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			server := srv.(CollectionControlServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(server, ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type CollectionControlClient struct {
	cc grpc.ClientConnInterface
}

func NewCollectionControlClient(cc grpc.ClientConnInterface) *CollectionControlClient {
	return &CollectionControlClient{cc: cc}
}

func (c *CollectionControlClient) GetStatus(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/GetStatus", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CollectionControlClient) LookupSymbol(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/LookupSymbol", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CollectionControlClient) Rebuild(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/Rebuild", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CollectionControlClient) ExcludeVenue(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/ExcludeVenue", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
