package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "receipts.analytics.v1.Analytics"

const (
	MethodExtract = "/" + ServiceName + "/Extract"
	MethodGet     = "/" + ServiceName + "/Get"
	MethodQuery   = "/" + ServiceName + "/Query"
	MethodStats   = "/" + ServiceName + "/Stats"
	MethodUpdate  = "/" + ServiceName + "/Update"
	MethodDelete  = "/" + ServiceName + "/Delete"
)

// AnalyticsServer is the server API for the Analytics service. Every message is
// a google.protobuf.Struct holding the JSON form of the request or reply.
type AnalyticsServer interface {
	Extract(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Get(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Query(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Stats(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Update(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Delete(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// UnimplementedAnalyticsServer can be embedded to have forward compatible implementations.
type UnimplementedAnalyticsServer struct{}

func (UnimplementedAnalyticsServer) Extract(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Extract not implemented")
}
func (UnimplementedAnalyticsServer) Get(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Get not implemented")
}
func (UnimplementedAnalyticsServer) Query(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Query not implemented")
}
func (UnimplementedAnalyticsServer) Stats(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Stats not implemented")
}
func (UnimplementedAnalyticsServer) Update(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Update not implemented")
}
func (UnimplementedAnalyticsServer) Delete(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}

type unaryCall func(AnalyticsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(name, fullMethod string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(AnalyticsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(AnalyticsServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// AnalyticsServiceDesc is the grpc.ServiceDesc for the Analytics service.
var AnalyticsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalyticsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Extract", MethodExtract, AnalyticsServer.Extract),
		unary("Get", MethodGet, AnalyticsServer.Get),
		unary("Query", MethodQuery, AnalyticsServer.Query),
		unary("Stats", MethodStats, AnalyticsServer.Stats),
		unary("Update", MethodUpdate, AnalyticsServer.Update),
		unary("Delete", MethodDelete, AnalyticsServer.Delete),
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterAnalyticsServer registers srv on s.
func RegisterAnalyticsServer(s grpc.ServiceRegistrar, srv AnalyticsServer) {
	s.RegisterService(&AnalyticsServiceDesc, srv)
}
