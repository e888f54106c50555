package handler

import (
	"context"

	"google.golang.org/grpc"
)

// Empty is the message of calls that take or return nothing.
type Empty struct{}

// unaryMethod binds a typed handler method to a gRPC method descriptor.
// Requests are decoded by the codec the call negotiated.
func unaryMethod[S any, Req any, Resp any](serviceName, methodName string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := FullMethod(serviceName, methodName)

	return grpc.MethodDesc{
		MethodName: methodName,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			req := new(Req)
			if err := dec(req); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, req)
			}

			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, req, info, handler)
		},
	}
}

// FullMethod returns the gRPC path of a method.
func FullMethod(serviceName, methodName string) string {
	return "/" + serviceName + "/" + methodName
}
