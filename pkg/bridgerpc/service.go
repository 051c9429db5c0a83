package bridgerpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/obsidianstack/hostbridge/pkg/types"
)

// Service and method names.
const (
	ServiceName  = "hostbridge.v1.Bridge"
	InvokeMethod = "/" + ServiceName + "/Invoke"
)

// BridgeServer is implemented by the host.
type BridgeServer interface {
	// Invoke serves one envelope. Bridge failures travel inside the response;
	// a non-nil error is reserved for transport-level problems.
	Invoke(ctx context.Context, req *types.Request) (*types.Response, error)
}

// RegisterBridgeServer attaches srv to s.
func RegisterBridgeServer(s grpc.ServiceRegistrar, srv BridgeServer) {
	s.RegisterService(&bridgeServiceDesc, srv)
}

var bridgeServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BridgeServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Invoke", Handler: invokeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hostbridge/v1/bridge",
}

func invokeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(types.Request)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BridgeServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InvokeMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(BridgeServer).Invoke(ctx, req.(*types.Request))
	}
	return interceptor(ctx, in, info, handler)
}
