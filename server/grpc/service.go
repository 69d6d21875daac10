package grpc_server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "order.OrderService"

const (
	PlaceOrderMethod        = "PlaceOrder"
	UpdateOrderStatusMethod = "UpdateOrderStatus"
	CancelOrderMethod       = "CancelOrder"
	DeleteOrderMethod       = "DeleteOrder"
	GetOrderMethod          = "GetOrder"
	PublicVouchersMethod    = "PublicVouchers"
)

// OrderServiceServer is the server API of order.OrderService. Every message
// is a google.protobuf.Struct holding the JSON request and response bodies.
type OrderServiceServer interface {
	PlaceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	CancelOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	PublicVouchers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(OrderServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryMethod(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(OrderServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(method),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(OrderServiceServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(PlaceOrderMethod, OrderServiceServer.PlaceOrder),
		unaryMethod(UpdateOrderStatusMethod, OrderServiceServer.UpdateOrderStatus),
		unaryMethod(CancelOrderMethod, OrderServiceServer.CancelOrder),
		unaryMethod(DeleteOrderMethod, OrderServiceServer.DeleteOrder),
		unaryMethod(GetOrderMethod, OrderServiceServer.GetOrder),
		unaryMethod(PublicVouchersMethod, OrderServiceServer.PublicVouchers),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "order.proto",
}

func RegisterOrderServiceServer(registrar grpc.ServiceRegistrar, srv OrderServiceServer) {
	registrar.RegisterService(&OrderServiceDesc, srv)
}

// OrderServiceClient calls order.OrderService methods by name.
type OrderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return OrderServiceClient{cc: cc}
}

func (client OrderServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := client.cc.Invoke(ctx, fullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
