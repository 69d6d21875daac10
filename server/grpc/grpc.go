package grpc_server

import (
	"context"
	"net"
	"path"
	"runtime/debug"
	"strconv"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/pkg/errors"
	"github.com/shopfront/order-service/domain"
	"github.com/shopfront/order-service/infrastructure/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Server struct {
	orderManager   domain.IOrderManager
	address        string
	port           uint16
	requestFilters map[RequestName][]string
	logger         logger.Logger
	grpcServer     *grpc.Server
}

func NewServer(address string, port uint16, orderManager domain.IOrderManager, log logger.Logger) *Server {
	server := &Server{
		orderManager:   orderManager,
		address:        address,
		port:           port,
		requestFilters: initialRequestFilters(),
		logger:         log,
	}
	server.grpcServer = server.newGrpcServer()
	return server
}

func (server *Server) PlaceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var request placeOrderRequest
	if err := decodeRequest(server.requestFilters[PlaceOrderRequest], req, &request); err != nil {
		server.logger.FromContext(ctx).Warn("place order request rejected", "fn", "PlaceOrder", "error", err)
		return nil, toStatusError(err)
	}

	orderId, err := server.orderManager.PlaceOrder(ctx, request.toDomain())
	if err != nil {
		return nil, toStatusError(err)
	}

	return server.response(ctx, "PlaceOrder", placeOrderResponse{
		baseResponse: baseResponse{StatusCode: 201, Message: "Place order successfully"},
		OrderId:      orderId,
	})
}

func (server *Server) UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var request updateStatusRequest
	if err := decodeRequest(server.requestFilters[UpdateOrderStatusRequest], req, &request); err != nil {
		server.logger.FromContext(ctx).Warn("update order status request rejected", "fn", "UpdateOrderStatus", "error", err)
		return nil, toStatusError(err)
	}

	if err := server.orderManager.UpdateStatus(ctx, request.Id, request.Status); err != nil {
		return nil, toStatusError(err)
	}

	return server.response(ctx, "UpdateOrderStatus", baseResponse{StatusCode: 200, Message: "Update order status successfully"})
}

func (server *Server) CancelOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var request orderIdRequest
	if err := decodeRequest(server.requestFilters[OrderIdRequest], req, &request); err != nil {
		server.logger.FromContext(ctx).Warn("cancel order request rejected", "fn", "CancelOrder", "error", err)
		return nil, toStatusError(err)
	}

	if err := server.orderManager.CancelOrder(ctx, request.Id); err != nil {
		return nil, toStatusError(err)
	}

	return server.response(ctx, "CancelOrder", baseResponse{StatusCode: 200, Message: "Cancel order successfully"})
}

func (server *Server) DeleteOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var request orderIdRequest
	if err := decodeRequest(server.requestFilters[OrderIdRequest], req, &request); err != nil {
		server.logger.FromContext(ctx).Warn("delete order request rejected", "fn", "DeleteOrder", "error", err)
		return nil, toStatusError(err)
	}

	if err := server.orderManager.DeleteOrder(ctx, request.Id); err != nil {
		return nil, toStatusError(err)
	}

	return server.response(ctx, "DeleteOrder", baseResponse{StatusCode: 200, Message: "Delete order successfully"})
}

func (server *Server) GetOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var request orderIdRequest
	if err := decodeRequest(server.requestFilters[OrderIdRequest], req, &request); err != nil {
		server.logger.FromContext(ctx).Warn("get order request rejected", "fn", "GetOrder", "error", err)
		return nil, toStatusError(err)
	}

	view, err := server.orderManager.GetOrder(ctx, request.Id)
	if err != nil {
		return nil, toStatusError(err)
	}

	return server.response(ctx, "GetOrder", getOrderResponse{
		baseResponse: baseResponse{StatusCode: 200, Message: "Get an order successfully"},
		Order:        orderResponseOf(view),
	})
}

func (server *Server) PublicVouchers(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var request struct{}
	if err := decodeRequest(server.requestFilters[PublicVouchersRequest], req, &request); err != nil {
		return nil, toStatusError(err)
	}

	views, err := server.orderManager.PublicVouchers(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	vouchers := make([]voucherResponse, 0, len(views))
	for _, view := range views {
		vouchers = append(vouchers, voucherResponseOf(view))
	}

	return server.response(ctx, "PublicVouchers", publicVouchersResponse{
		baseResponse: baseResponse{StatusCode: 200, Message: "Get public vouchers successfully"},
		Vouchers:     vouchers,
	})
}

func (server *Server) response(ctx context.Context, fn string, response interface{}) (*structpb.Struct, error) {
	out, err := encodeResponse(response)
	if err != nil {
		server.logger.FromContext(ctx).Error("encode response failed", "fn", fn, "error", err)
		return nil, toStatusError(err)
	}
	return out, nil
}

// newGrpcServer builds the grpc.Server with the interceptor chain and registers
// the order service on it.
func (server *Server) newGrpcServer() *grpc.Server {
	recoveryFunc := func(p interface{}) (err error) {
		server.logger.Error("rpc panic recovered", "fn", "newGrpcServer",
			"panic", p, "stacktrace", string(debug.Stack()))
		return toStatusError(errors.Errorf("panic triggered: %v", p))
	}

	opts := []grpc_recovery.Option{
		grpc_recovery.WithRecoveryHandler(recoveryFunc),
	}

	uIntOpt := grpc.UnaryInterceptor(grpc_middleware.ChainUnaryServer(
		grpc_prometheus.UnaryServerInterceptor,
		grpc_recovery.UnaryServerInterceptor(opts...),
		unaryLogger(server.logger),
	))

	sIntOpt := grpc.StreamInterceptor(grpc_middleware.ChainStreamServer(
		grpc_prometheus.StreamServerInterceptor,
		grpc_recovery.StreamServerInterceptor(opts...),
	))

	// timing histograms for every rpc
	grpc_prometheus.EnableHandlingTimeHistogram()

	grpcServer := grpc.NewServer(uIntOpt, sIntOpt)
	RegisterOrderServiceServer(grpcServer, server)
	grpc_prometheus.Register(grpcServer)
	return grpcServer
}

// Serve blocks until lis fails or Stop is called.
func (server *Server) Serve(lis net.Listener) error {
	server.logger.Info("GRPC server started", "fn", "Serve", "address", lis.Addr().String())
	if err := server.grpcServer.Serve(lis); err != nil {
		server.logger.Error("GRPC server serve failed", "fn", "Serve", "error", err)
		return errors.Wrap(err, "grpcServer.Serve failed")
	}
	return nil
}

func (server *Server) Start() error {
	port := strconv.Itoa(int(server.port))
	lis, err := net.Listen("tcp", net.JoinHostPort(server.address, port))
	if err != nil {
		server.logger.Error("Failed to listen to TCP on port", "fn", "Start", "port", port, "error", err)
		return errors.Wrapf(err, "net.Listen failed, port: %s", port)
	}
	return server.Serve(lis)
}

// Stop waits for in-flight calls up to timeout and then closes every connection.
func (server *Server) Stop(timeout time.Duration) {
	grpcServer := server.grpcServer
	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(timeout):
		server.logger.Warn("GRPC graceful stop timed out", "fn", "Stop", "timeout", timeout)
		grpcServer.Stop()
		<-stopped
	}
	server.logger.Info("GRPC server stopped", "fn", "Stop")
}

func unaryLogger(log logger.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		startTime := time.Now()
		resp, err = handler(ctx, req)
		dur := time.Since(startTime)
		log.FromContext(ctx).Debug("finished unary call",
			"took", dur,
			"grpc.Method", path.Base(info.FullMethod),
			"grpc.Service", path.Dir(info.FullMethod)[1:],
			"grpc.Code", status.Code(err).String())
		return
	}
}
