package sluicev1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	HealthService_Check_FullMethodName         = "/sluice.v1.HealthService/Check"
	StreamsService_GetStream_FullMethodName    = "/sluice.v1.StreamsService/GetStream"
	StreamsService_ListStreams_FullMethodName  = "/sluice.v1.StreamsService/ListStreams"
	StreamsService_Available_FullMethodName    = "/sluice.v1.StreamsService/Available"
	StreamsService_Withdraw_FullMethodName     = "/sluice.v1.StreamsService/Withdraw"
	StreamsService_CancelStream_FullMethodName = "/sluice.v1.StreamsService/CancelStream"
	StreamsService_Pay_FullMethodName          = "/sluice.v1.StreamsService/Pay"
	StreamsService_Mint_FullMethodName         = "/sluice.v1.StreamsService/Mint"
	StreamsService_Balance_FullMethodName      = "/sluice.v1.StreamsService/Balance"
	StreamsService_WatchEvents_FullMethodName  = "/sluice.v1.StreamsService/WatchEvents"
)

func withJSON(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{CallJSON()}, opts...)
}

// unary builds a method handler that decodes Req and dispatches to call.
func unary[S any, Req any, Resp any](fullMethod string, call func(S, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(S), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(S), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// HealthService

type HealthServiceClient interface {
	Check(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error)
}

type healthServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewHealthServiceClient(cc grpc.ClientConnInterface) HealthServiceClient {
	return &healthServiceClient{cc}
}

func (c *healthServiceClient) Check(ctx context.Context, in *HealthCheckRequest, opts ...grpc.CallOption) (*HealthCheckResponse, error) {
	out := new(HealthCheckResponse)
	if err := c.cc.Invoke(ctx, HealthService_Check_FullMethodName, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

type HealthServiceServer interface {
	Check(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error)
}

type UnimplementedHealthServiceServer struct{}

func (UnimplementedHealthServiceServer) Check(context.Context, *HealthCheckRequest) (*HealthCheckResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Check not implemented")
}

var HealthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "sluice.v1.HealthService",
	HandlerType: (*HealthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Check", Handler: unary(HealthService_Check_FullMethodName, HealthServiceServer.Check)},
	},
	Metadata: "sluice/v1/health.proto",
}

func RegisterHealthServiceServer(s grpc.ServiceRegistrar, srv HealthServiceServer) {
	s.RegisterService(&HealthService_ServiceDesc, srv)
}

// StreamsService

type StreamsServiceClient interface {
	GetStream(ctx context.Context, in *GetStreamRequest, opts ...grpc.CallOption) (*GetStreamResponse, error)
	ListStreams(ctx context.Context, in *ListStreamsRequest, opts ...grpc.CallOption) (*ListStreamsResponse, error)
	Available(ctx context.Context, in *AvailableRequest, opts ...grpc.CallOption) (*AvailableResponse, error)
	Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (*WithdrawResponse, error)
	CancelStream(ctx context.Context, in *CancelStreamRequest, opts ...grpc.CallOption) (*CancelStreamResponse, error)
	Pay(ctx context.Context, in *PayRequest, opts ...grpc.CallOption) (*PayResponse, error)
	Mint(ctx context.Context, in *MintRequest, opts ...grpc.CallOption) (*MintResponse, error)
	Balance(ctx context.Context, in *BalanceRequest, opts ...grpc.CallOption) (*BalanceResponse, error)
	WatchEvents(ctx context.Context, in *WatchEventsRequest, opts ...grpc.CallOption) (StreamsService_WatchEventsClient, error)
}

type streamsServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewStreamsServiceClient(cc grpc.ClientConnInterface) StreamsServiceClient {
	return &streamsServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, withJSON(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *streamsServiceClient) GetStream(ctx context.Context, in *GetStreamRequest, opts ...grpc.CallOption) (*GetStreamResponse, error) {
	return invoke[GetStreamResponse](ctx, c.cc, StreamsService_GetStream_FullMethodName, in, opts)
}

func (c *streamsServiceClient) ListStreams(ctx context.Context, in *ListStreamsRequest, opts ...grpc.CallOption) (*ListStreamsResponse, error) {
	return invoke[ListStreamsResponse](ctx, c.cc, StreamsService_ListStreams_FullMethodName, in, opts)
}

func (c *streamsServiceClient) Available(ctx context.Context, in *AvailableRequest, opts ...grpc.CallOption) (*AvailableResponse, error) {
	return invoke[AvailableResponse](ctx, c.cc, StreamsService_Available_FullMethodName, in, opts)
}

func (c *streamsServiceClient) Withdraw(ctx context.Context, in *WithdrawRequest, opts ...grpc.CallOption) (*WithdrawResponse, error) {
	return invoke[WithdrawResponse](ctx, c.cc, StreamsService_Withdraw_FullMethodName, in, opts)
}

func (c *streamsServiceClient) CancelStream(ctx context.Context, in *CancelStreamRequest, opts ...grpc.CallOption) (*CancelStreamResponse, error) {
	return invoke[CancelStreamResponse](ctx, c.cc, StreamsService_CancelStream_FullMethodName, in, opts)
}

func (c *streamsServiceClient) Pay(ctx context.Context, in *PayRequest, opts ...grpc.CallOption) (*PayResponse, error) {
	return invoke[PayResponse](ctx, c.cc, StreamsService_Pay_FullMethodName, in, opts)
}

func (c *streamsServiceClient) Mint(ctx context.Context, in *MintRequest, opts ...grpc.CallOption) (*MintResponse, error) {
	return invoke[MintResponse](ctx, c.cc, StreamsService_Mint_FullMethodName, in, opts)
}

func (c *streamsServiceClient) Balance(ctx context.Context, in *BalanceRequest, opts ...grpc.CallOption) (*BalanceResponse, error) {
	return invoke[BalanceResponse](ctx, c.cc, StreamsService_Balance_FullMethodName, in, opts)
}

func (c *streamsServiceClient) WatchEvents(ctx context.Context, in *WatchEventsRequest, opts ...grpc.CallOption) (StreamsService_WatchEventsClient, error) {
	stream, err := c.cc.NewStream(ctx, &StreamsService_ServiceDesc.Streams[0], StreamsService_WatchEvents_FullMethodName, withJSON(opts)...)
	if err != nil {
		return nil, err
	}
	x := &streamsServiceWatchEventsClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type StreamsService_WatchEventsClient interface {
	Recv() (*EventEnvelope, error)
	grpc.ClientStream
}

type streamsServiceWatchEventsClient struct {
	grpc.ClientStream
}

func (x *streamsServiceWatchEventsClient) Recv() (*EventEnvelope, error) {
	m := new(EventEnvelope)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

type StreamsServiceServer interface {
	GetStream(context.Context, *GetStreamRequest) (*GetStreamResponse, error)
	ListStreams(context.Context, *ListStreamsRequest) (*ListStreamsResponse, error)
	Available(context.Context, *AvailableRequest) (*AvailableResponse, error)
	Withdraw(context.Context, *WithdrawRequest) (*WithdrawResponse, error)
	CancelStream(context.Context, *CancelStreamRequest) (*CancelStreamResponse, error)
	Pay(context.Context, *PayRequest) (*PayResponse, error)
	Mint(context.Context, *MintRequest) (*MintResponse, error)
	Balance(context.Context, *BalanceRequest) (*BalanceResponse, error)
	WatchEvents(*WatchEventsRequest, StreamsService_WatchEventsServer) error
}

type StreamsService_WatchEventsServer interface {
	Send(*EventEnvelope) error
	grpc.ServerStream
}

type streamsServiceWatchEventsServer struct {
	grpc.ServerStream
}

func (x *streamsServiceWatchEventsServer) Send(m *EventEnvelope) error {
	return x.ServerStream.SendMsg(m)
}

func _StreamsService_WatchEvents_Handler(srv any, stream grpc.ServerStream) error {
	m := new(WatchEventsRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(StreamsServiceServer).WatchEvents(m, &streamsServiceWatchEventsServer{stream})
}

var StreamsService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "sluice.v1.StreamsService",
	HandlerType: (*StreamsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStream", Handler: unary(StreamsService_GetStream_FullMethodName, StreamsServiceServer.GetStream)},
		{MethodName: "ListStreams", Handler: unary(StreamsService_ListStreams_FullMethodName, StreamsServiceServer.ListStreams)},
		{MethodName: "Available", Handler: unary(StreamsService_Available_FullMethodName, StreamsServiceServer.Available)},
		{MethodName: "Withdraw", Handler: unary(StreamsService_Withdraw_FullMethodName, StreamsServiceServer.Withdraw)},
		{MethodName: "CancelStream", Handler: unary(StreamsService_CancelStream_FullMethodName, StreamsServiceServer.CancelStream)},
		{MethodName: "Pay", Handler: unary(StreamsService_Pay_FullMethodName, StreamsServiceServer.Pay)},
		{MethodName: "Mint", Handler: unary(StreamsService_Mint_FullMethodName, StreamsServiceServer.Mint)},
		{MethodName: "Balance", Handler: unary(StreamsService_Balance_FullMethodName, StreamsServiceServer.Balance)},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchEvents", Handler: _StreamsService_WatchEvents_Handler, ServerStreams: true},
	},
	Metadata: "sluice/v1/streams.proto",
}

func RegisterStreamsServiceServer(s grpc.ServiceRegistrar, srv StreamsServiceServer) {
	s.RegisterService(&StreamsService_ServiceDesc, srv)
}
