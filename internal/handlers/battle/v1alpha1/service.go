package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "battle.v1alpha1.BattleService"

// Full method names
const (
	StartBattleFullMethodName          = "/" + ServiceName + "/StartBattle"
	SubmitActionsFullMethodName        = "/" + ServiceName + "/SubmitActions"
	GetBattleFullMethodName            = "/" + ServiceName + "/GetBattle"
	ListBattlesFullMethodName          = "/" + ServiceName + "/ListBattles"
	RunUntilPhaseFullMethodName        = "/" + ServiceName + "/RunUntilPhase"
	PreviewEffectivenessFullMethodName = "/" + ServiceName + "/PreviewEffectiveness"
	ReplayBattleFullMethodName         = "/" + ServiceName + "/ReplayBattle"
	OfferDarkDealFullMethodName        = "/" + ServiceName + "/OfferDarkDeal"
	ResolveDarkDealFullMethodName      = "/" + ServiceName + "/ResolveDarkDeal"
	StreamEffectsFullMethodName        = "/" + ServiceName + "/StreamEffects"
)

// BattleServiceServer is the server API. Messages are google.protobuf.Struct
// documents whose fields mirror the JSON tags of the request and response
// types in this package.
type BattleServiceServer interface {
	StartBattle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SubmitActions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetBattle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListBattles(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RunUntilPhase(context.Context, *structpb.Struct) (*structpb.Struct, error)
	PreviewEffectiveness(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReplayBattle(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OfferDarkDeal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResolveDarkDeal(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StreamEffects(*structpb.Struct, grpc.ServerStreamingServer[structpb.Struct]) error
}

type unaryCall func(BattleServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BattleServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BattleServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func streamEffectsHandler(srv any, stream grpc.ServerStream) error {
	in := new(structpb.Struct)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(BattleServiceServer).StreamEffects(in, &grpc.GenericServerStream[structpb.Struct, structpb.Struct]{ServerStream: stream})
}

// BattleServiceDesc is the grpc.ServiceDesc for the battle service
var BattleServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BattleServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "StartBattle", Handler: unaryHandler(StartBattleFullMethodName, BattleServiceServer.StartBattle)},
		{MethodName: "SubmitActions", Handler: unaryHandler(SubmitActionsFullMethodName, BattleServiceServer.SubmitActions)},
		{MethodName: "GetBattle", Handler: unaryHandler(GetBattleFullMethodName, BattleServiceServer.GetBattle)},
		{MethodName: "ListBattles", Handler: unaryHandler(ListBattlesFullMethodName, BattleServiceServer.ListBattles)},
		{MethodName: "RunUntilPhase", Handler: unaryHandler(RunUntilPhaseFullMethodName, BattleServiceServer.RunUntilPhase)},
		{MethodName: "PreviewEffectiveness", Handler: unaryHandler(PreviewEffectivenessFullMethodName, BattleServiceServer.PreviewEffectiveness)},
		{MethodName: "ReplayBattle", Handler: unaryHandler(ReplayBattleFullMethodName, BattleServiceServer.ReplayBattle)},
		{MethodName: "OfferDarkDeal", Handler: unaryHandler(OfferDarkDealFullMethodName, BattleServiceServer.OfferDarkDeal)},
		{MethodName: "ResolveDarkDeal", Handler: unaryHandler(ResolveDarkDealFullMethodName, BattleServiceServer.ResolveDarkDeal)},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamEffects",
			Handler:       streamEffectsHandler,
			ServerStreams: true,
		},
	},
	Metadata: "battle/v1alpha1/battle.proto",
}

// RegisterBattleServiceServer registers srv on s
func RegisterBattleServiceServer(s grpc.ServiceRegistrar, srv BattleServiceServer) {
	s.RegisterService(&BattleServiceDesc, srv)
}

// BattleServiceClient is the client API for the battle service
type BattleServiceClient interface {
	StartBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubmitActions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListBattles(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RunUntilPhase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	PreviewEffectiveness(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ReplayBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	OfferDarkDeal(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ResolveDarkDeal(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	StreamEffects(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type battleServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewBattleServiceClient creates a client on cc
func NewBattleServiceClient(cc grpc.ClientConnInterface) BattleServiceClient {
	return &battleServiceClient{cc}
}

func (c *battleServiceClient) unary(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *battleServiceClient) StartBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, StartBattleFullMethodName, in, opts)
}

func (c *battleServiceClient) SubmitActions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, SubmitActionsFullMethodName, in, opts)
}

func (c *battleServiceClient) GetBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, GetBattleFullMethodName, in, opts)
}

func (c *battleServiceClient) ListBattles(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, ListBattlesFullMethodName, in, opts)
}

func (c *battleServiceClient) RunUntilPhase(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, RunUntilPhaseFullMethodName, in, opts)
}

func (c *battleServiceClient) PreviewEffectiveness(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, PreviewEffectivenessFullMethodName, in, opts)
}

func (c *battleServiceClient) ReplayBattle(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, ReplayBattleFullMethodName, in, opts)
}

func (c *battleServiceClient) OfferDarkDeal(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, OfferDarkDealFullMethodName, in, opts)
}

func (c *battleServiceClient) ResolveDarkDeal(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.unary(ctx, ResolveDarkDealFullMethodName, in, opts)
}

func (c *battleServiceClient) StreamEffects(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &BattleServiceDesc.Streams[0], StreamEffectsFullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
