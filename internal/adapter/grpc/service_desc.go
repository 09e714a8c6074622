package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "foodinventory.v1.PriceEngine"

// Method names of the PriceEngine service
const (
	MethodRecordPrice          = "RecordPrice"
	MethodGetPriceHistory      = "GetPriceHistory"
	MethodDeletePrice          = "DeletePrice"
	MethodSetPriceAlert        = "SetPriceAlert"
	MethodGetPriceAnalytics    = "GetPriceAnalytics"
	MethodGenerateShoppingList = "GenerateShoppingList"
	MethodOptimizeShopping     = "OptimizeShopping"
	MethodCreateSavedList      = "CreateSavedList"
	MethodUpdateSavedListItems = "UpdateSavedListItems"
	MethodLoadSavedList        = "LoadSavedList"
	MethodListSavedLists       = "ListSavedLists"
	MethodArchiveSavedList     = "ArchiveSavedList"
	MethodTogglePurchased      = "TogglePurchased"
	MethodSetItemPrice         = "SetItemPrice"
)

// PriceEngineServer is the server API of the PriceEngine service.
// Requests and responses are JSON documents carried as google.protobuf.Struct.
type PriceEngineServer interface {
	RecordPrice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPriceHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeletePrice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetPriceAlert(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetPriceAnalytics(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GenerateShoppingList(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OptimizeShopping(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateSavedList(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateSavedListItems(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoadSavedList(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSavedLists(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ArchiveSavedList(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TogglePurchased(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetItemPrice(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv PriceEngineServer, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// unaryMethod builds the grpc.MethodDesc of one unary Struct-to-Struct method
func unaryMethod(name string, call unaryCall) grpc.MethodDesc {
	fullMethod := "/" + ServiceName + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PriceEngineServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PriceEngineServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// PriceEngineServiceDesc describes the PriceEngine service for grpc.Server.RegisterService
var PriceEngineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PriceEngineServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(MethodRecordPrice, PriceEngineServer.RecordPrice),
		unaryMethod(MethodGetPriceHistory, PriceEngineServer.GetPriceHistory),
		unaryMethod(MethodDeletePrice, PriceEngineServer.DeletePrice),
		unaryMethod(MethodSetPriceAlert, PriceEngineServer.SetPriceAlert),
		unaryMethod(MethodGetPriceAnalytics, PriceEngineServer.GetPriceAnalytics),
		unaryMethod(MethodGenerateShoppingList, PriceEngineServer.GenerateShoppingList),
		unaryMethod(MethodOptimizeShopping, PriceEngineServer.OptimizeShopping),
		unaryMethod(MethodCreateSavedList, PriceEngineServer.CreateSavedList),
		unaryMethod(MethodUpdateSavedListItems, PriceEngineServer.UpdateSavedListItems),
		unaryMethod(MethodLoadSavedList, PriceEngineServer.LoadSavedList),
		unaryMethod(MethodListSavedLists, PriceEngineServer.ListSavedLists),
		unaryMethod(MethodArchiveSavedList, PriceEngineServer.ArchiveSavedList),
		unaryMethod(MethodTogglePurchased, PriceEngineServer.TogglePurchased),
		unaryMethod(MethodSetItemPrice, PriceEngineServer.SetItemPrice),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "foodinventory/v1/price_engine.proto",
}

// RegisterPriceEngineServer registers the service implementation with a gRPC server
func RegisterPriceEngineServer(s grpc.ServiceRegistrar, srv PriceEngineServer) {
	s.RegisterService(&PriceEngineServiceDesc, srv)
}

// PriceEngineClient calls PriceEngine methods with JSON-shaped values
type PriceEngineClient struct {
	cc grpc.ClientConnInterface
}

// NewPriceEngineClient creates a client over an existing connection
func NewPriceEngineClient(cc grpc.ClientConnInterface) *PriceEngineClient {
	return &PriceEngineClient{cc: cc}
}

// Call invokes method with req encoded as a Struct and decodes the reply into resp.
// resp may be nil when the reply is not needed.
func (c *PriceEngineClient) Call(ctx context.Context, method string, req, resp any, opts ...grpc.CallOption) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	return fromStruct(out, resp)
}
