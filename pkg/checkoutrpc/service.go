package checkoutrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "ticketbottle.checkout.v1.CheckoutService"

const (
	methodValidateCart        = "/" + ServiceName + "/ValidateCart"
	methodCreatePaymentIntent = "/" + ServiceName + "/CreatePaymentIntent"
	methodGetEvent            = "/" + ServiceName + "/GetEvent"
	methodGetOrder            = "/" + ServiceName + "/GetOrder"
)

type CheckoutServiceServer interface {
	ValidateCart(context.Context, *ValidateCartRequest) (*ValidateCartResponse, error)
	CreatePaymentIntent(context.Context, *CreatePaymentIntentRequest) (*CreatePaymentIntentResponse, error)
	GetEvent(context.Context, *GetEventRequest) (*GetEventResponse, error)
	GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error)
}

// UnimplementedCheckoutServiceServer can be embedded for forward compatibility.
type UnimplementedCheckoutServiceServer struct{}

func (UnimplementedCheckoutServiceServer) ValidateCart(context.Context, *ValidateCartRequest) (*ValidateCartResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ValidateCart not implemented")
}

func (UnimplementedCheckoutServiceServer) CreatePaymentIntent(context.Context, *CreatePaymentIntentRequest) (*CreatePaymentIntentResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CreatePaymentIntent not implemented")
}

func (UnimplementedCheckoutServiceServer) GetEvent(context.Context, *GetEventRequest) (*GetEventResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetEvent not implemented")
}

func (UnimplementedCheckoutServiceServer) GetOrder(context.Context, *GetOrderRequest) (*GetOrderResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetOrder not implemented")
}

func RegisterCheckoutServiceServer(s grpc.ServiceRegistrar, srv CheckoutServiceServer) {
	s.RegisterService(&CheckoutService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[Req any, Resp any](method string, call func(CheckoutServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CheckoutServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CheckoutServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var CheckoutService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CheckoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ValidateCart",
			Handler:    unaryHandler(methodValidateCart, CheckoutServiceServer.ValidateCart),
		},
		{
			MethodName: "CreatePaymentIntent",
			Handler:    unaryHandler(methodCreatePaymentIntent, CheckoutServiceServer.CreatePaymentIntent),
		},
		{
			MethodName: "GetEvent",
			Handler:    unaryHandler(methodGetEvent, CheckoutServiceServer.GetEvent),
		},
		{
			MethodName: "GetOrder",
			Handler:    unaryHandler(methodGetOrder, CheckoutServiceServer.GetOrder),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "checkout/v1/checkout.proto",
}

type CheckoutServiceClient interface {
	ValidateCart(ctx context.Context, in *ValidateCartRequest, opts ...grpc.CallOption) (*ValidateCartResponse, error)
	CreatePaymentIntent(ctx context.Context, in *CreatePaymentIntentRequest, opts ...grpc.CallOption) (*CreatePaymentIntentResponse, error)
	GetEvent(ctx context.Context, in *GetEventRequest, opts ...grpc.CallOption) (*GetEventResponse, error)
	GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error)
}

type checkoutServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewCheckoutServiceClient wraps cc. Every call uses the JSON codec.
func NewCheckoutServiceClient(cc grpc.ClientConnInterface) CheckoutServiceClient {
	return &checkoutServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *checkoutServiceClient) ValidateCart(ctx context.Context, in *ValidateCartRequest, opts ...grpc.CallOption) (*ValidateCartResponse, error) {
	return invoke[ValidateCartResponse](ctx, c.cc, methodValidateCart, in, opts)
}

func (c *checkoutServiceClient) CreatePaymentIntent(ctx context.Context, in *CreatePaymentIntentRequest, opts ...grpc.CallOption) (*CreatePaymentIntentResponse, error) {
	return invoke[CreatePaymentIntentResponse](ctx, c.cc, methodCreatePaymentIntent, in, opts)
}

func (c *checkoutServiceClient) GetEvent(ctx context.Context, in *GetEventRequest, opts ...grpc.CallOption) (*GetEventResponse, error) {
	return invoke[GetEventResponse](ctx, c.cc, methodGetEvent, in, opts)
}

func (c *checkoutServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*GetOrderResponse, error) {
	return invoke[GetOrderResponse](ctx, c.cc, methodGetOrder, in, opts)
}
