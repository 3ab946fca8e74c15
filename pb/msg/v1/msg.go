// Package msgv1 is the hand-maintained stand-in for protoc-gen-go-grpc
// output of api/proto/delivery/v1/msg_service.proto.
package msgv1

import (
	"context"

	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
	"github.com/webitel/im-delivery-service/pb/pbutil"
	"google.golang.org/grpc"
)

type SendMsgRequest struct {
	Message *commonv1.Msg
}

type SendGroupMsgRequest struct {
	Message *commonv1.Msg
	Members []*commonv1.GroupMemSeq
}

type SendMsgResponse struct{}

// MsgClient is dialed by the pusher (C9) against every discovered
// gateway instance (C10).
type MsgClient interface {
	SendMessage(ctx context.Context, in *SendMsgRequest, opts ...grpc.CallOption) (*SendMsgResponse, error)
	SendMsgToUser(ctx context.Context, in *SendMsgRequest, opts ...grpc.CallOption) (*SendMsgResponse, error)
	SendGroupMsgToUser(ctx context.Context, in *SendGroupMsgRequest, opts ...grpc.CallOption) (*SendMsgResponse, error)
}

type msgClient struct{ cc grpc.ClientConnInterface }

func NewMsgClient(cc grpc.ClientConnInterface) MsgClient { return &msgClient{cc: cc} }

func (c *msgClient) SendMessage(ctx context.Context, in *SendMsgRequest, opts ...grpc.CallOption) (*SendMsgResponse, error) {
	out := new(SendMsgResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.Msg/SendMessage", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *msgClient) SendMsgToUser(ctx context.Context, in *SendMsgRequest, opts ...grpc.CallOption) (*SendMsgResponse, error) {
	out := new(SendMsgResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.Msg/SendMsgToUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *msgClient) SendGroupMsgToUser(ctx context.Context, in *SendGroupMsgRequest, opts ...grpc.CallOption) (*SendMsgResponse, error) {
	out := new(SendMsgResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.Msg/SendGroupMsgToUser", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// MsgServer is implemented by the gateway (§4.6).
type MsgServer interface {
	SendMessage(context.Context, *SendMsgRequest) (*SendMsgResponse, error)
	SendMsgToUser(context.Context, *SendMsgRequest) (*SendMsgResponse, error)
	SendGroupMsgToUser(context.Context, *SendGroupMsgRequest) (*SendMsgResponse, error)
}

type UnimplementedMsgServer struct{}

func (UnimplementedMsgServer) SendMessage(context.Context, *SendMsgRequest) (*SendMsgResponse, error) {
	return nil, pbutil.Unimplemented("Msg.SendMessage")
}
func (UnimplementedMsgServer) SendMsgToUser(context.Context, *SendMsgRequest) (*SendMsgResponse, error) {
	return nil, pbutil.Unimplemented("Msg.SendMsgToUser")
}
func (UnimplementedMsgServer) SendGroupMsgToUser(context.Context, *SendGroupMsgRequest) (*SendMsgResponse, error) {
	return nil, pbutil.Unimplemented("Msg.SendGroupMsgToUser")
}

func RegisterMsgServer(s grpc.ServiceRegistrar, srv MsgServer) {
	s.RegisterService(&Msg_ServiceDesc, srv)
}

var Msg_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "delivery.v1.Msg",
	HandlerType: (*MsgServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendMessage",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(SendMsgRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(MsgServer).SendMessage(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.Msg/SendMessage"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(MsgServer).SendMessage(ctx, req.(*SendMsgRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "SendMsgToUser",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(SendMsgRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(MsgServer).SendMsgToUser(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.Msg/SendMsgToUser"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(MsgServer).SendMsgToUser(ctx, req.(*SendMsgRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "SendGroupMsgToUser",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(SendGroupMsgRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(MsgServer).SendGroupMsgToUser(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.Msg/SendGroupMsgToUser"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(MsgServer).SendGroupMsgToUser(ctx, req.(*SendGroupMsgRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "delivery/v1/msg_service.proto",
}
