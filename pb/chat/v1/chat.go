// Package chatv1 is the hand-maintained stand-in for protoc-gen-go-grpc
// output of api/proto/delivery/v1/chat.proto (see that file for the
// source of truth). It follows grpc-go's generated-code shape closely
// enough to read as ordinary codegen: a {Request,Response} pair, a
// {Client,Server} interface pair, an Unimplemented embed, and a
// Register* function taking a grpc.ServiceRegistrar.
package chatv1

import (
	"context"

	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
	"github.com/webitel/im-delivery-service/pb/pbutil"
	"google.golang.org/grpc"
)

type SendMsgRequest struct {
	Message *commonv1.Msg
}

type MsgResponse struct {
	ClientId string
	ServerId string
	SendTime int64
	Err      string
}

// ChatClient is the client-side stub, used by the gateway to call the
// ingress RPC (§4.1, §4.6).
type ChatClient interface {
	SendMsg(ctx context.Context, in *SendMsgRequest, opts ...grpc.CallOption) (*MsgResponse, error)
}

type chatClient struct {
	cc grpc.ClientConnInterface
}

func NewChatClient(cc grpc.ClientConnInterface) ChatClient {
	return &chatClient{cc: cc}
}

func (c *chatClient) SendMsg(ctx context.Context, in *SendMsgRequest, opts ...grpc.CallOption) (*MsgResponse, error) {
	out := new(MsgResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.Chat/SendMsg", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ChatServer is the server-side contract implemented by
// internal/handler/grpc's ingress service.
type ChatServer interface {
	SendMsg(context.Context, *SendMsgRequest) (*MsgResponse, error)
}

// UnimplementedChatServer embeds into concrete servers so adding a new
// RPC to this interface never breaks existing implementations.
type UnimplementedChatServer struct{}

func (UnimplementedChatServer) SendMsg(context.Context, *SendMsgRequest) (*MsgResponse, error) {
	return nil, pbutil.Unimplemented("Chat.SendMsg")
}

func RegisterChatServer(s grpc.ServiceRegistrar, srv ChatServer) {
	s.RegisterService(&Chat_ServiceDesc, srv)
}

var Chat_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "delivery.v1.Chat",
	HandlerType: (*ChatServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SendMsg",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(SendMsgRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(ChatServer).SendMsg(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.Chat/SendMsg"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(ChatServer).SendMsg(ctx, req.(*SendMsgRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "delivery/v1/chat.proto",
}
