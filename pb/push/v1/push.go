// Package pushv1 is the hand-maintained stand-in for protoc-gen-go-grpc
// output of api/proto/delivery/v1/push_service.proto.
package pushv1

import (
	"context"

	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
	"github.com/webitel/im-delivery-service/pb/pbutil"
	"google.golang.org/grpc"
)

type PushSingleMsgRequest struct {
	Message *commonv1.Msg
}

type PushSingleMsgResponse struct{}

type PushGroupMsgRequest struct {
	Message *commonv1.Msg
	Members []*commonv1.GroupMemSeq
}

type PushGroupMsgResponse struct{}

// PushClient is the client stub for the pusher (C9) Push service; no
// role in this repository dials it.
type PushClient interface {
	PushSingleMsg(ctx context.Context, in *PushSingleMsgRequest, opts ...grpc.CallOption) (*PushSingleMsgResponse, error)
	PushGroupMsg(ctx context.Context, in *PushGroupMsgRequest, opts ...grpc.CallOption) (*PushGroupMsgResponse, error)
}

type pushClient struct{ cc grpc.ClientConnInterface }

func NewPushClient(cc grpc.ClientConnInterface) PushClient { return &pushClient{cc: cc} }

func (c *pushClient) PushSingleMsg(ctx context.Context, in *PushSingleMsgRequest, opts ...grpc.CallOption) (*PushSingleMsgResponse, error) {
	out := new(PushSingleMsgResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.Push/PushSingleMsg", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *pushClient) PushGroupMsg(ctx context.Context, in *PushGroupMsgRequest, opts ...grpc.CallOption) (*PushGroupMsgResponse, error) {
	out := new(PushGroupMsgResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.Push/PushGroupMsg", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// PushServer is implemented by the pusher (C9).
type PushServer interface {
	PushSingleMsg(context.Context, *PushSingleMsgRequest) (*PushSingleMsgResponse, error)
	PushGroupMsg(context.Context, *PushGroupMsgRequest) (*PushGroupMsgResponse, error)
}

type UnimplementedPushServer struct{}

func (UnimplementedPushServer) PushSingleMsg(context.Context, *PushSingleMsgRequest) (*PushSingleMsgResponse, error) {
	return nil, pbutil.Unimplemented("Push.PushSingleMsg")
}
func (UnimplementedPushServer) PushGroupMsg(context.Context, *PushGroupMsgRequest) (*PushGroupMsgResponse, error) {
	return nil, pbutil.Unimplemented("Push.PushGroupMsg")
}

func RegisterPushServer(s grpc.ServiceRegistrar, srv PushServer) {
	s.RegisterService(&Push_ServiceDesc, srv)
}

var Push_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "delivery.v1.Push",
	HandlerType: (*PushServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "PushSingleMsg",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(PushSingleMsgRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(PushServer).PushSingleMsg(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.Push/PushSingleMsg"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(PushServer).PushSingleMsg(ctx, req.(*PushSingleMsgRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "PushGroupMsg",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(PushGroupMsgRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(PushServer).PushGroupMsg(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.Push/PushGroupMsg"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(PushServer).PushGroupMsg(ctx, req.(*PushGroupMsgRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "delivery/v1/push_service.proto",
}
