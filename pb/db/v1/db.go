// Package dbv1 is the hand-maintained stand-in for protoc-gen-go-grpc
// output of api/proto/delivery/v1/db_service.proto.
package dbv1

import (
	"context"

	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
	"github.com/webitel/im-delivery-service/pb/pbutil"
	"google.golang.org/grpc"
)

type SaveMessageRequest struct {
	Message *commonv1.Msg
}

type SaveMessageResponse struct{}

type GetMessagesRequest struct {
	UserId  string
	FromSeq int64
	ToSeq   int64
	Limit   int64
}

type GetMessagesResponse struct {
	Message *commonv1.Msg
}

type GroupCreateRequest struct {
	GroupId   string
	MemberIds []string
}

type GroupCreateResponse struct{}

type GroupUpdateRequest struct {
	GroupId   string
	MemberIds []string
}

type GroupUpdateResponse struct{}

type GroupDeleteRequest struct {
	GroupId string
}

type GroupDeleteResponse struct{}

type GroupMemberExitRequest struct {
	GroupId string
	UserId  string
}

type GroupMemberExitResponse struct{}

type GroupMembersIdRequest struct {
	GroupId string
}

type GroupMembersIdResponse struct {
	MemberIds []string
}

// DbServiceClient is the client stub for the inbox/history store and
// group CRUD; no role in this repository dials it.
type DbServiceClient interface {
	SaveMessage(ctx context.Context, in *SaveMessageRequest, opts ...grpc.CallOption) (*SaveMessageResponse, error)
	GetMessages(ctx context.Context, in *GetMessagesRequest, opts ...grpc.CallOption) (DbService_GetMessagesClient, error)
	GroupCreate(ctx context.Context, in *GroupCreateRequest, opts ...grpc.CallOption) (*GroupCreateResponse, error)
	GroupUpdate(ctx context.Context, in *GroupUpdateRequest, opts ...grpc.CallOption) (*GroupUpdateResponse, error)
	GroupDelete(ctx context.Context, in *GroupDeleteRequest, opts ...grpc.CallOption) (*GroupDeleteResponse, error)
	GroupMemberExit(ctx context.Context, in *GroupMemberExitRequest, opts ...grpc.CallOption) (*GroupMemberExitResponse, error)
	GroupMembersId(ctx context.Context, in *GroupMembersIdRequest, opts ...grpc.CallOption) (*GroupMembersIdResponse, error)
}

type dbServiceClient struct{ cc grpc.ClientConnInterface }

func NewDbServiceClient(cc grpc.ClientConnInterface) DbServiceClient {
	return &dbServiceClient{cc: cc}
}

func (c *dbServiceClient) SaveMessage(ctx context.Context, in *SaveMessageRequest, opts ...grpc.CallOption) (*SaveMessageResponse, error) {
	out := new(SaveMessageResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.DbService/SaveMessage", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type DbService_GetMessagesClient interface {
	Recv() (*GetMessagesResponse, error)
	grpc.ClientStream
}

func (c *dbServiceClient) GetMessages(ctx context.Context, in *GetMessagesRequest, opts ...grpc.CallOption) (DbService_GetMessagesClient, error) {
	stream, err := c.cc.NewStream(ctx, &DbService_ServiceDesc.Streams[0], "/delivery.v1.DbService/GetMessages", opts...)
	if err != nil {
		return nil, err
	}
	x := &dbServiceGetMessagesClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type dbServiceGetMessagesClient struct {
	grpc.ClientStream
}

func (x *dbServiceGetMessagesClient) Recv() (*GetMessagesResponse, error) {
	m := new(GetMessagesResponse)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *dbServiceClient) GroupCreate(ctx context.Context, in *GroupCreateRequest, opts ...grpc.CallOption) (*GroupCreateResponse, error) {
	out := new(GroupCreateResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.DbService/GroupCreate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dbServiceClient) GroupUpdate(ctx context.Context, in *GroupUpdateRequest, opts ...grpc.CallOption) (*GroupUpdateResponse, error) {
	out := new(GroupUpdateResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.DbService/GroupUpdate", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dbServiceClient) GroupDelete(ctx context.Context, in *GroupDeleteRequest, opts ...grpc.CallOption) (*GroupDeleteResponse, error) {
	out := new(GroupDeleteResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.DbService/GroupDelete", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dbServiceClient) GroupMemberExit(ctx context.Context, in *GroupMemberExitRequest, opts ...grpc.CallOption) (*GroupMemberExitResponse, error) {
	out := new(GroupMemberExitResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.DbService/GroupMemberExit", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dbServiceClient) GroupMembersId(ctx context.Context, in *GroupMembersIdRequest, opts ...grpc.CallOption) (*GroupMembersIdResponse, error) {
	out := new(GroupMembersIdResponse)
	if err := c.cc.Invoke(ctx, "/delivery.v1.DbService/GroupMembersId", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// DbServiceServer is implemented by internal/handler/grpc's DbServiceServer, backed
// by the history ledger (C5), inbox store (C6) and group tables.
type DbServiceServer interface {
	SaveMessage(context.Context, *SaveMessageRequest) (*SaveMessageResponse, error)
	GetMessages(*GetMessagesRequest, DbService_GetMessagesServer) error
	GroupCreate(context.Context, *GroupCreateRequest) (*GroupCreateResponse, error)
	GroupUpdate(context.Context, *GroupUpdateRequest) (*GroupUpdateResponse, error)
	GroupDelete(context.Context, *GroupDeleteRequest) (*GroupDeleteResponse, error)
	GroupMemberExit(context.Context, *GroupMemberExitRequest) (*GroupMemberExitResponse, error)
	GroupMembersId(context.Context, *GroupMembersIdRequest) (*GroupMembersIdResponse, error)
}

type DbService_GetMessagesServer interface {
	Send(*GetMessagesResponse) error
	grpc.ServerStream
}

type dbServiceGetMessagesServer struct {
	grpc.ServerStream
}

func (x *dbServiceGetMessagesServer) Send(m *GetMessagesResponse) error {
	return x.ServerStream.SendMsg(m)
}

type UnimplementedDbServiceServer struct{}

func (UnimplementedDbServiceServer) SaveMessage(context.Context, *SaveMessageRequest) (*SaveMessageResponse, error) {
	return nil, pbutil.Unimplemented("DbService.SaveMessage")
}
func (UnimplementedDbServiceServer) GetMessages(*GetMessagesRequest, DbService_GetMessagesServer) error {
	return pbutil.Unimplemented("DbService.GetMessages")
}
func (UnimplementedDbServiceServer) GroupCreate(context.Context, *GroupCreateRequest) (*GroupCreateResponse, error) {
	return nil, pbutil.Unimplemented("DbService.GroupCreate")
}
func (UnimplementedDbServiceServer) GroupUpdate(context.Context, *GroupUpdateRequest) (*GroupUpdateResponse, error) {
	return nil, pbutil.Unimplemented("DbService.GroupUpdate")
}
func (UnimplementedDbServiceServer) GroupDelete(context.Context, *GroupDeleteRequest) (*GroupDeleteResponse, error) {
	return nil, pbutil.Unimplemented("DbService.GroupDelete")
}
func (UnimplementedDbServiceServer) GroupMemberExit(context.Context, *GroupMemberExitRequest) (*GroupMemberExitResponse, error) {
	return nil, pbutil.Unimplemented("DbService.GroupMemberExit")
}
func (UnimplementedDbServiceServer) GroupMembersId(context.Context, *GroupMembersIdRequest) (*GroupMembersIdResponse, error) {
	return nil, pbutil.Unimplemented("DbService.GroupMembersId")
}

func RegisterDbServiceServer(s grpc.ServiceRegistrar, srv DbServiceServer) {
	s.RegisterService(&DbService_ServiceDesc, srv)
}

func _DbService_GetMessages_Handler(srv any, stream grpc.ServerStream) error {
	m := new(GetMessagesRequest)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(DbServiceServer).GetMessages(m, &dbServiceGetMessagesServer{stream})
}

var DbService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "delivery.v1.DbService",
	HandlerType: (*DbServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "SaveMessage",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(SaveMessageRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(DbServiceServer).SaveMessage(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.DbService/SaveMessage"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(DbServiceServer).SaveMessage(ctx, req.(*SaveMessageRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "GroupCreate",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(GroupCreateRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(DbServiceServer).GroupCreate(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.DbService/GroupCreate"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(DbServiceServer).GroupCreate(ctx, req.(*GroupCreateRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "GroupUpdate",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(GroupUpdateRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(DbServiceServer).GroupUpdate(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.DbService/GroupUpdate"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(DbServiceServer).GroupUpdate(ctx, req.(*GroupUpdateRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "GroupDelete",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(GroupDeleteRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(DbServiceServer).GroupDelete(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.DbService/GroupDelete"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(DbServiceServer).GroupDelete(ctx, req.(*GroupDeleteRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "GroupMemberExit",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(GroupMemberExitRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(DbServiceServer).GroupMemberExit(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.DbService/GroupMemberExit"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(DbServiceServer).GroupMemberExit(ctx, req.(*GroupMemberExitRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
		{
			MethodName: "GroupMembersId",
			Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
				in := new(GroupMembersIdRequest)
				if err := dec(in); err != nil {
					return nil, err
				}
				if interceptor == nil {
					return srv.(DbServiceServer).GroupMembersId(ctx, in)
				}
				info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/delivery.v1.DbService/GroupMembersId"}
				handler := func(ctx context.Context, req any) (any, error) {
					return srv.(DbServiceServer).GroupMembersId(ctx, req.(*GroupMembersIdRequest))
				}
				return interceptor(ctx, in, info, handler)
			},
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "GetMessages",
			Handler:       _DbService_GetMessages_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "delivery/v1/db_service.proto",
}
