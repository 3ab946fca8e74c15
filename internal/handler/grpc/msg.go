package grpc

import (
	"context"

	"github.com/webitel/im-delivery-service/internal/domain/model"
	"github.com/webitel/im-delivery-service/internal/service/gateway"
	msgv1 "github.com/webitel/im-delivery-service/pb/msg/v1"
)

// MsgServer adapts gateway.Gateway onto msgv1.MsgServer, the RPC
// surface C9 drives against every C10 instance (§4.6).
type MsgServer struct {
	msgv1.UnimplementedMsgServer
	gw *gateway.Gateway
}

func NewMsgServer(gw *gateway.Gateway) *MsgServer {
	return &MsgServer{gw: gw}
}

func (s *MsgServer) SendMessage(ctx context.Context, req *msgv1.SendMsgRequest) (*msgv1.SendMsgResponse, error) {
	if err := s.gw.SendMessage(ctx, fromWireMsg(req.Message)); err != nil {
		return nil, err
	}
	return &msgv1.SendMsgResponse{}, nil
}

func (s *MsgServer) SendMsgToUser(ctx context.Context, req *msgv1.SendMsgRequest) (*msgv1.SendMsgResponse, error) {
	s.gw.SendMsgToUser(fromWireMsg(req.Message))
	return &msgv1.SendMsgResponse{}, nil
}

func (s *MsgServer) SendGroupMsgToUser(ctx context.Context, req *msgv1.SendGroupMsgRequest) (*msgv1.SendMsgResponse, error) {
	members := make([]model.GroupMemSeq, len(req.Members))
	for i, m := range req.Members {
		members[i] = model.GroupMemSeq{MemID: m.MemId, CurSeq: m.CurSeq, NeedUpdate: m.NeedUpdate}
	}
	s.gw.SendGroupMsgToUser(fromWireMsg(req.Message), members)
	return &msgv1.SendMsgResponse{}, nil
}
