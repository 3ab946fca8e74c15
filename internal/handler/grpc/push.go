package grpc

import (
	"context"

	"github.com/webitel/im-delivery-service/internal/domain/model"
	"github.com/webitel/im-delivery-service/internal/service/pusher"
	pushv1 "github.com/webitel/im-delivery-service/pb/push/v1"
)

// PushServer adapts pusher.Pusher onto pushv1.PushServer, the RPC
// surface of the standalone pusher (C9) role (§4.5). The consumer (C8)
// does not call it; it runs its own in-process pusher.
type PushServer struct {
	pushv1.UnimplementedPushServer
	p *pusher.Pusher
}

func NewPushServer(p *pusher.Pusher) *PushServer {
	return &PushServer{p: p}
}

func (s *PushServer) PushSingleMsg(ctx context.Context, req *pushv1.PushSingleMsgRequest) (*pushv1.PushSingleMsgResponse, error) {
	if err := s.p.PushSingleMsg(ctx, fromWireMsg(req.Message)); err != nil {
		return nil, err
	}
	return &pushv1.PushSingleMsgResponse{}, nil
}

func (s *PushServer) PushGroupMsg(ctx context.Context, req *pushv1.PushGroupMsgRequest) (*pushv1.PushGroupMsgResponse, error) {
	members := make([]model.GroupMemSeq, len(req.Members))
	for i, m := range req.Members {
		members[i] = model.GroupMemSeq{MemID: m.MemId, CurSeq: m.CurSeq, NeedUpdate: m.NeedUpdate}
	}
	if err := s.p.PushGroupMsg(ctx, fromWireMsg(req.Message), members); err != nil {
		return nil, err
	}
	return &pushv1.PushGroupMsgResponse{}, nil
}
