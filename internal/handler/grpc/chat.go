// Package grpc adapts the domain services onto the hand-maintained pb/
// server interfaces: one file per RPC surface (Chat, Msg, Push,
// DbService), mirroring how the teacher splits its handler package by
// concern.
package grpc

import (
	"context"

	"github.com/webitel/im-delivery-service/internal/domain/model"
	"github.com/webitel/im-delivery-service/internal/service/ingress"
	chatv1 "github.com/webitel/im-delivery-service/pb/chat/v1"
	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
)

// ChatServer adapts ingress.Service onto chatv1.ChatServer (C7, §4.1).
type ChatServer struct {
	chatv1.UnimplementedChatServer
	svc *ingress.Service
}

func NewChatServer(svc *ingress.Service) *ChatServer {
	return &ChatServer{svc: svc}
}

func (s *ChatServer) SendMsg(ctx context.Context, req *chatv1.SendMsgRequest) (*chatv1.MsgResponse, error) {
	res, err := s.svc.SendMsg(ctx, req.Message)
	if err != nil {
		return nil, err
	}
	return &chatv1.MsgResponse{
		ClientId: res.ClientID,
		ServerId: res.ServerID,
		SendTime: res.SendTime,
		Err:      res.Err,
	}, nil
}

func fromWireMsg(w *commonv1.Msg) *model.Msg {
	return &model.Msg{
		ClientID:     w.ClientId,
		ServerID:     w.ServerId,
		SenderID:     w.SenderId,
		ReceiverID:   w.ReceiverId,
		GroupID:      w.GroupId,
		Platform:     model.Platform(w.Platform),
		MsgType:      model.MsgType(w.MsgType),
		ContentType:  model.ContentType(w.ContentType),
		Content:      w.Content,
		SendTime:     w.SendTime,
		SendSeq:      w.SendSeq,
		Seq:          w.Seq,
		IsRead:       w.IsRead,
		RelatedMsgID: w.RelatedMsgId,
	}
}

func toWireMsg(m *model.Msg) *commonv1.Msg {
	return &commonv1.Msg{
		ClientId:     m.ClientID,
		ServerId:     m.ServerID,
		SenderId:     m.SenderID,
		ReceiverId:   m.ReceiverID,
		GroupId:      m.GroupID,
		Platform:     commonv1.Platform(m.Platform),
		MsgType:      commonv1.MsgType(m.MsgType),
		ContentType:  commonv1.ContentType(m.ContentType),
		Content:      m.Content,
		SendTime:     m.SendTime,
		SendSeq:      m.SendSeq,
		Seq:          m.Seq,
		IsRead:       m.IsRead,
		RelatedMsgId: m.RelatedMsgID,
	}
}
