package grpc

import (
	"context"

	"github.com/webitel/im-delivery-service/internal/service/members"
	"github.com/webitel/im-delivery-service/internal/store/history"
	"github.com/webitel/im-delivery-service/internal/store/inbox"
	dbv1 "github.com/webitel/im-delivery-service/pb/db/v1"
)

// DbServiceServer fronts the history ledger (C5), inbox store (C6),
// and group membership (C11/groups) behind one RPC surface other
// roles address through discovery (§6).
type DbServiceServer struct {
	dbv1.UnimplementedDbServiceServer
	history *history.Store
	inbox   *inbox.Store
	members *members.Cache
}

func NewDbServiceServer(h *history.Store, ib *inbox.Store, m *members.Cache) *DbServiceServer {
	return &DbServiceServer{history: h, inbox: ib, members: m}
}

func (s *DbServiceServer) SaveMessage(ctx context.Context, req *dbv1.SaveMessageRequest) (*dbv1.SaveMessageResponse, error) {
	msg := fromWireMsg(req.Message)
	if err := s.history.Append(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.inbox.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}
	return &dbv1.SaveMessageResponse{}, nil
}

// GetMessages streams a user's inbox ordered by seq ascending (§4.4's
// get_messages_stream, the offline-catch-up query of §8 invariant 8).
func (s *DbServiceServer) GetMessages(req *dbv1.GetMessagesRequest, stream dbv1.DbService_GetMessagesServer) error {
	msgs, err := s.inbox.GetMessagesStream(stream.Context(), req.UserId, req.FromSeq, req.ToSeq)
	if err != nil {
		return err
	}
	for i, msg := range msgs {
		if req.Limit > 0 && int64(i) >= req.Limit {
			break
		}
		if err := stream.Send(&dbv1.GetMessagesResponse{Message: toWireMsg(msg)}); err != nil {
			return err
		}
	}
	return nil
}

func (s *DbServiceServer) GroupCreate(ctx context.Context, req *dbv1.GroupCreateRequest) (*dbv1.GroupCreateResponse, error) {
	if err := s.members.Create(ctx, req.GroupId, req.MemberIds); err != nil {
		return nil, err
	}
	return &dbv1.GroupCreateResponse{}, nil
}

func (s *DbServiceServer) GroupUpdate(ctx context.Context, req *dbv1.GroupUpdateRequest) (*dbv1.GroupUpdateResponse, error) {
	if err := s.members.Update(ctx, req.GroupId, req.MemberIds); err != nil {
		return nil, err
	}
	return &dbv1.GroupUpdateResponse{}, nil
}

func (s *DbServiceServer) GroupDelete(ctx context.Context, req *dbv1.GroupDeleteRequest) (*dbv1.GroupDeleteResponse, error) {
	if err := s.members.Delete(ctx, req.GroupId); err != nil {
		return nil, err
	}
	return &dbv1.GroupDeleteResponse{}, nil
}

func (s *DbServiceServer) GroupMemberExit(ctx context.Context, req *dbv1.GroupMemberExitRequest) (*dbv1.GroupMemberExitResponse, error) {
	if err := s.members.MemberExit(ctx, req.GroupId, req.UserId); err != nil {
		return nil, err
	}
	return &dbv1.GroupMemberExitResponse{}, nil
}

func (s *DbServiceServer) GroupMembersId(ctx context.Context, req *dbv1.GroupMembersIdRequest) (*dbv1.GroupMembersIdResponse, error) {
	ids, err := s.members.Members(ctx, req.GroupId)
	if err != nil {
		return nil, err
	}
	return &dbv1.GroupMembersIdResponse{MemberIds: ids}, nil
}
