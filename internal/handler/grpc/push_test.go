package grpc

import (
	"context"
	"log/slog"
	"testing"

	"google.golang.org/grpc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/im-delivery-service/internal/service/pusher"
	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
	msgv1 "github.com/webitel/im-delivery-service/pb/msg/v1"
	pushv1 "github.com/webitel/im-delivery-service/pb/push/v1"
)

type fakePushMsgClient struct {
	single int
	group  int
}

func (f *fakePushMsgClient) SendMessage(context.Context, *msgv1.SendMsgRequest, ...grpc.CallOption) (*msgv1.SendMsgResponse, error) {
	return &msgv1.SendMsgResponse{}, nil
}

func (f *fakePushMsgClient) SendMsgToUser(context.Context, *msgv1.SendMsgRequest, ...grpc.CallOption) (*msgv1.SendMsgResponse, error) {
	f.single++
	return &msgv1.SendMsgResponse{}, nil
}

func (f *fakePushMsgClient) SendGroupMsgToUser(context.Context, *msgv1.SendGroupMsgRequest, ...grpc.CallOption) (*msgv1.SendMsgResponse, error) {
	f.group++
	return &msgv1.SendMsgResponse{}, nil
}

// newFilledPusher drives Watch to completion synchronously so the
// delta is applied before the caller proceeds: the deltas channel is
// preloaded and closed, and Watch returns as soon as it drains it.
func newFilledPusher(t *testing.T, addr string, client pusher.GatewayClient) *pusher.Pusher {
	t.Helper()
	p := pusher.New(slog.New(slog.DiscardHandler))
	deltas := make(chan pusher.Delta, 1)
	deltas <- pusher.Delta{Insert: true, Addr: addr, Client: client}
	close(deltas)
	p.Watch(t.Context(), deltas)
	return p
}

func TestPushServerPushSingleMsgFansOutViaPusher(t *testing.T) {
	client := &fakePushMsgClient{}
	p := newFilledPusher(t, "gw-a", client)

	s := NewPushServer(p)
	_, err := s.PushSingleMsg(t.Context(), &pushv1.PushSingleMsgRequest{Message: &commonv1.Msg{ReceiverId: "u1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, client.single)
}

func TestPushServerPushGroupMsgTranslatesMembers(t *testing.T) {
	client := &fakePushMsgClient{}
	p := newFilledPusher(t, "gw-a", client)

	s := NewPushServer(p)
	_, err := s.PushGroupMsg(t.Context(), &pushv1.PushGroupMsgRequest{
		Message: &commonv1.Msg{GroupId: "g1"},
		Members: []*commonv1.GroupMemSeq{{MemId: "m1", CurSeq: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, client.group)
}
