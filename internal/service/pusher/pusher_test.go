package pusher

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/im-delivery-service/internal/domain/model"
	msgv1 "github.com/webitel/im-delivery-service/pb/msg/v1"
)

type fakeMsgClient struct {
	sendMsgToUserCalls   atomic.Int32
	sendGroupMsgCalls    atomic.Int32
	err                  error
}

func (f *fakeMsgClient) SendMessage(context.Context, *msgv1.SendMsgRequest, ...grpc.CallOption) (*msgv1.SendMsgResponse, error) {
	return &msgv1.SendMsgResponse{}, nil
}

func (f *fakeMsgClient) SendMsgToUser(context.Context, *msgv1.SendMsgRequest, ...grpc.CallOption) (*msgv1.SendMsgResponse, error) {
	f.sendMsgToUserCalls.Add(1)
	return &msgv1.SendMsgResponse{}, f.err
}

func (f *fakeMsgClient) SendGroupMsgToUser(context.Context, *msgv1.SendGroupMsgRequest, ...grpc.CallOption) (*msgv1.SendMsgResponse, error) {
	f.sendGroupMsgCalls.Add(1)
	return &msgv1.SendMsgResponse{}, f.err
}

func newTestPusher() *Pusher {
	return New(slog.New(slog.DiscardHandler))
}

func TestPushSingleMsgFansOutToEveryClient(t *testing.T) {
	p := newTestPusher()
	a, b := &fakeMsgClient{}, &fakeMsgClient{}
	p.insert("gw-a", a)
	p.insert("gw-b", b)

	err := p.PushSingleMsg(t.Context(), &model.Msg{ReceiverID: "u1"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), a.sendMsgToUserCalls.Load())
	assert.Equal(t, int32(1), b.sendMsgToUserCalls.Load())
}

func TestPushSingleMsgDropsFailingPeer(t *testing.T) {
	p := newTestPusher()
	bad := &fakeMsgClient{err: errors.New("unreachable")}
	p.insert("gw-bad", bad)

	err := p.PushSingleMsg(t.Context(), &model.Msg{ReceiverID: "u1"})
	require.NoError(t, err) // per-peer errors never fail the overall push

	assert.Len(t, p.snapshot(), 0)
}

func TestPushGroupMsgCarriesMemberBatch(t *testing.T) {
	p := newTestPusher()
	client := &fakeMsgClient{}
	p.insert("gw-a", client)

	members := []model.GroupMemSeq{{MemID: "m1", CurSeq: 1}, {MemID: "m2", CurSeq: 2}}
	err := p.PushGroupMsg(t.Context(), &model.Msg{GroupID: "g1"}, members)
	require.NoError(t, err)

	assert.Equal(t, int32(1), client.sendGroupMsgCalls.Load())
}

func TestWatchAppliesInsertAndRemoveDeltas(t *testing.T) {
	p := newTestPusher()
	deltas := make(chan Delta, 2)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	go p.Watch(ctx, deltas)

	deltas <- Delta{Insert: true, Addr: "gw-a", Client: &fakeMsgClient{}}
	require.Eventually(t, func() bool { return len(p.snapshot()) == 1 }, time.Second, 5*time.Millisecond)

	deltas <- Delta{Insert: false, Addr: "gw-a"}
	require.Eventually(t, func() bool { return len(p.snapshot()) == 0 }, time.Second, 5*time.Millisecond)
}
