package gateway

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/im-delivery-service/internal/cache/seqcache"
	"github.com/webitel/im-delivery-service/internal/domain/model"
	"github.com/webitel/im-delivery-service/internal/domain/registry"
)

type fakeHub struct {
	sentToUser      []*model.Msg
	sentGroup       []*model.Msg
	mirrored        []*model.Msg
	mirrorExceptID  uuid.UUID
	mirrorUserID    string
}

func (f *fakeHub) Register(registry.Session) registry.Session { return nil }
func (f *fakeHub) Unregister(string, uuid.UUID)                {}
func (f *fakeHub) IsConnected(string) bool                      { return false }

func (f *fakeHub) SendToUser(msg *model.Msg) int {
	f.sentToUser = append(f.sentToUser, msg)
	return 1
}

func (f *fakeHub) SendGroupToUser(msg *model.Msg, _ []model.GroupMemSeq) int {
	f.sentGroup = append(f.sentGroup, msg)
	return 1
}

func (f *fakeHub) MirrorToOtherPlatforms(userID string, exceptConnID uuid.UUID, msg *model.Msg) int {
	f.mirrorUserID = userID
	f.mirrorExceptID = exceptConnID
	f.mirrored = append(f.mirrored, msg)
	return 1
}

func (f *fakeHub) Stats() model.HubStats { return model.HubStats{} }
func (f *fakeHub) Shutdown()             {}

type fakeIngress struct {
	ack ServerAck
	err error
}

func (f *fakeIngress) SendMsg(context.Context, *model.Msg) (ServerAck, error) {
	return f.ack, f.err
}

type fakeSeqCache struct {
	res seqcache.Result
	err error
}

func (f *fakeSeqCache) IncrSendSeq(context.Context, string) (seqcache.Result, error) {
	return f.res, f.err
}

func newTestGateway(hub *fakeHub, ing *fakeIngress) *Gateway {
	return New(hub, nil, ing, &fakeSeqCache{}, slog.New(slog.DiscardHandler))
}

func TestHandleInboundSendsAckAndMirrors(t *testing.T) {
	hub := &fakeHub{}
	ing := &fakeIngress{ack: ServerAck{ServerID: "srv-1", SendTime: 42}}
	g := newTestGateway(hub, ing)

	sess := registry.NewSession("sender-1", model.PlatformMobile, 4)
	msg := &model.Msg{ClientID: "c1", SenderID: "sender-1", Platform: model.PlatformMobile}

	g.handleInbound(t.Context(), sess, msg)

	ack := <-sess.Recv()
	assert.Equal(t, "srv-1", ack.ServerID)
	assert.Equal(t, "sender-1", ack.ReceiverID)
	assert.Equal(t, model.MsgRecResp, ack.MsgType)

	require.Len(t, hub.mirrored, 1)
	assert.Equal(t, "sender-1", hub.mirrorUserID)
	assert.Equal(t, sess.ID(), hub.mirrorExceptID)
}

func TestHandleInboundStampsSendSeqBeforeForwarding(t *testing.T) {
	hub := &fakeHub{}
	ing := &fakeIngress{ack: ServerAck{ServerID: "srv-1"}}
	seq := &fakeSeqCache{res: seqcache.Result{Live: 7}}
	g := New(hub, nil, ing, seq, slog.New(slog.DiscardHandler))

	sess := registry.NewSession("sender-1", model.PlatformMobile, 4)
	msg := &model.Msg{ClientID: "c1", SenderID: "sender-1", Platform: model.PlatformMobile}

	g.handleInbound(t.Context(), sess, msg)

	assert.Equal(t, int64(7), msg.SendSeq)
}

func TestHandleInboundRepliesWithErrorWhenSeqAllocationFails(t *testing.T) {
	hub := &fakeHub{}
	ing := &fakeIngress{ack: ServerAck{ServerID: "srv-1"}}
	seq := &fakeSeqCache{err: assert.AnError}
	g := New(hub, nil, ing, seq, slog.New(slog.DiscardHandler))

	sess := registry.NewSession("sender-1", model.PlatformMobile, 4)
	msg := &model.Msg{ClientID: "c1", SenderID: "sender-1", Platform: model.PlatformMobile}

	g.handleInbound(t.Context(), sess, msg)

	ack := <-sess.Recv()
	assert.Equal(t, "sender-1", ack.ReceiverID)
	assert.Equal(t, model.MsgRecResp, ack.MsgType)
	assert.Contains(t, string(ack.Content), assert.AnError.Error())
	assert.Empty(t, hub.mirrored)
}

func TestHandleInboundSkipsMirrorForWebPlatform(t *testing.T) {
	hub := &fakeHub{}
	ing := &fakeIngress{ack: ServerAck{ServerID: "srv-1"}}
	g := newTestGateway(hub, ing)

	sess := registry.NewSession("sender-1", model.PlatformWeb, 4)
	msg := &model.Msg{ClientID: "c1", SenderID: "sender-1", Platform: model.PlatformWeb}

	g.handleInbound(t.Context(), sess, msg)

	assert.Empty(t, hub.mirrored)
}

func TestHandleInboundDropsOnIngressError(t *testing.T) {
	hub := &fakeHub{}
	ing := &fakeIngress{err: assert.AnError}
	g := newTestGateway(hub, ing)

	sess := registry.NewSession("sender-1", model.PlatformMobile, 4)
	g.handleInbound(t.Context(), sess, &model.Msg{SenderID: "sender-1"})

	assert.Len(t, sess.Recv(), 0)
	assert.Empty(t, hub.mirrored)
}

func TestSendMsgToUserDelegatesToHub(t *testing.T) {
	hub := &fakeHub{}
	g := newTestGateway(hub, &fakeIngress{})

	msg := &model.Msg{ReceiverID: "u1"}
	assert.Equal(t, 1, g.SendMsgToUser(msg))
	assert.Equal(t, []*model.Msg{msg}, hub.sentToUser)
}

func TestSendGroupMsgToUserDelegatesToHub(t *testing.T) {
	hub := &fakeHub{}
	g := newTestGateway(hub, &fakeIngress{})

	msg := &model.Msg{GroupID: "g1"}
	assert.Equal(t, 1, g.SendGroupMsgToUser(msg, nil))
	assert.Equal(t, []*model.Msg{msg}, hub.sentGroup)
}

func TestSendMessageFailsWhenBroadcastFull(t *testing.T) {
	g := newTestGateway(&fakeHub{}, &fakeIngress{})

	for i := 0; i < broadcastCapacity; i++ {
		require.NoError(t, g.SendMessage(t.Context(), &model.Msg{}))
	}
	err := g.SendMessage(t.Context(), &model.Msg{})
	assert.ErrorIs(t, err, errBroadcastFull)
}

func TestSendMessageRespectsContextCancellation(t *testing.T) {
	g := newTestGateway(&fakeHub{}, &fakeIngress{})
	for i := 0; i < broadcastCapacity; i++ {
		require.NoError(t, g.SendMessage(t.Context(), &model.Msg{}))
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	err := g.SendMessage(ctx, &model.Msg{})
	assert.Error(t, err)
}
