package grpc

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
	"github.com/webitel/im-delivery-service/internal/service/gateway"
	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
	msgv1 "github.com/webitel/im-delivery-service/pb/msg/v1"
)

type fakeHub struct {
	sentToUser []*model.Msg
	sentGroup  []*model.Msg
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

func (f *fakeHub) MirrorToOtherPlatforms(string, uuid.UUID, *model.Msg) int { return 0 }
func (f *fakeHub) Stats() model.HubStats                                    { return model.HubStats{} }
func (f *fakeHub) Shutdown()                                                {}

type fakeIngress struct{}

func (fakeIngress) SendMsg(context.Context, *model.Msg) (gateway.ServerAck, error) {
	return gateway.ServerAck{}, nil
}

type fakeSeqCache struct{}

func (fakeSeqCache) IncrSendSeq(context.Context, string) (seqcache.Result, error) {
	return seqcache.Result{}, nil
}

func newTestGateway(hub *fakeHub) *gateway.Gateway {
	return gateway.New(hub, nil, fakeIngress{}, fakeSeqCache{}, slog.New(slog.DiscardHandler))
}

func TestMsgServerSendMsgToUserDelegatesToGateway(t *testing.T) {
	hub := &fakeHub{}
	s := NewMsgServer(newTestGateway(hub))

	_, err := s.SendMsgToUser(t.Context(), &msgv1.SendMsgRequest{Message: &commonv1.Msg{ReceiverId: "u1"}})
	require.NoError(t, err)
	require.Len(t, hub.sentToUser, 1)
	assert.Equal(t, "u1", hub.sentToUser[0].ReceiverID)
}

func TestMsgServerSendGroupMsgToUserTranslatesMembers(t *testing.T) {
	hub := &fakeHub{}
	s := NewMsgServer(newTestGateway(hub))

	_, err := s.SendGroupMsgToUser(t.Context(), &msgv1.SendGroupMsgRequest{
		Message: &commonv1.Msg{GroupId: "g1"},
		Members: []*commonv1.GroupMemSeq{{MemId: "m1", CurSeq: 3, NeedUpdate: true}},
	})
	require.NoError(t, err)
	require.Len(t, hub.sentGroup, 1)
	assert.Equal(t, "g1", hub.sentGroup[0].GroupID)
}

func TestMsgServerSendMessageAcceptsIntoBroadcastChannel(t *testing.T) {
	hub := &fakeHub{}
	s := NewMsgServer(newTestGateway(hub))

	_, err := s.SendMessage(t.Context(), &msgv1.SendMsgRequest{Message: &commonv1.Msg{ClientId: "c1"}})
	require.NoError(t, err)
}
