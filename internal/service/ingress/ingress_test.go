package ingress

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
)

type fakePublisher struct {
	published []*commonv1.Msg
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, msg *commonv1.Msg) error {
	f.published = append(f.published, msg)
	return f.err
}

func newTestService(pub Publisher) *Service {
	return New(pub, slog.New(slog.DiscardHandler))
}

func TestSendMsgStampsServerIDAndSendTime(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(pub)

	res, err := svc.SendMsg(t.Context(), &commonv1.Msg{ClientId: "c1", MsgType: commonv1.MsgType_SINGLE_MSG})
	require.NoError(t, err)

	assert.Equal(t, "c1", res.ClientID)
	assert.NotEmpty(t, res.ServerID)
	assert.NotZero(t, res.SendTime)
	assert.Empty(t, res.Err)
	require.Len(t, pub.published, 1)
	assert.Equal(t, res.ServerID, pub.published[0].ServerId)
}

func TestSendMsgLeavesReceiptAckServerIDUntouched(t *testing.T) {
	pub := &fakePublisher{}
	svc := newTestService(pub)

	res, err := svc.SendMsg(t.Context(), &commonv1.Msg{
		ClientId: "c1",
		MsgType:  commonv1.MsgType_FRIENDSHIP_RECEIVED,
	})
	require.NoError(t, err)
	assert.Empty(t, res.ServerID)
}

func TestSendMsgRejectsNilMessage(t *testing.T) {
	svc := newTestService(&fakePublisher{})
	_, err := svc.SendMsg(t.Context(), nil)
	assert.Error(t, err)
}

func TestSendMsgSurfacesPublishErrorInBand(t *testing.T) {
	pub := &fakePublisher{err: errors.New("kafka unavailable")}
	svc := newTestService(pub)

	res, err := svc.SendMsg(t.Context(), &commonv1.Msg{ClientId: "c1", MsgType: commonv1.MsgType_SINGLE_MSG})
	require.NoError(t, err)
	assert.Equal(t, "kafka unavailable", res.Err)
}

func TestNewServerIDIsURLSafe21Chars(t *testing.T) {
	id := newServerID()
	assert.Len(t, id, serverIDLen)
	for _, r := range id {
		assert.Contains(t, serverIDAlphabet, string(r))
	}
	assert.NotEqual(t, id, newServerID())
}
