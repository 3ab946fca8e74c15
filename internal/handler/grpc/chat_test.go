package grpc

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/im-delivery-service/internal/service/ingress"
	chatv1 "github.com/webitel/im-delivery-service/pb/chat/v1"
	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
)

type fakeIngressPublisher struct {
	published []*commonv1.Msg
	err       error
}

func (f *fakeIngressPublisher) Publish(_ context.Context, msg *commonv1.Msg) error {
	f.published = append(f.published, msg)
	return f.err
}

func TestChatServerSendMsgStampsAndReturnsResponse(t *testing.T) {
	pub := &fakeIngressPublisher{}
	svc := ingress.New(pub, slog.New(slog.DiscardHandler))
	s := NewChatServer(svc)

	resp, err := s.SendMsg(t.Context(), &chatv1.SendMsgRequest{
		Message: &commonv1.Msg{ClientId: "c1", MsgType: commonv1.MsgType_SINGLE_MSG},
	})
	require.NoError(t, err)

	assert.Equal(t, "c1", resp.ClientId)
	assert.NotEmpty(t, resp.ServerId)
	require.Len(t, pub.published, 1)
}

func TestChatServerSendMsgPropagatesServiceError(t *testing.T) {
	svc := ingress.New(&fakeIngressPublisher{}, slog.New(slog.DiscardHandler))
	s := NewChatServer(svc)

	_, err := s.SendMsg(t.Context(), &chatv1.SendMsgRequest{Message: nil})
	assert.Error(t, err)
}

func TestChatServerSendMsgSurfacesPublishErrorInBand(t *testing.T) {
	pub := &fakeIngressPublisher{err: errors.New("kafka down")}
	svc := ingress.New(pub, slog.New(slog.DiscardHandler))
	s := NewChatServer(svc)

	resp, err := s.SendMsg(t.Context(), &chatv1.SendMsgRequest{
		Message: &commonv1.Msg{ClientId: "c1", MsgType: commonv1.MsgType_SINGLE_MSG},
	})
	require.NoError(t, err)
	assert.Equal(t, "kafka down", resp.Err)
}
