package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/webitel/im-delivery-service/internal/domain/model"
)

func TestMessageV1EventRoutingKeyScopesOnSender(t *testing.T) {
	msg := &model.Msg{SenderID: "sender-42", SendTime: 555}
	userID := uuid.New()

	ev := NewMessageV1Event(msg, userID)

	assert.Equal(t, "im_delivery.v1.sender-42.message.created", ev.GetRoutingKey())
	assert.Equal(t, userID, ev.GetUserID())
	assert.Equal(t, MessageCreated, ev.GetKind())
	assert.Equal(t, PriorityHigh, ev.GetPriority())
	assert.Equal(t, int64(555), ev.GetOccurredAt())
	assert.Same(t, msg, ev.GetPayload())
	assert.NotEmpty(t, ev.GetID())
}

func TestMessageV1EventCachedRoundTrip(t *testing.T) {
	ev := NewMessageV1Event(&model.Msg{}, uuid.New())
	assert.Nil(t, ev.GetCached())

	ev.SetCached("wire-bytes")
	assert.Equal(t, "wire-bytes", ev.GetCached())
}

func TestSystemEventRoutingKeyAlwaysEmpty(t *testing.T) {
	ev := NewSystemEvent(uuid.New(), Connected, PriorityLow, nil)
	assert.Empty(t, ev.GetRoutingKey())
	assert.Equal(t, Connected, ev.GetKind())
	assert.Equal(t, PriorityLow, ev.GetPriority())
	assert.NotEmpty(t, ev.GetID())
	assert.NotEmpty(t, ev.GetTraceID())
}
