package pubsub

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/im-delivery-service/internal/domain/event"
	"github.com/webitel/im-delivery-service/internal/domain/model"
)

type fakePublisher struct {
	topic string
	msgs  []*message.Message
	err   error
}

func (f *fakePublisher) Publish(topic string, msgs ...*message.Message) error {
	f.topic = topic
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func newTestDispatcher(pub *fakePublisher) EventDispatcher {
	return NewEventDispatcher(pub, slog.New(slog.DiscardHandler))
}

func TestPublishRejectsNilEvent(t *testing.T) {
	d := newTestDispatcher(&fakePublisher{})
	err := d.Publish(t.Context(), nil)
	assert.Error(t, err)
}

func TestPublishSkipsNonExportableWithoutError(t *testing.T) {
	d := newTestDispatcher(&fakePublisher{})
	err := d.Publish(t.Context(), &notExportableEvent{})
	assert.NoError(t, err)
}

func TestPublishSkipsEmptyRoutingKey(t *testing.T) {
	pub := &fakePublisher{}
	d := newTestDispatcher(pub)

	ev := event.NewSystemEvent(uuid.New(), event.Connected, event.PriorityLow, nil)
	err := d.Publish(t.Context(), ev)

	require.NoError(t, err)
	assert.Empty(t, pub.msgs)
}

func TestPublishSendsMessageCreatedWithRoutingKey(t *testing.T) {
	pub := &fakePublisher{}
	d := newTestDispatcher(pub)

	msg := &model.Msg{SenderID: "sender-1", SendTime: 123}
	ev := event.NewMessageV1Event(msg, uuid.New())

	err := d.Publish(t.Context(), ev)
	require.NoError(t, err)

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "im_delivery.v1.sender-1.message.created", pub.topic)
}

func TestPublishSurfacesPublisherError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	d := newTestDispatcher(pub)

	ev := event.NewMessageV1Event(&model.Msg{SenderID: "sender-1"}, uuid.New())
	err := d.Publish(t.Context(), ev)
	assert.Error(t, err)
}

// notExportableEvent implements event.Eventer but not event.Exportable,
// exercising the dispatcher's skip-on-non-exportable fallthrough.
type notExportableEvent struct{}

func (notExportableEvent) GetID() string               { return "x" }
func (notExportableEvent) GetKind() event.EventKind     { return event.Connected }
func (notExportableEvent) GetUserID() uuid.UUID         { return uuid.Nil }
func (notExportableEvent) GetPriority() event.EventPriority { return event.PriorityLow }
func (notExportableEvent) GetOccurredAt() int64         { return 0 }
func (notExportableEvent) GetPayload() any              { return nil }
func (notExportableEvent) GetCached() any               { return nil }
func (notExportableEvent) SetCached(any)                {}
