package cmd

import (
	"context"

	"github.com/google/uuid"

	"github.com/webitel/im-delivery-service/internal/adapter/pubsub"
	"github.com/webitel/im-delivery-service/internal/domain/event"
	"github.com/webitel/im-delivery-service/internal/domain/model"
	pusherservice "github.com/webitel/im-delivery-service/internal/service/pusher"
)

// auditingPusher decorates the real C9 pusher with a best-effort audit
// publish (a supplemented feature: original_source has no equivalent,
// but the teacher repo's entire adapter/pubsub stack exists to carry
// exactly this kind of "fan this domain event to the bus too" concern).
// Recipient IDs that aren't parseable UUIDs are silently skipped —
// this bus only carries audit/notification traffic, never the
// message itself, so a skipped publish has no delivery-path effect.
type auditingPusher struct {
	next       *pusherservice.Pusher
	dispatcher pubsub.EventDispatcher
}

func newAuditingPusher(next *pusherservice.Pusher, dispatcher pubsub.EventDispatcher) *auditingPusher {
	return &auditingPusher{next: next, dispatcher: dispatcher}
}

func (a *auditingPusher) PushSingleMsg(ctx context.Context, msg *model.Msg) error {
	err := a.next.PushSingleMsg(ctx, msg)
	a.publish(ctx, msg, msg.ReceiverID)
	return err
}

func (a *auditingPusher) PushGroupMsg(ctx context.Context, msg *model.Msg, members []model.GroupMemSeq) error {
	err := a.next.PushGroupMsg(ctx, msg, members)
	for _, m := range members {
		a.publish(ctx, msg, m.MemID)
	}
	return err
}

func (a *auditingPusher) publish(ctx context.Context, msg *model.Msg, userID string) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return
	}
	_ = a.dispatcher.Publish(ctx, event.NewMessageV1Event(msg, uid))
}
