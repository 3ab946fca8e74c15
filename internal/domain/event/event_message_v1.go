package event

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/webitel/im-delivery-service/internal/domain/model"
)

var (
	_ Eventer    = (*MessageV1Event)(nil)
	_ Exportable = (*MessageV1Event)(nil)
)

// MessageV1Event carries a persisted Msg (post sequence-allocation,
// §4.3) onto the audit/notification bus. UserID is the physical
// recipient this instance is routed for; for a group message that is
// one member out of the fan-out set, never the group itself.
type MessageV1Event struct {
	ID     uuid.UUID
	Msg    *model.Msg `json:"msg"`
	UserID uuid.UUID  `json:"user_id"`
	Cached any        `json:"-"`
}

func NewMessageV1Event(msg *model.Msg, userID uuid.UUID) *MessageV1Event {
	return &MessageV1Event{
		ID:     uuid.New(),
		Msg:    msg,
		UserID: userID,
	}
}

func (e *MessageV1Event) GetID() string              { return e.ID.String() }
func (e *MessageV1Event) GetPayload() any             { return e.Msg }
func (e *MessageV1Event) GetUserID() uuid.UUID        { return e.UserID }
func (e *MessageV1Event) GetOccurredAt() int64        { return e.Msg.SendTime }
func (e *MessageV1Event) GetKind() EventKind          { return MessageCreated }
func (e *MessageV1Event) GetPriority() EventPriority  { return PriorityHigh }
func (e *MessageV1Event) GetCached() any              { return e.Cached }
func (e *MessageV1Event) SetCached(v any)             { e.Cached = v }

// GetRoutingKey follows the teacher's per-domain topic convention,
// scoped to sender instead of the original contact-center issuer/peer
// split (this domain has no bot/contact issuer concept).
func (e *MessageV1Event) GetRoutingKey() string {
	return fmt.Sprintf("im_delivery.v1.%s.message.created", e.Msg.SenderID)
}
