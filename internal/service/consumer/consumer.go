// Package consumer implements C8: drain the topic, classify, allocate
// sequences, persist, push. One Handle call is one Kafka record;
// returning an error withholds the offset commit (§4.2 step 9).
package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/webitel/im-delivery-service/internal/cache/seqcache"
	"github.com/webitel/im-delivery-service/internal/domain/classify"
	"github.com/webitel/im-delivery-service/internal/domain/model"
	"github.com/webitel/im-delivery-service/internal/store/checkpoint"
	"github.com/webitel/im-delivery-service/internal/store/history"
	"github.com/webitel/im-delivery-service/internal/store/inbox"
	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
)

// GroupMembers resolves a group's member list, C11 first with a DB
// fallback (§4.2 step 6).
type GroupMembers interface {
	Members(ctx context.Context, groupID string) ([]string, error)
}

// Pusher is C9's client surface as the consumer sees it.
type Pusher interface {
	PushSingleMsg(ctx context.Context, msg *model.Msg) error
	PushGroupMsg(ctx context.Context, msg *model.Msg, members []model.GroupMemSeq) error
}

type Service struct {
	seq        *seqcache.Cache
	checkpoint *checkpoint.Store
	history    *history.Store
	inbox      *inbox.Store
	groups     GroupMembers
	pusher     Pusher
	logger     *slog.Logger
}

func New(seq *seqcache.Cache, cp *checkpoint.Store, hist *history.Store, ib *inbox.Store, groups GroupMembers, pusher Pusher, logger *slog.Logger) *Service {
	return &Service{seq: seq, checkpoint: cp, history: hist, inbox: ib, groups: groups, pusher: pusher, logger: logger}
}

func fromWire(w *commonv1.Msg) *model.Msg {
	return &model.Msg{
		ClientID:     w.ClientId,
		ServerID:     w.ServerId,
		SenderID:     w.SenderId,
		ReceiverID:   w.ReceiverId,
		GroupID:      w.GroupId,
		Platform:     model.Platform(w.Platform),
		MsgType:      model.MsgType(w.MsgType),
		ContentType:  model.ContentType(w.ContentType),
		Content:      w.Content,
		SendTime:     w.SendTime,
		SendSeq:      w.SendSeq,
		Seq:          w.Seq,
		IsRead:       w.IsRead,
		RelatedMsgID: w.RelatedMsgId,
	}
}

// Handle implements the nine steps of §4.2 for one decoded record.
func (s *Service) Handle(ctx context.Context, wire *commonv1.Msg) error {
	msg := fromWire(wire)
	rule := classify.Lookup(msg.MsgType)

	// Step 3: Read receipts short-circuit everything else.
	if msg.MsgType == model.Read {
		return s.handleRead(ctx, msg)
	}

	// Unknown msg_type values get classify.Lookup's all-false fallback
	// rule; they are logged and skipped without persisting or pushing.
	if !rule.Persist && !rule.Transient && !rule.ReceiptAck {
		s.logger.Warn("consumer: unknown msg_type, skipping", "msg_type", msg.MsgType, "server_id", msg.ServerID)
		return nil
	}

	// Step 4: sender's send_seq checkpoint (always attempted; cheap
	// read against the cache).
	if err := s.maybeCheckpointSend(ctx, msg.SenderID); err != nil {
		return err
	}

	var groupMembers []model.GroupMemSeq
	if rule.Domain == classify.DomainGroup {
		members, err := s.allocateGroupSeqs(ctx, msg)
		if err != nil {
			return err
		}
		groupMembers = members
	} else if rule.NeedRecvSeq {
		res, err := s.seq.IncrRecvSeq(ctx, msg.ReceiverID)
		if err != nil {
			return fmt.Errorf("consumer: incr_recv_seq %s: %w", msg.ReceiverID, err)
		}
		msg.Seq = res.Live
		if res.Updated {
			if err := s.checkpoint.PersistRecvMax(ctx, msg.ReceiverID, res.PersistedMax); err != nil {
				return err
			}
		}
	}

	// Step 7: persistence.
	if err := s.persist(ctx, msg, rule, groupMembers); err != nil {
		return err
	}

	// Step 8: push.
	return s.push(ctx, msg, rule, groupMembers)
}

func (s *Service) handleRead(ctx context.Context, msg *model.Msg) error {
	var payload model.MsgRead
	if err := json.Unmarshal(msg.Content, &payload); err != nil {
		s.logger.Warn("consumer: undecodable Read payload, skipping", "err", err)
		return nil
	}
	if err := s.inbox.MsgRead(ctx, payload.UserID, payload.MsgSeq); err != nil {
		return fmt.Errorf("consumer: msg_read %s: %w", payload.UserID, err)
	}
	return nil
}

// maybeCheckpointSend is §4.2 step 4: a read-only check against the
// sender's cached send_seq pair. The gateway already allocated this
// message's send_seq (handle_send_seq in the original consumer never
// increments); this just decides whether the previous checkpoint
// threshold has been consumed by STEP allocations and, if so, asks C4
// to persist a new max.
func (s *Service) maybeCheckpointSend(ctx context.Context, senderID string) error {
	if senderID == "" {
		return nil
	}
	live, persistedMax, err := s.seq.GetSendSeq(ctx, senderID)
	if err != nil {
		return fmt.Errorf("consumer: get_send_seq %s: %w", senderID, err)
	}
	if live == persistedMax-s.seq.Step() {
		if err := s.checkpoint.PersistSendMax(ctx, senderID, persistedMax); err != nil {
			return err
		}
	}
	return nil
}

// allocateGroupSeqs is §4.2 step 6: resolve members, drop the sender,
// batch-increment recv_seq, and apply membership-mutation side effects.
func (s *Service) allocateGroupSeqs(ctx context.Context, msg *model.Msg) ([]model.GroupMemSeq, error) {
	members, err := s.groups.Members(ctx, msg.GroupID)
	if err != nil {
		return nil, fmt.Errorf("consumer: resolve group members %s: %w", msg.GroupID, err)
	}

	recipients := make([]string, 0, len(members))
	for _, m := range members {
		if m != msg.SenderID {
			recipients = append(recipients, m)
		}
	}

	allocated, err := s.seq.IncrGroupSeq(ctx, recipients)
	if err != nil {
		return nil, fmt.Errorf("consumer: incr_group_seq %s: %w", msg.GroupID, err)
	}
	for _, gm := range allocated {
		if gm.NeedUpdate {
			if err := s.checkpoint.PersistRecvMax(ctx, gm.MemID, gm.CurSeq); err != nil {
				return nil, err
			}
		}
	}

	switch msg.MsgType {
	case model.GroupDismiss:
		if err := s.seq.DelGroupMembers(ctx, msg.GroupID); err != nil {
			return nil, fmt.Errorf("consumer: dismiss group %s: %w", msg.GroupID, err)
		}
	case model.GroupMemberExit:
		if err := s.seq.RemoveGroupMemberID(ctx, msg.GroupID, msg.SenderID); err != nil {
			return nil, fmt.Errorf("consumer: member exit %s: %w", msg.GroupID, err)
		}
	case model.GroupRemoveMember:
		var removed []string
		if err := json.Unmarshal(msg.Content, &removed); err != nil {
			s.logger.Warn("consumer: undecodable GroupRemoveMember payload", "group_id", msg.GroupID, "err", err)
		} else if err := s.seq.RemoveGroupMemberBatch(ctx, msg.GroupID, removed); err != nil {
			return nil, fmt.Errorf("consumer: remove member batch %s: %w", msg.GroupID, err)
		}
	}

	return allocated, nil
}

// persist is §4.2 step 7.
func (s *Service) persist(ctx context.Context, msg *model.Msg, rule classify.Rule, members []model.GroupMemSeq) error {
	if classify.IsTransient(msg.MsgType) {
		return nil
	}

	switch rule.Domain {
	case classify.DomainGroup:
		if rule.NeedHistory {
			if err := s.history.Append(ctx, msg); err != nil {
				return err
			}
		}
		if err := s.inbox.SaveGroupMsg(ctx, msg, members); err != nil {
			return fmt.Errorf("consumer: save_group_msg %s: %w", msg.ServerID, err)
		}
		return nil
	case classify.DomainSingle:
		if rule.DeleteOnAck {
			if err := s.inbox.DeleteMessage(ctx, msg.ServerID); err != nil {
				return fmt.Errorf("consumer: delete_message %s: %w", msg.ServerID, err)
			}
			return nil
		}
		if rule.NeedHistory {
			if err := s.history.Append(ctx, msg); err != nil {
				return err
			}
		}
		if err := s.inbox.SaveMessage(ctx, msg); err != nil {
			return fmt.Errorf("consumer: save_message %s: %w", msg.ServerID, err)
		}
		return nil
	default:
		return nil
	}
}

// push is §4.2 step 8.
func (s *Service) push(ctx context.Context, msg *model.Msg, rule classify.Rule, members []model.GroupMemSeq) error {
	if rule.Domain == classify.DomainGroup {
		return s.pusher.PushGroupMsg(ctx, msg, members)
	}
	return s.pusher.PushSingleMsg(ctx, msg)
}
