// Package ingress implements C7, the Chat.SendMsg RPC: validate,
// stamp, publish. send_seq is already stamped by the time a message
// reaches here — the gateway allocates it before the call (§4.6) — so
// this package only assigns server_id and send_time.
package ingress

import (
	"context"
	"crypto/rand"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
)

// serverIDAlphabet is the URL-safe symbol set §4.1's server_id is
// drawn from, matching the original's nanoid usage. No pack dependency
// produces a 21-char id in this alphabet (shortuuid's base57 encoding
// of a UUID is fixed at 22 chars), so this is a direct crypto/rand
// draw rather than a borrowed generator.
const serverIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

const serverIDLen = 21

// newServerID is §4.1's "URL-safe 21-char random" server_id.
func newServerID() string {
	buf := make([]byte, serverIDLen)
	if _, err := rand.Read(buf); err != nil {
		panic("ingress: crypto/rand unavailable: " + err.Error())
	}
	id := make([]byte, serverIDLen)
	for i, b := range buf {
		id[i] = serverIDAlphabet[b%byte(len(serverIDAlphabet))]
	}
	return string(id)
}

// Publisher is the durable-topic producer (C7's collaborator, backed
// by internal/transport/kafka.Producer).
type Publisher interface {
	Publish(ctx context.Context, msg *commonv1.Msg) error
}

// receiptAckTypes mirrors model.ReceiptAckTypes in wire terms, kept
// local so this package only depends on the wire envelope, not the
// domain model (ingress never decodes content).
var receiptAckTypes = map[commonv1.MsgType]bool{
	commonv1.MsgType_GROUP_DISMISS_OR_EXIT_RECEIVED: true,
	commonv1.MsgType_GROUP_INVITATION_RECEIVED:      true,
	commonv1.MsgType_FRIENDSHIP_RECEIVED:            true,
}

type Service struct {
	publisher Publisher
	logger    *slog.Logger
}

func New(publisher Publisher, logger *slog.Logger) *Service {
	return &Service{publisher: publisher, logger: logger}
}

// Result is what the gRPC handler turns into a MsgResponse.
type Result struct {
	ClientID string
	ServerID string
	SendTime int64
	Err      string
}

// SendMsg implements §4.1's contract exactly.
func (s *Service) SendMsg(ctx context.Context, msg *commonv1.Msg) (Result, error) {
	if msg == nil {
		return Result{}, status.Error(codes.InvalidArgument, "message is required")
	}

	if !receiptAckTypes[msg.MsgType] {
		msg.ServerId = newServerID()
	}
	msg.SendTime = time.Now().UnixMilli()

	res := Result{ClientID: msg.ClientId, ServerID: msg.ServerId, SendTime: msg.SendTime}

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.logger.Warn("ingress: publish failed, surfacing in-band", "server_id", msg.ServerId, "err", err)
		res.Err = err.Error()
	}
	return res, nil
}
