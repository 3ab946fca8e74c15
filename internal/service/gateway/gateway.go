// Package gateway implements C10: WebSocket session lifecycle, the
// three cooperative per-session tasks (§4.6), and the internal RPC
// surface C9 drives (send_msg_to_user / send_group_msg_to_user /
// send_message).
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/webitel/im-delivery-service/internal/cache/seqcache"
	"github.com/webitel/im-delivery-service/internal/domain/model"
	"github.com/webitel/im-delivery-service/internal/domain/registry"
	"github.com/webitel/im-delivery-service/internal/handler/marshaller/wire"
	"github.com/webitel/im-delivery-service/internal/service"
)

const (
	heartbeatInterval = 30 * time.Second
	closeKnockOff     = 4001
	closeUnauthorized = 4002
	sendBufSize       = 256
	broadcastCapacity = 1024
)

// Ingress is C10's clone of the C7 client (§4.6).
type Ingress interface {
	SendMsg(ctx context.Context, msg *model.Msg) (ServerAck, error)
}

// SeqCache is C3's sender-side counter as the gateway sees it: the
// gateway allocates the sender's send_seq itself, before forwarding to
// ingress (manager.rs's process_message, "we do not operate the
// database here about saving send sequence; we do that in the
// consumer").
type SeqCache interface {
	IncrSendSeq(ctx context.Context, userID string) (seqcache.Result, error)
}

// ServerAck is what C7's SendMsg response carries back.
type ServerAck struct {
	ServerID string
	SendTime int64
	Err      string
}

// Gateway owns one node's hub and wires WS sessions into it.
type Gateway struct {
	hub       registry.Hubber
	auth      service.Auther
	ingress   Ingress
	seq       SeqCache
	logger    *slog.Logger
	broadcast chan *model.Msg
}

func New(hub registry.Hubber, auth service.Auther, ingress Ingress, seq SeqCache, logger *slog.Logger) *Gateway {
	return &Gateway{
		hub:       hub,
		auth:      auth,
		ingress:   ingress,
		seq:       seq,
		logger:    logger,
		broadcast: make(chan *model.Msg, broadcastCapacity),
	}
}

// ConnectParams are the values encoded in the WS upgrade path per §4.6:
// "(user_id, platform_id, platform_type, token)".
type ConnectParams struct {
	UserID   string
	Platform model.Platform
	Token    string
}

// Accept upgrades the connection (done by the caller via conn), verifies
// the bearer token, installs the session in the hub, and runs the
// pinger/watcher/reader trio until one of them exits. It owns the
// lifetime of conn: it is always closed before Accept returns.
func (g *Gateway) Accept(ctx context.Context, conn *websocket.Conn, params ConnectParams) {
	defer conn.Close()

	contact, err := g.auth.Verify(params.Token, params.Platform)
	if err != nil || contact.UserID != params.UserID {
		g.logger.Warn("gateway: auth failed, closing", "user_id", params.UserID, "err", err)
		closeWithCode(conn, closeUnauthorized, "unauthorized")
		return
	}

	sess := registry.NewSession(params.UserID, params.Platform, sendBufSize)
	cs, sessCtx := registry.NewCtxSession(ctx, sess)

	evicted := g.hub.Register(sess)
	if evicted != nil {
		g.logger.Info("gateway: knocked off incumbent session",
			"user_id", params.UserID, "platform", params.Platform, "evicted_conn_id", evicted.ID().String())
	}

	needUnregister := true
	watcherFired := make(chan struct{}, 1)

	done := make(chan struct{}, 3)
	go g.pinger(sessCtx, conn, done)
	go g.watcher(sess, watcherFired, done)
	go g.reader(sessCtx, conn, sess, contact, done)

	<-done
	select {
	case <-watcherFired:
		// §4.6: "if the watcher fired, skip unregister — the newcomer
		// has already taken the slot".
		needUnregister = false
		closeWithCode(conn, closeKnockOff, "knock off")
	default:
	}
	cs.Cancel()
	sess.Close()
	if needUnregister {
		g.hub.Unregister(params.UserID, sess.ID())
	}
}

func closeWithCode(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// pinger sends a Ping every heartbeatInterval until sessCtx is done or
// the connection write fails.
func (g *Gateway) pinger(sessCtx context.Context, conn *websocket.Conn, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-sessCtx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				g.logger.Warn("gateway: ping failed", "err", err)
				return
			}
		}
	}
}

// watcher awaits the session's own Done channel, which fires on
// KnockOff (a newcomer took this slot).
func (g *Gateway) watcher(sess registry.Session, fired chan<- struct{}, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	<-sess.Done()
	select {
	case fired <- struct{}{}:
	default:
	}
}

// reader pumps outbound session messages to the socket and decodes
// inbound frames, forwarding each to the C7 ingress client.
func (g *Gateway) reader(sessCtx context.Context, conn *websocket.Conn, sess registry.Session, contact *model.AuthContact, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()

	go g.writer(sessCtx, conn, sess)

	for {
		select {
		case <-sessCtx.Done():
			return
		default:
		}

		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var inbound *model.Msg
		switch msgType {
		case websocket.BinaryMessage:
			inbound, err = wire.DecodeBinary(data)
		case websocket.TextMessage:
			inbound, err = wire.DecodeText(string(data))
		default:
			continue
		}
		if err != nil {
			g.logger.Warn("gateway: undecodable frame, dropping", "err", err)
			continue
		}

		inbound.SenderID = contact.UserID
		inbound.Platform = contact.Platform
		g.handleInbound(sessCtx, sess, inbound)
	}
}

// writer drains the session's outbound mailbox onto the socket until
// sessCtx is cancelled.
func (g *Gateway) writer(sessCtx context.Context, conn *websocket.Conn, sess registry.Session) {
	for {
		select {
		case <-sessCtx.Done():
			return
		case msg, ok := <-sess.Recv():
			if !ok {
				return
			}
			data, err := wire.Encode(msg)
			if err != nil {
				g.logger.Warn("gateway: encode outbound failed", "err", err)
				continue
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		}
	}
}

// handleInbound runs on the reader goroutine and calls C7's SendMsg
// directly; inbound frames do not pass through a channel or a separate
// goroutine. It allocates the sender's send_seq, submits the frame to
// ingress, then stamps and delivers the ack back to the sender and
// mirrors it to the sender's other platforms.
func (g *Gateway) handleInbound(ctx context.Context, sess registry.Session, msg *model.Msg) {
	res, err := g.seq.IncrSendSeq(ctx, msg.SenderID)
	if err != nil {
		g.logger.Warn("gateway: incr_send_seq failed", "sender_id", msg.SenderID, "err", err)
		errAck := &model.Msg{
			ClientID:   msg.ClientID,
			SenderID:   msg.SenderID,
			ReceiverID: msg.SenderID,
			Platform:   msg.Platform,
			MsgType:    model.MsgRecResp,
		}
		errAck.Content, _ = json.Marshal(map[string]string{"error": err.Error()})
		sess.Send(errAck)
		return
	}
	msg.SendSeq = res.Live

	ack, err := g.ingress.SendMsg(ctx, msg)
	if err != nil {
		g.logger.Warn("gateway: ingress send_msg failed", "err", err)
		return
	}

	ackMsg := &model.Msg{
		ClientID:   msg.ClientID,
		ServerID:   ack.ServerID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.SenderID,
		Platform:   msg.Platform,
		MsgType:    model.MsgRecResp,
		SendTime:   ack.SendTime,
	}
	if ack.Err != "" {
		ackMsg.Content, _ = json.Marshal(map[string]string{"error": ack.Err})
	}

	sess.Send(ackMsg)

	mirror := msg.Platform.MirrorPlatform()
	if mirror != model.PlatformUnspecified {
		g.hub.MirrorToOtherPlatforms(msg.SenderID, sess.ID(), ackMsg)
	}
}

// SendMsgToUser implements C9's send_msg_to_user internal RPC.
func (g *Gateway) SendMsgToUser(msg *model.Msg) int {
	return g.hub.SendToUser(msg)
}

// SendGroupMsgToUser implements C9's send_group_msg_to_user internal RPC.
func (g *Gateway) SendGroupMsgToUser(msg *model.Msg, members []model.GroupMemSeq) int {
	return g.hub.SendGroupToUser(msg, members)
}

// SendMessage pipes server-originated traffic into the broadcast
// channel (§4.6's third internal RPC).
func (g *Gateway) SendMessage(ctx context.Context, msg *model.Msg) error {
	select {
	case g.broadcast <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return errBroadcastFull
	}
}

// errBroadcastFull is §5's back-pressure rule: "RPCs that feed it fail
// with an internal-server error" when the broadcast channel is full.
var errBroadcastFull = errors.New("gateway: broadcast channel full")

// ID is a convenience used by handlers that need a fresh connection
// identifier before a session exists (e.g. for logging pre-auth).
func ID() uuid.UUID { return uuid.New() }
