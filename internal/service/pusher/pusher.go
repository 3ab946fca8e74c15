// Package pusher implements C9: fan a delivered message out to every
// gateway instance, dropping destinations that fail (messages are
// already durable in the inbox — §4.5's rationale).
package pusher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/webitel/im-delivery-service/internal/domain/model"
	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
	msgv1 "github.com/webitel/im-delivery-service/pb/msg/v1"
)

// GatewayClient is the subset of msgv1.MsgClient the pusher drives.
type GatewayClient = msgv1.MsgClient

// Discovery streams Insert/Remove deltas for the gateway service name
// (C1, §4.7). Dial is left to the caller's Insert implementation so
// pusher stays transport-agnostic about how a client is constructed.
type Discovery interface {
	Subscribe(ctx context.Context, serviceName string) (<-chan Delta, error)
}

// Delta is one membership change in the discovered gateway set.
type Delta struct {
	Insert bool
	Addr   string
	Client GatewayClient
}

type breakerClient struct {
	client  GatewayClient
	breaker *gobreaker.CircuitBreaker
}

// Pusher maintains remote_address -> client, driven by discovery.
type Pusher struct {
	mu      sync.RWMutex
	clients map[string]*breakerClient
	logger  *slog.Logger
}

func New(logger *slog.Logger) *Pusher {
	return &Pusher{clients: make(map[string]*breakerClient), logger: logger}
}

// Watch consumes a discovery stream and keeps the local map current
// until ctx is cancelled.
func (p *Pusher) Watch(ctx context.Context, deltas <-chan Delta) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deltas:
			if !ok {
				return
			}
			if d.Insert {
				p.insert(d.Addr, d.Client)
			} else {
				p.remove(d.Addr)
			}
		}
	}
}

func (p *Pusher) insert(addr string, client GatewayClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[addr] = &breakerClient{
		client: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "pusher->" + addr,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool { return c.ConsecutiveFailures >= 5 },
		}),
	}
}

func (p *Pusher) remove(addr string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.clients, addr)
}

func (p *Pusher) snapshot() map[string]*breakerClient {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]*breakerClient, len(p.clients))
	for k, v := range p.clients {
		out[k] = v
	}
	return out
}

func toWire(msg *model.Msg) *commonv1.Msg {
	return &commonv1.Msg{
		ClientId:     msg.ClientID,
		ServerId:     msg.ServerID,
		SenderId:     msg.SenderID,
		ReceiverId:   msg.ReceiverID,
		GroupId:      msg.GroupID,
		Platform:     commonv1.Platform(msg.Platform),
		MsgType:      commonv1.MsgType(msg.MsgType),
		ContentType:  commonv1.ContentType(msg.ContentType),
		Content:      msg.Content,
		SendTime:     msg.SendTime,
		SendSeq:      msg.SendSeq,
		Seq:          msg.Seq,
		IsRead:       msg.IsRead,
		RelatedMsgId: msg.RelatedMsgID,
	}
}

// PushSingleMsg is §4.5's push_single_msg: one call per current
// client, in parallel, dropping any peer that errors.
func (p *Pusher) PushSingleMsg(ctx context.Context, msg *model.Msg) error {
	wire := toWire(msg)
	g, gCtx := errgroup.WithContext(ctx)
	for addr, bc := range p.snapshot() {
		addr, bc := addr, bc
		g.Go(func() error {
			_, err := bc.breaker.Execute(func() (any, error) {
				return bc.client.SendMsgToUser(gCtx, &msgv1.SendMsgRequest{Message: wire})
			})
			if err != nil {
				p.logger.Warn("pusher: single push failed, dropping peer", "addr", addr, "err", err)
				p.remove(addr)
			}
			return nil
		})
	}
	return g.Wait()
}

// PushGroupMsg is §4.5's push_group_msg: same fan-out, request
// carries the batched []GroupMemSeq.
func (p *Pusher) PushGroupMsg(ctx context.Context, msg *model.Msg, members []model.GroupMemSeq) error {
	wire := toWire(msg)
	wireMembers := make([]*commonv1.GroupMemSeq, len(members))
	for i, m := range members {
		wireMembers[i] = &commonv1.GroupMemSeq{MemId: m.MemID, CurSeq: m.CurSeq, NeedUpdate: m.NeedUpdate}
	}

	g, gCtx := errgroup.WithContext(ctx)
	for addr, bc := range p.snapshot() {
		addr, bc := addr, bc
		g.Go(func() error {
			_, err := bc.breaker.Execute(func() (any, error) {
				return bc.client.SendGroupMsgToUser(gCtx, &msgv1.SendGroupMsgRequest{Message: wire, Members: wireMembers})
			})
			if err != nil {
				p.logger.Warn("pusher: group push failed, dropping peer", "addr", addr, "err", err)
				p.remove(addr)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("pusher: push_group_msg: %w", err)
	}
	return nil
}
