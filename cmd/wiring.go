package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/fx"
	"google.golang.org/grpc"

	"github.com/webitel/im-delivery-service/config"
	"github.com/webitel/im-delivery-service/infra/transport/subset"
	"github.com/webitel/im-delivery-service/internal/domain/model"
	"github.com/webitel/im-delivery-service/internal/service/gateway"
	"github.com/webitel/im-delivery-service/internal/service/pusher"
	"github.com/webitel/im-delivery-service/internal/transport/discovery"
	chatv1 "github.com/webitel/im-delivery-service/pb/chat/v1"
	commonv1 "github.com/webitel/im-delivery-service/pb/common/v1"
	msgv1 "github.com/webitel/im-delivery-service/pb/msg/v1"
)

// gatewayDiscovery adapts the registry's generic Insert/Remove delta
// stream onto pusher.Discovery: it dials each newly discovered
// gateway instance and hands the pusher an already-usable MsgClient.
type gatewayDiscovery struct {
	registry *discovery.Registry
	channel  *discovery.Channel
}

func newGatewayDiscovery(registry *discovery.Registry) *gatewayDiscovery {
	return &gatewayDiscovery{registry: registry, channel: discovery.NewChannel()}
}

func (g *gatewayDiscovery) Subscribe(ctx context.Context, serviceName string) (<-chan pusher.Delta, error) {
	in := g.registry.Subscribe(ctx, serviceName)
	out := make(chan pusher.Delta)
	go g.channel.Run(ctx, in,
		func(addr string, conn *grpc.ClientConn) {
			select {
			case out <- pusher.Delta{Insert: true, Addr: addr, Client: msgv1.NewMsgClient(conn)}:
			case <-ctx.Done():
			}
		},
		func(addr string) {
			select {
			case out <- pusher.Delta{Insert: false, Addr: addr}:
			case <-ctx.Done():
			}
		},
	)
	return out, nil
}

// ringAddr is a discovered instance address as a consistent.Member: a
// comparable string with a String() method, nothing more.
type ringAddr string

func (a ringAddr) String() string { return string(a) }

// chatIngress adapts the discovered C7 instance set onto
// gateway.Ingress (C2, §4.7): it watches the Chat service name and,
// per call, consistent-hashes on the sender so repeat traffic from
// one sender keeps landing on the same ingress replica instead of
// round-robining across all of them.
type chatIngress struct {
	mu      sync.RWMutex
	clients map[string]chatv1.ChatClient
}

func newChatIngress(lc fx.Lifecycle, reg *discovery.Registry, cfg *config.Config, logger *slog.Logger) *chatIngress {
	ci := &chatIngress{clients: make(map[string]chatv1.ChatClient)}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			bgCtx, cancel := context.WithCancel(context.Background())
			deltas := reg.Subscribe(bgCtx, cfg.RPC.Chat.Name)
			channel := discovery.NewChannel()
			go channel.Run(bgCtx, deltas,
				func(addr string, conn *grpc.ClientConn) {
					ci.mu.Lock()
					ci.clients[addr] = chatv1.NewChatClient(conn)
					ci.mu.Unlock()
					logger.Info("chat ingress: discovered", "addr", addr)
				},
				func(addr string) {
					ci.mu.Lock()
					delete(ci.clients, addr)
					ci.mu.Unlock()
					logger.Info("chat ingress: lost", "addr", addr)
				},
			)
			lc.Append(fx.Hook{OnStop: func(context.Context) error { cancel(); return nil }})
			return nil
		},
	})
	return ci
}

func (c *chatIngress) pick(key string) (chatv1.ChatClient, error) {
	c.mu.RLock()
	addrs := make([]ringAddr, 0, len(c.clients))
	for addr := range c.clients {
		addrs = append(addrs, ringAddr(addr))
	}
	c.mu.RUnlock()
	if len(addrs) == 0 {
		return nil, fmt.Errorf("cmd: no chat ingress instance discovered")
	}

	picked := subset.Subset(key, addrs, 1)

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clients[string(picked[0])], nil
}

func (c *chatIngress) SendMsg(ctx context.Context, msg *model.Msg) (gateway.ServerAck, error) {
	client, err := c.pick(msg.SenderID)
	if err != nil {
		return gateway.ServerAck{}, err
	}
	res, err := client.SendMsg(ctx, &chatv1.SendMsgRequest{Message: toWireMsg(msg)})
	if err != nil {
		return gateway.ServerAck{}, err
	}
	return gateway.ServerAck{ServerID: res.ServerId, SendTime: res.SendTime, Err: res.Err}, nil
}

func toWireMsg(m *model.Msg) *commonv1.Msg {
	return &commonv1.Msg{
		ClientId:     m.ClientID,
		ServerId:     m.ServerID,
		SenderId:     m.SenderID,
		ReceiverId:   m.ReceiverID,
		GroupId:      m.GroupID,
		Platform:     commonv1.Platform(m.Platform),
		MsgType:      commonv1.MsgType(m.MsgType),
		ContentType:  commonv1.ContentType(m.ContentType),
		Content:      m.Content,
		SendTime:     m.SendTime,
		SendSeq:      m.SendSeq,
		Seq:          m.Seq,
		IsRead:       m.IsRead,
		RelatedMsgId: m.RelatedMsgID,
	}
}
