package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"google.golang.org/grpc"

	"github.com/webitel/im-delivery-service/config"
	infrapubsub "github.com/webitel/im-delivery-service/infra/pubsub"
	grpcsrv "github.com/webitel/im-delivery-service/infra/server/grpc"
	pubsubadapter "github.com/webitel/im-delivery-service/internal/adapter/pubsub"
	"github.com/webitel/im-delivery-service/internal/cache/seqcache"
	"github.com/webitel/im-delivery-service/internal/domain/registry"
	grpchandler "github.com/webitel/im-delivery-service/internal/handler/grpc"
	wshandler "github.com/webitel/im-delivery-service/internal/handler/ws"
	"github.com/webitel/im-delivery-service/internal/service"
	"github.com/webitel/im-delivery-service/internal/service/consumer"
	"github.com/webitel/im-delivery-service/internal/service/gateway"
	"github.com/webitel/im-delivery-service/internal/service/ingress"
	"github.com/webitel/im-delivery-service/internal/service/members"
	"github.com/webitel/im-delivery-service/internal/service/pusher"
	"github.com/webitel/im-delivery-service/internal/store/checkpoint"
	"github.com/webitel/im-delivery-service/internal/store/groups"
	"github.com/webitel/im-delivery-service/internal/store/history"
	"github.com/webitel/im-delivery-service/internal/store/inbox"
	"github.com/webitel/im-delivery-service/internal/transport/discovery"
	"github.com/webitel/im-delivery-service/internal/transport/kafka"
	chatv1 "github.com/webitel/im-delivery-service/pb/chat/v1"
	dbv1 "github.com/webitel/im-delivery-service/pb/db/v1"
	msgv1 "github.com/webitel/im-delivery-service/pb/msg/v1"
	pushv1 "github.com/webitel/im-delivery-service/pb/push/v1"
)

const registrationTTL = 15 * time.Second

// registerSelf wires one fx.Hook that registers endpoint in the
// service registry on Start, heartbeats it for the process lifetime,
// and deregisters on Stop (§4.7).
func registerSelf(lc fx.Lifecycle, reg *discovery.Registry, endpoint config.RPCEndpoint, logger *slog.Logger) {
	id := endpoint.Name + "-" + uuid.NewString()
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			inst := discovery.Instance{ServiceName: endpoint.Name, ID: id, Address: endpoint.Host, Port: endpoint.Port}
			if err := reg.RegisterService(ctx, inst, registrationTTL); err != nil {
				return fmt.Errorf("cmd: register %s: %w", endpoint.Name, err)
			}
			logger.Info("discovery: registered", "service", endpoint.Name, "id", id)
			var hbCtx context.Context
			hbCtx, cancel = context.WithCancel(context.Background())
			go reg.Heartbeat(hbCtx, id, registrationTTL/3)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			return reg.DeregisterService(id)
		},
	})
}

// watchGateways starts p.Watch against the discovered gateway set
// (§4.7's Ws-endpoint service name) for the process lifetime.
func watchGateways(lc fx.Lifecycle, cfg *config.Config, p *pusher.Pusher, gd *gatewayDiscovery) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			bgCtx, cancel := context.WithCancel(context.Background())
			deltas, err := gd.Subscribe(bgCtx, cfg.Websocket.Name)
			if err != nil {
				cancel()
				return err
			}
			go p.Watch(bgCtx, deltas)
			lc.Append(fx.Hook{OnStop: func(context.Context) error { cancel(); return nil }})
			return nil
		},
	})
}

// provideAuther builds the JWT bearer verifier from config.ServerConfig
// (§4.6). Every role that terminates client or peer auth depends on
// service.Auther, not the concrete JWTAuther, so swapping verifiers
// later only touches this one constructor.
func provideAuther(cfg *config.Config) *service.JWTAuther {
	return service.NewJWTAuther(cfg.Server.JWTSecret)
}

func ProvidePubSub(cfg *config.Config, logger *slog.Logger) *infrapubsub.Provider {
	return infrapubsub.NewProvider(cfg.AMQP.URI, logger)
}

func provideEventDispatcher(cfg *config.Config, provider *infrapubsub.Provider, logger *slog.Logger) (pubsubadapter.EventDispatcher, error) {
	pp := pubsubadapter.NewPublisherProvider(provider)
	pub, err := pp.Build(cfg.AMQP.Exchange)
	if err != nil {
		return nil, fmt.Errorf("cmd: build publisher: %w", err)
	}
	return pubsubadapter.NewEventDispatcher(pub, logger), nil
}

// NewIngressApp wires C7: the Chat.SendMsg RPC surface over a durable
// Kafka producer (§4.1).
func NewIngressApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideKafkaProducerConfig,
			ProvideDiscoveryRegistry,
			fx.Annotate(kafka.NewProducer, fx.As(new(ingress.Publisher))),
			ingress.New,
			grpchandler.NewChatServer,
			fx.Annotate(provideAuther, fx.As(new(service.Auther))),
			grpcsrv.NewServer,
		),
		fx.Invoke(func(srv *grpc.Server, chat *grpchandler.ChatServer) {
			chatv1.RegisterChatServer(srv, chat)
		}),
		fx.Invoke(func(lc fx.Lifecycle, reg *discovery.Registry, logger *slog.Logger) {
			registerSelf(lc, reg, cfg.RPC.Chat, logger)
		}),
		fx.Invoke(func(srv *grpc.Server, lc fx.Lifecycle, logger *slog.Logger) {
			grpcsrv.Lifecycle(lc, srv, cfg.RPC.Chat, logger)
		}),
	)
}

// NewConsumerApp wires C8: drain the topic, allocate sequences,
// persist, push (§4.2). The pusher is co-located in-process (§4.5's
// "when the two run together") and reaches every gateway instance
// through the same discovery registry the dedicated pusher role uses.
func NewConsumerApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvidePostgresPool,
			ProvideMongoDatabase,
			ProvideRedisClient,
			ProvideSeqCache,
			ProvideKafkaConsumerConfig,
			ProvideDiscoveryRegistry,
			ProvidePubSub,
			provideEventDispatcher,
			checkpoint.New,
			history.New,
			inbox.New,
			groups.New,
			members.New,
			pusher.New,
			newGatewayDiscovery,
			newAuditingPusher,
			fx.Annotate(
				func(m *members.Cache) consumer.GroupMembers { return m },
				fx.As(new(consumer.GroupMembers)),
			),
			fx.Annotate(
				func(p *auditingPusher) consumer.Pusher { return p },
				fx.As(new(consumer.Pusher)),
			),
			consumer.New,
		),
		fx.Invoke(watchGateways),
		fx.Invoke(func(lc fx.Lifecycle, cc kafka.ConsumerConfig, svc *consumer.Service, logger *slog.Logger) error {
			c, err := kafka.NewConsumer(cc, svc.Handle, logger)
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					go func() {
						if err := c.Run(context.Background()); err != nil {
							logger.Error("consumer: run exited", "err", err)
						}
					}()
					return nil
				},
				OnStop: func(context.Context) error {
					c.Close()
					return nil
				},
			})
			return nil
		}),
	)
}

// NewPusherApp wires C9 as a standalone deployable role serving the
// Push RPC surface (§4.5). No other role in this repository dials it:
// the consumer app runs its own in-process pusher.
func NewPusherApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideDiscoveryRegistry,
			pusher.New,
			newGatewayDiscovery,
			grpchandler.NewPushServer,
			fx.Annotate(provideAuther, fx.As(new(service.Auther))),
			grpcsrv.NewServer,
		),
		fx.Invoke(watchGateways),
		fx.Invoke(func(srv *grpc.Server, push *grpchandler.PushServer) {
			pushv1.RegisterPushServer(srv, push)
		}),
		fx.Invoke(func(lc fx.Lifecycle, reg *discovery.Registry, logger *slog.Logger) {
			registerSelf(lc, reg, cfg.RPC.Pusher, logger)
		}),
		fx.Invoke(func(srv *grpc.Server, lc fx.Lifecycle, logger *slog.Logger) {
			grpcsrv.Lifecycle(lc, srv, cfg.RPC.Pusher, logger)
		}),
	)
}

// NewGatewayApp wires C10: a WebSocket session hub, authenticated
// against §4.6's JWT contract, addressed by C9 through the Msg RPC
// surface and forwarding locally-originated traffic to C7 through a
// discovery-backed Chat client that consistent-hashes on the sender.
func NewGatewayApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideDiscoveryRegistry,
			ProvideRedisClient,
			ProvideSeqCache,
			fx.Annotate(func(c *seqcache.Cache) gateway.SeqCache { return c }, fx.As(new(gateway.SeqCache))),
			fx.Annotate(provideAuther, fx.As(new(service.Auther))),
			registry.NewHub,
			fx.Annotate(func(h *registry.Hub) registry.Hubber { return h }, fx.As(new(registry.Hubber))),
			fx.Annotate(newChatIngress, fx.As(new(gateway.Ingress))),
			gateway.New,
			grpchandler.NewMsgServer,
			grpcsrv.NewServer,
			wshandler.NewHandler,
		),
		fx.Invoke(func(srv *grpc.Server, msg *grpchandler.MsgServer) {
			msgv1.RegisterMsgServer(srv, msg)
		}),
		fx.Invoke(func(lc fx.Lifecycle, reg *discovery.Registry, logger *slog.Logger) {
			registerSelf(lc, reg, cfg.RPC.Ws, logger)
		}),
		fx.Invoke(func(srv *grpc.Server, lc fx.Lifecycle, logger *slog.Logger) {
			grpcsrv.Lifecycle(lc, srv, cfg.RPC.Ws, logger)
		}),
		fx.Invoke(func(lc fx.Lifecycle, h *wshandler.Handler, logger *slog.Logger) {
			runHTTPLifecycle(lc, h, cfg.Websocket, logger)
		}),
	)
}

// NewDbApp wires C5/C6/C11 behind the DbService RPC surface, for
// deployments that run persistence as its own role rather than
// co-located with the consumer (§6).
func NewDbApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvidePostgresPool,
			ProvideMongoDatabase,
			ProvideRedisClient,
			ProvideSeqCache,
			ProvideDiscoveryRegistry,
			history.New,
			inbox.New,
			groups.New,
			members.New,
			grpchandler.NewDbServiceServer,
			grpcsrv.NewServer,
			fx.Annotate(provideAuther, fx.As(new(service.Auther))),
		),
		fx.Invoke(func(srv *grpc.Server, db *grpchandler.DbServiceServer) {
			dbv1.RegisterDbServiceServer(srv, db)
		}),
		fx.Invoke(func(lc fx.Lifecycle, reg *discovery.Registry, logger *slog.Logger) {
			registerSelf(lc, reg, cfg.RPC.Db, logger)
		}),
		fx.Invoke(func(srv *grpc.Server, lc fx.Lifecycle, logger *slog.Logger) {
			grpcsrv.Lifecycle(lc, srv, cfg.RPC.Db, logger)
		}),
	)
}
