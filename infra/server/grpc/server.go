// Package grpc builds the shared *grpc.Server the gateway, ingress,
// pusher and db roles mount their own service onto, wired with
// the stream-auth interceptor and an fx lifecycle hook that opens the
// listener on Start and drains connections on Stop.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/fx"
	"google.golang.org/grpc"

	"github.com/webitel/im-delivery-service/config"
	"github.com/webitel/im-delivery-service/infra/server/grpc/interceptors"
	"github.com/webitel/im-delivery-service/internal/service"
)

func NewServer(auther service.Auther) *grpc.Server {
	return grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(),
			interceptors.NewStreamAuthInterceptor(auther),
		),
	)
}

// Lifecycle registers an fx.Hook that opens endpoint's listener on
// Start and calls GracefulStop on Stop. Roles call this once, after
// RegisterXServer has mounted their service(s).
func Lifecycle(lc fx.Lifecycle, srv *grpc.Server, endpoint config.RPCEndpoint, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := fmt.Sprintf("%s:%d", endpoint.Host, endpoint.Port)
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("grpc: listen %s: %w", addr, err)
			}
			logger.Info("grpc: serving", "name", endpoint.Name, "addr", addr)
			go func() {
				if err := srv.Serve(lis); err != nil {
					logger.Error("grpc: serve exited", "name", endpoint.Name, "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				srv.GracefulStop()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				srv.Stop()
				return ctx.Err()
			}
		},
	})
}
