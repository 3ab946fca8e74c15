package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"

	"github.com/webitel/im-delivery-service/config"
	wshandler "github.com/webitel/im-delivery-service/internal/handler/ws"
)

// runHTTPLifecycle mounts the WebSocket upgrade route on a chi router
// and opens/drains it alongside the gateway's gRPC listener.
func runHTTPLifecycle(lc fx.Lifecycle, h *wshandler.Handler, ws config.WebsocketConfig, logger *slog.Logger) {
	r := chi.NewRouter()
	h.Mount(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", ws.Host, ws.Port),
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("ws: serving", "addr", srv.Addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("ws: serve exited", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
