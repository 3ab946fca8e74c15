// Package ws upgrades the HTTP connection named in §6's gateway
// endpoint (`/ws/{user_id}/conn/{platform_id}/{platform}/{token}`)
// into a WebSocket and hands it to the gateway service (C10).
package ws

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/webitel/im-delivery-service/internal/domain/model"
	"github.com/webitel/im-delivery-service/internal/service/gateway"
)

type Handler struct {
	logger   *slog.Logger
	gateway  *gateway.Gateway
	upgrader websocket.Upgrader
}

func NewHandler(logger *slog.Logger, gw *gateway.Gateway) *Handler {
	return &Handler{
		logger:  logger,
		gateway: gw,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) Mount(r chi.Router) {
	r.Get("/ws/{user_id}/conn/{platform_id}/{platform}/{token}", h.ServeHTTP)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user_id")
	platformRaw, err := strconv.Atoi(chi.URLParam(r, "platform"))
	if err != nil {
		http.Error(w, "invalid platform", http.StatusBadRequest)
		return
	}
	token := chi.URLParam(r, "token")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("ws: upgrade failed", "err", err)
		return
	}

	h.gateway.Accept(r.Context(), conn, gateway.ConnectParams{
		UserID:   userID,
		Platform: model.Platform(platformRaw),
		Token:    token,
	})
}
