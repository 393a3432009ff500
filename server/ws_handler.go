package server

import (
	"context"
	"net/http"

	"partyfm/core/notify"
	"partyfm/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Party screens connect from whatever device is plugged into the TV.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler upgrades the connection and attaches it to the
// notification hub.
func (h *APIHandler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("[API] Websocket upgrade failed", logger.ErrorField(err))
		return
	}

	client := notify.NewClient(h.hub, conn)
	h.hub.Register(client)

	// The request context dies when this handler returns; the pumps outlive it.
	go client.WritePump()
	go client.ReadPump(context.Background())
}
