// README: WebSocket feed; streams the latest stack view to the driver app on every change.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"offerstack/internal/modules/offer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The driver app is a native client without a stable Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type FeedHandler struct {
	runner *offer.Runner
	log    *slog.Logger
}

func NewFeedHandler(runner *offer.Runner, log *slog.Logger) *FeedHandler {
	if log == nil {
		log = slog.Default()
	}
	return &FeedHandler{runner: runner, log: log.With("component", "offer_feed")}
}

// Serve sends the current view right away, then one message per change.
// Inbound frames are only read to notice pongs and the close handshake.
func (h *FeedHandler) Serve(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", "err", err)
		return
	}
	defer conn.Close()

	views, unsubscribe := h.runner.Subscribe()
	defer unsubscribe()

	first, err := h.runner.Snapshot(c.Request.Context())
	if err != nil {
		return
	}
	if err := writeView(conn, first); err != nil {
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case v := <-views:
			if err := writeView(conn, v); err != nil {
				h.log.Debug("feed write", "err", err)
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeView(conn *websocket.Conn, v offer.View) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
