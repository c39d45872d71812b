package server

import (
	"net/http"
	"time"

	"auction-live/internal/broadcast"
	"auction-live/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Viewer clients are public displays; origin checks are not part of
	// this service's threat model.
	CheckOrigin: func(*http.Request) bool { return true },
}

// LiveFeedHandler upgrades GET /api/ws to a WebSocket connection and
// forwards the subscriber's event stream to it. The subscription starts
// at connect time; earlier events are not replayed. A failed write or a
// closed connection unsubscribes the viewer without affecting anyone else.
func LiveFeedHandler(caster *broadcast.Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.Warn("ws: upgrade failed", map[string]any{"error": err.Error()})
			return
		}

		sub := caster.Subscribe()
		go writeEvents(conn, caster, sub)
		readUntilClosed(conn, caster, sub)
	}
}

// writeEvents pumps broadcast events to the connection until the stream
// closes or a write fails.
func writeEvents(conn *websocket.Conn, caster *broadcast.Broadcaster, sub *broadcast.Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		caster.Unsubscribe(sub)
		_ = conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				utils.Warn("ws: write failed, dropping viewer", map[string]any{
					"subscriber_id": sub.ID(),
					"error":         err.Error(),
				})
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readUntilClosed drains inbound frames so close and pong control
// messages are processed; viewers do not send application data.
func readUntilClosed(conn *websocket.Conn, caster *broadcast.Broadcaster, sub *broadcast.Subscriber) {
	defer func() {
		caster.Unsubscribe(sub)
		_ = conn.Close()
	}()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
