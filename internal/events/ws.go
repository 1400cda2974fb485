package events

import (
	"net/http"
	"slices"
	"time"

	"github.com/celerix-dev/mobidash/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WSHandler streams hub events to websocket clients as JSON text messages.
type WSHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewWSHandler creates a handler accepting the given origins; "*" accepts any.
func NewWSHandler(hub *Hub, origins []string) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
			},
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := logging.FromContext(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sub := h.hub.Subscribe()
	defer sub.Close()

	// The read loop only handles control frames; it ends when the client goes away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
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
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	l.Debug().Msg("event stream opened")
	for {
		select {
		case e, ok := <-sub.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				l.Debug().Err(err).Msg("event stream write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-gone:
			l.Debug().Msg("event stream closed by client")
			return
		case <-r.Context().Done():
			return
		}
	}
}
