package hub

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	sendBuffer   = 16
	writeTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Surfaces connect from kiosk hardware on the local network; the API
	// carries no credentials, so origin checks add nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and pumps hub broadcasts to the peer until it
// disconnects. Inbound frames are read and discarded; the broadcast channel
// is one-directional from the store's point of view.
func ServeWS(h *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{ID: uuid.NewString(), Send: make(chan []byte, sendBuffer)}
	h.Register(client)
	h.logger.Info("surface connected", zap.String("client", client.ID))

	go func() {
		defer conn.Close()
		for payload := range client.Send {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.Unregister(client)
	h.logger.Info("surface disconnected", zap.String("client", client.ID))
}
