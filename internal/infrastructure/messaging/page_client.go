package messaging

import (
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// Serve registers client and pumps events to its connection until either side
// closes. It blocks, so call it from the upgrading handler.
func (b *PageEventBroadcaster) Serve(client *PageClient, pingInterval time.Duration) {
	if !b.Register(client) {
		client.Conn.Close()
		return
	}
	go b.writePump(client, pingInterval)
	b.readPump(client, pingInterval)
}

// readPump discards inbound messages; it exists to process control frames and
// notice disconnects.
func (b *PageEventBroadcaster) readPump(client *PageClient, pingInterval time.Duration) {
	defer func() {
		b.Unregister(client)
		client.Conn.Close()
	}()

	pongWait := pingInterval * 2
	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logger.Realtime().Warn("Page client closed unexpectedly", "pageKey", client.PageKey, "error", err)
			}
			return
		}
	}
}

func (b *PageEventBroadcaster) writePump(client *PageClient, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
