package ws

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"

	"care-chat/contract"
)

// client is one upgraded connection. The read pump turns inbound frames
// into relay commands; the write pump drains the sink back to the socket.
// Separating the two avoids head-of-line blocking on a slow browser.
type client struct {
	userID string
	conn   *websocket.Conn
	sink   *Sink
	relay  contract.Dispatcher
	log    *slog.Logger
}

// readPump blocks until the transport signals closure, then triggers the
// disconnect handler. A frame that fails to decode is dropped with a log
// entry; it never tears the connection down.
func (c *client) readPump() {
	defer func() {
		c.relay.Disconnect(c.userID, c.sink)
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.log.Debug("Read loop ended", "user_id", c.userID, "error", err)
			return
		}
		cmd, err := DecodeCommand(c.userID, raw)
		if err != nil {
			c.log.Warn("Dropping inbound frame", "user_id", c.userID, "error", err)
			continue
		}
		c.relay.Dispatch(cmd)
	}
}

// writePump serializes relay events onto the socket until the connection
// context is canceled.
func (c *client) writePump(ctx context.Context) {
	defer func() { _ = c.conn.Close() }()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case evt := <-c.sink.Events:
			frame, err := EncodeEvent(evt)
			if err != nil {
				c.log.Error("Failed to encode event", "event", evt.Name(), "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.log.Debug("Write loop ended", "user_id", c.userID, "error", err)
				return
			}
		}
	}
}
