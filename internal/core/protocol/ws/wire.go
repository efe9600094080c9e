// Package ws carries the collabmap wire protocol over WebSocket
// connections, one JSON message per frame.
package ws

import (
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/collabmap/internal/core/protocol"
)

var _ protocol.Wire = (*Wire)(nil)

// Wire frames protocol messages over a single WebSocket connection.
// It is used on both ends: Dial produces the client side, the server
// endpoint wraps accepted connections with NewWire.
type Wire struct {
	conn   *websocket.Conn
	cfg    protocol.Config
	closed int32
}

// NewWire wraps an established WebSocket connection.
func NewWire(conn *websocket.Conn, cfg protocol.Config) *Wire {
	if cfg.MaxMessageSize > 0 {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}
	return &Wire{conn: conn, cfg: cfg}
}

func (w *Wire) Send(msg protocol.Message) error {
	if atomic.LoadInt32(&w.closed) == 1 {
		return errors.New("connection is closed")
	}
	if w.cfg.WriteTimeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.cfg.WriteTimeout))
	}
	if err := w.conn.WriteJSON(msg); err != nil {
		return errors.Wrap(err, "failed to write message")
	}
	return nil
}

func (w *Wire) Recv() (protocol.Message, error) {
	var msg protocol.Message
	if err := w.conn.ReadJSON(&msg); err != nil {
		return protocol.Message{}, errors.Wrap(err, "failed to read message")
	}
	return msg, nil
}

func (w *Wire) Close() error {
	if !atomic.CompareAndSwapInt32(&w.closed, 0, 1) {
		return nil
	}
	return w.conn.Close()
}
