package ws

import (
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/collabmap/internal/core/observability/log"
	"github.com/zeusync/collabmap/internal/core/protocol"
)

// Dial connects to a map server's WebSocket endpoint and joins the
// named map, returning a handle ready for adapter binding. The url is
// the full endpoint, e.g. "ws://127.0.0.1:8420/ws".
func Dial(url, mapName string, cfg protocol.Config, logger log.Log) (*protocol.RemoteHandle, error) {
	dialer := websocket.Dialer{
		ReadBufferSize:   cfg.ReadBufferSize,
		WriteBufferSize:  cfg.WriteBufferSize,
		HandshakeTimeout: cfg.WriteTimeout,
	}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial websocket endpoint")
	}

	handle, err := protocol.NewRemoteHandle(NewWire(conn, cfg), mapName, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return handle, nil
}
