package server

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/zeusync/collabmap/internal/core/observability/log"
	"github.com/zeusync/collabmap/internal/core/protocol"
	"github.com/zeusync/collabmap/internal/core/protocol/ws"
)

// WebSocketServer exposes a MapServer over a WebSocket endpoint at /ws.
type WebSocketServer struct {
	srv      *MapServer
	cfg      protocol.Config
	logger   log.Log
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

func NewWebSocketServer(srv *MapServer, cfg protocol.Config, logger log.Log) *WebSocketServer {
	if logger == nil {
		logger = log.Provide()
	}
	return &WebSocketServer{
		srv:    srv,
		cfg:    cfg,
		logger: logger.With(log.String("transport", "websocket")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
		},
	}
}

// Start serves the endpoint until the listener fails or Stop is
// called. It blocks.
func (s *WebSocketServer) Start(_ context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.httpSrv = &http.Server{Addr: s.cfg.Addr(), Handler: mux}

	s.logger.Info("websocket endpoint listening", log.String("address", s.cfg.Addr()))
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *WebSocketServer) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the upgrade handler for embedding in tests.
func (s *WebSocketServer) Handler() http.HandlerFunc {
	return s.handleWebSocket
}

func (s *WebSocketServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", log.Error(err))
		return
	}
	s.srv.HandleConnection(ws.NewWire(conn, s.cfg))
}
