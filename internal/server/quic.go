package server

import (
	"context"

	"github.com/pkg/errors"
	"github.com/quic-go/quic-go"

	"github.com/zeusync/collabmap/internal/core/observability/log"
	"github.com/zeusync/collabmap/internal/core/protocol"
	"github.com/zeusync/collabmap/internal/core/protocol/quicmap"
)

// QUICServer exposes a MapServer over a QUIC endpoint, one session
// stream per connection.
type QUICServer struct {
	srv      *MapServer
	cfg      protocol.Config
	logger   log.Log
	listener *quic.Listener
}

func NewQUICServer(srv *MapServer, cfg protocol.Config, logger log.Log) *QUICServer {
	if logger == nil {
		logger = log.Provide()
	}
	return &QUICServer{
		srv:    srv,
		cfg:    cfg,
		logger: logger.With(log.String("transport", "quic")),
	}
}

// Start binds the listener and accepts connections until it closes.
// It blocks.
func (s *QUICServer) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds the configured address.
func (s *QUICServer) Listen() error {
	tlsConf, err := quicmap.ServerTLSConfig(s.cfg)
	if err != nil {
		return errors.Wrap(err, "failed to create TLS config")
	}

	listener, err := quic.ListenAddr(s.cfg.Addr(), tlsConf, &quic.Config{})
	if err != nil {
		return errors.Wrap(err, "failed to start QUIC listener")
	}
	s.listener = listener
	s.logger.Info("quic endpoint listening", log.String("address", listener.Addr().String()))
	return nil
}

// Serve accepts connections on a bound listener until it closes.
func (s *QUICServer) Serve(ctx context.Context) error {
	listener := s.listener
	for {
		conn, aErr := listener.Accept(ctx)
		if aErr != nil {
			if ctx.Err() != nil {
				return nil
			}
			return aErr
		}
		go s.handleConnection(ctx, conn)
	}
}

func (s *QUICServer) Stop(_ context.Context) error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// Addr returns the bound listener address, useful when port 0 was
// configured.
func (s *QUICServer) Addr() string {
	if s.listener == nil {
		return s.cfg.Addr()
	}
	return s.listener.Addr().String()
}

func (s *QUICServer) handleConnection(ctx context.Context, conn *quic.Conn) {
	stream, err := conn.AcceptStream(ctx)
	if err != nil {
		s.logger.Warn("failed to accept stream", log.Error(err))
		_ = conn.CloseWithError(0, "no stream")
		return
	}
	s.srv.HandleConnection(quicmap.NewWire(conn, stream))
}
