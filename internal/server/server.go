package server

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/zeusync/collabmap/internal/core/observability/log"
	"github.com/zeusync/collabmap/internal/core/protocol"
)

// MapServer hosts named collaborative maps and serves them to any
// number of transport endpoints. Endpoints hand accepted connections
// to HandleConnection; everything transport-specific stays outside.
type MapServer struct {
	logger log.Log
	closed atomic.Bool

	mu    sync.Mutex
	rooms map[string]*Room
}

func NewMapServer(logger log.Log) *MapServer {
	if logger == nil {
		logger = log.Provide()
	}
	return &MapServer{
		logger: logger,
		rooms:  make(map[string]*Room),
	}
}

// Room returns the hosted map with the given name, creating it empty
// on first use.
func (s *MapServer) Room(name string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if room, exists := s.rooms[name]; exists {
		return room
	}
	room := newRoom(name, s.logger)
	s.rooms[name] = room
	return room
}

// HandleConnection drives one client session over an accepted wire:
// hello, snapshot, then a read loop applying write operations until
// the connection fails or the server closes. It blocks for the
// session's lifetime.
func (s *MapServer) HandleConnection(w protocol.Wire) {
	defer func() { _ = w.Close() }()

	if s.closed.Load() {
		return
	}

	msg, err := w.Recv()
	if err != nil {
		return
	}
	if msg.Op != protocol.OpHello {
		s.logger.Warn("rejecting connection", log.Error(ErrHelloExpected))
		return
	}
	mapName := msg.Map
	if mapName == "" {
		mapName = "default"
	}

	id := uuid.NewString()
	logger := s.logger.With(log.String("client", id), log.String("map", mapName))

	var sendMu sync.Mutex
	send := func(m protocol.Message) error {
		sendMu.Lock()
		defer sendMu.Unlock()
		return w.Send(m)
	}

	room := s.Room(mapName)
	if err = room.join(id, send); err != nil {
		logger.Warn("failed to deliver snapshot", log.Error(err))
		return
	}
	defer room.leave(id)

	logger.Info("client joined")
	for {
		msg, err = w.Recv()
		if err != nil {
			logger.Info("client left", log.Error(err))
			return
		}
		if err = room.apply(msg); err != nil {
			logger.Warn("rejected operation",
				log.String("op", string(msg.Op)), log.Error(err))
		}
	}
}

// Close stops accepting new sessions. Endpoint shutdown tears down the
// existing connections.
func (s *MapServer) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return ErrServerClosed
	}
	return nil
}
