package server

import (
	"sync"

	"github.com/zeusync/collabmap/internal/core/collab"
	"github.com/zeusync/collabmap/internal/core/observability/log"
	"github.com/zeusync/collabmap/internal/core/protocol"
)

// Room is one hosted map and the set of connections joined to it. The
// authoritative state is a MemoryHandle; every applied operation is
// echoed to all members through the handle's own notification stream,
// the writer included, so clients have a single event source.
type Room struct {
	name   string
	logger log.Log

	mu      sync.Mutex
	handle  *collab.MemoryHandle
	clients map[string]func(protocol.Message) error
}

func newRoom(name string, logger log.Log) *Room {
	r := &Room{
		name:    name,
		logger:  logger.With(log.String("map", name)),
		handle:  collab.NewMemoryHandle(),
		clients: make(map[string]func(protocol.Message) error),
	}
	r.handle.Subscribe(func(m collab.Mutation) {
		r.broadcastLocked(protocol.EncodeMutation(r.name, m))
	})
	return r
}

// join registers a connection and hands it the current snapshot. The
// snapshot and membership change happen under the room lock, so no
// broadcast can slip between them.
func (r *Room) join(id string, send func(protocol.Message) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := send(protocol.EncodeSnapshot(r.name, r.handle)); err != nil {
		return err
	}
	r.clients[id] = send
	return nil
}

func (r *Room) leave(id string) {
	r.mu.Lock()
	delete(r.clients, id)
	r.mu.Unlock()
}

// apply executes one client write against the authoritative handle.
// Resulting mutations broadcast synchronously via the handle
// subscription while the lock is held.
func (r *Room) apply(msg protocol.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch msg.Op {
	case protocol.OpSet:
		_, _, err := r.handle.Set(msg.Key, msg.Value)
		return err
	case protocol.OpDelete:
		_, _, err := r.handle.Delete(msg.Key)
		return err
	case protocol.OpClear:
		return r.handle.Clear()
	default:
		return ErrInvalidOperation
	}
}

// broadcastLocked runs inside apply's critical section via the handle
// subscription; it must not take r.mu.
func (r *Room) broadcastLocked(msg protocol.Message) {
	for id, send := range r.clients {
		if err := send(msg); err != nil {
			r.logger.Warn("dropping unreachable client",
				log.String("client", id), log.Error(err))
			delete(r.clients, id)
		}
	}
}
