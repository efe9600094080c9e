package protocol

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zeusync/collabmap/internal/core/collab"
	"github.com/zeusync/collabmap/internal/core/observability/log"
)

// Wire is a single framed client connection to a map server. Send and
// Close must be safe for concurrent use; Recv is called from one
// goroutine only.
type Wire interface {
	Send(Message) error
	Recv() (Message, error)
	Close() error
}

var _ collab.Handle = (*RemoteHandle)(nil)

type remoteSub struct {
	id collab.SubscriptionID
	fn func(collab.Mutation)
}

// RemoteHandle is a collab.Handle backed by a map server reached over
// a Wire. It keeps an insertion-ordered local replica of the hosted
// map: reads are answered from the replica, writes are sent to the
// server, and the server's echo is the single source of notifications.
// All notifications are delivered on the handle's read-loop goroutine.
type RemoteHandle struct {
	wire    Wire
	mapName string
	logger  log.Log

	mu      sync.RWMutex
	keys    []string
	entries map[string]any

	subMu sync.Mutex
	subs  []remoteSub

	sendMu sync.Mutex
	closed atomic.Bool
	done   chan struct{}
}

// NewRemoteHandle joins mapName over an established wire. It sends the
// hello, waits for the initial snapshot, then starts the read loop.
func NewRemoteHandle(w Wire, mapName string, logger log.Log) (*RemoteHandle, error) {
	if logger == nil {
		logger = log.Provide()
	}
	h := &RemoteHandle{
		wire:    w,
		mapName: mapName,
		logger:  logger.With(log.String("map", mapName)),
		entries: make(map[string]any),
		done:    make(chan struct{}),
	}

	if err := w.Send(Message{Op: OpHello, Map: mapName}); err != nil {
		return nil, errors.Wrap(err, "failed to send hello")
	}

	msg, err := w.Recv()
	if err != nil {
		return nil, errors.Wrap(err, "failed to receive snapshot")
	}
	if msg.Op != OpSnapshot {
		return nil, errors.Errorf("expected %q message, got %q", OpSnapshot, msg.Op)
	}
	for _, e := range msg.Entries {
		h.keys = append(h.keys, e.Key)
		h.entries[e.Key] = e.Value
	}

	go h.readLoop()
	return h, nil
}

// MapName returns the name of the hosted map this handle is joined to.
func (h *RemoteHandle) MapName() string { return h.mapName }

func (h *RemoteHandle) Get(key string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	v, ok := h.entries[key]
	return v, ok
}

func (h *RemoteHandle) Has(key string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.entries[key]
	return ok
}

func (h *RemoteHandle) Keys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

func (h *RemoteHandle) Set(key string, value any) (any, bool, error) {
	if h.closed.Load() {
		return nil, false, errors.New("connection is closed")
	}
	h.mu.RLock()
	prev, existed := h.entries[key]
	h.mu.RUnlock()

	if err := h.send(Message{Op: OpSet, Map: h.mapName, Key: key, Value: value}); err != nil {
		return nil, false, err
	}
	return prev, existed, nil
}

func (h *RemoteHandle) Delete(key string) (any, bool, error) {
	if h.closed.Load() {
		return nil, false, errors.New("connection is closed")
	}
	h.mu.RLock()
	prev, existed := h.entries[key]
	h.mu.RUnlock()

	if err := h.send(Message{Op: OpDelete, Map: h.mapName, Key: key}); err != nil {
		return nil, false, err
	}
	return prev, existed, nil
}

func (h *RemoteHandle) Clear() error {
	if h.closed.Load() {
		return errors.New("connection is closed")
	}
	return h.send(Message{Op: OpClear, Map: h.mapName})
}

func (h *RemoteHandle) Subscribe(fn func(collab.Mutation)) collab.SubscriptionID {
	id := collab.SubscriptionID(uuid.NewString())
	h.subMu.Lock()
	h.subs = append(h.subs, remoteSub{id: id, fn: fn})
	h.subMu.Unlock()
	return id
}

func (h *RemoteHandle) Unsubscribe(id collab.SubscriptionID) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	for i, sub := range h.subs {
		if sub.id == id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

// Close tears down the wire. The hosted map on the server is untouched.
func (h *RemoteHandle) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := h.wire.Close()
	<-h.done
	return err
}

func (h *RemoteHandle) send(msg Message) error {
	h.sendMu.Lock()
	defer h.sendMu.Unlock()
	if err := h.wire.Send(msg); err != nil {
		return errors.Wrap(err, "failed to send operation")
	}
	return nil
}

func (h *RemoteHandle) readLoop() {
	defer close(h.done)
	for {
		msg, err := h.wire.Recv()
		if err != nil {
			if !h.closed.Load() {
				h.logger.Warn("read loop terminated", log.Error(err))
			}
			return
		}
		switch msg.Op {
		case OpMutation:
			m, dErr := DecodeMutation(msg)
			if dErr != nil {
				h.logger.Warn("dropping malformed mutation", log.Error(dErr))
				continue
			}
			h.apply(m)
		case OpSnapshot:
			// Server-initiated resync; replace the replica silently.
			h.mu.Lock()
			h.keys = h.keys[:0]
			h.entries = make(map[string]any, len(msg.Entries))
			for _, e := range msg.Entries {
				h.keys = append(h.keys, e.Key)
				h.entries[e.Key] = e.Value
			}
			h.mu.Unlock()
		default:
			h.logger.Warn("dropping unexpected message", log.String("op", string(msg.Op)))
		}
	}
}

func (h *RemoteHandle) apply(m collab.Mutation) {
	h.mu.Lock()
	switch m.Kind {
	case collab.MutationAdd:
		if _, ok := h.entries[m.Key]; !ok {
			h.keys = append(h.keys, m.Key)
		}
		h.entries[m.Key] = m.NewValue
	case collab.MutationUpdate:
		h.entries[m.Key] = m.NewValue
	case collab.MutationRemove:
		delete(h.entries, m.Key)
		for i, k := range h.keys {
			if k == m.Key {
				h.keys = append(h.keys[:i], h.keys[i+1:]...)
				break
			}
		}
	}
	h.mu.Unlock()

	h.subMu.Lock()
	subs := make([]remoteSub, len(h.subs))
	copy(subs, h.subs)
	h.subMu.Unlock()
	for _, sub := range subs {
		sub.fn(m)
	}
}
