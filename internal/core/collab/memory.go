package collab

import "github.com/google/uuid"

var _ Handle = (*MemoryHandle)(nil)

type memorySub struct {
	id SubscriptionID
	fn func(Mutation)
}

// MemoryHandle is an in-memory Handle with insertion-ordered keys and
// synchronous notification delivery. It is the reference backend for
// tests and the authoritative per-map state on the server side.
//
// Like remote handles it is not internally synchronized; callers that
// share one across goroutines guard it themselves.
type MemoryHandle struct {
	keys    []string
	entries map[string]any
	subs    []memorySub
}

// NewMemoryHandle creates an empty in-memory handle.
func NewMemoryHandle() *MemoryHandle {
	return &MemoryHandle{entries: make(map[string]any)}
}

func (h *MemoryHandle) Get(key string) (any, bool) {
	v, ok := h.entries[key]
	return v, ok
}

func (h *MemoryHandle) Has(key string) bool {
	_, ok := h.entries[key]
	return ok
}

func (h *MemoryHandle) Keys() []string {
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Len returns the number of entries.
func (h *MemoryHandle) Len() int {
	return len(h.entries)
}

func (h *MemoryHandle) Set(key string, value any) (any, bool, error) {
	prev, existed := h.entries[key]
	h.entries[key] = value
	if !existed {
		h.keys = append(h.keys, key)
		h.notify(Mutation{Kind: MutationAdd, Key: key, NewValue: value})
		return nil, false, nil
	}
	if !valueEqual(prev, value) {
		h.notify(Mutation{Kind: MutationUpdate, Key: key, OldValue: prev, NewValue: value})
	}
	return prev, true, nil
}

func (h *MemoryHandle) Delete(key string) (any, bool, error) {
	prev, existed := h.entries[key]
	if !existed {
		return nil, false, nil
	}
	delete(h.entries, key)
	for i, k := range h.keys {
		if k == key {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
	h.notify(Mutation{Kind: MutationRemove, Key: key, OldValue: prev})
	return prev, true, nil
}

func (h *MemoryHandle) Clear() error {
	keys := h.Keys()
	for _, k := range keys {
		_, _, _ = h.Delete(k)
	}
	return nil
}

func (h *MemoryHandle) Subscribe(fn func(Mutation)) SubscriptionID {
	id := SubscriptionID(uuid.NewString())
	h.subs = append(h.subs, memorySub{id: id, fn: fn})
	return id
}

func (h *MemoryHandle) Unsubscribe(id SubscriptionID) {
	for i, sub := range h.subs {
		if sub.id == id {
			h.subs = append(h.subs[:i], h.subs[i+1:]...)
			return
		}
	}
}

func (h *MemoryHandle) notify(m Mutation) {
	for _, sub := range h.subs {
		sub.fn(m)
	}
}
