package collab

// Adapter mirrors a backend-managed collaborative map through a stable
// local event vocabulary. It owns exactly one subscription on its
// current handle, relays native mutations 1:1 as ChangeEvents, and
// reconciles handle swaps by diffing snapshots so observers never see
// a duplicated or inconsistent transition.
//
// The adapter does not own the handle; it only owns its subscription
// to it. Like the rest of the backend callback surface it is confined
// to the goroutine the handle delivers notifications on and performs
// no internal locking.
type Adapter struct {
	handle   Handle
	sub      SubscriptionID
	signal   Signal
	disposed bool
}

// NewAdapter binds an adapter to its initial handle and subscribes to
// the handle's native mutation stream. The adapter starts silent:
// entries already present produce no events, only subsequent
// mutations do.
func NewAdapter(h Handle) *Adapter {
	a := &Adapter{handle: h}
	a.sub = h.Subscribe(a.relay)
	return a
}

func (a *Adapter) relay(m Mutation) {
	if a.disposed {
		return
	}
	a.signal.emit(a, eventFromMutation(m))
}

// Get returns the value stored at key, delegating to the handle.
func (a *Adapter) Get(key string) (any, bool, error) {
	if a.disposed {
		return nil, false, ErrAdapterDisposed
	}
	v, ok := a.handle.Get(key)
	return v, ok, nil
}

// Has reports whether key is present.
func (a *Adapter) Has(key string) (bool, error) {
	if a.disposed {
		return false, ErrAdapterDisposed
	}
	return a.handle.Has(key), nil
}

// Size returns the number of entries.
func (a *Adapter) Size() (int, error) {
	if a.disposed {
		return 0, ErrAdapterDisposed
	}
	return len(a.handle.Keys()), nil
}

// Keys returns the keys in the handle's insertion order.
func (a *Adapter) Keys() ([]string, error) {
	if a.disposed {
		return nil, ErrAdapterDisposed
	}
	return a.handle.Keys(), nil
}

// Values returns the values aligned positionally with Keys.
func (a *Adapter) Values() ([]any, error) {
	if a.disposed {
		return nil, ErrAdapterDisposed
	}
	keys := a.handle.Keys()
	values := make([]any, 0, len(keys))
	for _, k := range keys {
		v, _ := a.handle.Get(k)
		values = append(values, v)
	}
	return values, nil
}

// Set writes through to the handle and returns the value previously
// stored at key. The handle's native subscription is the sole source
// of the resulting change event; the adapter synthesizes nothing for
// direct writes, so each mutation is counted exactly once.
func (a *Adapter) Set(key string, value any) (any, bool, error) {
	if a.disposed {
		return nil, false, ErrAdapterDisposed
	}
	return a.handle.Set(key, value)
}

// Delete writes through to the handle and returns the removed value.
// The change event arrives via the native subscription, as with Set.
func (a *Adapter) Delete(key string) (any, bool, error) {
	if a.disposed {
		return nil, false, ErrAdapterDisposed
	}
	return a.handle.Delete(key)
}

// Clear removes every entry. Each removal surfaces as an independent
// remove event; clearing an empty map is a no-op.
func (a *Adapter) Clear() error {
	if a.disposed {
		return ErrAdapterDisposed
	}
	return a.handle.Clear()
}

// Subscribe registers an observer on the adapter's change signal.
// Observers see only future events; there is no replay. Subscribing
// after disposal registers nothing and returns an empty token.
func (a *Adapter) Subscribe(fn Observer) SubscriptionID {
	if a.disposed {
		return ""
	}
	return a.signal.Subscribe(fn)
}

// Unsubscribe removes an observer registration.
func (a *Adapter) Unsubscribe(id SubscriptionID) {
	a.signal.Unsubscribe(id)
}

// Rebind swaps the adapter onto a different handle. The sequence is
// one logical step as seen by observers:
//
//  1. snapshot the current handle
//  2. unsubscribe from it, acting as a barrier against stale events
//  3. bind the new handle and snapshot it
//  4. emit synthetic events for the symmetric difference
//  5. subscribe to the new handle for all future mutations
//
// Keys whose value is unchanged emit nothing; the identical-snapshot
// case is detected by content digest and emits nothing at all.
func (a *Adapter) Rebind(next Handle) error {
	if a.disposed {
		return ErrAdapterDisposed
	}

	old := captureSnapshot(a.handle)
	a.handle.Unsubscribe(a.sub)

	a.handle = next
	fresh := captureSnapshot(next)

	if old.Digest() != fresh.Digest() {
		for _, e := range diffSnapshots(old, fresh) {
			a.signal.emit(a, e)
		}
	}

	a.sub = next.Subscribe(a.relay)
	return nil
}

// Close disposes the adapter: it unsubscribes from the current handle,
// releases the handle reference and disconnects all observers.
// Disposal is silent and idempotent; observers are not notified of it.
// The handle itself is backend infrastructure and is never closed here.
func (a *Adapter) Close() error {
	if a.disposed {
		return nil
	}
	a.handle.Unsubscribe(a.sub)
	a.handle = nil
	a.sub = ""
	a.disposed = true
	a.signal.reset()
	return nil
}

// IsDisposed reports whether Close has been called.
func (a *Adapter) IsDisposed() bool {
	return a.disposed
}
