package collab

import "github.com/google/uuid"

// Observer receives change events from the adapter that owns the
// signal. The sender is passed alongside the event so one observer
// function can serve several adapters.
type Observer func(sender *Adapter, event ChangeEvent)

type signalSub struct {
	id SubscriptionID
	fn Observer
}

// Signal is a fan-out broadcaster for ChangeEvents. Delivery is
// synchronous and in registration order; there is no replay, so a new
// observer sees only events emitted after it subscribed.
//
// Signal state is owned by a single adapter and confined to the
// goroutine its handle delivers notifications on.
type Signal struct {
	subs []signalSub
}

// Subscribe registers an observer and returns its registration token.
func (s *Signal) Subscribe(fn Observer) SubscriptionID {
	id := SubscriptionID(uuid.NewString())
	s.subs = append(s.subs, signalSub{id: id, fn: fn})
	return id
}

// Unsubscribe removes a registration. Unknown tokens are ignored.
func (s *Signal) Unsubscribe(id SubscriptionID) {
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers.
func (s *Signal) Len() int {
	return len(s.subs)
}

func (s *Signal) emit(sender *Adapter, event ChangeEvent) {
	for _, sub := range s.subs {
		sub.fn(sender, event)
	}
}

func (s *Signal) reset() {
	s.subs = nil
}
