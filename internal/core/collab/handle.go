package collab

// MutationKind classifies a single mutation of a collaborative map.
type MutationKind uint8

const (
	// MutationAdd means a key that was absent now holds a value.
	MutationAdd MutationKind = iota
	// MutationUpdate means an existing key now holds a different value.
	MutationUpdate
	// MutationRemove means a key that held a value is now absent.
	MutationRemove
)

func (k MutationKind) String() string {
	switch k {
	case MutationAdd:
		return "add"
	case MutationUpdate:
		return "update"
	case MutationRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// ParseMutationKind is the inverse of MutationKind.String.
func ParseMutationKind(s string) (MutationKind, bool) {
	switch s {
	case "add":
		return MutationAdd, true
	case "update":
		return MutationUpdate, true
	case "remove":
		return MutationRemove, true
	default:
		return 0, false
	}
}

// Mutation is a native notification produced by a Handle backend,
// one per mutation. Absent values are nil; presence follows the kind:
// add carries only NewValue, remove only OldValue, update both.
type Mutation struct {
	Kind     MutationKind
	Key      string
	OldValue any
	NewValue any
}

// SubscriptionID identifies one listener registration on a Handle
// or an Adapter signal.
type SubscriptionID string

// Handle is the capability interface of a backend-managed mutable map
// with string keys and insertion-ordered enumeration. Any backend
// implementing it is interchangeable from the adapter's point of view.
//
// Reads are total functions; the bool result covers the not-found case.
// Writes return the pre-mutation value and may surface backend failures
// unmodified. Every successful write is echoed back through the
// subscription mechanism as exactly one Mutation; Clear echoes one
// remove Mutation per removed key. Setting a key to a value equal to
// the current one stores it but echoes nothing.
//
// Notifications are delivered on whatever single goroutine the backend
// uses for its event stream; listeners must not assume any other
// synchronization.
type Handle interface {
	Get(key string) (any, bool)
	Set(key string, value any) (prev any, existed bool, err error)
	Delete(key string) (prev any, existed bool, err error)
	Has(key string) bool
	Keys() []string
	Clear() error

	Subscribe(fn func(Mutation)) SubscriptionID
	Unsubscribe(id SubscriptionID)
}
