package collab

// ChangeEvent is the local vocabulary for map mutations. Native
// mutations relay into it 1:1; handle swaps synthesize it. It is a
// closed variant: Kind is one of add, update or remove, and value
// presence follows the kind the same way Mutation documents it.
type ChangeEvent struct {
	Kind     MutationKind
	Key      string
	OldValue any
	NewValue any
}

// Valid reports whether the event satisfies the kind/presence
// invariant: add has only a new value, remove only an old one, update
// both and differing.
func (e ChangeEvent) Valid() bool {
	switch e.Kind {
	case MutationAdd:
		return e.OldValue == nil && e.NewValue != nil
	case MutationRemove:
		return e.OldValue != nil && e.NewValue == nil
	case MutationUpdate:
		return e.OldValue != nil && e.NewValue != nil && !valueEqual(e.OldValue, e.NewValue)
	default:
		return false
	}
}

func eventFromMutation(m Mutation) ChangeEvent {
	return ChangeEvent{
		Kind:     m.Kind,
		Key:      m.Key,
		OldValue: m.OldValue,
		NewValue: m.NewValue,
	}
}
