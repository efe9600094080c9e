package collab

import (
	"fmt"
	"reflect"

	"github.com/cespare/xxhash/v2"
)

// Snapshot is a point-in-time copy of a handle's contents, preserving
// the handle's insertion order.
type Snapshot struct {
	keys    []string
	entries map[string]any
}

func captureSnapshot(h Handle) Snapshot {
	keys := h.Keys()
	entries := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := h.Get(k); ok {
			entries[k] = v
		}
	}
	return Snapshot{keys: keys, entries: entries}
}

// Keys returns the snapshot's keys in insertion order.
func (s Snapshot) Keys() []string { return s.keys }

// Get returns the value captured for key.
func (s Snapshot) Get(key string) (any, bool) {
	v, ok := s.entries[key]
	return v, ok
}

// Len returns the number of captured entries.
func (s Snapshot) Len() int { return len(s.entries) }

// Digest returns a 64-bit content digest over the ordered key/value
// pairs. Equal digests short-circuit the rebind diff.
func (s Snapshot) Digest() uint64 {
	d := xxhash.New()
	for _, k := range s.keys {
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(fmt.Sprintf("%#v", s.entries[k]))
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

// diffSnapshots computes the symmetric difference between two
// snapshots as synthetic change events: removes for keys only in old,
// adds for keys only in fresh, updates where the value changed.
// Ordering across keys is unspecified.
func diffSnapshots(old, fresh Snapshot) []ChangeEvent {
	var events []ChangeEvent
	for _, k := range old.keys {
		oldVal := old.entries[k]
		freshVal, ok := fresh.entries[k]
		switch {
		case !ok:
			events = append(events, ChangeEvent{Kind: MutationRemove, Key: k, OldValue: oldVal})
		case !valueEqual(oldVal, freshVal):
			events = append(events, ChangeEvent{Kind: MutationUpdate, Key: k, OldValue: oldVal, NewValue: freshVal})
		}
	}
	for _, k := range fresh.keys {
		if _, ok := old.entries[k]; !ok {
			events = append(events, ChangeEvent{Kind: MutationAdd, Key: k, NewValue: fresh.entries[k]})
		}
	}
	return events
}

// valueEqual compares two map values, taking the fast path for common
// scalar kinds before falling back to reflect.DeepEqual.
func valueEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	typeA := reflect.TypeOf(a)
	typeB := reflect.TypeOf(b)
	if typeA != typeB {
		return false
	}

	switch typeA.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(a).Int() == reflect.ValueOf(b).Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.ValueOf(a).Uint() == reflect.ValueOf(b).Uint()
	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(a).Float() == reflect.ValueOf(b).Float()
	case reflect.String:
		return reflect.ValueOf(a).String() == reflect.ValueOf(b).String()
	case reflect.Bool:
		return reflect.ValueOf(a).Bool() == reflect.ValueOf(b).Bool()
	default:
		return reflect.DeepEqual(a, b)
	}
}
