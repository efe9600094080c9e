package protocol

import (
	"github.com/pkg/errors"

	"github.com/zeusync/collabmap/internal/core/collab"
)

// OpCode identifies a wire message.
type OpCode string

const (
	// OpHello is sent by a client to join a named map. The server
	// answers with OpSnapshot before any mutation is delivered.
	OpHello OpCode = "hello"
	// OpSet, OpDelete and OpClear are client write operations.
	OpSet    OpCode = "set"
	OpDelete OpCode = "delete"
	OpClear  OpCode = "clear"
	// OpSnapshot carries the full ordered contents of a map.
	OpSnapshot OpCode = "snapshot"
	// OpMutation echoes one applied mutation to every member of a map,
	// the writer included.
	OpMutation OpCode = "mutation"
)

// Entry is one key/value pair of a snapshot, in insertion order.
type Entry struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Message is the JSON envelope shared by the websocket and QUIC
// transports. Fields outside the op's shape stay empty.
type Message struct {
	Op      OpCode  `json:"op"`
	Map     string  `json:"map,omitempty"`
	Key     string  `json:"key,omitempty"`
	Value   any     `json:"value,omitempty"`
	Kind    string  `json:"kind,omitempty"`
	Old     any     `json:"old,omitempty"`
	New     any     `json:"new,omitempty"`
	Entries []Entry `json:"entries,omitempty"`
}

// EncodeMutation wraps a native mutation for the wire.
func EncodeMutation(mapName string, m collab.Mutation) Message {
	return Message{
		Op:   OpMutation,
		Map:  mapName,
		Key:  m.Key,
		Kind: m.Kind.String(),
		Old:  m.OldValue,
		New:  m.NewValue,
	}
}

// DecodeMutation unwraps an OpMutation message.
func DecodeMutation(msg Message) (collab.Mutation, error) {
	if msg.Op != OpMutation {
		return collab.Mutation{}, errors.Errorf("expected %q message, got %q", OpMutation, msg.Op)
	}
	kind, ok := collab.ParseMutationKind(msg.Kind)
	if !ok {
		return collab.Mutation{}, errors.Errorf("unknown mutation kind %q", msg.Kind)
	}
	return collab.Mutation{
		Kind:     kind,
		Key:      msg.Key,
		OldValue: msg.Old,
		NewValue: msg.New,
	}, nil
}

// EncodeSnapshot captures a handle's full contents for the wire.
func EncodeSnapshot(mapName string, h collab.Handle) Message {
	keys := h.Keys()
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		v, _ := h.Get(k)
		entries = append(entries, Entry{Key: k, Value: v})
	}
	return Message{Op: OpSnapshot, Map: mapName, Entries: entries}
}
