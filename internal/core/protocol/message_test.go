package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/collabmap/internal/core/collab"
)

func TestMutationRoundTrip(t *testing.T) {
	m := collab.Mutation{Kind: collab.MutationUpdate, Key: "k", OldValue: "a", NewValue: "b"}
	msg := EncodeMutation("room", m)
	require.Equal(t, OpMutation, msg.Op)
	require.Equal(t, "room", msg.Map)

	got, err := DecodeMutation(msg)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestDecodeMutationRejectsBadMessages(t *testing.T) {
	_, err := DecodeMutation(Message{Op: OpSet, Key: "k"})
	require.Error(t, err)

	_, err = DecodeMutation(Message{Op: OpMutation, Kind: "mangle", Key: "k"})
	require.Error(t, err)
}

func TestEncodeSnapshotPreservesOrder(t *testing.T) {
	h := collab.NewMemoryHandle()
	_, _, _ = h.Set("first", 1)
	_, _, _ = h.Set("second", 2)
	_, _, _ = h.Set("third", 3)
	_, _, _ = h.Delete("second")

	msg := EncodeSnapshot("room", h)
	require.Equal(t, OpSnapshot, msg.Op)
	require.Equal(t, []Entry{{Key: "first", Value: 1}, {Key: "third", Value: 3}}, msg.Entries)
}

func TestMessageJSONShape(t *testing.T) {
	msg := EncodeMutation("room", collab.Mutation{Kind: collab.MutationAdd, Key: "k", NewValue: "v"})
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	// absent values stay off the wire entirely
	require.NotContains(t, string(data), `"old"`)
	require.Contains(t, string(data), `"kind":"add"`)

	var back Message
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, msg, back)
}
