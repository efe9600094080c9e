package collab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryHandleInsertionOrder(t *testing.T) {
	h := NewMemoryHandle()
	_, _, _ = h.Set("a", 1)
	_, _, _ = h.Set("b", 2)
	_, _, _ = h.Set("c", 3)
	require.Equal(t, []string{"a", "b", "c"}, h.Keys())

	// updating in place keeps the slot
	_, _, _ = h.Set("b", 20)
	require.Equal(t, []string{"a", "b", "c"}, h.Keys())

	// delete and re-add moves the key to the end
	_, _, _ = h.Delete("a")
	_, _, _ = h.Set("a", 10)
	require.Equal(t, []string{"b", "c", "a"}, h.Keys())
}

func TestMemoryHandleNotifications(t *testing.T) {
	h := NewMemoryHandle()
	var got []Mutation
	id := h.Subscribe(func(m Mutation) { got = append(got, m) })

	_, _, _ = h.Set("k", 1)
	require.Len(t, got, 1)
	require.Equal(t, Mutation{Kind: MutationAdd, Key: "k", NewValue: 1}, got[0])

	_, _, _ = h.Set("k", 2)
	require.Len(t, got, 2)
	require.Equal(t, Mutation{Kind: MutationUpdate, Key: "k", OldValue: 1, NewValue: 2}, got[1])

	// equal value writes store but stay silent
	_, _, _ = h.Set("k", 2)
	require.Len(t, got, 2)

	_, _, _ = h.Delete("k")
	require.Len(t, got, 3)
	require.Equal(t, Mutation{Kind: MutationRemove, Key: "k", OldValue: 2}, got[2])

	h.Unsubscribe(id)
	_, _, _ = h.Set("k", 3)
	require.Len(t, got, 3)
}

func TestMemoryHandleClearNotifiesPerKey(t *testing.T) {
	h := NewMemoryHandle()
	_, _, _ = h.Set("a", 1)
	_, _, _ = h.Set("b", 2)

	var got []Mutation
	h.Subscribe(func(m Mutation) { got = append(got, m) })

	require.NoError(t, h.Clear())
	require.Len(t, got, 2)
	require.Equal(t, Mutation{Kind: MutationRemove, Key: "a", OldValue: 1}, got[0])
	require.Equal(t, Mutation{Kind: MutationRemove, Key: "b", OldValue: 2}, got[1])
	require.Zero(t, h.Len())

	require.NoError(t, h.Clear())
	require.Len(t, got, 2)
}

func TestMemoryHandleSetReturnsPrevious(t *testing.T) {
	h := NewMemoryHandle()
	prev, existed, err := h.Set("k", "v1")
	require.NoError(t, err)
	require.False(t, existed)
	require.Nil(t, prev)

	prev, existed, err = h.Set("k", "v2")
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, "v1", prev)

	prev, existed, err = h.Delete("k")
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, "v2", prev)
}
