package collab

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypedAdapterRoundTrip(t *testing.T) {
	a := NewTypedAdapter[string](NewMemoryHandle())

	prev, existed, err := a.Set("greeting", "hello")
	require.NoError(t, err)
	require.False(t, existed)
	require.Empty(t, prev)

	v, ok, err := a.Get("greeting")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello", v)

	prev, existed, err = a.Set("greeting", "hi")
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, "hello", prev)

	values, err := a.Values()
	require.NoError(t, err)
	require.Equal(t, []string{"hi"}, values)
}

func TestTypedAdapterEvents(t *testing.T) {
	a := NewTypedAdapter[int](NewMemoryHandle())
	var got []TypedChangeEvent[int]
	a.Subscribe(func(e TypedChangeEvent[int]) { got = append(got, e) })

	_, _, _ = a.Set("n", 1)
	_, _, _ = a.Set("n", 2)
	_, _, _ = a.Delete("n")

	require.Len(t, got, 3)

	require.Equal(t, MutationAdd, got[0].Kind)
	require.False(t, got[0].OldPresent)
	require.True(t, got[0].NewPresent)
	require.Equal(t, 1, got[0].NewValue)

	require.Equal(t, MutationUpdate, got[1].Kind)
	require.Equal(t, 1, got[1].OldValue)
	require.Equal(t, 2, got[1].NewValue)

	require.Equal(t, MutationRemove, got[2].Kind)
	require.True(t, got[2].OldPresent)
	require.False(t, got[2].NewPresent)
	require.Equal(t, 2, got[2].OldValue)
}

func TestTypedAdapterTypeMismatch(t *testing.T) {
	h := NewMemoryHandle()
	_, _, _ = h.Set("n", "not an int")

	a := NewTypedAdapter[int](h)
	_, _, err := a.Get("n")
	require.EqualError(t, err, "type mismatch")
}

func TestTypedAdapterDispose(t *testing.T) {
	a := NewTypedAdapter[int](NewMemoryHandle())
	require.NoError(t, a.Close())
	require.True(t, a.IsDisposed())
	_, _, err := a.Get("n")
	require.ErrorIs(t, err, ErrAdapterDisposed)
	require.NoError(t, a.Close())
}
