package protocol

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/collabmap/internal/core/collab"
)

// fakeWire is an in-process Wire fed from the test goroutine.
type fakeWire struct {
	incoming chan Message
	sent     chan Message
	closed   chan struct{}
}

func newFakeWire() *fakeWire {
	return &fakeWire{
		incoming: make(chan Message, 16),
		sent:     make(chan Message, 16),
		closed:   make(chan struct{}),
	}
}

func (w *fakeWire) Send(msg Message) error {
	select {
	case <-w.closed:
		return errors.New("connection is closed")
	default:
	}
	w.sent <- msg
	return nil
}

func (w *fakeWire) Recv() (Message, error) {
	select {
	case msg := <-w.incoming:
		return msg, nil
	case <-w.closed:
		return Message{}, errors.New("connection is closed")
	}
}

func (w *fakeWire) Close() error {
	close(w.closed)
	return nil
}

func dialFake(t *testing.T, entries ...Entry) (*RemoteHandle, *fakeWire) {
	t.Helper()
	w := newFakeWire()
	w.incoming <- Message{Op: OpSnapshot, Map: "room", Entries: entries}

	h, err := NewRemoteHandle(w, "room", nil)
	require.NoError(t, err)

	// consume the hello so later assertions see only operations
	hello := <-w.sent
	require.Equal(t, OpHello, hello.Op)
	require.Equal(t, "room", hello.Map)

	t.Cleanup(func() { _ = h.Close() })
	return h, w
}

func waitMutation(t *testing.T, ch <-chan collab.Mutation) collab.Mutation {
	t.Helper()
	select {
	case m := <-ch:
		return m
	case <-time.After(500 * time.Millisecond):
		t.Fatal("mutation not delivered")
		return collab.Mutation{}
	}
}

func TestRemoteHandleSnapshot(t *testing.T) {
	h, _ := dialFake(t, Entry{Key: "a", Value: 1}, Entry{Key: "b", Value: 2})

	require.Equal(t, []string{"a", "b"}, h.Keys())
	require.True(t, h.Has("a"))
	v, ok := h.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)
	require.Equal(t, "room", h.MapName())
}

func TestRemoteHandleWritesGoOverTheWire(t *testing.T) {
	h, w := dialFake(t, Entry{Key: "a", Value: 1})

	prev, existed, err := h.Set("a", 2)
	require.NoError(t, err)
	require.True(t, existed)
	require.Equal(t, 1, prev)

	msg := <-w.sent
	require.Equal(t, Message{Op: OpSet, Map: "room", Key: "a", Value: 2}, msg)

	// the local replica stays untouched until the server echoes
	v, _ := h.Get("a")
	require.Equal(t, 1, v)

	_, _, err = h.Delete("a")
	require.NoError(t, err)
	require.Equal(t, Message{Op: OpDelete, Map: "room", Key: "a"}, <-w.sent)

	require.NoError(t, h.Clear())
	require.Equal(t, Message{Op: OpClear, Map: "room"}, <-w.sent)
}

func TestRemoteHandleAppliesEchoedMutations(t *testing.T) {
	h, w := dialFake(t)

	got := make(chan collab.Mutation, 4)
	h.Subscribe(func(m collab.Mutation) { got <- m })

	w.incoming <- EncodeMutation("room", collab.Mutation{Kind: collab.MutationAdd, Key: "k", NewValue: "v"})
	m := waitMutation(t, got)
	require.Equal(t, collab.MutationAdd, m.Kind)
	require.Equal(t, "k", m.Key)
	require.Equal(t, "v", m.NewValue)

	v, ok := h.Get("k")
	require.True(t, ok)
	require.Equal(t, "v", v)

	w.incoming <- EncodeMutation("room", collab.Mutation{Kind: collab.MutationRemove, Key: "k", OldValue: "v"})
	m = waitMutation(t, got)
	require.Equal(t, collab.MutationRemove, m.Kind)
	require.False(t, h.Has("k"))
}

func TestRemoteHandleUnsubscribe(t *testing.T) {
	h, w := dialFake(t)

	got := make(chan collab.Mutation, 4)
	id := h.Subscribe(func(m collab.Mutation) { got <- m })
	h.Unsubscribe(id)

	w.incoming <- EncodeMutation("room", collab.Mutation{Kind: collab.MutationAdd, Key: "k", NewValue: 1})

	// the replica still applies the mutation even with no listeners
	require.Eventually(t, func() bool { return h.Has("k") }, time.Second, 5*time.Millisecond)
	require.Empty(t, got)
}

func TestRemoteHandleClose(t *testing.T) {
	h, _ := dialFake(t)

	require.NoError(t, h.Close())
	require.NoError(t, h.Close())

	_, _, err := h.Set("k", 1)
	require.Error(t, err)
	require.Error(t, h.Clear())
}

func TestRemoteHandleDropsMalformedMutations(t *testing.T) {
	h, w := dialFake(t)

	w.incoming <- Message{Op: OpMutation, Kind: "mangle", Key: "bad"}
	w.incoming <- EncodeMutation("room", collab.Mutation{Kind: collab.MutationAdd, Key: "good", NewValue: 1})

	require.Eventually(t, func() bool { return h.Has("good") }, time.Second, 5*time.Millisecond)
	require.False(t, h.Has("bad"))
}
