package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zeusync/collabmap/internal/core/collab"
	"github.com/zeusync/collabmap/internal/core/protocol"
	"github.com/zeusync/collabmap/internal/core/protocol/quicmap"
)

func startQUICServer(t *testing.T) string {
	t.Helper()
	cfg := protocol.DefaultConfig()
	cfg.Port = 0 // ephemeral

	endpoint := NewQUICServer(NewMapServer(nil), cfg, nil)
	require.NoError(t, endpoint.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = endpoint.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		_ = endpoint.Stop(context.Background())
	})
	return endpoint.Addr()
}

func TestQUICEndToEnd(t *testing.T) {
	addr := startQUICServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	writer, err := quicmap.Dial(ctx, addr, "game", nil, nil)
	require.NoError(t, err)
	defer func() { _ = writer.Close() }()

	watcher, err := quicmap.Dial(ctx, addr, "game", nil, nil)
	require.NoError(t, err)
	defer func() { _ = watcher.Close() }()

	adapter := collab.NewAdapter(watcher)
	defer func() { _ = adapter.Close() }()
	events := make(chan collab.ChangeEvent, 8)
	adapter.Subscribe(func(_ *collab.Adapter, e collab.ChangeEvent) { events <- e })

	_, _, err = writer.Set("score", "42")
	require.NoError(t, err)

	e := waitEvent(t, events)
	require.Equal(t, collab.MutationAdd, e.Kind)
	require.Equal(t, "score", e.Key)
	require.Equal(t, "42", e.NewValue)

	v, ok, err := adapter.Get("score")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "42", v)
}

func TestQUICServerTLSConfig(t *testing.T) {
	t.Run("development config is self-signed", func(t *testing.T) {
		tlsConf, err := quicmap.ServerTLSConfig(protocol.Config{})
		require.NoError(t, err)
		require.NotEmpty(t, tlsConf.Certificates)
		require.Equal(t, []string{"collabmap-quic"}, tlsConf.NextProtos)
	})

	t.Run("missing certificate files fail", func(t *testing.T) {
		_, err := quicmap.ServerTLSConfig(protocol.Config{
			TLSEnabled: true,
			CertFile:   "does-not-exist.pem",
			KeyFile:    "does-not-exist.pem",
		})
		require.Error(t, err)
	})
}
