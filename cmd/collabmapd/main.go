package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/collabmap/internal/config"
	"github.com/zeusync/collabmap/internal/core/observability/log"
	"github.com/zeusync/collabmap/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	logger := log.New(log.ParseLevel(cfg.LogLevel))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	srv := server.NewMapServer(logger)

	g, ctx := errgroup.WithContext(ctx)

	var wsServer *server.WebSocketServer
	if cfg.WebSocket.Enabled {
		wsServer = server.NewWebSocketServer(srv, cfg.WebSocket.Protocol(), logger)
		g.Go(func() error { return wsServer.Start(ctx) })
	}

	var quicServer *server.QUICServer
	if cfg.QUIC.Enabled {
		quicServer = server.NewQUICServer(srv, cfg.QUIC.Protocol(), logger)
		g.Go(func() error { return quicServer.Start(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		_ = srv.Close()
		stopCtx := context.Background()
		if wsServer != nil {
			_ = wsServer.Stop(stopCtx)
		}
		if quicServer != nil {
			_ = quicServer.Stop(stopCtx)
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		logger.Error("server terminated", log.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
