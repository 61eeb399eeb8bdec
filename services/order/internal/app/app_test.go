package app

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	platformshutdown "github.com/shestoi/orderflow/platform/shutdown"
)

func TestApp_RunReturnsServeError(t *testing.T) {
	// адрес уже занят: ListenAndServe падает сразу
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	a := &App{
		logger:      zap.NewNop(),
		httpServer:  &http.Server{Addr: busy.Addr().String()},
		shutdownMgr: platformshutdown.New(time.Second, zap.NewNop()),
	}

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		require.Contains(t, err.Error(), "http server")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after HTTP server failure")
	}
}

func TestApp_RunReturnsNilOnContextCancel(t *testing.T) {
	a := &App{
		logger:      zap.NewNop(),
		httpServer:  &http.Server{Addr: "127.0.0.1:0"},
		shutdownMgr: platformshutdown.New(time.Second, zap.NewNop()),
	}
	a.shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(a.httpServer))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, a.Run(ctx))
}
