package app

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	platformshutdown "github.com/shestoi/orderflow/platform/shutdown"
)

type consumerFunc func(ctx context.Context) error

func (f consumerFunc) Start(ctx context.Context) error { return f(ctx) }

func newTestApp(c consumer) *App {
	consumeCtx, stopConsume := context.WithCancel(context.Background())
	a := &App{
		logger:      zap.NewNop(),
		httpServer:  &http.Server{Addr: "127.0.0.1:0"},
		consumer:    c,
		consumeCtx:  consumeCtx,
		stopConsume: stopConsume,
		shutdownMgr: platformshutdown.New(time.Second, zap.NewNop()),
	}
	a.shutdownMgr.Add("event_consumer", func(ctx context.Context) error {
		a.stopConsume()
		return waitGroup(ctx, &a.consumerWG)
	})
	a.shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(a.httpServer))
	return a
}

func TestApp_ConsumerFailureStopsService(t *testing.T) {
	errLost := errors.New("rabbitmq delivery channel closed")
	a := newTestApp(consumerFunc(func(context.Context) error { return errLost }))

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, errLost)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after consumer failure")
	}
}

func TestApp_ConsumerStoppedByShutdownIsNotFailure(t *testing.T) {
	a := newTestApp(consumerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, a.Run(ctx))
}
