package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	platformlogging "github.com/shestoi/orderflow/platform/logging"
	"github.com/shestoi/orderflow/platform/observability"
	platformshutdown "github.com/shestoi/orderflow/platform/shutdown"
	httpapi "github.com/shestoi/orderflow/services/payment/internal/api/http"
	"github.com/shestoi/orderflow/services/payment/internal/config"
	"github.com/shestoi/orderflow/services/payment/internal/repository/memory"
	"github.com/shestoi/orderflow/services/payment/internal/service"
)

// App содержит все зависимости для запуска и корректного shutdown Payment Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	listener    net.Listener
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Payment Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "payment",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	cfg.Log(logger)

	logger.Info("Building Payment service", zap.String("op", op), zap.String("http_addr", cfg.HTTPAddr))

	otelShutdown, err := observability.Init(context.Background(), cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("%s: init observability: %w", op, err)
	}

	// In-memory репозиторий транзакций (идемпотентность по orderId)
	paymentRepo := memory.NewMemoryRepository()

	// Создаём service слой
	paymentService := service.NewPaymentService(logger, paymentRepo, cfg.MaxAmount)

	handler := httpapi.NewHandler(paymentService, logger)
	router := httpapi.NewRouter(handler, logger)

	// Слушаем на указанном адресе
	listener, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("%s: listen %s: %w", op, cfg.HTTPAddr, err)
	}

	httpServer := &http.Server{
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Создаём shutdown manager
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	// Регистрируем shutdown функции в обратном порядке выполнения
	shutdownMgr.Add("otel", otelShutdown)
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		listener:    listener,
		shutdownMgr: shutdownMgr,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown
func (a *App) Run(ctx context.Context) error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Payment service", zap.String("addr", a.listener.Addr().String()))

	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.Serve(a.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			serveErr <- err
		}
	}()

	// Ожидаем сигнал (или падение сервера) и выполняем shutdown
	err := a.shutdownMgr.WaitOrFail(ctx, serveErr)

	a.wg.Wait()
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	a.logger.Info("Payment service stopped")
	return nil
}
