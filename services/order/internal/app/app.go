package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/orderflow/platform/health/http"
	platformlogging "github.com/shestoi/orderflow/platform/logging"
	"github.com/shestoi/orderflow/platform/observability"
	platformshutdown "github.com/shestoi/orderflow/platform/shutdown"
	httpapi "github.com/shestoi/orderflow/services/order/internal/api/http"
	"github.com/shestoi/orderflow/services/order/internal/breaker"
	httpclient "github.com/shestoi/orderflow/services/order/internal/client/http"
	"github.com/shestoi/orderflow/services/order/internal/config"
	"github.com/shestoi/orderflow/services/order/internal/event"
	"github.com/shestoi/orderflow/services/order/internal/service"
)

// App содержит все зависимости для запуска и корректного shutdown Order Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Order Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "order",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	cfg.Log(logger)

	buildLogger := logger.With(zap.String("op", op))
	buildLogger.Info("Building Order service", zap.String("http_addr", cfg.HTTPAddr))

	// OpenTelemetry: traces + metrics
	otelShutdown, err := observability.Init(context.Background(), cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("%s: init observability: %w", op, err)
	}

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("otel", otelShutdown)

	// Breaker для payment сервиса; переходы логируются и считаются в метрике
	transitions, err := otel.Meter("order").Int64Counter("payment_breaker_transitions_total",
		metric.WithDescription("Circuit breaker state transitions for the payment service"))
	if err != nil {
		return nil, fmt.Errorf("%s: create breaker metric: %w", op, err)
	}
	paymentBreaker := breaker.New(breaker.Settings{
		Name:         "payment",
		WindowSize:   cfg.PaymentBreaker.WindowSize,
		MinimumCalls: cfg.PaymentBreaker.MinimumCalls,
		FailureRatio: cfg.PaymentBreaker.FailureRatio,
		OpenTimeout:  cfg.PaymentBreaker.OpenTimeout,
		IsFailure:    service.IsBreakerFailure,
		OnStateChange: func(name string, from, to breaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			transitions.Add(context.Background(), 1, metric.WithAttributes(
				attribute.String("breaker", name),
				attribute.String("to", to.String())))
		},
	})

	// HTTP клиенты к inventory и payment; таймауты отдельных вызовов задаёт service слой
	client := httpclient.NewHTTPClient(cfg.InventoryTimeout + cfg.PaymentTimeout + cfg.PublishTimeout)
	inventoryClient := httpclient.NewInventoryClient(cfg.InventoryURL, client)
	paymentClient := httpclient.NewPaymentClient(cfg.PaymentURL, client)

	publisher, brokerCheck, err := event.NewPublisher(cfg, logger, client)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("%s: create event publisher: %w", op, err)
	}
	shutdownMgr.Add("event_publisher", func(context.Context) error {
		return publisher.Close()
	})

	orderService := service.NewOrderService(
		logger,
		inventoryClient,
		paymentClient,
		paymentBreaker,
		publisher,
		cfg.EventsChannel,
		service.Timeouts{
			Inventory: cfg.InventoryTimeout,
			Payment:   cfg.PaymentTimeout,
			Publish:   cfg.PublishTimeout,
		},
	)

	checks := map[string]platformhealth.Checker{}
	if brokerCheck != nil {
		checks[string(cfg.EventTransport)] = brokerCheck
	}

	handler := httpapi.NewHandler(orderService, logger)
	router := httpapi.NewRouter(handler, checks, logger)

	// Создаём HTTP сервер
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	// HTTP сервер останавливается первым: регистрируется последним
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
	}, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown.
// Возвращает ошибку, если HTTP сервер упал сам.
func (a *App) Run(ctx context.Context) error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting Order service", zap.String("addr", a.httpServer.Addr))
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	serveErr := make(chan error, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			serveErr <- err
		}
	}()

	// Ожидаем сигнал (или падение сервера) и выполняем shutdown
	err := a.shutdownMgr.WaitOrFail(ctx, serveErr)

	a.wg.Wait()
	if err != nil {
		a.logger.Error("Order service stopped after failure", zap.Error(err))
		return fmt.Errorf("http server: %w", err)
	}
	a.logger.Info("Order service stopped")
	return nil
}
