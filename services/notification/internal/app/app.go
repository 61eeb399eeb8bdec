package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	platformhealth "github.com/shestoi/orderflow/platform/health/http"
	platformkafka "github.com/shestoi/orderflow/platform/kafka"
	platformlogging "github.com/shestoi/orderflow/platform/logging"
	"github.com/shestoi/orderflow/platform/observability"
	platformshutdown "github.com/shestoi/orderflow/platform/shutdown"
	httpapi "github.com/shestoi/orderflow/services/notification/internal/api/http"
	"github.com/shestoi/orderflow/services/notification/internal/config"
	eventkafka "github.com/shestoi/orderflow/services/notification/internal/event/kafka"
	eventrabbit "github.com/shestoi/orderflow/services/notification/internal/event/rabbitmq"
	"github.com/shestoi/orderflow/services/notification/internal/mail"
	"github.com/shestoi/orderflow/services/notification/internal/service"
	"github.com/shestoi/orderflow/services/notification/internal/templates"
)

// consumer - фоновая доставка событий из брокера
type consumer interface {
	Start(ctx context.Context) error
}

// App содержит все зависимости для запуска и корректного shutdown Notification Service
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	consumer    consumer
	consumeCtx  context.Context
	stopConsume context.CancelFunc
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
	consumerWG  sync.WaitGroup
}

// Build создаёт и настраивает все зависимости Notification Service
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "notification",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
	})
	if err != nil {
		return nil, err
	}
	cfg.Log(logger)

	buildLogger := logger.With(zap.String("op", op))
	buildLogger.Info("Building Notification service", zap.String("transport", string(cfg.EventTransport)))

	otelShutdown, err := observability.Init(context.Background(), cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("%s: init observability: %w", op, err)
	}

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("otel", otelShutdown)

	// Создаём sender: SMTP если задан хост, иначе письма только логируются
	var sender service.Sender
	if cfg.SMTP.Host != "" {
		sender, err = mail.NewSMTPSender(logger, mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			Timeout:  cfg.SendTimeout,
		})
		if err != nil {
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		buildLogger.Info("SMTP sender enabled", zap.String("host", cfg.SMTP.Host))
	} else {
		sender = mail.NewNoOpSender(logger)
		buildLogger.Warn("SMTP_HOST not set, using no-op sender")
	}

	renderer, err := templates.NewRenderer()
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dispatcher := service.NewDispatcher(logger, sender, renderer, cfg.SendTimeout)

	consumeCtx, stopConsume := context.WithCancel(context.Background())
	a := &App{
		logger:      logger,
		consumeCtx:  consumeCtx,
		stopConsume: stopConsume,
		shutdownMgr: shutdownMgr,
	}

	checks := map[string]platformhealth.Checker{}

	switch cfg.EventTransport {
	case config.TransportKafka:
		dlq := eventkafka.NewDLQPublisher(logger, cfg.Kafka.Brokers, cfg.Kafka.DLQTopic)
		c := eventkafka.NewConsumer(logger, cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.EventsChannel, dispatcher, dlq)
		shutdownMgr.Add("dlq_publisher", func(context.Context) error {
			return dlq.Close()
		})
		shutdownMgr.Add("kafka_consumer", func(context.Context) error {
			return c.Close()
		})
		brokers := cfg.Kafka.Brokers
		checks["kafka"] = func(ctx context.Context) error {
			return platformkafka.Ping(ctx, brokers)
		}
		a.consumer = c

	case config.TransportRabbitMQ:
		c, err := eventrabbit.NewConsumer(logger, cfg.RabbitMQ.URL, dispatcher, eventrabbit.Options{
			Channel:  cfg.EventsChannel,
			Queue:    cfg.RabbitMQ.Queue,
			Prefetch: cfg.RabbitMQ.Prefetch,
			Workers:  cfg.Workers,
		})
		if err != nil {
			stopConsume()
			_ = otelShutdown(context.Background())
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		shutdownMgr.Add("rabbitmq_connection", func(context.Context) error {
			return c.Close()
		})
		checks["rabbitmq"] = c.Check
		a.consumer = c

	case config.TransportPush:
		buildLogger.Info("Push delivery, events accepted on HTTP", zap.String("route", httpapi.EventsRoute))
	}

	// Consumer останавливается до закрытия соединений с брокером
	if a.consumer != nil {
		shutdownMgr.Add("event_consumer", func(ctx context.Context) error {
			stopConsume()
			return waitGroup(ctx, &a.consumerWG)
		})
	}

	handler := httpapi.NewHandler(dispatcher, cfg.PubsubName, cfg.EventsChannel, logger)
	router := httpapi.NewRouter(handler, checks, logger)

	a.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	// HTTP сервер останавливается первым: регистрируется последним
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(a.httpServer))

	return a, nil
}

// Run запускает сервис и блокируется до получения сигнала shutdown.
// Возвращает ошибку, если HTTP сервер или consumer остановились сами.
func (a *App) Run(ctx context.Context) error {
	defer platformlogging.Sync(a.logger)
	defer a.stopConsume()

	a.logger.Info("Starting Notification service", zap.String("addr", a.httpServer.Addr))

	// failed получает первую ошибку HTTP сервера или consumer-а
	failed := make(chan error, 2)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			failed <- fmt.Errorf("http server: %w", err)
		}
	}()

	if a.consumer != nil {
		a.consumerWG.Add(1)
		go func() {
			defer a.consumerWG.Done()
			// consumer не переподключается: его остановка без отмены consumeCtx останавливает сервис
			if err := a.consumer.Start(a.consumeCtx); err != nil && a.consumeCtx.Err() == nil {
				a.logger.Error("event consumer error", zap.Error(err))
				failed <- fmt.Errorf("event consumer: %w", err)
			}
		}()
		a.logger.Info("Event consumer started")
	}

	// Ожидаем сигнал (или падение компонента) и выполняем shutdown
	err := a.shutdownMgr.WaitOrFail(ctx, failed)

	a.wg.Wait()
	if err != nil {
		a.logger.Error("Notification service stopped after failure", zap.Error(err))
		return err
	}
	a.logger.Info("Notification service stopped")
	return nil
}

// waitGroup ждёт wg не дольше, чем живёт ctx
func waitGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
