// Package main публикует одно тестовое доменное событие через настроенный транспорт.
//
// Конфигурация та же, что у Order Service (EVENT_TRANSPORT, ORDER_EVENTS_CHANNEL,
// KAFKA_BROKERS, RABBITMQ_URL, PUSH_URL). Статус и заказ задаются флагами:
//
//	go run ./services/order/cmd/event-playground -status ORDER_CANCELLED -email user@example.com
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	platformlogging "github.com/shestoi/orderflow/platform/logging"
	"github.com/shestoi/orderflow/services/order/internal/config"
	"github.com/shestoi/orderflow/services/order/internal/event"
)

func main() {
	status := flag.String("status", string(contracts.OrderCreated), "order status of the event")
	email := flag.String("email", "user@example.com", "recipient email")
	product := flag.String("product", "P1", "product code")
	price := flag.String("price", "100", "order price")
	flag.Parse()

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "event-playground",
		Env:         "local",
		Level:       "info",
		Format:      "console",
		AddCaller:   true,
	})
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer platformlogging.Sync(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		os.Exit(1)
	}

	orderPrice, err := decimal.NewFromString(*price)
	if err != nil {
		logger.Error("invalid price", zap.Error(err))
		os.Exit(1)
	}

	publisher, _, err := event.NewPublisher(cfg, logger, &http.Client{Timeout: cfg.PublishTimeout})
	if err != nil {
		logger.Error("failed to create publisher", zap.Error(err))
		os.Exit(1)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("failed to close publisher", zap.Error(err))
		}
	}()

	ev := contracts.DomainEvent{
		Status: contracts.OrderStatus(*status),
		Order: contracts.Order{
			OrderID:     uuid.NewString(),
			UserEmail:   *email,
			ProductCode: *product,
			Quantity:    1,
			Price:       orderPrice,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("publishing event",
		zap.String("transport", string(cfg.EventTransport)),
		zap.String("channel", cfg.EventsChannel),
		zap.String("order_id", ev.Order.OrderID),
		zap.String("order_status", string(ev.Status)),
	)

	if err := publisher.Publish(ctx, cfg.EventsChannel, ev); err != nil {
		logger.Error("failed to publish event", zap.Error(err))
		os.Exit(1) //выход с кодом ошибки 1
	}

	logger.Info("event published")
}
