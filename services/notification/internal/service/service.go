package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/platform/observability"
	"github.com/shestoi/orderflow/services/notification/internal/templates"
)

const (
	subjectOrderCreated   = "Order Notification"
	subjectOrderCancelled = "Order Cancellation"
)

type handlerFunc func(ctx context.Context, logger *zap.Logger, event contracts.DomainEvent) error

// Dispatcher выбирает уведомление по статусу доменного события.
// OnEvent не возвращает ошибок: сбой отправки логируется и не влияет на доставку.
type Dispatcher struct {
	logger      *zap.Logger
	sender      Sender
	renderer    *templates.Renderer
	sendTimeout time.Duration
	handlers    map[contracts.OrderStatus]handlerFunc
}

// NewDispatcher создаёт Dispatcher. sendTimeout <= 0 - без таймаута на отправку.
func NewDispatcher(logger *zap.Logger, sender Sender, renderer *templates.Renderer, sendTimeout time.Duration) *Dispatcher {
	d := &Dispatcher{
		logger:      logger,
		sender:      sender,
		renderer:    renderer,
		sendTimeout: sendTimeout,
	}
	d.handlers = map[contracts.OrderStatus]handlerFunc{
		contracts.OrderCreated:   d.onOrderCreated,
		contracts.OrderCancelled: d.onOrderCancelled,
		contracts.OrderUpdated:   d.onOrderUpdated,
	}
	return d
}

// OnEvent обрабатывает одно событие. Повторная доставка того же события допустима.
func (d *Dispatcher) OnEvent(ctx context.Context, event contracts.DomainEvent) {
	logger := observability.L(ctx, d.logger).With(
		zap.String("order_id", event.Order.OrderID),
		zap.String("order_status", string(event.Status)),
	)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("notification handler panicked", zap.Any("panic", r))
		}
	}()

	handle, ok := d.handlers[event.Status]
	if !ok {
		logger.Warn("unknown order status, event skipped")
		return
	}

	if err := handle(ctx, logger, event); err != nil {
		logger.Error("failed to handle order event", zap.Error(err))
	}
}

func (d *Dispatcher) onOrderCreated(ctx context.Context, logger *zap.Logger, event contracts.DomainEvent) error {
	body, err := d.renderer.RenderOrderCreated(event.Order)
	if err != nil {
		return err
	}
	return d.send(ctx, logger, event.Order.UserEmail, subjectOrderCreated, body)
}

func (d *Dispatcher) onOrderCancelled(ctx context.Context, logger *zap.Logger, event contracts.DomainEvent) error {
	body, err := d.renderer.RenderOrderCancelled(event.Order)
	if err != nil {
		return err
	}
	return d.send(ctx, logger, event.Order.UserEmail, subjectOrderCancelled, body)
}

func (d *Dispatcher) onOrderUpdated(_ context.Context, logger *zap.Logger, _ contracts.DomainEvent) error {
	logger.Info("order updated")
	return nil
}

func (d *Dispatcher) send(ctx context.Context, logger *zap.Logger, to, subject, body string) error {
	if d.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.sendTimeout)
		defer cancel()
	}

	if err := d.sender.Send(ctx, to, subject, body); err != nil {
		return fmt.Errorf("send %q to %s: %w", subject, to, err)
	}

	logger.Info("notification sent", zap.String("subject", subject))
	return nil
}
