package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/platform/observability"
	"github.com/shestoi/orderflow/services/order/internal/breaker"
)

// Timeouts ограничивают каждый удалённый вызов. Ноль - без собственного таймаута.
type Timeouts struct {
	Inventory time.Duration
	Payment   time.Duration
	Publish   time.Duration
}

// OrderService оркестрирует заказ: проверка склада, оплата через breaker, публикация события.
// Зависит от интерфейсов, а не от конкретных HTTP клиентов и брокеров.
type OrderService struct {
	logger    *zap.Logger
	inventory InventoryClient
	payment   PaymentClient
	breaker   *breaker.Breaker
	publisher EventPublisher
	channel   string
	timeouts  Timeouts
}

// NewOrderService создаёт новый экземпляр OrderService.
// Breaker должен быть создан с IsFailure: IsBreakerFailure.
func NewOrderService(
	logger *zap.Logger,
	inventory InventoryClient,
	payment PaymentClient,
	cb *breaker.Breaker,
	publisher EventPublisher,
	channel string,
	timeouts Timeouts,
) *OrderService {
	return &OrderService{
		logger:    logger,
		inventory: inventory,
		payment:   payment,
		breaker:   cb,
		publisher: publisher,
		channel:   channel,
		timeouts:  timeouts,
	}
}

// ProcessOrder выполняет шаги строго по порядку: валидация, склад, оплата, событие, публикация.
// Возвращает готовое событие либо *Error; оплата выполняется не больше одного раза.
func (s *OrderService) ProcessOrder(ctx context.Context, order contracts.Order) (contracts.DomainEvent, error) {
	logger := observability.L(ctx, s.logger).With(zap.String("order_id", order.OrderID))

	if err := order.Validate(); err != nil {
		logger.Warn("Order validation failed", zap.Error(err))
		return contracts.DomainEvent{}, newError(KindValidation, err.Error(), nil)
	}

	// 1. Склад
	inStock, err := s.checkStock(ctx, order)
	if err != nil {
		logger.Error("Inventory check failed",
			zap.String("product_code", order.ProductCode),
			zap.Error(err))
		return contracts.DomainEvent{}, newError(KindServiceUnavailable, "inventory service unavailable", err)
	}
	if !inStock {
		logger.Info("Product out of stock",
			zap.String("product_code", order.ProductCode),
			zap.Int("quantity", order.Quantity))
		return contracts.DomainEvent{}, newError(KindOutOfStock,
			fmt.Sprintf("product %s is out of stock", order.ProductCode), nil)
	}

	// 2. Оплата через breaker
	outcome, err := s.charge(ctx, order)
	if err != nil {
		switch {
		case errors.Is(err, breaker.ErrOpenState), errors.Is(err, breaker.ErrTooManyRequests):
			logger.Warn("Payment rejected by circuit breaker",
				zap.String("breaker_state", s.breaker.State().String()))
			return contracts.DomainEvent{}, newError(KindServiceUnavailable, "payment service unavailable", err)
		case errors.Is(err, ErrPaymentDeclined):
			logger.Info("Payment declined", zap.Error(err))
			return contracts.DomainEvent{}, newError(KindPaymentFailed, "payment failed", err)
		default:
			logger.Error("Payment call failed", zap.Error(err))
			return contracts.DomainEvent{}, newError(KindServiceUnavailable, "payment service unavailable", err)
		}
	}
	logger.Info("Payment processed",
		zap.String("payment_id", outcome.PaymentID),
		zap.String("amount", outcome.Amount.String()))

	// 3. Событие
	event := contracts.NewOrderCreated(order)

	// 4. Публикация. Оплата уже проведена и не откатывается.
	if err := s.publish(ctx, event); err != nil {
		logger.Error("Failed to publish order event",
			zap.String("channel", s.channel),
			zap.String("payment_id", outcome.PaymentID),
			zap.Error(err))
		return contracts.DomainEvent{}, newError(KindServiceUnavailable, "event publisher unavailable", err)
	}

	logger.Info("Order processed",
		zap.String("status", string(event.Status)),
		zap.String("channel", s.channel))
	return event, nil
}

// BreakerSnapshot возвращает состояние breaker payment сервиса
func (s *OrderService) BreakerSnapshot() breaker.Snapshot {
	return s.breaker.Snapshot()
}

func (s *OrderService) checkStock(ctx context.Context, order contracts.Order) (bool, error) {
	callCtx, cancel := withTimeout(ctx, s.timeouts.Inventory)
	defer cancel()
	return s.inventory.CheckStock(callCtx, order.ProductCode, order.Quantity)
}

func (s *OrderService) charge(ctx context.Context, order contracts.Order) (contracts.PaymentOutcome, error) {
	var outcome contracts.PaymentOutcome

	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		callCtx, cancel := withTimeout(ctx, s.timeouts.Payment)
		defer cancel()

		res, err := s.payment.Charge(callCtx, order)
		if err != nil {
			return err
		}
		if !res.Succeeded() {
			return fmt.Errorf("%w: payment %s returned status %q", ErrPaymentDeclined, res.PaymentID, res.Status)
		}
		outcome = res
		return nil
	})

	return outcome, err
}

func (s *OrderService) publish(ctx context.Context, event contracts.DomainEvent) error {
	callCtx, cancel := withTimeout(ctx, s.timeouts.Publish)
	defer cancel()
	return s.publisher.Publish(callCtx, s.channel, event)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
