package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/services/payment/internal/repository"
)

// ErrInvalidPayment возвращается для заказа, который нельзя оплатить
var ErrInvalidPayment = errors.New("invalid payment")

// PaymentService содержит бизнес-логику работы с платежами
// Зависит от интерфейса PaymentRepository, а не от конкретной реализации
type PaymentService struct {
	logger    *zap.Logger
	repo      repository.PaymentRepository
	maxAmount decimal.Decimal
	now       func() time.Time
}

// NewPaymentService создаёт новый экземпляр PaymentService.
// Суммы больше maxAmount отклоняются; нулевой maxAmount снимает лимит.
func NewPaymentService(logger *zap.Logger, repo repository.PaymentRepository, maxAmount decimal.Decimal) *PaymentService {
	return &PaymentService{
		logger:    logger,
		repo:      repo,
		maxAmount: maxAmount,
		now:       time.Now,
	}
}

// ProcessPayment списывает price*quantity за заказ.
// Реализует идемпотентность: повторный вызов для того же orderId возвращает тот же результат,
// в том числе повторный отказ.
func (s *PaymentService) ProcessPayment(ctx context.Context, order contracts.Order) (contracts.PaymentOutcome, error) {
	logger := s.logger.With(zap.String("order_id", order.OrderID))

	// a) Валидация
	if err := order.Validate(); err != nil {
		return contracts.PaymentOutcome{}, fmt.Errorf("%w: %v", ErrInvalidPayment, err)
	}
	amount := order.Price.Mul(decimal.NewFromInt(int64(order.Quantity)))
	if amount.IsNegative() {
		return contracts.PaymentOutcome{}, fmt.Errorf("%w: amount must be >= 0", ErrInvalidPayment)
	}

	// b) Проверяем, существует ли уже транзакция для этого orderId (идемпотентность)
	existing, err := s.repo.GetByOrderID(ctx, order.OrderID)
	if err == nil {
		logger.Info("Payment already processed, returning existing transaction",
			zap.String("payment_id", existing.TransactionID))
		return outcomeOf(existing), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		logger.Error("Failed to get transaction", zap.Error(err))
		return contracts.PaymentOutcome{}, fmt.Errorf("failed to check existing transaction: %w", err)
	}

	// c) Транзакция не найдена - создаём новую
	status := contracts.PaymentSuccess
	if s.maxAmount.IsPositive() && amount.GreaterThan(s.maxAmount) {
		status = contracts.PaymentFailure
	}

	now := s.now()
	tx := repository.Transaction{
		OrderID:       order.OrderID,
		UserEmail:     order.UserEmail,
		Amount:        amount,
		TransactionID: fmt.Sprintf("tx_%s_%d", order.OrderID, now.Unix()),
		Status:        status,
		CreatedAt:     now.Unix(),
	}

	if err := s.repo.Save(ctx, tx); err != nil {
		// Конкурентный запрос с тем же orderId успел сохранить свою транзакцию
		if errors.Is(err, repository.ErrAlreadyExists) {
			existing, getErr := s.repo.GetByOrderID(ctx, order.OrderID)
			if getErr != nil {
				return contracts.PaymentOutcome{}, fmt.Errorf("failed to load concurrent transaction: %w", getErr)
			}
			return outcomeOf(existing), nil
		}
		logger.Error("Failed to save transaction", zap.Error(err))
		return contracts.PaymentOutcome{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	if status == contracts.PaymentFailure {
		logger.Warn("Payment declined: amount exceeds limit",
			zap.String("amount", amount.String()),
			zap.String("max_amount", s.maxAmount.String()))
	} else {
		logger.Info("Payment processed successfully",
			zap.String("payment_id", tx.TransactionID),
			zap.String("amount", amount.String()))
	}
	return outcomeOf(tx), nil
}

func outcomeOf(tx repository.Transaction) contracts.PaymentOutcome {
	return contracts.PaymentOutcome{
		PaymentID: tx.TransactionID,
		Status:    tx.Status,
		Amount:    tx.Amount,
	}
}
