package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/shestoi/orderflow/platform/contracts"
)

// Transaction представляет доменную модель транзакции платежа
// Это бизнес-сущность, не привязанная к HTTP или БД
type Transaction struct {
	OrderID       string
	UserEmail     string
	Amount        decimal.Decimal
	TransactionID string
	Status        contracts.PaymentStatus
	CreatedAt     int64 // Unix timestamp
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PaymentRepository --dir=. --output=./mocks --outpkg=mocks

// PaymentRepository определяет интерфейс для работы с хранилищем транзакций
// Service слой зависит от этого интерфейса, а не от конкретной реализации
type PaymentRepository interface {
	// GetByOrderID получает транзакцию по orderID
	// Возвращает ErrNotFound, если транзакция не найдена
	GetByOrderID(ctx context.Context, orderID string) (Transaction, error)

	// Save сохраняет транзакцию в хранилище
	// Возвращает ErrAlreadyExists, если для orderID транзакция уже есть
	Save(ctx context.Context, tx Transaction) error
}

var (
	// ErrNotFound возвращается, когда транзакция не найдена в хранилище
	ErrNotFound = errors.New("transaction not found")
	// ErrAlreadyExists возвращается, когда транзакция для заказа уже сохранена
	ErrAlreadyExists = errors.New("transaction already exists")
)
