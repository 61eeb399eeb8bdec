package service

import (
	"context"

	"github.com/shestoi/orderflow/platform/contracts"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=InventoryClient --dir=. --output=./mocks --outpkg=mocks

// InventoryClient определяет интерфейс для работы с Inventory сервисом
type InventoryClient interface {
	// CheckStock сообщает, доступно ли quantity единиц товара. Запрос без побочных эффектов.
	CheckStock(ctx context.Context, productCode string, quantity int) (bool, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PaymentClient --dir=. --output=./mocks --outpkg=mocks

// PaymentClient определяет интерфейс для работы с Payment сервисом.
// Charge не идемпотентен: вызывается не больше одного раза на заказ.
// Явный отказ в оплате возвращается как ErrPaymentDeclined или как outcome со статусом Failure.
type PaymentClient interface {
	Charge(ctx context.Context, order contracts.Order) (contracts.PaymentOutcome, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=EventPublisher --dir=. --output=./mocks --outpkg=mocks

// EventPublisher публикует доменное событие в канал. Транспорт (kafka, rabbitmq, push) подменяемый.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event contracts.DomainEvent) error
}
