// Package contracts содержит модели и wire-формат, общие для order и notification сервисов.
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidOrder возвращается Validate для некорректного заказа
var ErrInvalidOrder = errors.New("invalid order")

// Order - входные данные оркестрации. После создания не меняется.
// OrderID назначает клиент, он проходит без изменений до текста уведомления.
type Order struct {
	OrderID     string          `json:"orderId"`
	UserEmail   string          `json:"userEmail"`
	ProductCode string          `json:"productCode"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Validate проверяет заказ до любых удалённых вызовов
func (o Order) Validate() error {
	switch {
	case strings.TrimSpace(o.OrderID) == "":
		return fmt.Errorf("%w: orderId is required", ErrInvalidOrder)
	case strings.TrimSpace(o.ProductCode) == "":
		return fmt.Errorf("%w: productCode is required", ErrInvalidOrder)
	case o.Quantity < 1:
		return fmt.Errorf("%w: quantity must be >= 1, got %d", ErrInvalidOrder, o.Quantity)
	case o.Price.IsNegative():
		return fmt.Errorf("%w: price must be >= 0, got %s", ErrInvalidOrder, o.Price)
	}
	return nil
}

// orderJSON нужен, чтобы price уходил числом, а не строкой (дефолт shopspring/decimal)
type orderJSON struct {
	OrderID     string      `json:"orderId"`
	UserEmail   string      `json:"userEmail"`
	ProductCode string      `json:"productCode"`
	Quantity    int         `json:"quantity"`
	Price       json.Number `json:"price"`
}

// MarshalJSON кодирует заказ с числовым price
func (o Order) MarshalJSON() ([]byte, error) {
	return json.Marshal(orderJSON{
		OrderID:     o.OrderID,
		UserEmail:   o.UserEmail,
		ProductCode: o.ProductCode,
		Quantity:    o.Quantity,
		Price:       json.Number(o.Price.String()),
	})
}

// PaymentStatus - результат списания, который возвращает payment сервис
type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "Success"
	PaymentFailure PaymentStatus = "Failure"
)

// PaymentOutcome - ответ payment сервиса
type PaymentOutcome struct {
	PaymentID string          `json:"paymentId"`
	Status    PaymentStatus   `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
}

// Succeeded - только статус Success считается успешной оплатой
func (p PaymentOutcome) Succeeded() bool {
	return strings.EqualFold(string(p.Status), string(PaymentSuccess))
}

type paymentOutcomeJSON struct {
	PaymentID string        `json:"paymentId"`
	Status    PaymentStatus `json:"status"`
	Amount    json.Number   `json:"amount"`
}

// MarshalJSON кодирует ответ с числовым amount
func (p PaymentOutcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(paymentOutcomeJSON{
		PaymentID: p.PaymentID,
		Status:    p.Status,
		Amount:    json.Number(p.Amount.String()),
	})
}
