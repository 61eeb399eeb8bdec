package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
)

// OrderStatus - тег доменного события. Закрытое перечисление.
type OrderStatus string

const (
	OrderCreated   OrderStatus = "ORDER_CREATED"
	OrderCancelled OrderStatus = "ORDER_CANCELLED"
	OrderUpdated   OrderStatus = "ORDER_UPDATED"
)

// Known сообщает, входит ли статус в перечисление
func (s OrderStatus) Known() bool {
	switch s {
	case OrderCreated, OrderCancelled, OrderUpdated:
		return true
	}
	return false
}

// DomainEvent - единица публикации и потребления. Order вложен по значению.
type DomainEvent struct {
	Status OrderStatus `json:"orderStatus"`
	Order  Order       `json:"orderRequest"`
}

// NewOrderCreated строит событие для успешно оплаченного заказа
func NewOrderCreated(order Order) DomainEvent {
	return DomainEvent{Status: OrderCreated, Order: order}
}

// ErrMalformedEvent возвращается DecodeEvent, если payload не является событием
var ErrMalformedEvent = errors.New("malformed domain event")

// EncodeEvent - единый JSON codec для всех транспортов
func EncodeEvent(event DomainEvent) ([]byte, error) {
	return json.Marshal(event)
}

// envelope покрывает оба варианта: голое событие и CloudEvents конверт
type envelope struct {
	SpecVersion string          `json:"specversion"`
	Data        json.RawMessage `json:"data"`
	DomainEvent
}

// DecodeEvent декодирует событие, при необходимости разворачивая CloudEvents конверт.
// Незнакомый orderStatus сохраняется как есть.
func DecodeEvent(data []byte) (DomainEvent, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return DomainEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	event := env.DomainEvent
	if env.SpecVersion != "" && len(env.Data) > 0 {
		event = DomainEvent{}
		if err := json.Unmarshal(env.Data, &event); err != nil {
			return DomainEvent{}, fmt.Errorf("%w: cloudevent data: %v", ErrMalformedEvent, err)
		}
	}

	if event.Status == "" {
		return DomainEvent{}, fmt.Errorf("%w: orderStatus is required", ErrMalformedEvent)
	}
	return event, nil
}
