package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// ExchangeDeclarer - часть *amqp091.Channel для объявления exchange
type ExchangeDeclarer interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
}

// DeclareExchange объявляет durable fanout exchange канала и возвращает его имя.
// Publisher и consumer объявляют его одинаково, порядок запуска сервисов не важен.
func DeclareExchange(ch ExchangeDeclarer, channel string) (string, error) {
	name := ExchangeName(channel)
	if err := ch.ExchangeDeclare(name, amqp091.ExchangeFanout, true, false, false, false, nil); err != nil {
		return "", fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return name, nil
}

// ErrConnectionClosed - соединение с брокером закрыто и само не восстановится
var ErrConnectionClosed = errors.New("rabbitmq connection closed")

// ConnectionCheck - health check по состоянию соединения, isClosed обычно (*amqp091.Connection).IsClosed
func ConnectionCheck(isClosed func() bool) func(ctx context.Context) error {
	return func(context.Context) error {
		if isClosed() {
			return ErrConnectionClosed
		}
		return nil
	}
}
