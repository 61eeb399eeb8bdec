// Package rabbitmq публикует доменные события в RabbitMQ: один fanout exchange на канал.
package rabbitmq

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	platformrabbit "github.com/shestoi/orderflow/platform/rabbitmq"
)

// amqpChannel - часть *amqp091.Channel, которая нужна publisher
type amqpChannel interface {
	platformrabbit.ExchangeDeclarer
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher реализует service.EventPublisher поверх RabbitMQ
type Publisher struct {
	logger  *zap.Logger
	open     func() (amqpChannel, error)
	closeFn  func() error
	isClosed func() bool

	mu       sync.Mutex
	declared map[string]string // channel -> exchange
}

// NewPublisher подключается к RabbitMQ по url
func NewPublisher(logger *zap.Logger, url string) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	open := func() (amqpChannel, error) {
		return conn.Channel()
	}
	p := newPublisher(logger, open, conn.Close)
	p.isClosed = conn.IsClosed
	return p, nil
}

func newPublisher(logger *zap.Logger, open func() (amqpChannel, error), closeFn func() error) *Publisher {
	return &Publisher{
		logger:   logger,
		open:     open,
		closeFn:  closeFn,
		isClosed: func() bool { return false },
		declared: make(map[string]string),
	}
}

// Check сообщает, живо ли соединение с брокером. amqp091 не переподключается сам,
// после обрыва каждый Publish падает до перезапуска сервиса.
func (p *Publisher) Check(ctx context.Context) error {
	return platformrabbit.ConnectionCheck(p.isClosed)(ctx)
}

// Close закрывает соединение
func (p *Publisher) Close() error {
	return p.closeFn()
}

// Publish отправляет persistent JSON сообщение в exchange канала.
// AMQP channel открывается на каждую публикацию: *amqp091.Channel не потокобезопасен.
func (p *Publisher) Publish(ctx context.Context, channel string, event contracts.DomainEvent) error {
	body, err := contracts.EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ch, err := p.open()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	exchange, err := p.exchange(ch, channel)
	if err != nil {
		return err
	}

	eventID := uuid.New().String()
	err = ch.PublishWithContext(ctx, exchange, event.Order.OrderID, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    eventID,
		Type:         string(event.Status),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		p.logger.Error("failed to publish order event",
			zap.Error(err),
			zap.String("exchange", exchange),
			zap.String("order_id", event.Order.OrderID),
		)
		return fmt.Errorf("rabbitmq publish to %s: %w", exchange, err)
	}

	p.logger.Info("order event published",
		zap.String("exchange", exchange),
		zap.String("event_id", eventID),
		zap.String("order_id", event.Order.OrderID),
		zap.String("status", string(event.Status)),
	)
	return nil
}

func (p *Publisher) exchange(ch amqpChannel, channel string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if name, ok := p.declared[channel]; ok {
		return name, nil
	}
	name, err := platformrabbit.DeclareExchange(ch, channel)
	if err != nil {
		return "", err
	}
	p.declared[channel] = name
	return name, nil
}
