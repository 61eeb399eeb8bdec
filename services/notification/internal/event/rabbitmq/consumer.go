// Package rabbitmq доставляет доменные события из очереди RabbitMQ в Dispatcher.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	platformrabbit "github.com/shestoi/orderflow/platform/rabbitmq"
)

// Handler обрабатывает декодированное событие
type Handler interface {
	OnEvent(ctx context.Context, event contracts.DomainEvent)
}

// amqpChannel - часть *amqp091.Channel, которая нужна consumer
type amqpChannel interface {
	platformrabbit.ExchangeDeclarer
	Qos(prefetchCount, prefetchSize int, global bool) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp091.Table) (amqp091.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp091.Table) error
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp091.Table) (<-chan amqp091.Delivery, error)
	Close() error
}

// ErrDeliveriesClosed - брокер закрыл канал доставки, хотя consumer не останавливали
var ErrDeliveriesClosed = errors.New("rabbitmq delivery channel closed")

// Options задаёт очередь и параллелизм consumer-а
type Options struct {
	Channel  string
	Queue    string
	Prefetch int
	Workers  int
}

// Consumer читает очередь, привязанную к fanout exchange канала.
// Подтверждение ручное: ack после OnEvent, nack без requeue для недекодируемых сообщений.
type Consumer struct {
	logger  *zap.Logger
	open    func() (amqpChannel, error)
	closeFn  func() error
	isClosed func() bool
	handler  Handler
	opts    Options
}

// NewConsumer подключается к RabbitMQ по url
func NewConsumer(logger *zap.Logger, url string, handler Handler, opts Options) (*Consumer, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	open := func() (amqpChannel, error) {
		return conn.Channel()
	}
	c := newConsumer(logger, open, conn.Close, handler, opts)
	c.isClosed = conn.IsClosed
	return c, nil
}

func newConsumer(logger *zap.Logger, open func() (amqpChannel, error), closeFn func() error, handler Handler, opts Options) *Consumer {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Consumer{
		logger:   logger.With(zap.String("queue", opts.Queue), zap.String("channel", opts.Channel)),
		open:     open,
		closeFn:  closeFn,
		isClosed: func() bool { return false },
		handler:  handler,
		opts:     opts,
	}
}

// Start объявляет топологию и обрабатывает сообщения пулом из opts.Workers горутин.
// Блокируется до отмены ctx или закрытия канала доставки. Закрытие канала при живом ctx
// (обрыв соединения, удаление очереди) возвращает ErrDeliveriesClosed.
func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.open()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	deliveries, err := c.setup(ctx, ch)
	if err != nil {
		return err
	}

	c.logger.Info("starting rabbitmq consumer", zap.Int("workers", c.opts.Workers))

	var wg sync.WaitGroup
	for i := 0; i < c.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.work(ctx, deliveries)
		}()
	}
	wg.Wait()

	if ctx.Err() == nil {
		return ErrDeliveriesClosed
	}
	c.logger.Info("rabbitmq consumer stopped")
	return nil
}

func (c *Consumer) setup(ctx context.Context, ch amqpChannel) (<-chan amqp091.Delivery, error) {
	if err := ch.Qos(c.opts.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	exchange, err := platformrabbit.DeclareExchange(ch, c.opts.Channel)
	if err != nil {
		return nil, err
	}

	q, err := ch.QueueDeclare(c.opts.Queue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume queue: %w", err)
	}
	return deliveries, nil
}

func (c *Consumer) work(ctx context.Context, deliveries <-chan amqp091.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				c.logger.Info("delivery channel closed")
				return
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp091.Delivery) {
	event, err := contracts.DecodeEvent(d.Body)
	if err != nil {
		c.logger.Error("failed to decode rabbitmq message",
			zap.Error(err),
			zap.String("message_id", d.MessageId),
		)
		if nackErr := d.Nack(false, false); nackErr != nil {
			c.logger.Error("failed to nack message", zap.Error(nackErr))
		}
		return
	}

	c.handler.OnEvent(ctx, event)

	if err := d.Ack(false); err != nil {
		c.logger.Error("failed to ack message",
			zap.Error(err),
			zap.String("order_id", event.Order.OrderID),
		)
	}
}

// Check сообщает, живо ли соединение с брокером
func (c *Consumer) Check(ctx context.Context) error {
	return platformrabbit.ConnectionCheck(c.isClosed)(ctx)
}

// Close закрывает соединение
func (c *Consumer) Close() error {
	return c.closeFn()
}
