package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
)

// messageWriter - часть kafka.Writer, которая нужна publisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher реализует service.EventPublisher поверх Kafka. Топик = канал.
type Publisher struct {
	logger *zap.Logger
	writer messageWriter
	now    func() time.Time
}

// NewPublisher создаёт Kafka publisher. Топик не фиксируется в writer и берётся из канала.
func NewPublisher(logger *zap.Logger, brokers []string) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return newPublisher(logger, writer)
}

func newPublisher(logger *zap.Logger, writer messageWriter) *Publisher {
	return &Publisher{
		logger: logger,
		writer: writer,
		now:    time.Now,
	}
}

// Close закрывает Kafka writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Publish публикует событие в топик channel. Ключ сообщения - orderId,
// поэтому события одного заказа попадают в одну партицию.
func (p *Publisher) Publish(ctx context.Context, channel string, event contracts.DomainEvent) error {
	value, err := contracts.EncodeEvent(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	eventID := uuid.New().String()
	message := kafka.Message{
		Topic: channel,
		Key:   []byte(event.Order.OrderID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(eventID)},
			{Key: "event_type", Value: []byte(event.Status)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: p.now().UTC(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.Error("failed to publish order event",
			zap.Error(err),
			zap.String("topic", channel),
			zap.String("order_id", event.Order.OrderID),
		)
		return fmt.Errorf("kafka write to %s: %w", channel, err)
	}

	p.logger.Info("order event published",
		zap.String("topic", channel),
		zap.String("event_id", eventID),
		zap.String("order_id", event.Order.OrderID),
		zap.String("status", string(event.Status)),
	)
	return nil
}
