// Package kafka доставляет доменные события из Kafka в Dispatcher.
package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
)

// Handler обрабатывает декодированное событие
type Handler interface {
	OnEvent(ctx context.Context, event contracts.DomainEvent)
}

// messageReader - часть *kafka.Reader, которая нужна Consumer
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// deadLetters принимает сообщения, которые не удалось декодировать
type deadLetters interface {
	Publish(ctx context.Context, original kafka.Message, cause error) error
}

// Consumer читает канал событий с at-least-once семантикой:
// FetchMessage, обработка, затем CommitMessages.
type Consumer struct {
	logger     *zap.Logger
	reader     messageReader
	handler    Handler
	dlq        deadLetters
	retryDelay time.Duration
}

// NewConsumer создаёт consumer группы groupID для топика topic
func NewConsumer(logger *zap.Logger, brokers []string, groupID, topic string, handler Handler, dlq *DLQPublisher) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	logger = logger.With(zap.String("topic", topic), zap.String("group_id", groupID))
	return newConsumer(logger, reader, handler, dlq)
}

func newConsumer(logger *zap.Logger, reader messageReader, handler Handler, dlq deadLetters) *Consumer {
	return &Consumer{
		logger:     logger,
		reader:     reader,
		handler:    handler,
		dlq:        dlq,
		retryDelay: time.Second,
	}
}

// Start блокируется до отмены ctx
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting kafka consumer")

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.logger.Info("consumer context cancelled, stopping")
				return nil
			}
			c.logger.Error("failed to fetch message from kafka", zap.Error(err))
			if !c.sleep(ctx) {
				return nil
			}
			continue
		}

		if !c.processMessage(ctx, m) {
			// Offset не коммитим: сообщение будет доставлено повторно
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("failed to commit message offset",
				zap.Error(err),
				zap.Int("partition", m.Partition),
				zap.Int64("offset", m.Offset),
			)
			continue
		}

		c.logger.Debug("message offset committed",
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
		)
	}
}

// processMessage возвращает true, если offset можно закоммитить
func (c *Consumer) processMessage(ctx context.Context, m kafka.Message) bool {
	event, err := contracts.DecodeEvent(m.Value)
	if err != nil {
		parseErr := &ParseError{Topic: m.Topic, Partition: m.Partition, Offset: m.Offset, Err: err}
		c.logger.Error("failed to decode kafka message", zap.Error(parseErr))

		// Отправляем в DLQ и коммитим
		if dlqErr := c.dlq.Publish(context.WithoutCancel(ctx), m, parseErr); dlqErr != nil {
			c.logger.Error("failed to publish to DLQ, not committing", zap.Error(dlqErr))
			return false
		}
		return true
	}

	c.logger.Debug("received order event",
		zap.String("order_id", event.Order.OrderID),
		zap.Int("partition", m.Partition),
		zap.Int64("offset", m.Offset),
	)

	c.handler.OnEvent(ctx, event)
	return true
}

func (c *Consumer) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.retryDelay):
		return true
	}
}

// Close закрывает Kafka reader
func (c *Consumer) Close() error {
	c.logger.Info("closing kafka consumer")
	return c.reader.Close()
}
