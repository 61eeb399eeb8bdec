package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// messageWriter - часть *kafka.Writer, которая нужна DLQPublisher
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DLQPublisher публикует недекодируемые сообщения в Dead Letter Queue
type DLQPublisher struct {
	logger *zap.Logger
	writer messageWriter
	now    func() time.Time
}

// NewDLQPublisher создаёт новый DLQ publisher
func NewDLQPublisher(logger *zap.Logger, brokers []string, topic string) *DLQPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return newDLQPublisher(logger, writer)
}

func newDLQPublisher(logger *zap.Logger, writer messageWriter) *DLQPublisher {
	return &DLQPublisher{
		logger: logger,
		writer: writer,
		now:    time.Now,
	}
}

// DLQMessage представляет сообщение для DLQ
type DLQMessage struct {
	OriginalTopic     string    `json:"original_topic"`
	OriginalPartition int       `json:"original_partition"`
	OriginalOffset    int64     `json:"original_offset"`
	OriginalKey       string    `json:"original_key"`
	OriginalValue     string    `json:"original_value"`
	ErrorMessage      string    `json:"error_message"`
	FailedAt          time.Time `json:"failed_at"`
}

// Publish публикует сообщение в DLQ вместе с причиной отказа
func (p *DLQPublisher) Publish(ctx context.Context, original kafka.Message, cause error) error {
	errorMsg := ""
	if cause != nil {
		errorMsg = cause.Error()
	}

	payload, err := json.Marshal(DLQMessage{
		OriginalTopic:     original.Topic,
		OriginalPartition: original.Partition,
		OriginalOffset:    original.Offset,
		OriginalKey:       string(original.Key),
		OriginalValue:     string(original.Value),
		ErrorMessage:      errorMsg,
		FailedAt:          p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: original.Key, Value: payload}); err != nil {
		p.logger.Error("failed to publish message to DLQ",
			zap.Error(err),
			zap.String("original_topic", original.Topic),
			zap.Int("original_partition", original.Partition),
			zap.Int64("original_offset", original.Offset),
		)
		return err
	}

	p.logger.Info("message published to DLQ",
		zap.String("original_topic", original.Topic),
		zap.Int("original_partition", original.Partition),
		zap.Int64("original_offset", original.Offset),
		zap.String("error_message", errorMsg),
	)
	return nil
}

// Close закрывает writer
func (p *DLQPublisher) Close() error {
	p.logger.Info("closing DLQ publisher")
	return p.writer.Close()
}
