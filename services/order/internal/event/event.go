// Package event выбирает транспорт доменных событий по конфигурации.
package event

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	platformhealth "github.com/shestoi/orderflow/platform/health/http"
	platformkafka "github.com/shestoi/orderflow/platform/kafka"
	"github.com/shestoi/orderflow/services/order/internal/config"
	"github.com/shestoi/orderflow/services/order/internal/event/kafka"
	"github.com/shestoi/orderflow/services/order/internal/event/push"
	"github.com/shestoi/orderflow/services/order/internal/event/rabbitmq"
	"github.com/shestoi/orderflow/services/order/internal/service"
)

// Publisher - service.EventPublisher с освобождением ресурсов транспорта
type Publisher interface {
	service.EventPublisher
	Close() error
}

// NewPublisher создаёт publisher для cfg.EventTransport и проверку готовности транспорта (может быть nil)
func NewPublisher(cfg config.Config, logger *zap.Logger, client *http.Client) (Publisher, platformhealth.Checker, error) {
	logger = logger.With(zap.String("transport", string(cfg.EventTransport)))

	switch cfg.EventTransport {
	case config.TransportKafka:
		logger.Info("Using Kafka event publisher", zap.Strings("brokers", cfg.Kafka.Brokers))
		brokers := cfg.Kafka.Brokers
		check := func(ctx context.Context) error {
			return platformkafka.Ping(ctx, brokers)
		}
		return kafka.NewPublisher(logger, brokers), check, nil

	case config.TransportRabbitMQ:
		logger.Info("Using RabbitMQ event publisher")
		p, err := rabbitmq.NewPublisher(logger, cfg.RabbitMQ.URL)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Check, nil

	case config.TransportPush:
		logger.Info("Using HTTP push event publisher", zap.String("url", cfg.PushURL))
		return push.NewPublisher(logger, client, cfg.PushURL, cfg.PubsubName, "order"), nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported event transport: %s", cfg.EventTransport)
	}
}
