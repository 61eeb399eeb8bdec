// Package push доставляет доменные события подписчику HTTP POST-ом CloudEvents конверта,
// так же как это делает Dapr pub/sub для push подписок.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/platform/observability"
)

const contentType = "application/cloudevents+json"

// Publisher реализует service.EventPublisher через HTTP push
type Publisher struct {
	logger *zap.Logger
	client *http.Client
	url    string
	pubsub string
	source string
}

// NewPublisher создаёт push publisher. url - маршрут подписчика, например
// http://notification:8084/process-alerts.
func NewPublisher(logger *zap.Logger, client *http.Client, url, pubsub, source string) *Publisher {
	return &Publisher{
		logger: logger,
		client: client,
		url:    url,
		pubsub: pubsub,
		source: source,
	}
}

// Publish отправляет событие одним POST запросом. Любой не-2xx ответ - ошибка.
func (p *Publisher) Publish(ctx context.Context, channel string, event contracts.DomainEvent) error {
	ce, err := contracts.NewCloudEvent(uuid.New().String(), p.source, p.pubsub, channel, event)
	if err != nil {
		return fmt.Errorf("build cloudevent: %w", err)
	}
	body, err := json.Marshal(ce)
	if err != nil {
		return fmt.Errorf("encode cloudevent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	observability.InjectHTTP(ctx, req.Header)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Error("failed to push order event",
			zap.Error(err),
			zap.String("url", p.url),
			zap.String("order_id", event.Order.OrderID),
		)
		return fmt.Errorf("push to %s: %w", p.url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push to %s: subscriber returned %d", p.url, resp.StatusCode)
	}

	p.logger.Info("order event pushed",
		zap.String("topic", channel),
		zap.String("event_id", ce.ID),
		zap.String("order_id", event.Order.OrderID),
		zap.String("status", string(event.Status)),
	)
	return nil
}

// Close освобождает keep-alive соединения HTTP клиента
func (p *Publisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
