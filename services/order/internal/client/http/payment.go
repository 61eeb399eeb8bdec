package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/platform/observability"
	"github.com/shestoi/orderflow/services/order/internal/service"
)

// PaymentClient адаптирует payment HTTP API к интерфейсу service.PaymentClient.
// 4xx считается бизнес-отказом (service.ErrPaymentDeclined), 5xx и сетевые ошибки - сбоем транспорта.
type PaymentClient struct {
	baseURL string
	client  *http.Client
}

var _ service.PaymentClient = (*PaymentClient)(nil)

// NewPaymentClient создаёт клиент для baseURL вида http://payment:8082
func NewPaymentClient(baseURL string, client *http.Client) *PaymentClient {
	return &PaymentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Charge вызывает POST /api/payment/makePayment ровно один раз, без ретраев
func (c *PaymentClient) Charge(ctx context.Context, order contracts.Order) (contracts.PaymentOutcome, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return contracts.PaymentOutcome{}, fmt.Errorf("encode payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/payment/makePayment", bytes.NewReader(body))
	if err != nil {
		return contracts.PaymentOutcome{}, fmt.Errorf("build payment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	observability.InjectHTTP(ctx, req.Header)

	resp, err := c.client.Do(req)
	if err != nil {
		return contracts.PaymentOutcome{}, fmt.Errorf("payment request: %w", err)
	}
	defer drain(resp)

	switch {
	// 408 и 429 - перегрузка или таймаут на стороне payment, а не отказ в оплате
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests:
		return contracts.PaymentOutcome{}, statusError("payment", resp)
	case resp.StatusCode >= 400:
		return contracts.PaymentOutcome{}, fmt.Errorf("%w: %s", service.ErrPaymentDeclined, statusError("payment", resp))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return contracts.PaymentOutcome{}, statusError("payment", resp)
	}

	var outcome contracts.PaymentOutcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		return contracts.PaymentOutcome{}, fmt.Errorf("decode payment response: %w", err)
	}
	return outcome, nil
}
