package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shestoi/orderflow/platform/observability"
	"github.com/shestoi/orderflow/services/order/internal/service"
)

// InventoryClient адаптирует inventory HTTP API к интерфейсу service.InventoryClient
type InventoryClient struct {
	baseURL string
	client  *http.Client
}

var _ service.InventoryClient = (*InventoryClient)(nil)

// NewInventoryClient создаёт клиент для baseURL вида http://inventory:8081
func NewInventoryClient(baseURL string, client *http.Client) *InventoryClient {
	return &InventoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// CheckStock вызывает GET /api/inventory/checkStock/{productCode}?quantity=N
func (c *InventoryClient) CheckStock(ctx context.Context, productCode string, quantity int) (bool, error) {
	endpoint := fmt.Sprintf("%s/api/inventory/checkStock/%s?quantity=%s",
		c.baseURL, url.PathEscape(productCode), strconv.Itoa(quantity))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build inventory request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	observability.InjectHTTP(ctx, req.Header)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("inventory request: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return false, statusError("inventory", resp)
	}

	var available bool
	if err := json.NewDecoder(resp.Body).Decode(&available); err != nil {
		return false, fmt.Errorf("decode inventory response: %w", err)
	}
	return available, nil
}
