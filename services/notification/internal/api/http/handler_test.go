package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []contracts.DomainEvent
}

func (h *recordingHandler) OnEvent(_ context.Context, event contracts.DomainEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func newTestRouter(events EventHandler) http.Handler {
	return NewRouter(NewHandler(events, "pubsub", "alerts", zap.NewNop()), nil, zap.NewNop())
}

func TestProcessEvent(t *testing.T) {
	event := contracts.DomainEvent{
		Status: contracts.OrderCreated,
		Order:  contracts.Order{OrderID: "o-1", ProductCode: "P1", Quantity: 1},
	}
	cloudEvent, err := contracts.NewCloudEvent("id-1", "order", "pubsub", "alerts", event)
	require.NoError(t, err)
	wrapped, err := json.Marshal(cloudEvent)
	require.NoError(t, err)
	bare, err := contracts.EncodeEvent(event)
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantEvents int
	}{
		{name: "cloudevent envelope", body: string(wrapped), wantStatus: http.StatusOK, wantEvents: 1},
		{name: "bare event", body: string(bare), wantStatus: http.StatusOK, wantEvents: 1},
		{name: "unknown status", body: `{"orderStatus":"ORDER_SHIPPED","orderRequest":{"orderId":"o-2"}}`, wantStatus: http.StatusOK, wantEvents: 1},
		{name: "invalid json", body: `{`, wantStatus: http.StatusBadRequest},
		{name: "missing status", body: `{"orderRequest":{"orderId":"o-3"}}`, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &recordingHandler{}
			router := newTestRouter(handler)

			req := httptest.NewRequest(http.MethodPost, "/process-alerts", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Len(t, handler.events, tt.wantEvents)
		})
	}
}

func TestSubscribe(t *testing.T) {
	router := newTestRouter(&recordingHandler{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dapr/subscribe", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var subs []Subscription
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&subs))
	require.Equal(t, []Subscription{{PubsubName: "pubsub", Topic: "alerts", Route: "/process-alerts"}}, subs)
}
