package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/services/order/internal/breaker"
	"github.com/shestoi/orderflow/services/order/internal/service"
)

type fakeProcessor struct {
	event contracts.DomainEvent
	err   error
	got   contracts.Order
	calls int
}

func (f *fakeProcessor) ProcessOrder(_ context.Context, order contracts.Order) (contracts.DomainEvent, error) {
	f.calls++
	f.got = order
	return f.event, f.err
}

func (f *fakeProcessor) BreakerSnapshot() breaker.Snapshot {
	return breaker.Snapshot{Name: "payment", State: breaker.StateOpen, FailureCount: 5, TotalCount: 5}
}

const orderBody = `{"orderId":"O1","userEmail":"a@b.com","productCode":"P1","quantity":2,"price":9.99}`

func newTestRouter(p *fakeProcessor) http.Handler {
	return NewRouter(NewHandler(p, zap.NewNop()), nil, zap.NewNop())
}

func TestExecuteOrder_Success(t *testing.T) {
	p := &fakeProcessor{}
	p.event = contracts.DomainEvent{Status: contracts.OrderCreated}

	router := newTestRouter(p)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/order/execute", strings.NewReader(orderBody)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "O1", p.got.OrderID)
	require.Equal(t, 2, p.got.Quantity)
	require.Equal(t, "9.99", p.got.Price.String())

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ORDER_CREATED", body["orderStatus"])
}

func TestExecuteOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		kind   service.Kind
		status int
	}{
		{kind: service.KindValidation, status: http.StatusBadRequest},
		{kind: service.KindOutOfStock, status: http.StatusConflict},
		{kind: service.KindPaymentFailed, status: http.StatusPaymentRequired},
		{kind: service.KindServiceUnavailable, status: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.kind.Code(), func(t *testing.T) {
			p := &fakeProcessor{err: &service.Error{Kind: tt.kind, Message: "boom"}}

			rec := httptest.NewRecorder()
			newTestRouter(p).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/order/execute", strings.NewReader(orderBody)))

			require.Equal(t, tt.status, rec.Code)

			var apiErr APIError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
			require.Equal(t, tt.kind.Code(), apiErr.ErrorCode)
			require.Equal(t, "boom", apiErr.Message)
			require.WithinDuration(t, time.Now(), apiErr.Timestamp, time.Minute)
		})
	}
}

func TestExecuteOrder_ErrorCauseNotExposed(t *testing.T) {
	cause := errors.New(`dial tcp 10.0.3.7:8081: connection refused`)
	p := &fakeProcessor{err: fmt.Errorf("process order: %w", &service.Error{
		Kind:    service.KindServiceUnavailable,
		Message: "payment service unavailable",
		Err:     cause,
	})}

	rec := httptest.NewRecorder()
	newTestRouter(p).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/order/execute", strings.NewReader(orderBody)))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NotContains(t, rec.Body.String(), "10.0.3.7")

	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	require.Equal(t, "payment service unavailable", apiErr.Message)
	require.Equal(t, "SERVICE_UNAVAILABLE", apiErr.ErrorCode)
}

func TestExecuteOrder_InvalidJSON(t *testing.T) {
	p := &fakeProcessor{}

	rec := httptest.NewRecorder()
	newTestRouter(p).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/order/execute", strings.NewReader(`{"orderId":`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, p.calls)

	var apiErr APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	require.Equal(t, "VALIDATION_ERROR", apiErr.ErrorCode)
}

func TestExecuteOrder_UnclassifiedError(t *testing.T) {
	p := &fakeProcessor{err: errors.New("unexpected")}

	rec := httptest.NewRecorder()
	newTestRouter(p).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/order/execute", strings.NewReader(orderBody)))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "unexpected")
}

func TestGetBreaker(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeProcessor{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/order/breaker", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"name":"payment","state":"open","failureCount":5,"totalCount":5,"lastTransitionTime":"0001-01-01T00:00:00Z"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeProcessor{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}
