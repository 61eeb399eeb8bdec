package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/services/inventory/internal/repository/memory"
	"github.com/shestoi/orderflow/services/inventory/internal/service"
)

func newTestRouter() http.Handler {
	repo := memory.NewMemoryRepository(map[string]int{"P1": 100, "P2": 0})
	svc := service.NewInventoryService(zap.NewNop(), repo, 42)
	return NewRouter(NewHandler(svc, zap.NewNop()), zap.NewNop())
}

func TestCheckStock(t *testing.T) {
	tests := []struct {
		name   string
		target string
		status int
		body   string
	}{
		{name: "available", target: "/api/inventory/checkStock/P1?quantity=2", status: http.StatusOK, body: "true"},
		{name: "out of stock", target: "/api/inventory/checkStock/P2?quantity=1", status: http.StatusOK, body: "false"},
		{name: "default quantity", target: "/api/inventory/checkStock/P1", status: http.StatusOK, body: "true"},
		{name: "unknown product uses default stock", target: "/api/inventory/checkStock/P9?quantity=43", status: http.StatusOK, body: "false"},
		{name: "invalid quantity", target: "/api/inventory/checkStock/P1?quantity=abc", status: http.StatusBadRequest},
		{name: "zero quantity", target: "/api/inventory/checkStock/P1?quantity=0", status: http.StatusBadRequest},
	}

	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			require.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				require.JSONEq(t, tt.body, rec.Body.String())
			}
		})
	}
}

func TestGetStock(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/inventory/stock/P1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, StockResponse{ProductCode: "P1", Available: 100}, resp)
}
