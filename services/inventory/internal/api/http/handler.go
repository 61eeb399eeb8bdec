package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/observability"
	"github.com/shestoi/orderflow/services/inventory/internal/service"
)

// Handler содержит HTTP-обработчики для Inventory Service
type Handler struct {
	inventory *service.InventoryService
	logger    *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(inventory *service.InventoryService, logger *zap.Logger) *Handler {
	return &Handler{
		inventory: inventory,
		logger:    logger,
	}
}

// StockResponse - ответ GET /api/inventory/stock/{productCode}
type StockResponse struct {
	ProductCode string `json:"productCode"`
	Available   int    `json:"available"`
}

// CheckStock обрабатывает GET /api/inventory/checkStock/{productCode}?quantity=N.
// Отвечает JSON bool; без quantity проверяется одна единица.
func (h *Handler) CheckStock(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context(), h.logger)
	productCode := chi.URLParam(r, "productCode")

	quantity := 1
	if raw := r.URL.Query().Get("quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid quantity: "+raw, http.StatusBadRequest)
			return
		}
		quantity = n
	}

	ok, err := h.inventory.CheckStock(r.Context(), productCode, quantity)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQuantity) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("CheckStock failed", zap.String("product_code", productCode), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, ok, logger)
}

// GetStock обрабатывает GET /api/inventory/stock/{productCode}
func (h *Handler) GetStock(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context(), h.logger)
	productCode := chi.URLParam(r, "productCode")

	available, err := h.inventory.GetStock(r.Context(), productCode)
	if err != nil {
		logger.Error("GetStock failed", zap.String("product_code", productCode), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, StockResponse{ProductCode: productCode, Available: available}, logger)
}

func writeJSON(w http.ResponseWriter, body any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
