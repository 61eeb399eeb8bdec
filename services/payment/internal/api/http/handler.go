package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/platform/observability"
	"github.com/shestoi/orderflow/services/payment/internal/service"
)

const maxRequestBody = 1 << 20

// Handler содержит HTTP-обработчики для Payment Service
type Handler struct {
	payments *service.PaymentService
	logger   *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(payments *service.PaymentService, logger *zap.Logger) *Handler {
	return &Handler{
		payments: payments,
		logger:   logger,
	}
}

// MakePayment обрабатывает POST /api/payment/makePayment.
// Отказ по лимиту - это 200 со статусом Failure, а не ошибка HTTP.
func (h *Handler) MakePayment(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context(), h.logger)

	var order contracts.Order
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&order); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	outcome, err := h.payments.ProcessPayment(r.Context(), order)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPayment) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Error("ProcessPayment failed", zap.String("order_id", order.OrderID), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(outcome); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
