package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/platform/observability"
	"github.com/shestoi/orderflow/services/order/internal/breaker"
	"github.com/shestoi/orderflow/services/order/internal/service"
)

const maxRequestBody = 1 << 20

// OrderProcessor - то, что handler требует от service слоя
type OrderProcessor interface {
	ProcessOrder(ctx context.Context, order contracts.Order) (contracts.DomainEvent, error)
	BreakerSnapshot() breaker.Snapshot
}

// APIError - тело ошибки для клиента. Создаётся только на HTTP границе.
type APIError struct {
	Message   string    `json:"message"`
	ErrorCode string    `json:"errorCode"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler содержит HTTP-обработчики для Order Service
// Зависит от service слоя, но не знает о деталях реализации (HTTP клиенты, брокеры)
type Handler struct {
	orders OrderProcessor
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler создаёт новый HTTP handler
func NewHandler(orders OrderProcessor, logger *zap.Logger) *Handler {
	return &Handler{
		orders: orders,
		logger: logger,
		now:    time.Now,
	}
}

// ExecuteOrder обрабатывает POST /api/order/execute
func (h *Handler) ExecuteOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx, h.logger)

	var order contracts.Order
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&order); err != nil {
		logger.Warn("Invalid order payload", zap.Error(err))
		h.writeError(w, http.StatusBadRequest, service.KindValidation.Code(), "invalid JSON: "+err.Error())
		return
	}

	event, err := h.orders.ProcessOrder(ctx, order)
	if err != nil {
		var svcErr *service.Error
		if !errors.As(err, &svcErr) {
			logger.Error("Unclassified order error", zap.String("order_id", order.OrderID), zap.Error(err))
			h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
			return
		}
		// причина (адреса, тела ответов зависимостей) остаётся в логах
		logger.Warn("Order rejected",
			zap.String("order_id", order.OrderID),
			zap.String("error_code", svcErr.Kind.Code()),
			zap.Error(err),
		)
		h.writeError(w, statusFor(svcErr.Kind), svcErr.Kind.Code(), svcErr.Message)
		return
	}

	writeJSON(w, http.StatusOK, event, logger)
}

// GetBreaker обрабатывает GET /api/order/breaker - состояние breaker payment сервиса
func (h *Handler) GetBreaker(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.orders.BreakerSnapshot(), observability.LoggerFromContext(r.Context(), h.logger))
}

// statusFor переводит категорию ошибки в HTTP статус
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindOutOfStock:
		return http.StatusConflict
	case service.KindPaymentFailed:
		return http.StatusPaymentRequired
	case service.KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIError{
		Message:   message,
		ErrorCode: code,
		Timestamp: h.now().UTC(),
	}, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
