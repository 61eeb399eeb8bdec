package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/contracts"
	"github.com/shestoi/orderflow/platform/observability"
)

const (
	maxRequestBody = 1 << 20

	// EventsRoute - маршрут push доставки событий
	EventsRoute = "/process-alerts"
)

// EventHandler - то, что handler требует от service слоя
type EventHandler interface {
	OnEvent(ctx context.Context, event contracts.DomainEvent)
}

// Subscription описывает подписку для GET /dapr/subscribe
type Subscription struct {
	PubsubName string `json:"pubsubname"`
	Topic      string `json:"topic"`
	Route      string `json:"route"`
}

// Handler принимает события, доставленные push-ом (Dapr-style)
type Handler struct {
	events        EventHandler
	subscriptions []Subscription
	logger        *zap.Logger
}

// NewHandler создаёт handler с подпиской pubsubName/topic на EventsRoute
func NewHandler(events EventHandler, pubsubName, topic string, logger *zap.Logger) *Handler {
	return &Handler{
		events: events,
		subscriptions: []Subscription{
			{PubsubName: pubsubName, Topic: topic, Route: EventsRoute},
		},
		logger: logger,
	}
}

// ProcessEvent обрабатывает POST /process-alerts.
// Принимает CloudEvents конверт или голое событие; 400 только для недекодируемого тела.
func (h *Handler) ProcessEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx, h.logger)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		logger.Warn("Failed to read event body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	event, err := contracts.DecodeEvent(body)
	if err != nil {
		logger.Warn("Invalid event payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	h.events.OnEvent(ctx, event)

	writeJSON(w, http.StatusOK, map[string]string{"status": "SUCCESS"})
}

// Subscribe обрабатывает GET /dapr/subscribe
func (h *Handler) Subscribe(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.subscriptions)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
