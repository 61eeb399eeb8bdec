package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/orderflow/platform/health/http"
	platformobservability "github.com/shestoi/orderflow/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер для Order Service.
// checks - проверки готовности для /health (брокер событий).
// logger используется для observability HTTP middleware (trace_id в логах).
func NewRouter(handler *Handler, checks map[string]platformhealth.Checker, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("order", logger))
	}

	router.Route("/api/order", func(r chi.Router) {
		r.Post("/execute", handler.ExecuteOrder)
		r.Get("/breaker", handler.GetBreaker)
	})

	router.Get("/health", platformhealth.Handler(checks))

	return router
}
