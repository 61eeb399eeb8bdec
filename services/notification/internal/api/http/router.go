package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/orderflow/platform/health/http"
	platformobservability "github.com/shestoi/orderflow/platform/observability"
)

// NewRouter создаёт HTTP роутер Notification Service
func NewRouter(handler *Handler, checks map[string]platformhealth.Checker, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("notification", logger))
	}

	router.Post(EventsRoute, handler.ProcessEvent)
	router.Get("/dapr/subscribe", handler.Subscribe)
	router.Get("/health", platformhealth.Handler(checks))

	return router
}
