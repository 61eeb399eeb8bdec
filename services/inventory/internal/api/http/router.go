package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/orderflow/platform/health/http"
	platformobservability "github.com/shestoi/orderflow/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер для Inventory Service
func NewRouter(handler *Handler, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(platformobservability.HTTPMiddleware("inventory", logger))

	router.Route("/api/inventory", func(r chi.Router) {
		r.Get("/checkStock/{productCode}", handler.CheckStock)
		r.Get("/stock/{productCode}", handler.GetStock)
	})

	router.Get("/health", platformhealth.Handler(nil))

	return router
}
