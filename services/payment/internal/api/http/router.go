package httpapi

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/orderflow/platform/health/http"
	platformobservability "github.com/shestoi/orderflow/platform/observability"
)

// NewRouter создаёт и настраивает HTTP роутер для Payment Service
func NewRouter(handler *Handler, logger *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(platformobservability.HTTPMiddleware("payment", logger))

	router.Post("/api/payment/makePayment", handler.MakePayment)
	router.Get("/health", platformhealth.Handler(nil))

	return router
}
