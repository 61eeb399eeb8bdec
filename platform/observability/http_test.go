package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHTTPMiddleware_PutsLoggerIntoContext(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)

	base := zap.NewNop()
	var got *zap.Logger
	h := HTTPMiddleware("order", base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LoggerFromContext(r.Context(), nil)
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, got)
}

func TestLoggerFromContext_Fallback(t *testing.T) {
	fallback := zap.NewNop()
	require.Same(t, fallback, LoggerFromContext(context.Background(), fallback))
}
