package rabbitmq

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("RABBITMQ_URL", "amqp://u:p@mq:5672/")
	t.Setenv("RABBITMQ_QUEUE", "notification.alerts")

	cfg := DefaultConfig("local")
	require.NoError(t, LoadEnv(&cfg))
	require.Equal(t, "amqp://u:p@mq:5672/", cfg.URL)
	require.Equal(t, "notification.alerts", cfg.Queue)
	require.Equal(t, 32, cfg.Prefetch)
}

func TestLoadEnv_InvalidPrefetch(t *testing.T) {
	t.Setenv("RABBITMQ_PREFETCH", "0")

	cfg := DefaultConfig("docker")
	require.Error(t, LoadEnv(&cfg))
}

func TestExchangeName(t *testing.T) {
	require.Equal(t, "orderflow.alerts", ExchangeName("alerts"))
}
