package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_LocalDefaults(t *testing.T) {
	// Очищаем env
	os.Clearenv()
	os.Setenv("APP_ENV", "local")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvLocal, cfg.AppEnv)
	require.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	require.Equal(t, "http://127.0.0.1:8081", cfg.InventoryURL)
	require.Equal(t, "http://127.0.0.1:8082", cfg.PaymentURL)
	require.Equal(t, TransportKafka, cfg.EventTransport)
	require.Equal(t, "alerts", cfg.EventsChannel)
	require.Equal(t, []string{"localhost:19092"}, cfg.Kafka.Brokers)
	require.Equal(t, BreakerConfig{
		WindowSize:   10,
		MinimumCalls: 5,
		FailureRatio: 0.5,
		OpenTimeout:  30 * time.Second,
	}, cfg.PaymentBreaker)
}

func TestLoad_DockerDefaults(t *testing.T) {
	// Очищаем env
	os.Clearenv()
	os.Setenv("APP_ENV", "docker")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDocker, cfg.AppEnv)
	require.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	require.Equal(t, "http://inventory:8081", cfg.InventoryURL)
	require.Equal(t, "http://payment:8082", cfg.PaymentURL)
	require.Equal(t, []string{"kafka:9092"}, cfg.Kafka.Brokers)
	require.Equal(t, "otel-collector:4317", cfg.Observability.OTLPEndpoint)
}

func TestLoad_Overrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("EVENT_TRANSPORT", "rabbitmq")
	os.Setenv("RABBITMQ_URL", "amqp://user:secret@mq:5672/")
	os.Setenv("ORDER_EVENTS_CHANNEL", "orders")
	os.Setenv("PAYMENT_TIMEOUT", "750ms")
	os.Setenv("PAYMENT_BREAKER_WINDOW_SIZE", "20")
	os.Setenv("PAYMENT_BREAKER_MIN_CALLS", "8")
	os.Setenv("PAYMENT_BREAKER_FAILURE_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, TransportRabbitMQ, cfg.EventTransport)
	require.Equal(t, "amqp://user:secret@mq:5672/", cfg.RabbitMQ.URL)
	require.Equal(t, "orders", cfg.EventsChannel)
	require.Equal(t, 750*time.Millisecond, cfg.PaymentTimeout)
	require.Equal(t, 20, cfg.PaymentBreaker.WindowSize)
	require.Equal(t, 8, cfg.PaymentBreaker.MinimumCalls)
	require.Equal(t, 0.25, cfg.PaymentBreaker.FailureRatio)
	require.NotContains(t, maskURL(cfg.RabbitMQ.URL), "secret")
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"app env":        {"APP_ENV": "prod"},
		"transport":      {"EVENT_TRANSPORT": "sqs"},
		"duration":       {"PAYMENT_TIMEOUT": "fast"},
		"ratio range":    {"PAYMENT_BREAKER_FAILURE_RATIO": "1.5"},
		"min calls":      {"PAYMENT_BREAKER_MIN_CALLS": "50"},
		"inventory url":  {"INVENTORY_URL": "inventory"},
		"window integer": {"PAYMENT_BREAKER_WINDOW_SIZE": "ten"},
	}

	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range vars {
				os.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
