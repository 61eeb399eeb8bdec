package observability

import "github.com/caarlos0/env/v10"

// Config конфигурация OpenTelemetry (traces + metrics + propagator)
type Config struct {
	// Enabled включить экспорт в OTLP collector
	Enabled bool `env:"OTEL_ENABLED"`
	// OTLPEndpoint адрес OTLP gRPC, например "127.0.0.1:4317" или "otel-collector:4317"
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// SamplingRatio доля трасс для семплирования (0..1)
	SamplingRatio float64 `env:"OTEL_SAMPLING_RATIO"`
	// ServiceName имя сервиса (order, inventory, payment, notification)
	ServiceName string
	// DeploymentEnvironment окружение (local, docker)
	DeploymentEnvironment string
	// ServiceVersion опционально, например из build
	ServiceVersion string `env:"SERVICE_VERSION"`
}

// LoadConfig читает OTEL_* переменные поверх дефолтов для сервиса
func LoadConfig(serviceName, appEnv string) (Config, error) {
	cfg := Config{
		OTLPEndpoint:          "127.0.0.1:4317",
		SamplingRatio:         1.0,
		ServiceName:           serviceName,
		DeploymentEnvironment: appEnv,
	}
	if appEnv == "docker" {
		cfg.OTLPEndpoint = "otel-collector:4317"
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
