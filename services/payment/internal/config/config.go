package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/shestoi/orderflow/platform/observability"
)

// Env представляет окружение приложения
type Env string

const (
	// EnvLocal - локальное окружение (для разработки на хосте)
	EnvLocal Env = "local"
	// EnvDocker - Docker окружение (для запуска в контейнерах)
	EnvDocker Env = "docker"
)

// Config содержит конфигурацию Payment Service
type Config struct {
	AppEnv          Env
	LogLevel        string
	HTTPAddr        string
	MaxAmount       decimal.Decimal
	ShutdownTimeout time.Duration
	Observability   observability.Config
}

// Load загружает конфигурацию из переменных окружения
// Читает APP_ENV и устанавливает дефолты в зависимости от окружения
func Load() (Config, error) {
	cfg := Config{}

	// Читаем APP_ENV
	appEnvStr := getString("APP_ENV", string(EnvLocal))
	appEnv := Env(appEnvStr)
	if appEnv != EnvLocal && appEnv != EnvDocker {
		return Config{}, fmt.Errorf("invalid APP_ENV: %s (must be 'local' or 'docker')", appEnvStr)
	}
	cfg.AppEnv = appEnv
	cfg.LogLevel = getString("LOG_LEVEL", "info")

	// HTTP_ADDR
	if cfg.AppEnv == EnvLocal {
		cfg.HTTPAddr = getString("HTTP_ADDR", "127.0.0.1:8082")
	} else {
		cfg.HTTPAddr = getString("HTTP_ADDR", "0.0.0.0:8082")
	}

	// PAYMENT_MAX_AMOUNT: 0 - без лимита
	maxAmount, err := decimal.NewFromString(getString("PAYMENT_MAX_AMOUNT", "10000"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PAYMENT_MAX_AMOUNT: %w", err)
	}
	cfg.MaxAmount = maxAmount

	// SHUTDOWN_TIMEOUT
	shutdownTimeoutStr := getString("SHUTDOWN_TIMEOUT", "5s")
	shutdownTimeout, err := time.ParseDuration(shutdownTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = shutdownTimeout

	if cfg.Observability, err = observability.LoadConfig("payment", string(cfg.AppEnv)); err != nil {
		return Config{}, fmt.Errorf("observability config: %w", err)
	}

	// Валидация
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.MaxAmount.IsNegative() {
		return fmt.Errorf("PAYMENT_MAX_AMOUNT must be >= 0")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Log выводит конфигурацию в лог
func (c Config) Log(logger *zap.Logger) {
	logger.Info("Config loaded",
		zap.String("app_env", string(c.AppEnv)),
		zap.String("http_addr", c.HTTPAddr),
		zap.String("max_amount", c.MaxAmount.String()),
		zap.Duration("shutdown_timeout", c.ShutdownTimeout),
		zap.Bool("otel_enabled", c.Observability.Enabled),
	)
}

// getString читает переменную окружения или возвращает дефолт
func getString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
