package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

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

// Config содержит конфигурацию Inventory Service
type Config struct {
	AppEnv          Env
	LogLevel        string
	HTTPAddr        string
	Seed            map[string]int
	DefaultStock    int
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
		cfg.HTTPAddr = getString("HTTP_ADDR", "127.0.0.1:8081")
	} else {
		cfg.HTTPAddr = getString("HTTP_ADDR", "0.0.0.0:8081")
	}

	// INVENTORY_SEED: "P1:100,P2:0"
	seed, err := ParseSeed(getString("INVENTORY_SEED", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.Seed = seed

	// INVENTORY_DEFAULT_STOCK
	cfg.DefaultStock, err = strconv.Atoi(getString("INVENTORY_DEFAULT_STOCK", "42"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid INVENTORY_DEFAULT_STOCK: %w", err)
	}

	// SHUTDOWN_TIMEOUT
	shutdownTimeoutStr := getString("SHUTDOWN_TIMEOUT", "5s")
	shutdownTimeout, err := time.ParseDuration(shutdownTimeoutStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}
	cfg.ShutdownTimeout = shutdownTimeout

	// OpenTelemetry
	if cfg.Observability, err = observability.LoadConfig("inventory", string(cfg.AppEnv)); err != nil {
		return Config{}, fmt.Errorf("observability config: %w", err)
	}

	// Валидация
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ParseSeed разбирает список "код:остаток" через запятую
func ParseSeed(raw string) (map[string]int, error) {
	seed := make(map[string]int)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, qty, ok := strings.Cut(pair, ":")
		code = strings.TrimSpace(code)
		if !ok || code == "" {
			return nil, fmt.Errorf("invalid INVENTORY_SEED entry %q (want code:quantity)", pair)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid INVENTORY_SEED quantity in %q", pair)
		}
		seed[code] = n
	}
	return seed, nil
}

// Validate проверяет корректность конфигурации
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.DefaultStock < 0 {
		return fmt.Errorf("INVENTORY_DEFAULT_STOCK must be >= 0")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Observability.Enabled && (c.Observability.SamplingRatio < 0 || c.Observability.SamplingRatio > 1) {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be in [0, 1]")
	}
	return nil
}

// Log выводит конфигурацию в лог
func (c Config) Log(logger *zap.Logger) {
	logger.Info("Config loaded",
		zap.String("app_env", string(c.AppEnv)),
		zap.String("http_addr", c.HTTPAddr),
		zap.Int("seeded_products", len(c.Seed)),
		zap.Int("default_stock", c.DefaultStock),
		zap.Duration("shutdown_timeout", c.ShutdownTimeout),
		zap.Bool("otel_enabled", c.Observability.Enabled),
		zap.String("otel_endpoint", c.Observability.OTLPEndpoint),
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
