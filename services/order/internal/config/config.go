package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	platformkafka "github.com/shestoi/orderflow/platform/kafka"
	"github.com/shestoi/orderflow/platform/observability"
	platformrabbit "github.com/shestoi/orderflow/platform/rabbitmq"
)

// Env представляет окружение приложения
type Env string

const (
	// EnvLocal - локальное окружение (для разработки на хосте)
	EnvLocal Env = "local"
	// EnvDocker - Docker окружение (для запуска в контейнерах)
	EnvDocker Env = "docker"
)

// Transport - способ доставки доменных событий
type Transport string

const (
	TransportKafka    Transport = "kafka"
	TransportRabbitMQ Transport = "rabbitmq"
	TransportPush     Transport = "push"
)

// BreakerConfig - параметры circuit breaker для payment сервиса
type BreakerConfig struct {
	WindowSize   int
	MinimumCalls int
	FailureRatio float64
	OpenTimeout  time.Duration
}

// Config содержит конфигурацию Order Service
type Config struct {
	AppEnv   Env
	LogLevel string
	HTTPAddr string

	InventoryURL string
	PaymentURL   string

	EventTransport Transport
	EventsChannel  string
	PushURL        string
	PubsubName     string
	Kafka          platformkafka.Config
	RabbitMQ       platformrabbit.Config

	InventoryTimeout time.Duration
	PaymentTimeout   time.Duration
	PublishTimeout   time.Duration
	PaymentBreaker   BreakerConfig

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

	if cfg.AppEnv == EnvLocal {
		cfg.HTTPAddr = getString("HTTP_ADDR", "127.0.0.1:8080")
		cfg.InventoryURL = getString("INVENTORY_URL", "http://127.0.0.1:8081")
		cfg.PaymentURL = getString("PAYMENT_URL", "http://127.0.0.1:8082")
		cfg.PushURL = getString("PUSH_URL", "http://127.0.0.1:8084/process-alerts")
	} else {
		cfg.HTTPAddr = getString("HTTP_ADDR", "0.0.0.0:8080")
		cfg.InventoryURL = getString("INVENTORY_URL", "http://inventory:8081")
		cfg.PaymentURL = getString("PAYMENT_URL", "http://payment:8082")
		cfg.PushURL = getString("PUSH_URL", "http://notification:8084/process-alerts")
	}

	cfg.EventTransport = Transport(getString("EVENT_TRANSPORT", string(TransportKafka)))
	cfg.EventsChannel = getString("ORDER_EVENTS_CHANNEL", "alerts")
	cfg.PubsubName = getString("PUBSUB_NAME", "pubsub")

	var err error
	if cfg.InventoryTimeout, err = getDuration("INVENTORY_TIMEOUT", 2*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PaymentTimeout, err = getDuration("PAYMENT_TIMEOUT", 3*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.PublishTimeout, err = getDuration("PUBLISH_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}

	if cfg.PaymentBreaker.WindowSize, err = getInt("PAYMENT_BREAKER_WINDOW_SIZE", 10); err != nil {
		return Config{}, err
	}
	if cfg.PaymentBreaker.MinimumCalls, err = getInt("PAYMENT_BREAKER_MIN_CALLS", 5); err != nil {
		return Config{}, err
	}
	if cfg.PaymentBreaker.FailureRatio, err = getFloat("PAYMENT_BREAKER_FAILURE_RATIO", 0.5); err != nil {
		return Config{}, err
	}
	if cfg.PaymentBreaker.OpenTimeout, err = getDuration("PAYMENT_BREAKER_OPEN_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}

	// Настройки брокера читаются только для выбранного транспорта
	switch cfg.EventTransport {
	case TransportKafka:
		cfg.Kafka = platformkafka.DefaultConfig(string(cfg.AppEnv))
		if err := platformkafka.LoadEnv(&cfg.Kafka); err != nil {
			return Config{}, fmt.Errorf("kafka config: %w", err)
		}
	case TransportRabbitMQ:
		cfg.RabbitMQ = platformrabbit.DefaultConfig(string(cfg.AppEnv))
		if err := platformrabbit.LoadEnv(&cfg.RabbitMQ); err != nil {
			return Config{}, fmt.Errorf("rabbitmq config: %w", err)
		}
	}

	if cfg.Observability, err = observability.LoadConfig("order", string(cfg.AppEnv)); err != nil {
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
	if err := validateURL("INVENTORY_URL", c.InventoryURL); err != nil {
		return err
	}
	if err := validateURL("PAYMENT_URL", c.PaymentURL); err != nil {
		return err
	}
	switch c.EventTransport {
	case TransportKafka, TransportRabbitMQ:
	case TransportPush:
		if err := validateURL("PUSH_URL", c.PushURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid EVENT_TRANSPORT: %s (must be kafka/rabbitmq/push)", c.EventTransport)
	}
	if c.EventsChannel == "" {
		return fmt.Errorf("ORDER_EVENTS_CHANNEL is required")
	}
	if c.InventoryTimeout <= 0 || c.PaymentTimeout <= 0 || c.PublishTimeout <= 0 {
		return fmt.Errorf("INVENTORY_TIMEOUT, PAYMENT_TIMEOUT and PUBLISH_TIMEOUT must be positive")
	}
	if c.PaymentBreaker.WindowSize <= 0 {
		return fmt.Errorf("PAYMENT_BREAKER_WINDOW_SIZE must be positive")
	}
	if c.PaymentBreaker.MinimumCalls <= 0 || c.PaymentBreaker.MinimumCalls > c.PaymentBreaker.WindowSize {
		return fmt.Errorf("PAYMENT_BREAKER_MIN_CALLS must be in [1, PAYMENT_BREAKER_WINDOW_SIZE]")
	}
	if c.PaymentBreaker.FailureRatio <= 0 || c.PaymentBreaker.FailureRatio > 1 {
		return fmt.Errorf("PAYMENT_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.PaymentBreaker.OpenTimeout <= 0 {
		return fmt.Errorf("PAYMENT_BREAKER_OPEN_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Log выводит конфигурацию в лог (с маскировкой паролей)
func (c Config) Log(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("app_env", string(c.AppEnv)),
		zap.String("http_addr", c.HTTPAddr),
		zap.String("inventory_url", c.InventoryURL),
		zap.String("payment_url", c.PaymentURL),
		zap.String("event_transport", string(c.EventTransport)),
		zap.String("events_channel", c.EventsChannel),
		zap.Duration("inventory_timeout", c.InventoryTimeout),
		zap.Duration("payment_timeout", c.PaymentTimeout),
		zap.Duration("publish_timeout", c.PublishTimeout),
		zap.Int("breaker_window_size", c.PaymentBreaker.WindowSize),
		zap.Int("breaker_min_calls", c.PaymentBreaker.MinimumCalls),
		zap.Float64("breaker_failure_ratio", c.PaymentBreaker.FailureRatio),
		zap.Duration("breaker_open_timeout", c.PaymentBreaker.OpenTimeout),
		zap.Duration("shutdown_timeout", c.ShutdownTimeout),
		zap.Bool("otel_enabled", c.Observability.Enabled),
	}
	switch c.EventTransport {
	case TransportKafka:
		fields = append(fields, zap.Strings("kafka_brokers", c.Kafka.Brokers))
	case TransportRabbitMQ:
		fields = append(fields, zap.String("rabbitmq_url", maskURL(c.RabbitMQ.URL)))
	case TransportPush:
		fields = append(fields, zap.String("push_url", c.PushURL), zap.String("pubsub_name", c.PubsubName))
	}
	logger.Info("Config loaded", fields...)
}

// getString читает переменную окружения или возвращает дефолт
func getString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}

// maskURL маскирует пароль в URL для безопасного логирования
func maskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return u.String()
}
