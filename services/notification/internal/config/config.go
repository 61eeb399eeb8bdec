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

// SMTPConfig - параметры отправки писем. Пустой Host - письма только логируются.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config содержит конфигурацию Notification Service
type Config struct {
	AppEnv   Env
	LogLevel string
	HTTPAddr string

	EventTransport Transport
	EventsChannel  string
	PubsubName     string
	Kafka          platformkafka.Config
	RabbitMQ       platformrabbit.Config
	Workers        int

	SMTP        SMTPConfig
	SendTimeout time.Duration

	ShutdownTimeout time.Duration
	Observability   observability.Config
}

// Load загружает конфигурацию из переменных окружения
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
		cfg.HTTPAddr = getString("HTTP_ADDR", "127.0.0.1:8084")
		cfg.SMTP.Host = getString("SMTP_HOST", "")
	} else {
		cfg.HTTPAddr = getString("HTTP_ADDR", "0.0.0.0:8084")
		cfg.SMTP.Host = getString("SMTP_HOST", "mailhog")
	}

	cfg.EventTransport = Transport(getString("EVENT_TRANSPORT", string(TransportKafka)))
	cfg.EventsChannel = getString("ORDER_EVENTS_CHANNEL", "alerts")
	cfg.PubsubName = getString("PUBSUB_NAME", "pubsub")

	var err error
	if cfg.Workers, err = getInt("NOTIFICATION_WORKERS", 4); err != nil {
		return Config{}, err
	}

	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 1025); err != nil {
		return Config{}, err
	}
	cfg.SMTP.Username = getString("SMTP_USERNAME", "")
	cfg.SMTP.Password = getString("SMTP_PASSWORD", "")
	cfg.SMTP.From = getString("SMTP_FROM", "orders@orderflow.local")

	if cfg.SendTimeout, err = getDuration("SEND_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}

	// Настройки брокера читаются только для выбранного транспорта
	switch cfg.EventTransport {
	case TransportKafka:
		cfg.Kafka = platformkafka.DefaultConfig(string(cfg.AppEnv))
		cfg.Kafka.GroupID = "notification"
		cfg.Kafka.DLQTopic = cfg.EventsChannel + ".dlq"
		if err := platformkafka.LoadEnv(&cfg.Kafka); err != nil {
			return Config{}, fmt.Errorf("kafka config: %w", err)
		}
	case TransportRabbitMQ:
		cfg.RabbitMQ = platformrabbit.DefaultConfig(string(cfg.AppEnv))
		cfg.RabbitMQ.Queue = "notification." + cfg.EventsChannel
		if err := platformrabbit.LoadEnv(&cfg.RabbitMQ); err != nil {
			return Config{}, fmt.Errorf("rabbitmq config: %w", err)
		}
	}

	if cfg.Observability, err = observability.LoadConfig("notification", string(cfg.AppEnv)); err != nil {
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
	switch c.EventTransport {
	case TransportKafka:
		if c.Kafka.GroupID == "" || c.Kafka.DLQTopic == "" {
			return fmt.Errorf("KAFKA_GROUP_ID and KAFKA_DLQ_TOPIC are required")
		}
	case TransportRabbitMQ:
		if c.RabbitMQ.Queue == "" {
			return fmt.Errorf("RABBITMQ_QUEUE is required")
		}
	case TransportPush:
	default:
		return fmt.Errorf("invalid EVENT_TRANSPORT: %s (must be kafka/rabbitmq/push)", c.EventTransport)
	}
	if c.EventsChannel == "" {
		return fmt.Errorf("ORDER_EVENTS_CHANNEL is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("NOTIFICATION_WORKERS must be positive")
	}
	if c.SMTP.Host != "" {
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("SMTP_PORT must be in [1, 65535]")
		}
		if c.SMTP.From == "" {
			return fmt.Errorf("SMTP_FROM is required when SMTP_HOST is set")
		}
	}
	if c.SendTimeout <= 0 {
		return fmt.Errorf("SEND_TIMEOUT must be positive")
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
		zap.String("event_transport", string(c.EventTransport)),
		zap.String("events_channel", c.EventsChannel),
		zap.String("smtp_host", c.SMTP.Host),
		zap.Int("smtp_port", c.SMTP.Port),
		zap.Duration("send_timeout", c.SendTimeout),
		zap.Duration("shutdown_timeout", c.ShutdownTimeout),
		zap.Bool("otel_enabled", c.Observability.Enabled),
	}
	switch c.EventTransport {
	case TransportKafka:
		fields = append(fields,
			zap.Strings("kafka_brokers", c.Kafka.Brokers),
			zap.String("kafka_group_id", c.Kafka.GroupID),
			zap.String("kafka_dlq_topic", c.Kafka.DLQTopic),
		)
	case TransportRabbitMQ:
		fields = append(fields,
			zap.String("rabbitmq_url", maskURL(c.RabbitMQ.URL)),
			zap.String("rabbitmq_queue", c.RabbitMQ.Queue),
			zap.Int("workers", c.Workers),
		)
	case TransportPush:
		fields = append(fields, zap.String("pubsub_name", c.PubsubName))
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
