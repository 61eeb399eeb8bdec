package kafka

// Config содержит конфигурацию для подключения к Kafka.
// Топик передаётся отдельно: имя канала событий задаётся конфигом сервиса.
type Config struct {
	// Brokers - список брокеров, через запятую: "broker1:9092,broker2:9092"
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	// GroupID - consumer group (используется только consumer-ами)
	GroupID string `env:"KAFKA_GROUP_ID"`
	// DLQTopic - топик для сообщений, которые не удалось декодировать
	DLQTopic string `env:"KAFKA_DLQ_TOPIC"`
}

// DefaultConfig возвращает дефолты для окружения (local/docker).
// Актуальные значения приходят из переменных окружения через LoadEnv.
func DefaultConfig(appEnv string) Config {
	brokers := []string{"localhost:19092"}
	if appEnv == "docker" {
		brokers = []string{"kafka:9092"}
	}
	return Config{
		Brokers: brokers,
	}
}
