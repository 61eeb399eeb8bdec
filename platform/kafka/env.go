package kafka

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v10"
)

// LoadEnv накладывает переменные окружения на cfg (caarlos0/env/v10).
// Незаданные переменные не трогают уже выставленные дефолты.
func LoadEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return err
	}

	brokers := cfg.Brokers[:0]
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	cfg.Brokers = brokers

	if len(cfg.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	return nil
}
