package config

import (
	"errors"
	"os"
)

// RelayConfig holds what the outbox relay needs and nothing more.
type RelayConfig struct {
	DatabaseURL     string
	RabbitMQURL     string
	StatusQueueName string
	CatchUpSchedule string
	HealthPort      string
	Log             Log
}

func LoadRelayConfig() (*RelayConfig, error) {
	cfg := &RelayConfig{
		DatabaseURL:     os.Getenv("DB_CONNECTION_STRING"),
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		StatusQueueName: getEnv("STATUS_QUEUE_NAME", "request-status"),
		CatchUpSchedule: getEnv("RELAY_CATCHUP_SCHEDULE", "@every 90s"),
		HealthPort:      getEnv("RELAY_HEALTH_PORT", "8090"),
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
	var errs []error
	if cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required"))
	}
	if cfg.RabbitMQURL == "" {
		errs = append(errs, errors.New("RABBITMQ_URL is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}
