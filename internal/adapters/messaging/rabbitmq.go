package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/config"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// publishChannel is the part of *amqp.Channel the broker uses.
type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQBroker implements ports.StatusEventPublisher using RabbitMQ.
type RabbitMQBroker struct {
	conn      *amqp.Connection
	ch        publishChannel
	queueName string
	cb        *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

var _ ports.StatusEventPublisher = (*RabbitMQBroker)(nil)

func NewRabbitMQBroker(amqpURL, queueName string, logger *zap.Logger) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the queue (idempotent)
	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queueName, err)
	}

	logger.Info("connected to rabbitmq", zap.String("queue", queueName))
	b := newBroker(ch, queueName, logger)
	b.conn = conn
	return b, nil
}

func newBroker(ch publishChannel, queueName string, logger *zap.Logger) *RabbitMQBroker {
	return &RabbitMQBroker{
		ch:        ch,
		queueName: queueName,
		cb:        config.NewCircuitBreaker(config.BreakerRabbitMQ, logger),
		logger:    logger,
	}
}

func (rmq *RabbitMQBroker) Close() error {
	if rmq.ch != nil {
		if err := rmq.ch.Close(); err != nil {
			return err
		}
	}
	if rmq.conn != nil {
		return rmq.conn.Close()
	}
	return nil
}
