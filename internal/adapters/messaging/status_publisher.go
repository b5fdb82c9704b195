package messaging

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// PublishStatusChanged sends evt to the status queue as a persistent JSON
// message. The entity name is carried as the message type so consumers can
// route without decoding the body.
func (rmq *RabbitMQBroker) PublishStatusChanged(ctx context.Context, evt ports.StatusChangedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	// Respect context deadline
	if deadline, ok := ctx.Deadline(); ok {
		if time.Until(deadline) <= 0 {
			return ctx.Err()
		}
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Type:         ports.OutboxEventType,
				Headers:      amqp.Table{"entity": evt.Entity},
				Timestamp:    evt.ChangedAt,
				Body:         body,
			},
		)
		return nil, err
	})
	if err != nil {
		rmq.logger.Warn("status event not published",
			zap.String("entity", evt.Entity),
			zap.String("entity_id", evt.EntityID),
			zap.Error(err))
		return err
	}
	rmq.logger.Debug("status event published",
		zap.String("entity", evt.Entity),
		zap.String("entity_id", evt.EntityID),
		zap.String("status", string(evt.Status)))
	return nil
}
