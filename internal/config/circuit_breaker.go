package config

import (
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Breaker names. Timeouts follow the dependency: Redis answers within the
// health check window, databases get longer, brokers longest.
const (
	BreakerRedis      = "Redis-Sessions"
	BreakerPostgres   = "PostgreSQL"
	BreakerRelayDB    = "Relay-PostgreSQL"
	BreakerRabbitMQ   = "RabbitMQ-Publisher"
	BreakerChangeFeed = "PostgreSQL-Listener"
)

func NewCircuitBreaker(name string, logger *zap.Logger) *gobreaker.CircuitBreaker {
	var timeout time.Duration
	switch {
	case strings.HasPrefix(name, "Redis"):
		timeout = 5 * time.Second
	case strings.Contains(name, "PostgreSQL"):
		timeout = 10 * time.Second
	default:
		timeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Error("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}
