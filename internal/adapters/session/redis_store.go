package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

const keyPrefix = "session:"

// RedisClient is the subset of *redis.Client the store uses.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps session records as JSON under session:<id>, expiring with
// the record.
type RedisStore struct {
	client  RedisClient
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	now     func() time.Time
}

var _ ports.SessionStore = (*RedisStore)(nil)

func NewRedisStore(client RedisClient, breaker *gobreaker.CircuitBreaker, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, breaker: breaker, logger: logger, now: time.Now}
}

func (s *RedisStore) Save(ctx context.Context, record ports.SessionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	ttl := record.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return domain.NewValidationError(domain.KindInvalidRange, "expires_at", "session already expired")
	}

	_, err = s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Set(ctx, keyPrefix+record.ID, data, ttl).Err()
	})
	return unavailable("save session", err)
}

func (s *RedisStore) Get(ctx context.Context, id string) (*ports.SessionRecord, error) {
	res, err := s.breaker.Execute(func() (interface{}, error) {
		data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
		if errors.Is(err, redis.Nil) {
			// a missing key is an answer, not a failure
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		return nil, unavailable("get session", err)
	}
	data, _ := res.([]byte)
	if data == nil {
		return nil, domain.ErrNotFound
	}

	var record ports.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("dropping unreadable session record", zap.String("session_id", id), zap.Error(err))
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.client.Del(ctx, keyPrefix+id).Err()
	})
	return unavailable("delete session", err)
}

func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return domain.NewError(domain.KindAuthUnavailable, op, err)
}
