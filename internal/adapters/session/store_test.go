package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/config"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/test/mocks"
)

func newRedisStore(client *mocks.MockRedisClient) *RedisStore {
	logger := zap.NewNop()
	return NewRedisStore(client, config.NewCircuitBreaker(config.BreakerRedis, logger), logger)
}

func testRecord(id string) ports.SessionRecord {
	now := time.Now().UTC()
	return ports.SessionRecord{
		ID:        id,
		Principal: domain.Principal{AccountID: "user-1", Email: "club@campus.edu"},
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestRedisStore_SaveAndGet(t *testing.T) {
	client := mocks.NewMockRedisClient()
	store := newRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord("sid-1")))
	assert.True(t, client.HasKey("session:sid-1"))
	assert.Contains(t, client.RawValue("session:sid-1"), `"club@campus.edu"`)

	record, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", record.Principal.AccountID)
	assert.Nil(t, record.Override)
}

func TestRedisStore_OverrideRoundTrip(t *testing.T) {
	client := mocks.NewMockRedisClient()
	store := newRedisStore(client)
	ctx := context.Background()

	record := testRecord("sid-2")
	record.Principal = domain.Principal{}
	record.Override = &domain.OverrideToken{Role: domain.RoleAdmin, Value: "admin@campus.edu"}
	require.NoError(t, store.Save(ctx, record))

	got, err := store.Get(ctx, "sid-2")
	require.NoError(t, err)
	require.NotNil(t, got.Override)
	assert.Equal(t, domain.RoleAdmin, got.Override.Role)
}

func TestRedisStore_MissingSession(t *testing.T) {
	store := newRedisStore(mocks.NewMockRedisClient())

	for i := 0; i < 5; i++ {
		_, err := store.Get(context.Background(), "nope")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	}
}

func TestRedisStore_RejectsExpiredRecord(t *testing.T) {
	client := mocks.NewMockRedisClient()
	store := newRedisStore(client)

	record := testRecord("old")
	record.ExpiresAt = time.Now().Add(-time.Minute)

	err := store.Save(context.Background(), record)
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, 0, client.SetCalls)
}

func TestRedisStore_UnavailableOpensBreaker(t *testing.T) {
	client := mocks.NewMockRedisClient()
	client.GetError = errors.New("connection refused")
	store := newRedisStore(client)

	for i := 0; i < 3; i++ {
		_, err := store.Get(context.Background(), "sid")
		assert.Equal(t, domain.KindAuthUnavailable, domain.KindOf(err))
	}
	_, err := store.Get(context.Background(), "sid")
	assert.Equal(t, domain.KindAuthUnavailable, domain.KindOf(err))
	assert.Equal(t, 3, client.GetCalls)
}

func TestRedisStore_TimeoutKeepsDeadlineError(t *testing.T) {
	client := mocks.NewMockRedisClient()
	client.GetDelay = time.Second
	store := newRedisStore(client)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := store.Get(ctx, "sid")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRedisStore_Delete(t *testing.T) {
	client := mocks.NewMockRedisClient()
	store := newRedisStore(client)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testRecord("sid-3")))
	require.NoError(t, store.Delete(ctx, "sid-3"))
	assert.False(t, client.HasKey("session:sid-3"))

	client.DelError = errors.New("down")
	assert.Equal(t, domain.KindAuthUnavailable, domain.KindOf(store.Delete(ctx, "sid-3")))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	live := testRecord("live")
	live.ExpiresAt = now.Add(time.Minute)
	stale := testRecord("stale")
	stale.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, stale))

	_, err := store.Get(ctx, "live")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "stale")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, store.Save(ctx, stale))
	assert.Equal(t, 1, store.Sweep())

	require.NoError(t, store.Delete(ctx, "live"))
	_, err = store.Get(ctx, "live")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
