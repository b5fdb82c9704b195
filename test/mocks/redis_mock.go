package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient covers the commands the session store issues. GetDelay
// makes Get block until the delay passes or the context is done, which is
// how slow hydration is simulated.
type MockRedisClient struct {
	mu   sync.RWMutex
	data map[string]mockRedisValue

	SetError  error
	GetError  error
	DelError  error
	PingError error
	GetDelay  time.Duration

	SetCalls int
	GetCalls int
}

type mockRedisValue struct {
	value     string
	expiresAt time.Time
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{data: make(map[string]mockRedisValue)}
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++

	cmd := redis.NewStatusCmd(ctx)
	if m.SetError != nil {
		cmd.SetErr(m.SetError)
		return cmd
	}

	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		s = fmt.Sprint(v)
	}
	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = time.Now().Add(expiration)
	}
	m.data[key] = mockRedisValue{value: s, expiresAt: expiresAt}
	cmd.SetVal("OK")
	return cmd
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)

	m.mu.Lock()
	m.GetCalls++
	delay := m.GetDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			cmd.SetErr(ctx.Err())
			return cmd
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetError != nil {
		cmd.SetErr(m.GetError)
		return cmd
	}
	val, ok := m.data[key]
	if !ok || (!val.expiresAt.IsZero() && time.Now().After(val.expiresAt)) {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(val.value)
	return cmd
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewIntCmd(ctx)
	if m.DelError != nil {
		cmd.SetErr(m.DelError)
		return cmd
	}
	var deleted int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			deleted++
		}
	}
	cmd.SetVal(deleted)
	return cmd
}

func (m *MockRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.PingError != nil {
		cmd.SetErr(m.PingError)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

// HasKey reports whether key holds an unexpired value.
func (m *MockRedisClient) HasKey(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return ok && (val.expiresAt.IsZero() || time.Now().Before(val.expiresAt))
}

// RawValue returns what was stored under key.
func (m *MockRedisClient) RawValue(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key].value
}
