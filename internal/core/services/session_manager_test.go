package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/test/mocks"
)

func TestSessionManager_OpenAndHydrate(t *testing.T) {
	store := mocks.NewMockSessionStore()
	m := NewSessionManager(store, time.Hour, time.Second, zap.NewNop())
	ctx := context.Background()

	state, err := m.Open(ctx, domain.Authenticated("u1", "user1@example.com"), nil)
	require.NoError(t, err)
	require.NotEmpty(t, state.SessionID)
	assert.True(t, state.Hydrated)

	got := m.Hydrate(ctx, state.SessionID)
	assert.True(t, got.Hydrated)
	assert.Equal(t, "user1@example.com", got.Principal.Email)
	assert.Nil(t, got.Override)

	require.NoError(t, m.Close(ctx, state.SessionID))
	got = m.Hydrate(ctx, state.SessionID)
	assert.True(t, got.Hydrated)
	assert.False(t, got.HasIdentity())
}

func TestSessionManager_HydrateWithoutCookie(t *testing.T) {
	m := NewSessionManager(mocks.NewMockSessionStore(), time.Hour, time.Second, zap.NewNop())

	got := m.Hydrate(context.Background(), "")
	assert.True(t, got.Hydrated)
	assert.False(t, got.HasIdentity())
}

func TestSessionManager_HydrationTimeoutStaysLoading(t *testing.T) {
	store := mocks.NewMockSessionStore()
	m := NewSessionManager(store, time.Hour, 20*time.Millisecond, zap.NewNop())
	state, err := m.Open(context.Background(), domain.Authenticated("u1", "user1@example.com"), nil)
	require.NoError(t, err)

	store.GetDelay = time.Second
	got := m.Hydrate(context.Background(), state.SessionID)

	assert.False(t, got.Hydrated)
	assert.Equal(t, state.SessionID, got.SessionID)
}

func TestSessionManager_StoreErrorIsGuest(t *testing.T) {
	store := mocks.NewMockSessionStore()
	store.GetError = errors.New("connection refused")
	m := NewSessionManager(store, time.Hour, time.Second, zap.NewNop())

	got := m.Hydrate(context.Background(), "s1")
	assert.True(t, got.Hydrated)
	assert.False(t, got.HasIdentity())
}

func TestSessionManager_SaveFailureIsAuthUnavailable(t *testing.T) {
	store := mocks.NewMockSessionStore()
	store.SaveError = errors.New("redis down")
	m := NewSessionManager(store, time.Hour, time.Second, zap.NewNop())

	_, err := m.Open(context.Background(), domain.Authenticated("u1", "user1@example.com"), nil)
	assert.ErrorIs(t, err, domain.ErrAuthUnavailable)
}

func TestSessionManager_ExpiredRecordIsGuest(t *testing.T) {
	store := mocks.NewMockSessionStore()
	m := NewSessionManager(store, time.Minute, time.Second, zap.NewNop())
	state, err := m.Open(context.Background(), domain.Authenticated("u1", "user1@example.com"), nil)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	got := m.Hydrate(context.Background(), state.SessionID)
	assert.True(t, got.Hydrated)
	assert.False(t, got.HasIdentity())
}
