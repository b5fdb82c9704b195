package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// SessionManager owns the lifecycle of session records. Everything else
// reads sessions through the domain.SessionState it returns.
type SessionManager struct {
	store            ports.SessionStore
	ttl              time.Duration
	hydrationTimeout time.Duration
	logger           *zap.Logger
	now              func() time.Time
}

func NewSessionManager(store ports.SessionStore, ttl, hydrationTimeout time.Duration, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		store:            store,
		ttl:              ttl,
		hydrationTimeout: hydrationTimeout,
		logger:           logger,
		now:              time.Now,
	}
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Open stores a new session holding either a principal or an override token.
func (m *SessionManager) Open(ctx context.Context, principal domain.Principal, override *domain.OverrideToken) (domain.SessionState, error) {
	now := m.now().UTC()
	record := ports.SessionRecord{
		ID:        uuid.NewString(),
		Principal: principal,
		Override:  override,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, record); err != nil {
		return domain.SessionState{}, domain.NewError(domain.KindAuthUnavailable, "could not store session", err)
	}
	return stateFromRecord(&record), nil
}

// Hydrate loads a session for a request. The returned state is unhydrated
// only when the store did not answer within the hydration timeout; missing
// sessions and store errors both hydrate to an anonymous state.
func (m *SessionManager) Hydrate(ctx context.Context, sessionID string) domain.SessionState {
	if sessionID == "" {
		return domain.SessionState{Hydrated: true}
	}

	hctx, cancel := context.WithTimeout(ctx, m.hydrationTimeout)
	defer cancel()

	record, err := m.store.Get(hctx, sessionID)
	switch {
	case err == nil:
		if !record.ExpiresAt.IsZero() && m.now().After(record.ExpiresAt) {
			return domain.SessionState{Hydrated: true}
		}
		return stateFromRecord(record)
	case errors.Is(err, domain.ErrNotFound):
		return domain.SessionState{Hydrated: true}
	case errors.Is(err, context.DeadlineExceeded) || hctx.Err() != nil:
		m.logger.Warn("session hydration timed out",
			zap.String("session_id", sessionID),
			zap.Duration("timeout", m.hydrationTimeout))
		return domain.SessionState{SessionID: sessionID}
	default:
		m.logger.Error("session store failed, treating request as guest",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return domain.SessionState{Hydrated: true}
	}
}

// Close deletes the session record. Deleting an unknown session is not an
// error.
func (m *SessionManager) Close(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := m.store.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.NewError(domain.KindAuthUnavailable, "could not delete session", err)
	}
	return nil
}

func stateFromRecord(record *ports.SessionRecord) domain.SessionState {
	return domain.SessionState{
		Hydrated:  true,
		SessionID: record.ID,
		Principal: record.Principal,
		Override:  record.Override,
	}
}
