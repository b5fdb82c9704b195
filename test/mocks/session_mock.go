package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// MockSessionStore implements ports.SessionStore in memory.
type MockSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]ports.SessionRecord

	SaveError   error
	GetError    error
	DeleteError error
	// GetDelay blocks Get until it passes or the context is done.
	GetDelay time.Duration

	SaveCalls   []ports.SessionRecord
	DeleteCalls []string
}

var _ ports.SessionStore = (*MockSessionStore)(nil)

func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]ports.SessionRecord)}
}

func (m *MockSessionStore) Save(ctx context.Context, record ports.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = append(m.SaveCalls, record)
	if m.SaveError != nil {
		return m.SaveError
	}
	m.sessions[record.ID] = record
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*ports.SessionRecord, error) {
	if m.GetDelay > 0 {
		select {
		case <-time.After(m.GetDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	rec, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteError != nil {
		return m.DeleteError
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// MockChangeSubscriber lets tests fire change signals by hand.
type MockChangeSubscriber struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func()
}

var _ ports.ChangeSubscriber = (*MockChangeSubscriber)(nil)

func NewMockChangeSubscriber() *MockChangeSubscriber {
	return &MockChangeSubscriber{subs: make(map[string]map[int]func())}
}

func (m *MockChangeSubscriber) Subscribe(table string, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subs[table] == nil {
		m.subs[table] = make(map[int]func())
	}
	id := m.nextID
	m.nextID++
	m.subs[table][id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[table], id)
	}
}

// Emit signals every subscriber of table.
func (m *MockChangeSubscriber) Emit(table string) {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.subs[table]))
	for _, fn := range m.subs[table] {
		fns = append(fns, fn)
	}
	m.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Subscribers returns the number of live subscriptions on table.
func (m *MockChangeSubscriber) Subscribers(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[table])
}
