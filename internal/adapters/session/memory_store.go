package session

import (
	"context"
	"sync"
	"time"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// MemoryStore is used when no Redis address is configured. Sessions do not
// survive a restart and are not shared between instances.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]ports.SessionRecord
	now     func() time.Time
}

var _ ports.SessionStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]ports.SessionRecord), now: time.Now}
}

func (s *MemoryStore) Save(_ context.Context, record ports.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*ports.SessionRecord, error) {
	s.mu.RLock()
	record, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	if !record.ExpiresAt.IsZero() && s.now().After(record.ExpiresAt) {
		s.mu.Lock()
		delete(s.records, id)
		s.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// Sweep drops expired records and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, record := range s.records {
		if !record.ExpiresAt.IsZero() && now.After(record.ExpiresAt) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}
