package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// MockStatusEventPublisher stands in for the RabbitMQ publisher in relay
// tests.
type MockStatusEventPublisher struct {
	mu sync.RWMutex

	PublishedEvents  []ports.StatusChangedEvent
	PublishError     error
	PublishCallCount int
}

var _ ports.StatusEventPublisher = (*MockStatusEventPublisher)(nil)

func NewMockStatusEventPublisher() *MockStatusEventPublisher {
	return &MockStatusEventPublisher{}
}

func (m *MockStatusEventPublisher) PublishStatusChanged(ctx context.Context, evt ports.StatusChangedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCallCount++
	if m.PublishError != nil {
		return m.PublishError
	}
	m.PublishedEvents = append(m.PublishedEvents, evt)
	return nil
}

func (m *MockStatusEventPublisher) GetPublishedEvents() []ports.StatusChangedEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ports.StatusChangedEvent, len(m.PublishedEvents))
	copy(out, m.PublishedEvents)
	return out
}

func (m *MockStatusEventPublisher) GetPublishCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PublishCallCount
}
