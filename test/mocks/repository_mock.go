// Package mocks provides in-memory implementations of the port interfaces
// with call tracking and error injection.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// MockAccountRepository implements ports.AccountRepository.
type MockAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account

	FindByEmailCalls []string
	CreateCalls      []domain.Account
	UpdateHashCalls  []string

	FindByEmailError error
	FindByIDError    error
	CreateError      error
	ListError        error
	UpdateHashError  error
}

var _ ports.AccountRepository = (*MockAccountRepository)(nil)

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

// SeedAccount adds an account for test setup.
func (m *MockAccountRepository) SeedAccount(account domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = &account
}

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindByEmailCalls = append(m.FindByEmailCalls, email)
	if m.FindByEmailError != nil {
		return nil, m.FindByEmailError
	}
	for _, a := range m.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindByIDError != nil {
		return nil, m.FindByIDError
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockAccountRepository) Create(ctx context.Context, account domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, account)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.accounts[account.ID] = &account
	return nil
}

func (m *MockAccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	out := make([]domain.Account, 0, len(m.accounts))
	for _, a := range m.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MockAccountRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateHashCalls = append(m.UpdateHashCalls, id)
	if m.UpdateHashError != nil {
		return m.UpdateHashError
	}
	a, ok := m.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = hash
	return nil
}

// FindByEmailCount is safe to call while the repository is in use.
func (m *MockAccountRepository) FindByEmailCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.FindByEmailCalls)
}

// StatusUpdate records one UpdateStatus call.
type StatusUpdate struct {
	ID      string
	Status  domain.Status
	Payload []byte
}

// MockEventRequestRepository implements ports.EventRequestRepository.
type MockEventRequestRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.EventRequest

	CreateCalls   []domain.EventRequest
	StatusUpdates []StatusUpdate
	ListFilters   []ports.RequestFilter

	CreateError error
	GetError    error
	ListError   error
	UpdateError error
}

var _ ports.EventRequestRepository = (*MockEventRequestRepository)(nil)

func NewMockEventRequestRepository() *MockEventRequestRepository {
	return &MockEventRequestRepository{events: make(map[string]*domain.EventRequest)}
}

func (m *MockEventRequestRepository) SeedEvent(event domain.EventRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = &event
}

func (m *MockEventRequestRepository) Create(ctx context.Context, req domain.EventRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, req)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.events[req.ID] = &req
	return nil
}

func (m *MockEventRequestRepository) Get(ctx context.Context, id string) (*domain.EventRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	e, ok := m.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *MockEventRequestRepository) List(ctx context.Context, filter ports.RequestFilter) ([]domain.EventRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListFilters = append(m.ListFilters, filter)
	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []domain.EventRequest
	for _, e := range m.events {
		if matches(filter, e.UserID, e.Status) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, filter.Limit), nil
}

func (m *MockEventRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusUpdates = append(m.StatusUpdates, StatusUpdate{ID: id, Status: status, Payload: payload})
	if m.UpdateError != nil {
		return m.UpdateError
	}
	e, ok := m.events[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// MockResourceRequestRepository implements ports.ResourceRequestRepository.
type MockResourceRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]*domain.ResourceRequest

	CreateCalls   []domain.ResourceRequest
	StatusUpdates []StatusUpdate

	CreateError error
	UpdateError error
}

var _ ports.ResourceRequestRepository = (*MockResourceRequestRepository)(nil)

func NewMockResourceRequestRepository() *MockResourceRequestRepository {
	return &MockResourceRequestRepository{requests: make(map[string]*domain.ResourceRequest)}
}

func (m *MockResourceRequestRepository) Create(ctx context.Context, req domain.ResourceRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, req)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.requests[req.ID] = &req
	return nil
}

func (m *MockResourceRequestRepository) Get(ctx context.Context, id string) (*domain.ResourceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockResourceRequestRepository) List(ctx context.Context, filter ports.RequestFilter) ([]domain.ResourceRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ResourceRequest
	for _, r := range m.requests {
		if matches(filter, r.UserID, r.Status) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return limit(out, filter.Limit), nil
}

func (m *MockResourceRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusUpdates = append(m.StatusUpdates, StatusUpdate{ID: id, Status: status, Payload: payload})
	if m.UpdateError != nil {
		return m.UpdateError
	}
	r, ok := m.requests[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.Status = status
	return nil
}

// MockFundAnalysisRepository implements ports.FundAnalysisRepository. It
// stores the header exactly as given so tests can observe the total the
// service computed.
type MockFundAnalysisRepository struct {
	mu       sync.RWMutex
	funds    map[string]*domain.FundAnalysis
	sections map[string][]domain.FundAnalysisSection

	CreateCalls   int
	StatusUpdates []StatusUpdate

	CreateError error
}

var _ ports.FundAnalysisRepository = (*MockFundAnalysisRepository)(nil)

func NewMockFundAnalysisRepository() *MockFundAnalysisRepository {
	return &MockFundAnalysisRepository{
		funds:    make(map[string]*domain.FundAnalysis),
		sections: make(map[string][]domain.FundAnalysisSection),
	}
}

func (m *MockFundAnalysisRepository) Create(ctx context.Context, fund domain.FundAnalysis, sections []domain.FundAnalysisSection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.funds[fund.ID] = &fund
	m.sections[fund.ID] = append([]domain.FundAnalysisSection(nil), sections...)
	return nil
}

func (m *MockFundAnalysisRepository) Get(ctx context.Context, id string) (*domain.FundAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.funds[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *MockFundAnalysisRepository) List(ctx context.Context, filter ports.RequestFilter) ([]domain.FundAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.FundAnalysis
	for _, f := range m.funds {
		if matches(filter, f.UserID, f.Status) {
			out = append(out, *f)
		}
	}
	return limit(out, filter.Limit), nil
}

func (m *MockFundAnalysisRepository) Sections(ctx context.Context, fundID string) ([]domain.FundAnalysisSection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.FundAnalysisSection(nil), m.sections[fundID]...), nil
}

func (m *MockFundAnalysisRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatusUpdates = append(m.StatusUpdates, StatusUpdate{ID: id, Status: status, Payload: payload})
	f, ok := m.funds[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.Status = status
	return nil
}

// MockReportRepository implements ports.ReportRepository.
type MockReportRepository struct {
	mu      sync.RWMutex
	reports map[string]*domain.Report

	UpdateError error
}

var _ ports.ReportRepository = (*MockReportRepository)(nil)

func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{reports: make(map[string]*domain.Report)}
}

func (m *MockReportRepository) Create(ctx context.Context, report domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[report.ID] = &report
	return nil
}

func (m *MockReportRepository) Get(ctx context.Context, id string) (*domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *MockReportRepository) ListByUser(ctx context.Context, userID string) ([]domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Report
	for _, r := range m.reports {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (m *MockReportRepository) Update(ctx context.Context, report domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.reports[report.ID]; !ok {
		return domain.ErrNotFound
	}
	m.reports[report.ID] = &report
	return nil
}

// MockBookingRepository implements ports.BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings []domain.CalendarBooking

	CreateCalls int
	CreateError error
	ListError   error
}

var _ ports.BookingRepository = (*MockBookingRepository)(nil)

func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{}
}

func (m *MockBookingRepository) Create(ctx context.Context, booking domain.CalendarBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	m.bookings = append(m.bookings, booking)
	return nil
}

func (m *MockBookingRepository) ListOverlapping(ctx context.Context, resource domain.ResourceID, from, to time.Time) ([]domain.CalendarBooking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var out []domain.CalendarBooking
	for _, b := range m.bookings {
		if b.ResourceID == resource && b.Start.Before(to) && b.End.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

// MockCollaborationRepository implements ports.CollaborationRepository.
type MockCollaborationRepository struct {
	mu     sync.RWMutex
	collab []domain.Collaboration
}

var _ ports.CollaborationRepository = (*MockCollaborationRepository)(nil)

func NewMockCollaborationRepository() *MockCollaborationRepository {
	return &MockCollaborationRepository{}
}

func (m *MockCollaborationRepository) Create(ctx context.Context, c domain.Collaboration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collab = append(m.collab, c)
	return nil
}

func (m *MockCollaborationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Collaboration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Collaboration
	for _, c := range m.collab {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func matches(f ports.RequestFilter, userID string, status domain.Status) bool {
	if f.UserID != "" && f.UserID != userID {
		return false
	}
	if f.Status != "" && f.Status != status {
		return false
	}
	if f.ExcludeStatus != "" && f.ExcludeStatus == status {
		return false
	}
	return true
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
