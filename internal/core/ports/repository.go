package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

// RequestFilter narrows list queries. Zero fields are ignored. Results are
// ordered newest first unless ByDate is set, which orders by the requested
// date, earliest first.
type RequestFilter struct {
	UserID        string
	Status        domain.Status
	ExcludeStatus domain.Status
	ByDate        bool
	Limit         int
}

type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	Create(ctx context.Context, account domain.Account) error
	List(ctx context.Context) ([]domain.Account, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
}

// Status updates carry an outbox payload that is written in the same
// transaction as the status change.
type EventRequestRepository interface {
	Create(ctx context.Context, req domain.EventRequest) error
	Get(ctx context.Context, id string) (*domain.EventRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.EventRequest, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, outboxPayload []byte) error
}

type ResourceRequestRepository interface {
	Create(ctx context.Context, req domain.ResourceRequest) error
	Get(ctx context.Context, id string) (*domain.ResourceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.ResourceRequest, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, outboxPayload []byte) error
}

type FundAnalysisRepository interface {
	// Create stores the header and its sections atomically.
	Create(ctx context.Context, fund domain.FundAnalysis, sections []domain.FundAnalysisSection) error
	Get(ctx context.Context, id string) (*domain.FundAnalysis, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.FundAnalysis, error)
	Sections(ctx context.Context, fundID string) ([]domain.FundAnalysisSection, error)
	UpdateStatus(ctx context.Context, id string, status domain.Status, outboxPayload []byte) error
}

type ReportRepository interface {
	Create(ctx context.Context, report domain.Report) error
	Get(ctx context.Context, id string) (*domain.Report, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Report, error)
	Update(ctx context.Context, report domain.Report) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking domain.CalendarBooking) error
	// ListOverlapping returns bookings of resource that overlap [from, to),
	// ordered by start.
	ListOverlapping(ctx context.Context, resource domain.ResourceID, from, to time.Time) ([]domain.CalendarBooking, error)
}

type CollaborationRepository interface {
	Create(ctx context.Context, collab domain.Collaboration) error
	ListByUser(ctx context.Context, userID string) ([]domain.Collaboration, error)
}
