package ports

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
)

// SignInResult describes the session established by a successful sign-in.
// Bypass is set when a demo override token was written instead of a
// principal.
type SignInResult struct {
	Session domain.SessionState
	Role    domain.Role
	Bypass  bool
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*SignInResult, error)
	SignOut(ctx context.Context, sessionID string) error
	ChangePassword(ctx context.Context, state domain.SessionState, current, next, confirm string) error
}

type EventRequestService interface {
	Submit(ctx context.Context, actor domain.Actor, req domain.NewEventRequest) (*domain.EventRequest, error)
	List(ctx context.Context, actor domain.Actor, filter RequestFilter) ([]domain.EventRequest, error)
	Decide(ctx context.Context, actor domain.Actor, id string, status domain.Status) error
	Cancel(ctx context.Context, actor domain.Actor, id string) error
}

type ResourceRequestService interface {
	Submit(ctx context.Context, actor domain.Actor, req domain.NewResourceRequest) (*domain.ResourceRequest, error)
	List(ctx context.Context, actor domain.Actor, filter RequestFilter) ([]domain.ResourceRequest, error)
	Decide(ctx context.Context, actor domain.Actor, id string, status domain.Status) error
}

type FundAnalysisService interface {
	Create(ctx context.Context, actor domain.Actor, req domain.NewFundAnalysis) (*domain.FundAnalysis, error)
	List(ctx context.Context, actor domain.Actor, filter RequestFilter) ([]domain.FundAnalysis, error)
	Sections(ctx context.Context, actor domain.Actor, fundID string) ([]domain.FundAnalysisSection, error)
	Decide(ctx context.Context, actor domain.Actor, id string, status domain.Status) error
}

type ReportService interface {
	Create(ctx context.Context, actor domain.Actor, draft domain.ReportDraft) (*domain.Report, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Report, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Report, error)
	Update(ctx context.Context, actor domain.Actor, id string, draft domain.ReportDraft) (*domain.Report, error)
}

type BookingService interface {
	Book(ctx context.Context, actor domain.Actor, req domain.NewBooking) (*domain.CalendarBooking, error)
	Availability(ctx context.Context, actor domain.Actor, resource domain.ResourceID, day time.Time) ([]domain.CalendarBooking, error)
}

type CollaborationService interface {
	Request(ctx context.Context, actor domain.Actor, req domain.NewCollaboration) (*domain.Collaboration, error)
	List(ctx context.Context, actor domain.Actor) ([]domain.Collaboration, error)
}

type UserService interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.AccountView, error)
	Register(ctx context.Context, actor domain.Actor, email, password string) (*domain.AccountView, error)
}
