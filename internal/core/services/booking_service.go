package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type BookingService struct {
	repo   ports.BookingRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.BookingService = (*BookingService)(nil)

func NewBookingService(repo ports.BookingRepository, logger *zap.Logger) *BookingService {
	return &BookingService{repo: repo, logger: logger, now: time.Now}
}

// Book reserves a resource for [Start, End). Overlapping bookings of the
// same resource are rejected.
func (s *BookingService) Book(ctx context.Context, actor domain.Actor, req domain.NewBooking) (*domain.CalendarBooking, error) {
	if err := authorize(actor, domain.PermissionBookResources); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if !req.ResourceID.Valid() {
		return nil, domain.NewValidationError(domain.KindInvalidRange, "resource_id", "unknown resource "+string(req.ResourceID))
	}
	if !req.End.After(req.Start) {
		return nil, domain.NewValidationError(domain.KindInvalidRange, "end", "end must be after start")
	}

	existing, err := withRetry(ctx, func(ctx context.Context) ([]domain.CalendarBooking, error) {
		return s.repo.ListOverlapping(ctx, req.ResourceID, req.Start, req.End)
	})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, domain.NewValidationError(domain.KindInvalidRange, "start",
			req.ResourceID.Label()+" is already booked for "+existing[0].Title)
	}

	booking := domain.CalendarBooking{
		ID:         uuid.NewString(),
		ResourceID: req.ResourceID,
		Title:      req.Title,
		Start:      req.Start.UTC(),
		End:        req.End.UTC(),
		UserID:     actor.UserID,
		CreatedAt:  s.now().UTC(),
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, booking)
	}); err != nil {
		if domain.KindOf(err) == domain.KindInvalidRange {
			return nil, domain.NewValidationError(domain.KindInvalidRange, "start",
				req.ResourceID.Label()+" was booked for an overlapping time")
		}
		return nil, err
	}
	s.logger.Info("resource booked",
		zap.String("resource", string(booking.ResourceID)),
		zap.Time("start", booking.Start))
	return &booking, nil
}

func (s *BookingService) Availability(ctx context.Context, actor domain.Actor, resource domain.ResourceID, day time.Time) ([]domain.CalendarBooking, error) {
	if err := authorize(actor, domain.PermissionViewBookings); err != nil {
		return nil, err
	}
	if !resource.Valid() {
		return nil, domain.NewValidationError(domain.KindInvalidRange, "resource", "unknown resource "+string(resource))
	}
	return withRetry(ctx, func(ctx context.Context) ([]domain.CalendarBooking, error) {
		from := startOfDay(day)
		return s.repo.ListOverlapping(ctx, resource, from, from.Add(24*time.Hour))
	})
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
