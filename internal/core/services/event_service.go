package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type EventRequestService struct {
	repo   ports.EventRequestRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.EventRequestService = (*EventRequestService)(nil)

func NewEventRequestService(repo ports.EventRequestRepository, logger *zap.Logger) *EventRequestService {
	return &EventRequestService{repo: repo, logger: logger, now: time.Now}
}

func (s *EventRequestService) Submit(ctx context.Context, actor domain.Actor, req domain.NewEventRequest) (*domain.EventRequest, error) {
	if err := authorize(actor, domain.PermissionCreateEventRequest); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	event := domain.EventRequest{
		ID:          uuid.NewString(),
		Association: req.Association,
		EventName:   req.EventName,
		Date:        date,
		Description: req.Description,
		Status:      domain.StatusPending,
		UserID:      actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, event)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("event request submitted", zap.String("id", event.ID), zap.String("user_id", actor.UserID))
	return &event, nil
}

// List returns the caller's own requests, or every request for reviewers.
func (s *EventRequestService) List(ctx context.Context, actor domain.Actor, filter ports.RequestFilter) ([]domain.EventRequest, error) {
	if err := authorizeAny(actor, domain.PermissionViewOwnEventRequests, domain.PermissionViewAllEventRequests); err != nil {
		return nil, err
	}
	filter = ownerFilter(actor, filter, domain.PermissionViewAllEventRequests)
	return withRetry(ctx, func(ctx context.Context) ([]domain.EventRequest, error) {
		return s.repo.List(ctx, filter)
	})
}

func (s *EventRequestService) Decide(ctx context.Context, actor domain.Actor, id string, status domain.Status) error {
	if err := authorize(actor, domain.PermissionReviewEventRequests); err != nil {
		return err
	}
	if err := decisionStatus(status); err != nil {
		return err
	}
	return s.setStatus(ctx, actor, id, status, nil)
}

// Cancel moves an event to rejected. Events are never deleted.
func (s *EventRequestService) Cancel(ctx context.Context, actor domain.Actor, id string) error {
	if err := authorizeAny(actor, domain.PermissionCancelOwnEvent, domain.PermissionCancelAnyEvent); err != nil {
		return err
	}
	owned := func(event *domain.EventRequest) error {
		if actor.Role.Allows(domain.PermissionCancelAnyEvent) || event.UserID == actor.UserID {
			return nil
		}
		return domain.NewError(domain.KindPermissionDenied, "event belongs to another account", nil)
	}
	return s.setStatus(ctx, actor, id, domain.StatusRejected, owned)
}

func (s *EventRequestService) setStatus(ctx context.Context, actor domain.Actor, id string, status domain.Status, check func(*domain.EventRequest) error) error {
	if err := recordID(id); err != nil {
		return err
	}
	event, err := withRetry(ctx, func(ctx context.Context) (*domain.EventRequest, error) {
		return s.repo.Get(ctx, id)
	})
	if err != nil {
		return err
	}
	if check != nil {
		if err := check(event); err != nil {
			return err
		}
	}
	if event.Status == status {
		return nil
	}

	payload, err := statusPayload(ports.TableEvents, event.ID, event.UserID, status, actor, s.now())
	if err != nil {
		return err
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.UpdateStatus(ctx, event.ID, status, payload)
	}); err != nil {
		return err
	}
	s.logger.Info("event request status changed",
		zap.String("id", event.ID),
		zap.String("status", string(status)),
		zap.Stringer("role", actor.Role))
	return nil
}
