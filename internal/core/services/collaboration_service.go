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

type CollaborationService struct {
	repo   ports.CollaborationRepository
	events ports.EventRequestRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.CollaborationService = (*CollaborationService)(nil)

func NewCollaborationService(repo ports.CollaborationRepository, events ports.EventRequestRepository, logger *zap.Logger) *CollaborationService {
	return &CollaborationService{repo: repo, events: events, logger: logger, now: time.Now}
}

// Request asks to collaborate on an approved event.
func (s *CollaborationService) Request(ctx context.Context, actor domain.Actor, req domain.NewCollaboration) (*domain.Collaboration, error) {
	if err := authorize(actor, domain.PermissionCollaborate); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	event, err := withRetry(ctx, func(ctx context.Context) (*domain.EventRequest, error) {
		return s.events.Get(ctx, req.EventID)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError(domain.KindInvalidRange, "event_id", "event does not exist")
		}
		return nil, err
	}
	if event.Status != domain.StatusApproved {
		return nil, domain.NewValidationError(domain.KindInvalidRange, "event_id", "only approved events accept collaborations")
	}

	collab := domain.Collaboration{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		EventName: event.EventName,
		Message:   req.Message,
		Status:    domain.StatusPending,
		UserID:    actor.UserID,
		CreatedAt: s.now().UTC(),
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, collab)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("collaboration requested", zap.String("event_id", event.ID))
	return &collab, nil
}

func (s *CollaborationService) List(ctx context.Context, actor domain.Actor) ([]domain.Collaboration, error) {
	if err := authorize(actor, domain.PermissionCollaborate); err != nil {
		return nil, err
	}
	return withRetry(ctx, func(ctx context.Context) ([]domain.Collaboration, error) {
		return s.repo.ListByUser(ctx, actor.UserID)
	})
}
