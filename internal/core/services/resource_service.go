package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type ResourceRequestService struct {
	repo   ports.ResourceRequestRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.ResourceRequestService = (*ResourceRequestService)(nil)

func NewResourceRequestService(repo ports.ResourceRequestRepository, logger *zap.Logger) *ResourceRequestService {
	return &ResourceRequestService{repo: repo, logger: logger, now: time.Now}
}

func (s *ResourceRequestService) Submit(ctx context.Context, actor domain.Actor, req domain.NewResourceRequest) (*domain.ResourceRequest, error) {
	if err := authorize(actor, domain.PermissionCreateResourceRequest); err != nil {
		return nil, err
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		return nil, err
	}
	resources, err := normalizeResources(req.Resources)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rr := domain.ResourceRequest{
		ID:        uuid.NewString(),
		EventName: req.EventName,
		Date:      date,
		Resources: resources,
		Status:    domain.StatusPending,
		UserID:    actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, rr)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("resource request submitted",
		zap.String("id", rr.ID),
		zap.Int("resources", len(resources)))
	return &rr, nil
}

func (s *ResourceRequestService) List(ctx context.Context, actor domain.Actor, filter ports.RequestFilter) ([]domain.ResourceRequest, error) {
	if err := authorizeAny(actor, domain.PermissionCreateResourceRequest, domain.PermissionViewAllResources); err != nil {
		return nil, err
	}
	filter = ownerFilter(actor, filter, domain.PermissionViewAllResources)
	return withRetry(ctx, func(ctx context.Context) ([]domain.ResourceRequest, error) {
		return s.repo.List(ctx, filter)
	})
}

func (s *ResourceRequestService) Decide(ctx context.Context, actor domain.Actor, id string, status domain.Status) error {
	if err := authorize(actor, domain.PermissionReviewResources); err != nil {
		return err
	}
	if err := decisionStatus(status); err != nil {
		return err
	}
	if err := recordID(id); err != nil {
		return err
	}
	rr, err := withRetry(ctx, func(ctx context.Context) (*domain.ResourceRequest, error) {
		return s.repo.Get(ctx, id)
	})
	if err != nil {
		return err
	}
	if rr.Status == status {
		return nil
	}
	payload, err := statusPayload(ports.TableResourceRequests, rr.ID, rr.UserID, status, actor, s.now())
	if err != nil {
		return err
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.UpdateStatus(ctx, rr.ID, status, payload)
	}); err != nil {
		return err
	}
	s.logger.Info("resource request status changed", zap.String("id", rr.ID), zap.String("status", string(status)))
	return nil
}

// normalizeResources rejects an empty set or unknown ids and drops
// duplicates, keeping catalog order.
func normalizeResources(in []domain.ResourceID) ([]domain.ResourceID, error) {
	if len(in) == 0 {
		return nil, domain.NewValidationError(domain.KindMissingField, "resources", "select at least one resource")
	}
	seen := make(map[domain.ResourceID]bool, len(in))
	for _, r := range in {
		if !r.Valid() {
			return nil, domain.NewValidationError(domain.KindInvalidRange, "resources", "unknown resource "+string(r))
		}
		seen[r] = true
	}
	out := make([]domain.ResourceID, 0, len(seen))
	for _, r := range domain.Resources {
		if seen[r] {
			out = append(out, r)
		}
	}
	return out, nil
}
