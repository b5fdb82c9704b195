package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type FundAnalysisService struct {
	repo   ports.FundAnalysisRepository
	events ports.EventRequestRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.FundAnalysisService = (*FundAnalysisService)(nil)

func NewFundAnalysisService(repo ports.FundAnalysisRepository, events ports.EventRequestRepository, logger *zap.Logger) *FundAnalysisService {
	return &FundAnalysisService{repo: repo, events: events, logger: logger, now: time.Now}
}

// Create stores a fund analysis whose total is the sum of its sections.
func (s *FundAnalysisService) Create(ctx context.Context, actor domain.Actor, req domain.NewFundAnalysis) (*domain.FundAnalysis, error) {
	if err := authorize(actor, domain.PermissionCreateFundAnalysis); err != nil {
		return nil, err
	}
	if len(req.Sections) == 0 {
		return nil, domain.NewValidationError(domain.KindMissingField, "sections", "add at least one section")
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	total, ok := req.Total()
	if !ok {
		return nil, domain.NewValidationError(domain.KindInvalidRange, "sections", "total amount is too large")
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
	if event.UserID != actor.UserID {
		return nil, domain.NewError(domain.KindPermissionDenied, "event belongs to another account", nil)
	}
	if event.Status != domain.StatusApproved {
		return nil, domain.NewValidationError(domain.KindInvalidRange, "event_id", "only approved events can be funded")
	}

	now := s.now().UTC()
	fund := domain.FundAnalysis{
		ID:          uuid.NewString(),
		UserID:      actor.UserID,
		EventID:     event.ID,
		Title:       req.Title,
		TotalAmount: total,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	sections := make([]domain.FundAnalysisSection, len(req.Sections))
	for i, sec := range req.Sections {
		sections[i] = domain.FundAnalysisSection{
			ID:             uuid.NewString(),
			FundAnalysisID: fund.ID,
			SectionName:    strings.TrimSpace(sec.SectionName),
			Amount:         sec.Amount,
			Position:       i,
			CreatedAt:      now,
		}
	}

	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, fund, sections)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("fund analysis created",
		zap.String("id", fund.ID),
		zap.Int64("total_amount", fund.TotalAmount),
		zap.Int("sections", len(sections)))
	return &fund, nil
}

func (s *FundAnalysisService) List(ctx context.Context, actor domain.Actor, filter ports.RequestFilter) ([]domain.FundAnalysis, error) {
	if err := authorizeAny(actor, domain.PermissionCreateFundAnalysis, domain.PermissionViewAllFunds); err != nil {
		return nil, err
	}
	filter = ownerFilter(actor, filter, domain.PermissionViewAllFunds)
	return withRetry(ctx, func(ctx context.Context) ([]domain.FundAnalysis, error) {
		return s.repo.List(ctx, filter)
	})
}

func (s *FundAnalysisService) Sections(ctx context.Context, actor domain.Actor, fundID string) ([]domain.FundAnalysisSection, error) {
	if _, err := s.visible(ctx, actor, fundID); err != nil {
		return nil, err
	}
	return withRetry(ctx, func(ctx context.Context) ([]domain.FundAnalysisSection, error) {
		return s.repo.Sections(ctx, fundID)
	})
}

func (s *FundAnalysisService) Decide(ctx context.Context, actor domain.Actor, id string, status domain.Status) error {
	if err := authorize(actor, domain.PermissionReviewFunds); err != nil {
		return err
	}
	if err := decisionStatus(status); err != nil {
		return err
	}
	if err := recordID(id); err != nil {
		return err
	}
	fund, err := withRetry(ctx, func(ctx context.Context) (*domain.FundAnalysis, error) {
		return s.repo.Get(ctx, id)
	})
	if err != nil {
		return err
	}
	if fund.Status == status {
		return nil
	}
	payload, err := statusPayload(ports.TableFundAnalysis, fund.ID, fund.UserID, status, actor, s.now())
	if err != nil {
		return err
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.UpdateStatus(ctx, fund.ID, status, payload)
	}); err != nil {
		return err
	}
	s.logger.Info("fund analysis status changed", zap.String("id", fund.ID), zap.String("status", string(status)))
	return nil
}

func (s *FundAnalysisService) visible(ctx context.Context, actor domain.Actor, id string) (*domain.FundAnalysis, error) {
	if err := authorizeAny(actor, domain.PermissionCreateFundAnalysis, domain.PermissionViewAllFunds); err != nil {
		return nil, err
	}
	if err := recordID(id); err != nil {
		return nil, err
	}
	fund, err := withRetry(ctx, func(ctx context.Context) (*domain.FundAnalysis, error) {
		return s.repo.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if !actor.Role.Allows(domain.PermissionViewAllFunds) && fund.UserID != actor.UserID {
		return nil, domain.NewError(domain.KindPermissionDenied, "fund analysis belongs to another account", nil)
	}
	return fund, nil
}
