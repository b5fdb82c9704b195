package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type ReportService struct {
	repo   ports.ReportRepository
	logger *zap.Logger
	now    func() time.Time
}

var _ ports.ReportService = (*ReportService)(nil)

func NewReportService(repo ports.ReportRepository, logger *zap.Logger) *ReportService {
	return &ReportService{repo: repo, logger: logger, now: time.Now}
}

func (s *ReportService) Create(ctx context.Context, actor domain.Actor, draft domain.ReportDraft) (*domain.Report, error) {
	if err := authorize(actor, domain.PermissionManageReports); err != nil {
		return nil, err
	}
	if err := validateStruct(draft); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	report := domain.Report{
		ID:        uuid.NewString(),
		Title:     draft.Title,
		Content:   draft.Content,
		UserID:    actor.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, report)
	}); err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Report, error) {
	if err := authorize(actor, domain.PermissionManageReports); err != nil {
		return nil, err
	}
	if err := recordID(id); err != nil {
		return nil, err
	}
	report, err := withRetry(ctx, func(ctx context.Context) (*domain.Report, error) {
		return s.repo.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	if report.UserID != actor.UserID {
		return nil, domain.NewError(domain.KindPermissionDenied, "report belongs to another account", nil)
	}
	return report, nil
}

func (s *ReportService) List(ctx context.Context, actor domain.Actor) ([]domain.Report, error) {
	if err := authorize(actor, domain.PermissionManageReports); err != nil {
		return nil, err
	}
	return withRetry(ctx, func(ctx context.Context) ([]domain.Report, error) {
		return s.repo.ListByUser(ctx, actor.UserID)
	})
}

// Update overwrites title and content; no history is kept.
func (s *ReportService) Update(ctx context.Context, actor domain.Actor, id string, draft domain.ReportDraft) (*domain.Report, error) {
	if err := authorize(actor, domain.PermissionManageReports); err != nil {
		return nil, err
	}
	if err := validateStruct(draft); err != nil {
		return nil, err
	}
	report, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	report.Title = draft.Title
	report.Content = draft.Content
	report.UpdatedAt = s.now().UTC()
	if err := doRetry(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, *report)
	}); err != nil {
		return nil, err
	}
	s.logger.Info("report updated", zap.String("id", report.ID))
	return report, nil
}
