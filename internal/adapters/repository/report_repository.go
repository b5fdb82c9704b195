package repository

import (
	"context"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type ReportRepository struct {
	*SQLRepository
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

func NewReportRepository(base *SQLRepository) *ReportRepository {
	return &ReportRepository{SQLRepository: base}
}

const reportColumns = "id, title, content, user_id, created_at, updated_at"

func scanReport(row rowScanner) (domain.Report, error) {
	var rep domain.Report
	err := row.Scan(&rep.ID, &rep.Title, &rep.Content, &rep.UserID, &rep.CreatedAt, &rep.UpdatedAt)
	return rep, err
}

func (r *ReportRepository) Create(ctx context.Context, report domain.Report) error {
	return r.run(ctx, "create report", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO reports ("+reportColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
			report.ID, report.Title, report.Content, report.UserID, report.CreatedAt, report.UpdatedAt)
		return err
	})
}

func (r *ReportRepository) Get(ctx context.Context, id string) (*domain.Report, error) {
	var report domain.Report
	err := r.run(ctx, "get report", func(ctx context.Context) error {
		var err error
		report, err = scanReport(r.db.QueryRowContext(ctx,
			"SELECT "+reportColumns+" FROM reports WHERE id = $1", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID string) ([]domain.Report, error) {
	var reports []domain.Report
	err := r.run(ctx, "list reports", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx,
			"SELECT "+reportColumns+" FROM reports WHERE user_id = $1 ORDER BY updated_at DESC", userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		reports = nil
		for rows.Next() {
			rep, err := scanReport(rows)
			if err != nil {
				return err
			}
			reports = append(reports, rep)
		}
		return rows.Err()
	})
	return reports, err
}

// Update overwrites title and content.
func (r *ReportRepository) Update(ctx context.Context, report domain.Report) error {
	return r.run(ctx, "update report", func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			"UPDATE reports SET title = $1, content = $2, updated_at = $3 WHERE id = $4",
			report.Title, report.Content, report.UpdatedAt, report.ID)
		if err != nil {
			return err
		}
		return requireRow(res)
	})
}
