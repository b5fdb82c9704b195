package repository

import (
	"context"
	"database/sql"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type FundAnalysisRepository struct {
	*SQLRepository
}

var _ ports.FundAnalysisRepository = (*FundAnalysisRepository)(nil)

func NewFundAnalysisRepository(base *SQLRepository) *FundAnalysisRepository {
	return &FundAnalysisRepository{SQLRepository: base}
}

const (
	fundColumns    = "id, user_id, event_id, title, total_amount, status, created_at, updated_at"
	sectionColumns = "id, fund_analysis_id, section_name, amount, position, created_at"
)

func scanFund(row rowScanner) (domain.FundAnalysis, error) {
	var f domain.FundAnalysis
	var status string
	err := row.Scan(&f.ID, &f.UserID, &f.EventID, &f.Title, &f.TotalAmount,
		&status, &f.CreatedAt, &f.UpdatedAt)
	f.Status = domain.Status(status)
	return f, err
}

func (r *FundAnalysisRepository) Create(ctx context.Context, fund domain.FundAnalysis, sections []domain.FundAnalysisSection) error {
	return r.inTx(ctx, "create fund analysis", func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO fund_analysis ("+fundColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			fund.ID, fund.UserID, fund.EventID, fund.Title, fund.TotalAmount,
			string(fund.Status), fund.CreatedAt, fund.UpdatedAt)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO fund_analysis_sections ("+sectionColumns+") VALUES ($1, $2, $3, $4, $5, $6)")
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, s := range sections {
			if _, err := stmt.ExecContext(ctx, s.ID, fund.ID, s.SectionName, s.Amount, s.Position, s.CreatedAt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *FundAnalysisRepository) Get(ctx context.Context, id string) (*domain.FundAnalysis, error) {
	var fund domain.FundAnalysis
	err := r.run(ctx, "get fund analysis", func(ctx context.Context) error {
		var err error
		fund, err = scanFund(r.db.QueryRowContext(ctx,
			"SELECT "+fundColumns+" FROM fund_analysis WHERE id = $1", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &fund, nil
}

func (r *FundAnalysisRepository) List(ctx context.Context, filter ports.RequestFilter) ([]domain.FundAnalysis, error) {
	query, args := listQuery("SELECT "+fundColumns+" FROM fund_analysis", "", filter)

	var funds []domain.FundAnalysis
	err := r.run(ctx, "list fund analyses", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		funds = nil
		for rows.Next() {
			f, err := scanFund(rows)
			if err != nil {
				return err
			}
			funds = append(funds, f)
		}
		return rows.Err()
	})
	return funds, err
}

func (r *FundAnalysisRepository) Sections(ctx context.Context, fundID string) ([]domain.FundAnalysisSection, error) {
	var sections []domain.FundAnalysisSection
	err := r.run(ctx, "list fund sections", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx,
			"SELECT "+sectionColumns+" FROM fund_analysis_sections WHERE fund_analysis_id = $1 ORDER BY position",
			fundID)
		if err != nil {
			return err
		}
		defer rows.Close()

		sections = nil
		for rows.Next() {
			var s domain.FundAnalysisSection
			if err := rows.Scan(&s.ID, &s.FundAnalysisID, &s.SectionName, &s.Amount, &s.Position, &s.CreatedAt); err != nil {
				return err
			}
			sections = append(sections, s)
		}
		return rows.Err()
	})
	return sections, err
}

func (r *FundAnalysisRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, outboxPayload []byte) error {
	return r.updateStatus(ctx, ports.TableFundAnalysis, id, status, outboxPayload)
}
