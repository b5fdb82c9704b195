package repository

import (
	"context"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type CollaborationRepository struct {
	*SQLRepository
}

var _ ports.CollaborationRepository = (*CollaborationRepository)(nil)

func NewCollaborationRepository(base *SQLRepository) *CollaborationRepository {
	return &CollaborationRepository{SQLRepository: base}
}

func (r *CollaborationRepository) Create(ctx context.Context, c domain.Collaboration) error {
	return r.run(ctx, "create collaboration", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO collaborations (id, event_id, message, status, user_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
			c.ID, c.EventID, c.Message, string(c.Status), c.UserID, c.CreatedAt)
		return err
	})
}

// ListByUser joins the event name so the list renders without a second query.
func (r *CollaborationRepository) ListByUser(ctx context.Context, userID string) ([]domain.Collaboration, error) {
	var collabs []domain.Collaboration
	err := r.run(ctx, "list collaborations", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, `
			SELECT c.id, c.event_id, e.event_name, c.message, c.status, c.user_id, c.created_at
			FROM collaborations c
			JOIN events e ON e.id = c.event_id
			WHERE c.user_id = $1
			ORDER BY c.created_at DESC`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		collabs = nil
		for rows.Next() {
			var (
				c      domain.Collaboration
				status string
			)
			if err := rows.Scan(&c.ID, &c.EventID, &c.EventName, &c.Message, &status, &c.UserID, &c.CreatedAt); err != nil {
				return err
			}
			c.Status = domain.Status(status)
			collabs = append(collabs, c)
		}
		return rows.Err()
	})
	return collabs, err
}
