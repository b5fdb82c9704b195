package repository

import (
	"context"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type EventRequestRepository struct {
	*SQLRepository
}

var _ ports.EventRequestRepository = (*EventRequestRepository)(nil)

func NewEventRequestRepository(base *SQLRepository) *EventRequestRepository {
	return &EventRequestRepository{SQLRepository: base}
}

const eventColumns = "id, association, event_name, date, description, status, user_id, created_at, updated_at"

func scanEvent(row rowScanner) (domain.EventRequest, error) {
	var e domain.EventRequest
	var status string
	err := row.Scan(&e.ID, &e.Association, &e.EventName, &e.Date, &e.Description,
		&status, &e.UserID, &e.CreatedAt, &e.UpdatedAt)
	e.Status = domain.Status(status)
	return e, err
}

func (r *EventRequestRepository) Create(ctx context.Context, req domain.EventRequest) error {
	return r.run(ctx, "create event request", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO events ("+eventColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
			req.ID, req.Association, req.EventName, req.Date, req.Description,
			string(req.Status), req.UserID, req.CreatedAt, req.UpdatedAt)
		return err
	})
}

func (r *EventRequestRepository) Get(ctx context.Context, id string) (*domain.EventRequest, error) {
	var event domain.EventRequest
	err := r.run(ctx, "get event request", func(ctx context.Context) error {
		var err error
		event, err = scanEvent(r.db.QueryRowContext(ctx,
			"SELECT "+eventColumns+" FROM events WHERE id = $1", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRequestRepository) List(ctx context.Context, filter ports.RequestFilter) ([]domain.EventRequest, error) {
	query, args := listQuery("SELECT "+eventColumns+" FROM events", "date", filter)

	var events []domain.EventRequest
	err := r.run(ctx, "list event requests", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		events = nil
		for rows.Next() {
			e, err := scanEvent(rows)
			if err != nil {
				return err
			}
			events = append(events, e)
		}
		return rows.Err()
	})
	return events, err
}

func (r *EventRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, outboxPayload []byte) error {
	return r.updateStatus(ctx, ports.TableEvents, id, status, outboxPayload)
}
