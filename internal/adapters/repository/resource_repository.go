package repository

import (
	"context"

	"github.com/lib/pq"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type ResourceRequestRepository struct {
	*SQLRepository
}

var _ ports.ResourceRequestRepository = (*ResourceRequestRepository)(nil)

func NewResourceRequestRepository(base *SQLRepository) *ResourceRequestRepository {
	return &ResourceRequestRepository{SQLRepository: base}
}

const resourceColumns = "id, event_name, date, resources, status, user_id, created_at, updated_at"

func scanResourceRequest(row rowScanner) (domain.ResourceRequest, error) {
	var (
		req       domain.ResourceRequest
		resources pq.StringArray
		status    string
	)
	err := row.Scan(&req.ID, &req.EventName, &req.Date, &resources, &status,
		&req.UserID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return req, err
	}
	req.Status = domain.Status(status)
	req.Resources = make([]domain.ResourceID, len(resources))
	for i, id := range resources {
		req.Resources[i] = domain.ResourceID(id)
	}
	return req, nil
}

func (r *ResourceRequestRepository) Create(ctx context.Context, req domain.ResourceRequest) error {
	resources := make([]string, len(req.Resources))
	for i, id := range req.Resources {
		resources[i] = string(id)
	}
	return r.run(ctx, "create resource request", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO resource_requests ("+resourceColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			req.ID, req.EventName, req.Date, pq.Array(resources), string(req.Status),
			req.UserID, req.CreatedAt, req.UpdatedAt)
		return err
	})
}

func (r *ResourceRequestRepository) Get(ctx context.Context, id string) (*domain.ResourceRequest, error) {
	var req domain.ResourceRequest
	err := r.run(ctx, "get resource request", func(ctx context.Context) error {
		var err error
		req, err = scanResourceRequest(r.db.QueryRowContext(ctx,
			"SELECT "+resourceColumns+" FROM resource_requests WHERE id = $1", id))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ResourceRequestRepository) List(ctx context.Context, filter ports.RequestFilter) ([]domain.ResourceRequest, error) {
	query, args := listQuery("SELECT "+resourceColumns+" FROM resource_requests", "date", filter)

	var reqs []domain.ResourceRequest
	err := r.run(ctx, "list resource requests", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		reqs = nil
		for rows.Next() {
			req, err := scanResourceRequest(rows)
			if err != nil {
				return err
			}
			reqs = append(reqs, req)
		}
		return rows.Err()
	})
	return reqs, err
}

func (r *ResourceRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, outboxPayload []byte) error {
	return r.updateStatus(ctx, ports.TableResourceRequests, id, status, outboxPayload)
}
