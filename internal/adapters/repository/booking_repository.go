package repository

import (
	"context"
	"time"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

type BookingRepository struct {
	*SQLRepository
}

var _ ports.BookingRepository = (*BookingRepository)(nil)

func NewBookingRepository(base *SQLRepository) *BookingRepository {
	return &BookingRepository{SQLRepository: base}
}

const bookingColumns = "id, resource_id, title, start_time, end_time, user_id, created_at"

// Create relies on the calendar_bookings_no_overlap constraint to refuse a
// booking that raced past the overlap check.
func (r *BookingRepository) Create(ctx context.Context, b domain.CalendarBooking) error {
	return r.run(ctx, "create booking", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO calendar_bookings ("+bookingColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7)",
			b.ID, string(b.ResourceID), b.Title, b.Start, b.End, b.UserID, b.CreatedAt)
		return err
	})
}

func (r *BookingRepository) ListOverlapping(ctx context.Context, resource domain.ResourceID, from, to time.Time) ([]domain.CalendarBooking, error) {
	var bookings []domain.CalendarBooking
	err := r.run(ctx, "list bookings", func(ctx context.Context) error {
		rows, err := r.db.QueryContext(ctx,
			"SELECT "+bookingColumns+" FROM calendar_bookings WHERE resource_id = $1 AND start_time < $3 AND end_time > $2 ORDER BY start_time",
			string(resource), from, to)
		if err != nil {
			return err
		}
		defer rows.Close()

		bookings = nil
		for rows.Next() {
			var (
				b  domain.CalendarBooking
				id string
			)
			if err := rows.Scan(&b.ID, &id, &b.Title, &b.Start, &b.End, &b.UserID, &b.CreatedAt); err != nil {
				return err
			}
			b.ResourceID = domain.ResourceID(id)
			bookings = append(bookings, b)
		}
		return rows.Err()
	})
	return bookings, err
}
