package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/config"
	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

func newTestBase(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	return NewSQLRepository(db, config.NewCircuitBreaker(config.BreakerPostgres, logger), time.Second, logger), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestListQuery(t *testing.T) {
	tests := []struct {
		name     string
		filter   ports.RequestFilter
		date     string
		expected string
		args     []any
	}{
		{
			name:     "no filter orders newest first",
			date:     "date",
			expected: "SELECT * FROM events ORDER BY created_at DESC",
		},
		{
			name:     "owner and status",
			filter:   ports.RequestFilter{UserID: "user-1", Status: domain.StatusPending},
			date:     "date",
			expected: "SELECT * FROM events WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC",
			args:     []any{"user-1", "pending"},
		},
		{
			name:     "upcoming by date with limit",
			filter:   ports.RequestFilter{ExcludeStatus: domain.StatusRejected, ByDate: true, Limit: 5},
			date:     "date",
			expected: "SELECT * FROM events WHERE status <> $1 ORDER BY date ASC, created_at ASC LIMIT $2",
			args:     []any{"rejected", 5},
		},
		{
			name:     "by date ignored without a date column",
			filter:   ports.RequestFilter{ByDate: true},
			expected: "SELECT * FROM events ORDER BY created_at DESC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := listQuery("SELECT * FROM events", tt.date, tt.filter)
			assert.Equal(t, tt.expected, query)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestAccountRepository_FindByEmail(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewAccountRepository(base)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(q("FROM users WHERE LOWER(email) = LOWER($1)")).
		WithArgs("Student@Campus.edu").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("user-1", "student@campus.edu", "hash", created))

	account, err := repo.FindByEmail(context.Background(), "Student@Campus.edu")

	require.NoError(t, err)
	assert.Equal(t, "user-1", account.ID)
	assert.Equal(t, "hash", account.PasswordHash)
	assert.Equal(t, created, account.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_NotFoundDoesNotTripBreaker(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewAccountRepository(base)

	for i := 0; i < 5; i++ {
		mock.ExpectQuery(q("FROM users WHERE id = $1")).
			WithArgs("missing").
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}))
	}
	mock.ExpectQuery(q("FROM users WHERE id = $1")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow("user-1", "a@campus.edu", "hash", time.Now()))

	for i := 0; i < 5; i++ {
		_, err := repo.FindByID(context.Background(), "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound), "attempt %d: %v", i, err)
	}

	account, err := repo.FindByID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "a@campus.edu", account.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_FailuresOpenBreaker(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewAccountRepository(base)

	for i := 0; i < 3; i++ {
		mock.ExpectQuery(q("FROM users ORDER BY created_at")).WillReturnError(errors.New("connection refused"))
	}

	for i := 0; i < 3; i++ {
		_, err := repo.List(context.Background())
		assert.Equal(t, domain.KindDataUnavailable, domain.KindOf(err))
	}

	// breaker is open: no query reaches the database
	_, err := repo.List(context.Background())
	assert.Equal(t, domain.KindDataUnavailable, domain.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_CreateDuplicate(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewAccountRepository(base)

	mock.ExpectExec(q("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), domain.Account{ID: "user-1", Email: "a@campus.edu"})

	assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))
	assert.Contains(t, err.Error(), "already exists")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_PermissionDenied(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewAccountRepository(base)

	mock.ExpectExec(q("UPDATE users SET password_hash = $1 WHERE id = $2")).
		WithArgs("new-hash", "user-1").
		WillReturnError(&pq.Error{Code: "42501"})

	err := repo.UpdatePasswordHash(context.Background(), "user-1", "new-hash")

	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRequestRepository_UpdateStatusWritesOutbox(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewEventRequestRepository(base)
	payload := []byte(`{"entity":"events","entity_id":"ev-1","status":"approved"}`)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs("approved", "ev-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO outbox_events (id, event_type, payload) VALUES ($1, $2, $3)")).
		WithArgs(sqlmock.AnyArg(), ports.OutboxEventType, payload).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatus(context.Background(), "ev-1", domain.StatusApproved, payload)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRequestRepository_UpdateStatusMissingRow(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewEventRequestRepository(base)

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE events SET status")).
		WithArgs("rejected", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateStatus(context.Background(), "missing", domain.StatusRejected, []byte(`{}`))

	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRequestRepository_MalformedIDDoesNotTripBreaker(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewEventRequestRepository(base)

	for i := 0; i < 5; i++ {
		mock.ExpectQuery(q("FROM events WHERE id = $1")).
			WithArgs("not-a-uuid").
			WillReturnError(&pq.Error{Code: "22P02"})
	}
	mock.ExpectQuery(q("FROM events ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "association", "event_name", "date", "description", "status", "user_id", "created_at", "updated_at"}))

	for i := 0; i < 5; i++ {
		_, err := repo.Get(context.Background(), "not-a-uuid")
		assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err), "attempt %d: %v", i, err)
	}

	_, err := repo.List(context.Background(), ports.RequestFilter{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRequestRepository_List(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewEventRequestRepository(base)
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()

	mock.ExpectQuery(q("FROM events WHERE user_id = $1 ORDER BY created_at DESC")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "association", "event_name", "date", "description", "status", "user_id", "created_at", "updated_at",
		}).AddRow("ev-1", "Robotics Club", "Hackathon", date, "", "pending", "user-1", now, now))

	events, err := repo.List(context.Background(), ports.RequestFilter{UserID: "user-1"})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.StatusPending, events[0].Status)
	assert.Equal(t, date, events[0].Date)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResourceRequestRepository_GetScansResourceArray(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewResourceRequestRepository(base)
	now := time.Now().UTC()

	mock.ExpectQuery(q("FROM resource_requests WHERE id = $1")).
		WithArgs("res-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "event_name", "date", "resources", "status", "user_id", "created_at", "updated_at",
		}).AddRow("res-1", "Hackathon", now, []byte("{ccf-lab,auditorium}"), "approved", "user-1", now, now))

	req, err := repo.Get(context.Background(), "res-1")

	require.NoError(t, err)
	assert.Equal(t, []domain.ResourceID{domain.ResourceCCFLab, domain.ResourceAuditorium}, req.Resources)
	assert.Equal(t, domain.StatusApproved, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFundAnalysisRepository_CreateIsAtomic(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewFundAnalysisRepository(base)
	now := time.Now().UTC()

	fund := domain.FundAnalysis{ID: "fund-1", UserID: "user-1", EventID: "ev-1", Title: "Budget", TotalAmount: 1500, Status: domain.StatusPending, CreatedAt: now, UpdatedAt: now}
	sections := []domain.FundAnalysisSection{
		{ID: "sec-1", SectionName: "Food", Amount: 1000, Position: 0, CreatedAt: now},
		{ID: "sec-2", SectionName: "Prints", Amount: 500, Position: 1, CreatedAt: now},
	}

	t.Run("commits header and sections", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(q("INSERT INTO fund_analysis (")).
			WithArgs("fund-1", "user-1", "ev-1", "Budget", int64(1500), "pending", now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		prep := mock.ExpectPrepare(q("INSERT INTO fund_analysis_sections"))
		prep.ExpectExec().WithArgs("sec-1", "fund-1", "Food", int64(1000), 0, now).WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().WithArgs("sec-2", "fund-1", "Prints", int64(500), 1, now).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(context.Background(), fund, sections))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when a section fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(q("INSERT INTO fund_analysis (")).WillReturnResult(sqlmock.NewResult(0, 1))
		prep := mock.ExpectPrepare(q("INSERT INTO fund_analysis_sections"))
		prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
		prep.ExpectExec().WillReturnError(&pq.Error{Code: "23514"})
		mock.ExpectRollback()

		err := repo.Create(context.Background(), fund, sections)
		assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCollaborationRepository_ListJoinsEventName(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewCollaborationRepository(base)
	now := time.Now().UTC()

	mock.ExpectQuery(q("JOIN events e ON e.id = c.event_id")).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "event_name", "message", "status", "user_id", "created_at"}).
			AddRow("col-1", "ev-1", "Hackathon", "count us in", "pending", "user-1", now))

	collabs, err := repo.ListByUser(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, collabs, 1)
	assert.Equal(t, "Hackathon", collabs[0].EventName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_ListOverlappingWindow(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewBookingRepository(base)
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("FROM calendar_bookings WHERE resource_id = $1 AND start_time < $3 AND end_time > $2")).
		WithArgs("auditorium", day, day.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "resource_id", "title", "start_time", "end_time", "user_id", "created_at"}).
			AddRow("b-1", "auditorium", "Rehearsal", day.Add(-2*time.Hour), day.Add(3*time.Hour), "user-1", day))

	bookings, err := repo.ListOverlapping(context.Background(), domain.ResourceAuditorium, day, day.Add(24*time.Hour))

	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, domain.ResourceAuditorium, bookings[0].ResourceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepository_OverlapConstraint(t *testing.T) {
	base, mock := newTestBase(t)
	repo := NewBookingRepository(base)
	start := time.Date(2025, 4, 1, 22, 0, 0, 0, time.UTC)

	mock.ExpectExec(q("INSERT INTO calendar_bookings")).
		WillReturnError(&pq.Error{Code: "23P01", Constraint: "calendar_bookings_no_overlap"})

	err := repo.Create(context.Background(), domain.CalendarBooking{
		ID: "b-2", ResourceID: domain.ResourceAuditorium, Title: "Clash",
		Start: start, End: start.Add(time.Hour), UserID: "user-2", CreatedAt: start,
	})

	assert.Equal(t, domain.KindInvalidRange, domain.KindOf(err))
	assert.Contains(t, err.Error(), "overlaps an existing record")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMapError_PassesDomainErrors(t *testing.T) {
	base, _ := newTestBase(t)
	err := base.mapError("op", domain.ErrPermissionDenied)
	assert.Same(t, domain.ErrPermissionDenied, err)

	err = base.mapError("op", sql.ErrNoRows)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
