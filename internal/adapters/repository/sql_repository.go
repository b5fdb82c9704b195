package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/core/domain"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

var newID = uuid.NewString

const (
	pqClassDataException    = "22"
	pqClassIntegrity        = "23"
	pqInsufficientPrivilege = "42501"
)

// SQLRepository holds what every table repository shares: the pool, one
// breaker for the database and the per-call timeout.
type SQLRepository struct {
	db      *sql.DB
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
	logger  *zap.Logger
}

func NewSQLRepository(db *sql.DB, breaker *gobreaker.CircuitBreaker, timeout time.Duration, logger *zap.Logger) *SQLRepository {
	return &SQLRepository{db: db, breaker: breaker, timeout: timeout, logger: logger}
}

// run executes fn under the call timeout and the breaker. Errors about the
// data rather than the store travel through the breaker as a result value
// so they never count towards tripping it.
func (r *SQLRepository) run(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.breaker.Execute(func() (interface{}, error) {
		if err := fn(ctx); err != nil {
			if isDataError(err) {
				return err, nil
			}
			return nil, err
		}
		return nil, nil
	})
	if err == nil {
		if dataErr, ok := res.(error); ok {
			err = dataErr
		}
	}
	return r.mapError(op, err)
}

// inTx runs fn in a transaction inside run.
func (r *SQLRepository) inTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	return r.run(ctx, op, func(ctx context.Context) error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if err := fn(ctx, tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func isDataError(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case pqClassDataException, pqClassIntegrity:
			return true
		}
		return pqErr.Code == pqInsufficientPrivilege
	}
	return false
}

func (r *SQLRepository) mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != "" {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewError(domain.KindNotFound, op+": not found", err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == pqInsufficientPrivilege:
			return domain.NewError(domain.KindPermissionDenied, op+": permission denied", err)
		case pqErr.Code.Class() == pqClassIntegrity:
			return domain.NewError(domain.KindInvalidRange, op+": "+integrityMessage(pqErr), err)
		case pqErr.Code.Class() == pqClassDataException:
			return domain.NewError(domain.KindInvalidRange, op+": invalid value", err)
		}
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		r.logger.Warn("database breaker rejected call", zap.String("op", op))
	default:
		r.logger.Error("database call failed", zap.String("op", op), zap.Error(err))
	}
	return domain.NewError(domain.KindDataUnavailable, op+": data store unavailable", err)
}

func integrityMessage(err *pq.Error) string {
	switch err.Code.Name() {
	case "unique_violation":
		return "already exists"
	case "foreign_key_violation":
		return "references a missing record"
	case "exclusion_violation":
		return "overlaps an existing record"
	default:
		return "violates a constraint"
	}
}

// rowScanner lets scan helpers take either *sql.Row or *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// requireRow turns a zero-row update into sql.ErrNoRows.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// listQuery appends the filter to a SELECT over a table whose owner column
// is user_id. dateColumn is empty for tables without a requested date.
func listQuery(base, dateColumn string, filter ports.RequestFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		where = append(where, "user_id = "+arg(filter.UserID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}
	if filter.ExcludeStatus != "" {
		where = append(where, "status <> "+arg(string(filter.ExcludeStatus)))
	}

	var b strings.Builder
	b.WriteString(base)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	if filter.ByDate && dateColumn != "" {
		b.WriteString(" ORDER BY " + dateColumn + " ASC, created_at ASC")
	} else {
		b.WriteString(" ORDER BY created_at DESC")
	}
	if filter.Limit > 0 {
		b.WriteString(" LIMIT " + arg(filter.Limit))
	}
	return b.String(), args
}

// updateStatus sets the status of a row and, when payload is non-nil, queues
// the status change in the outbox within the same transaction.
func (r *SQLRepository) updateStatus(ctx context.Context, table, id string, status domain.Status, payload []byte) error {
	return r.inTx(ctx, "update "+table+" status", func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE "+table+" SET status = $1, updated_at = NOW() WHERE id = $2",
			string(status), id)
		if err != nil {
			return err
		}
		if err := requireRow(res); err != nil {
			return err
		}
		if payload == nil {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO outbox_events (id, event_type, payload) VALUES ($1, $2, $3)",
			newID(), ports.OutboxEventType, payload)
		return err
	})
}
