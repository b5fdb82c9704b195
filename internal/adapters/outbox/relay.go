package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/metrics"
	"github.com/AchilleasB/campus-events/event-service/internal/config"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	// Event processing timeouts
	eventProcessTimeout = 30 * time.Second
	batchProcessTimeout = 60 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100

	publishAttempts = 3
	publishBackoff  = 200 * time.Millisecond
)

// Relay outcomes recorded in the relay metric.
const (
	resultPublished = "published"
	resultSkipped   = "skipped"
	resultInvalid   = "invalid"
	resultFailed    = "failed"
)

const (
	selectOne = `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`

	selectBatch = `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`

	markProcessed = `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`
)

type record struct {
	ID        string
	EventType string
	Payload   []byte
}

// Relay listens for PostgreSQL NOTIFY signals on the outbox_channel and
// publishes status change events to the broker. A cron schedule sweeps the
// table for rows whose notification was missed.
type Relay struct {
	db        *sql.DB
	publisher ports.StatusEventPublisher
	dbURL     string
	schedule  cron.Schedule
	dbCB      *gobreaker.CircuitBreaker
	metrics   *metrics.Metrics
	logger    *zap.Logger

	lastProcessed atomic.Int64
	healthy       atomic.Bool
}

// NewRelay parses the catch-up schedule (standard cron or "@every 90s").
func NewRelay(db *sql.DB, dbURL string, publisher ports.StatusEventPublisher, catchUp string, m *metrics.Metrics, logger *zap.Logger) (*Relay, error) {
	schedule, err := cron.ParseStandard(catchUp)
	if err != nil {
		return nil, fmt.Errorf("parse catch-up schedule %q: %w", catchUp, err)
	}
	r := &Relay{
		db:        db,
		dbURL:     dbURL,
		publisher: publisher,
		schedule:  schedule,
		dbCB:      config.NewCircuitBreaker(config.BreakerRelayDB, logger),
		metrics:   m,
		logger:    logger,
	}
	r.markProgress()
	return r, nil
}

// IsHealthy is the liveness answer: the listener is connected.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady is false while the database breaker is open or nothing has been
// processed for a while.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(time.Unix(0, r.lastProcessed.Load())) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy.Load()
}

func (r *Relay) markProgress() {
	r.lastProcessed.Store(time.Now().UnixNano())
	r.healthy.Store(true)
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("outbox listener problem", zap.Int("event", int(ev)), zap.Error(err))
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(outboxChannelName); err != nil {
		return err
	}
	r.logger.Info("outbox relay listening", zap.String("channel", outboxChannelName))

	if err := r.ProcessPending(ctx); err != nil {
		r.logger.Error("startup backlog not processed", zap.Error(err))
	}

	sweeper := cron.New()
	sweeper.Schedule(r.schedule, cron.FuncJob(func() {
		if err := listener.Ping(); err != nil {
			r.logger.Warn("outbox listener ping failed", zap.Error(err))
		}
		if err := r.ProcessPending(ctx); err != nil {
			r.logger.Error("catch-up sweep failed", zap.Error(err))
		}
	}))
	sweeper.Start()
	defer func() { <-sweeper.Stop().Done() }()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay shutting down")
			return ctx.Err()

		case n := <-listener.Notify:
			if n == nil {
				r.logger.Warn("outbox listener reconnecting")
				r.healthy.Store(false)
				continue
			}
			if err := r.ProcessEvent(ctx, n.Extra); err != nil {
				r.logger.Error("outbox event not processed", zap.String("id", n.Extra), zap.Error(err))
			}
		}
	}
}

// ProcessEvent relays the outbox row with the given id if it is still
// unprocessed and not locked by another relay.
func (r *Relay) ProcessEvent(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var rec record
		err = tx.QueryRowContext(ctx, selectOne, id).Scan(&rec.ID, &rec.EventType, &rec.Payload)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.relay(ctx, rec); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, markProcessed, rec.ID); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	if err == nil {
		r.markProgress()
	}
	return err
}

// ProcessPending relays up to one batch of unprocessed rows, oldest first.
// Rows whose publish fails stay unprocessed for the next sweep.
func (r *Relay) ProcessPending(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, selectBatch, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}
		var records []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Payload); err != nil {
				rows.Close()
				return nil, err
			}
			records = append(records, rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, rec := range records {
			if err := r.relay(ctx, rec); err != nil {
				r.logger.Warn("outbox event left for retry", zap.String("id", rec.ID), zap.Error(err))
				continue
			}
			if _, err := tx.ExecContext(ctx, markProcessed, rec.ID); err != nil {
				return nil, err
			}
		}
		return nil, tx.Commit()
	})
	if err == nil {
		r.markProgress()
	}
	return err
}

// relay publishes one record. Unknown event types and undecodable payloads
// return nil so the row is marked processed instead of retried forever.
func (r *Relay) relay(ctx context.Context, rec record) error {
	if rec.EventType != ports.OutboxEventType {
		r.logger.Warn("skipping outbox event of unknown type", zap.String("id", rec.ID), zap.String("type", rec.EventType))
		r.metrics.RelayEvent(resultSkipped)
		return nil
	}

	var evt ports.StatusChangedEvent
	if err := json.Unmarshal(rec.Payload, &evt); err != nil {
		r.logger.Error("invalid outbox payload", zap.String("id", rec.ID), zap.Error(err))
		r.metrics.RelayEvent(resultInvalid)
		return nil
	}

	backoff := retry.WithMaxRetries(publishAttempts-1, retry.NewExponential(publishBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := r.publisher.PublishStatusChanged(ctx, evt); err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return err
			}
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		r.metrics.RelayEvent(resultFailed)
		return err
	}

	r.metrics.RelayEvent(resultPublished)
	r.logger.Info("outbox event relayed",
		zap.String("id", rec.ID),
		zap.String("entity", evt.Entity),
		zap.String("entity_id", evt.EntityID),
		zap.String("status", string(evt.Status)))
	return nil
}
