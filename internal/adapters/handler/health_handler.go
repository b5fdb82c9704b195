package handler

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const healthCheckTimeout = 5 * time.Second

// RedisPinger is the part of *redis.Client the readiness check needs.
type RedisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type HealthHandler struct {
	db          *sql.DB
	redisClient RedisPinger
	startTime   time.Time
	version     string
	logger      *zap.Logger
}

// NewHealthHandler takes a nil redisClient when sessions are kept in
// memory; the readiness check then skips Redis.
func NewHealthHandler(db *sql.DB, redisClient RedisPinger, logger *zap.Logger) *HealthHandler {
	version := os.Getenv("APP_VERSION")
	if version == "" {
		version = "unknown"
	}
	return &HealthHandler{
		db:          db,
		redisClient: redisClient,
		startTime:   time.Now(),
		version:     version,
		logger:      logger,
	}
}

// HealthResponse follows Kubernetes health check conventions.
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health is the liveness check: the process is running.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "UP",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    map[string]Check{"process": {Status: "UP"}},
	}, h.logger)
}

// Ready reports whether the database and the session store answer.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]Check{
		"database": h.checkDatabase(r.Context()),
		"sessions": h.checkRedis(r.Context()),
	}

	status := "UP"
	httpStatus := http.StatusOK
	for _, c := range checks {
		if c.Status != "UP" {
			status = "DOWN"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Version:   h.version,
		Checks:    checks,
	}, h.logger)
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.Health(w, r)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{Status: "DOWN", Message: "Database connection is not initialized"}
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("database ping failed", zap.Error(err))
		return Check{Status: "DOWN", Message: "Cannot connect to database"}
	}
	return Check{Status: "UP"}
}

func (h *HealthHandler) checkRedis(ctx context.Context) Check {
	if h.redisClient == nil {
		return Check{Status: "UP", Message: "in-memory session store"}
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		h.logger.Warn("redis ping failed", zap.Error(err))
		return Check{Status: "DOWN", Message: "Cannot connect to Redis"}
	}
	return Check{Status: "UP"}
}
