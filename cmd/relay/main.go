package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/messaging"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/metrics"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/outbox"
	"github.com/AchilleasB/campus-events/event-service/internal/config"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.LoadRelayConfig()
	if err != nil {
		zap.NewExample().Fatal("invalid relay configuration", zap.Error(err))
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		zap.NewExample().Fatal("invalid log configuration", zap.Error(err))
	}
	defer logger.Sync()
	logger = logger.With(zap.String("component", "outbox-relay"))

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	broker, err := messaging.NewRabbitMQBroker(cfg.RabbitMQURL, cfg.StatusQueueName, logger)
	if err != nil {
		logger.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer broker.Close()

	m := metrics.New()
	relay, err := outbox.NewRelay(db, cfg.DatabaseURL, broker, cfg.CatchUpSchedule, m, logger)
	if err != nil {
		logger.Fatal("failed to create relay", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthCheck(relay.IsHealthy))
	mux.HandleFunc("/health/live", healthCheck(relay.IsHealthy))
	mux.HandleFunc("/health/ready", healthCheck(relay.IsReady))
	mux.Handle("/metrics", m.Handler())
	healthServer := &http.Server{
		Addr:              ":" + cfg.HealthPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting health server", zap.String("addr", healthServer.Addr))
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := relay.Start(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return healthServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("relay stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("relay shutdown complete")
}

func healthCheck(check func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "UP", http.StatusOK
		if !check() {
			status, code = "DOWN", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":    status,
			"component": "outbox-relay",
		})
	}
}
