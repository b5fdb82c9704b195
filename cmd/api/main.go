package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AchilleasB/campus-events/event-service/internal/adapters/changefeed"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/handler"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/metrics"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/middleware"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/repository"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/session"
	"github.com/AchilleasB/campus-events/event-service/internal/adapters/ui"
	"github.com/AchilleasB/campus-events/event-service/internal/config"
	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
	"github.com/AchilleasB/campus-events/event-service/internal/core/services"
)

const (
	shutdownTimeout    = 10 * time.Second
	sessionSweepEvery  = time.Minute
	startupPingTimeout = 5 * time.Second
	readHeaderTimeout  = 5 * time.Second
	serverIdleTimeout  = 2 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		zap.NewExample().Fatal("invalid log configuration", zap.Error(err))
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	policy, err := config.LoadRolePolicy(cfg.RolePolicyFile)
	if err != nil {
		logger.Fatal("failed to load role policy", zap.Error(err))
	}
	resolver := services.NewRoleResolver(policy)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := repository.RunMigrations(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	base := repository.NewSQLRepository(db, config.NewCircuitBreaker(config.BreakerPostgres, logger), cfg.Session.DataTimeout, logger)
	accounts := repository.NewAccountRepository(base)
	eventsRepo := repository.NewEventRequestRepository(base)

	store, pinger, sweeper := sessionStore(ctx, cfg, logger)
	sessions := services.NewSessionManager(store, cfg.Session.TTL, cfg.Session.HydrationTimeout, logger)
	tokens := services.NewSessionTokens(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.Session.TTL)
	m := metrics.New()
	secure := cfg.IsProduction()

	authService := services.NewAuthService(accounts, sessions, resolver, cfg.DemoBypass(), logger)
	svc := ui.Services{
		Auth:           authService,
		Events:         services.NewEventRequestService(eventsRepo, logger),
		Resources:      services.NewResourceRequestService(repository.NewResourceRequestRepository(base), logger),
		Funds:          services.NewFundAnalysisService(repository.NewFundAnalysisRepository(base), eventsRepo, logger),
		Reports:        services.NewReportService(repository.NewReportRepository(base), logger),
		Bookings:       services.NewBookingService(repository.NewBookingRepository(base), logger),
		Collaborations: services.NewCollaborationService(repository.NewCollaborationRepository(base), eventsRepo, logger),
		Users:          services.NewUserService(accounts, resolver, logger),
	}

	hub := changefeed.NewHub()
	feed := changefeed.NewListener(cfg.DatabaseURL, hub, logger)

	authAPI := handler.NewAuthHandler(authService, tokens, resolver, m, secure, logger)
	pages := ui.NewHandler(svc, authAPI, resolver, secure, logger)

	a := &api{
		auth: middleware.NewAuthMiddleware(tokens, sessions, services.NewGuard(resolver), http.HandlerFunc(pages.Loading), m, logger),
		signIn: middleware.RateLimiter(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.Limits.SignInRPS,
			Burst:             cfg.Limits.SignInBurst,
		}, logger),
		cors:           middleware.CORSMiddleware(cfg.CORSAllowedOrigins),
		metrics:        m,
		logger:         logger,
		pages:          pages,
		health:         handler.NewHealthHandler(db, pinger, logger),
		authAPI:        authAPI,
		events:         handler.NewEventHandler(svc.Events, resolver, logger),
		resources:      handler.NewResourceHandler(svc.Resources, resolver, logger),
		funds:          handler.NewFundHandler(svc.Funds, resolver, logger),
		reports:        handler.NewReportHandler(svc.Reports, resolver, logger),
		bookings:       handler.NewBookingHandler(svc.Bookings, resolver, logger),
		collaborations: handler.NewCollaborationHandler(svc.Collaborations, resolver, logger),
		users:          handler.NewRegistrationHandler(svc.Users, resolver, logger),
		changes: handler.NewChangesHandler(hub, resolver, handler.ChangeSources{
			Events:         svc.Events,
			Resources:      svc.Resources,
			Funds:          svc.Funds,
			Reports:        svc.Reports,
			Bookings:       svc.Bookings,
			Collaborations: svc.Collaborations,
		}, logger),
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       serverIdleTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", server.Addr), zap.String("environment", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Lists stop refreshing without the feed but the service stays up.
		if err := feed.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("change feed stopped", zap.Error(err))
		}
		return nil
	})
	if sweeper != nil {
		g.Go(func() error {
			sweeper(ctx)
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// sessionStore connects to Redis. Outside production an unreachable Redis
// falls back to the in-process store, which then needs the returned sweeper.
func sessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.SessionStore, handler.RedisPinger, func(context.Context)) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	err := client.Ping(pingCtx).Err()
	if err == nil {
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddress))
		return session.NewRedisStore(client, config.NewCircuitBreaker(config.BreakerRedis, logger), logger), client, nil
	}
	if cfg.IsProduction() {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	_ = client.Close()

	logger.Warn("redis unreachable, using in-memory sessions", zap.String("addr", cfg.RedisAddress), zap.Error(err))
	store := session.NewMemoryStore()
	sweep := func(ctx context.Context) {
		ticker := time.NewTicker(sessionSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := store.Sweep(); n > 0 {
					logger.Debug("expired sessions removed", zap.Int("count", n))
				}
			}
		}
	}
	return store, nil, sweep
}
