// Package app wires the storage, use cases, transport and background jobs of
// the service together and runs them until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"github.com/vadimbarashkov/linksplit/internal/adapter/geo"
	"github.com/vadimbarashkov/linksplit/internal/adapter/repository/memory"
	pgrepo "github.com/vadimbarashkov/linksplit/internal/adapter/repository/postgres"
	sessionmemory "github.com/vadimbarashkov/linksplit/internal/adapter/session/memory"
	sessionredis "github.com/vadimbarashkov/linksplit/internal/adapter/session/redis"
	"github.com/vadimbarashkov/linksplit/internal/adapter/useragent"
	"github.com/vadimbarashkov/linksplit/internal/config"
	"github.com/vadimbarashkov/linksplit/internal/entity"
	"github.com/vadimbarashkov/linksplit/internal/maintenance"
	"github.com/vadimbarashkov/linksplit/internal/metrics"
	"github.com/vadimbarashkov/linksplit/internal/usecase"
	"github.com/vadimbarashkov/linksplit/migrations"
	"github.com/vadimbarashkov/linksplit/pkg/postgres"
	"github.com/vadimbarashkov/linksplit/pkg/redis"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/linksplit/internal/adapter/delivery/http"
)

const (
	shutdownTimeout   = 15 * time.Second
	dbConnectAttempts = 5
	dbConnectDelay    = 2 * time.Second
)

type linkStore interface {
	Save(ctx context.Context, shortCode, originalURL string, ownerID *uuid.UUID) (*entity.Link, error)
	ShortCodeExists(ctx context.Context, shortCode string) (bool, error)
	RetrieveByShortCode(ctx context.Context, shortCode string) (*entity.Link, error)
	RetrieveByID(ctx context.Context, id int64) (*entity.Link, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Link, error)
	ListViewedAfter(ctx context.Context, afterID int64, limit int) ([]*entity.Link, error)
	Deactivate(ctx context.Context, id int64) error
	IncrementDuplicateViewCount(ctx context.Context, linkID int64) error
	UpdateEarnings(ctx context.Context, linkID, viewCount int64, amount decimal.Decimal) (bool, error)
}

type viewStore interface {
	SaveViewAndIncrement(ctx context.Context, view entity.ViewEvent) (int64, error)
	SummarizeViews(ctx context.Context, linkID int64, dr entity.DateRange) (entity.ViewSummary, error)
	CountViewsBy(ctx context.Context, linkID int64, dim entity.AnalyticsDimension, dr entity.DateRange, limit int) ([]entity.Bucket, error)
	CountViewsByDay(ctx context.Context, linkID int64, dr entity.DateRange) ([]entity.DailyCount, error)
}

type tickStore interface {
	CountTicksSince(ctx context.Context, clientID string, since time.Time) (int64, error)
	AppendTick(ctx context.Context, tick entity.ClientViewTick) error
	AdmitTick(ctx context.Context, tick entity.ClientViewTick, windows []entity.RateWindow) (entity.Verdict, error)
	DeleteTicksBefore(ctx context.Context, before time.Time) (int64, error)
}

type rateStore interface {
	RetrieveRateOverride(ctx context.Context, ownerID uuid.UUID) (*entity.RateOverride, error)
	SaveRateOverride(ctx context.Context, override entity.RateOverride) error
	DeleteRateOverride(ctx context.Context, ownerID uuid.UUID) error
}

type storage struct {
	links linkStore
	views viewStore
	ticks tickStore
	rates rateStore
	close func() error
}

type sessionStore interface {
	Put(ctx context.Context, sessionID, key, value string) error
	Take(ctx context.Context, sessionID, key string) (string, bool, error)
}

func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	store, err := openStorage(ctx, cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer store.close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	scheduler := maintenance.NewScheduler(logger.Logger, m)

	sessions, closeSessions, err := openSessions(ctx, cfg, scheduler, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeSessions()

	cpm, share, err := cfg.Revenue.Rates()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	limiter := usecase.NewRateLimiter(store.ticks, usecase.RateLimiterConfig{
		Enabled:   cfg.FraudPrevention.Enabled,
		Windows:   rateWindows(cfg.FraudPrevention.Windows),
		Retention: cfg.FraudPrevention.Retention,
	}, logger.Logger)
	calc := usecase.NewRevenueCalculator(store.rates, store.links, entity.Rate{CPMRate: cpm, RevenueShare: share}, logger.Logger)
	gate := usecase.NewGate(sessions, store.links, limiter, logger.Logger)
	recorder := usecase.NewViewRecorder(store.views, store.links, limiter, calc, logger.Logger)
	locator := geo.NewLocator(geo.Config{
		Enabled:   cfg.Geo.Enabled,
		BaseURL:   cfg.Geo.BaseURL,
		Timeout:   cfg.Geo.Timeout,
		CacheTTL:  cfg.Geo.CacheTTL,
		CacheSize: cfg.Geo.CacheSize,
	}, logger.Logger)

	links := usecase.NewLinkUseCase(store.links, cfg.ShortCodeLength, logger.Logger)
	analytics := usecase.NewAnalyticsUseCase(store.links, store.views)
	redirect := usecase.NewRedirectUseCase(gate, store.links, recorder, locator, useragent.NewParser(), logger.Logger)

	if cfg.Maintenance.Enabled {
		if err := scheduler.Add("tick_sweep", cfg.Maintenance.TickSweepSchedule, limiter.Sweep); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := scheduler.Add("reconcile_earnings", cfg.Maintenance.ReconcileSchedule, func(ctx context.Context) (int64, error) {
			n, err := calc.Reconcile(ctx)
			return int64(n), err
		}); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	router := delivery.NewRouter(logger, delivery.Config{
		AllowedOrigins:   cfg.HTTPServer.AllowedOrigins,
		SessionCookie:    cfg.Session.CookieName,
		SessionTTL:       cfg.Session.TTL,
		SecureCookie:     cfg.Session.SecureCookie,
		CountdownSeconds: cfg.Ad.DisplaySeconds,
		AdminToken:       cfg.Admin.Token,
	}, delivery.UseCases{
		Links:     links,
		Analytics: analytics,
		Redirect:  redirect,
		Limits:    limiter,
		Revenue:   calc,
	}, m)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		logger.Info("http server started", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		return scheduler.Run(ctx)
	})

	return g.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")

		s := memory.NewStore()

		return &storage{links: s, views: s, ticks: s, rates: s, close: func() error { return nil }}, nil
	}

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
		postgres.WithConnectAttempts(dbConnectAttempts, dbConnectDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.RunMigrations(migrations.FS, cfg.Postgres.DSN()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &storage{
		links: pgrepo.NewLinkRepository(db),
		views: pgrepo.NewViewRepository(db),
		ticks: pgrepo.NewTickRepository(db),
		rates: pgrepo.NewRateRepository(db),
		close: db.Close,
	}, nil
}

// openSessions builds the configured session store. The in-memory store gets a
// sweep job for expired entries; Redis expires keys on its own.
func openSessions(
	ctx context.Context,
	cfg *config.Config,
	scheduler *maintenance.Scheduler,
	logger *slog.Logger,
) (sessionStore, func() error, error) {
	if cfg.Session.Store == config.SessionStoreRedis {
		client, err := redis.New(ctx, cfg.Redis.Addr,
			redis.WithPassword(cfg.Redis.Password),
			redis.WithDB(cfg.Redis.DB),
			redis.WithPoolSize(cfg.Redis.PoolSize),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}

		return sessionredis.NewStore(client, cfg.Session.TTL), client.Close, nil
	}

	if cfg.Env == config.EnvProd {
		logger.Warn("using in-memory session store, sessions are not shared between instances")
	}

	s := sessionmemory.NewStore(cfg.Session.TTL)

	if cfg.Maintenance.Enabled {
		if err := scheduler.Add("session_sweep", cfg.Session.SweepSchedule, func(ctx context.Context) (int64, error) {
			n, err := s.Sweep(ctx)
			return int64(n), err
		}); err != nil {
			return nil, nil, err
		}
	}

	return s, func() error { return nil }, nil
}

func rateWindows(windows []config.RateWindow) []entity.RateWindow {
	out := make([]entity.RateWindow, 0, len(windows))
	for _, w := range windows {
		out = append(out, entity.RateWindow{Name: w.Name, Duration: w.Duration, MaxEvents: w.MaxViews})
	}
	return out
}
