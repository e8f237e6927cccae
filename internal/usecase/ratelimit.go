package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/vadimbarashkov/linksplit/internal/entity"
)

// DefaultTickRetention is how long client view ticks are kept before the sweep removes them.
const DefaultTickRetention = 48 * time.Hour

type tickRepository interface {
	CountTicksSince(ctx context.Context, clientID string, since time.Time) (int64, error)
	AppendTick(ctx context.Context, tick entity.ClientViewTick) error
	// AdmitTick evaluates windows for tick.ClientID and appends tick only when
	// allowed. Evaluation and append are atomic per client across every caller
	// sharing the store.
	AdmitTick(ctx context.Context, tick entity.ClientViewTick, windows []entity.RateWindow) (entity.Verdict, error)
	DeleteTicksBefore(ctx context.Context, before time.Time) (int64, error)
}

// RateLimiterConfig configures the fraud prevention windows.
type RateLimiterConfig struct {
	Enabled   bool
	Windows   []entity.RateWindow
	Retention time.Duration
}

// RateLimiter admits client view completions against several sliding windows
// backed by a log of ticks.
type RateLimiter struct {
	repo      tickRepository
	enabled   bool
	windows   []entity.RateWindow
	retention time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewRateLimiter creates a limiter. Windows are evaluated shortest first; the
// retention is raised to the longest window when configured lower.
func NewRateLimiter(repo tickRepository, cfg RateLimiterConfig, logger *slog.Logger) *RateLimiter {
	windows := make([]entity.RateWindow, len(cfg.Windows))
	copy(windows, cfg.Windows)

	sort.SliceStable(windows, func(i, j int) bool {
		return windows[i].Duration < windows[j].Duration
	})

	retention := cfg.Retention
	if retention <= 0 {
		retention = DefaultTickRetention
	}
	if n := len(windows); n > 0 && windows[n-1].Duration > retention {
		retention = windows[n-1].Duration
	}

	return &RateLimiter{
		repo:      repo,
		enabled:   cfg.Enabled,
		windows:   windows,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// Check evaluates every window without recording anything.
func (l *RateLimiter) Check(ctx context.Context, clientID string) (entity.Verdict, error) {
	const op = "usecase.RateLimiter.Check"

	if !l.enabled {
		return entity.Allowed(), nil
	}

	verdict, err := l.evaluate(ctx, clientID, l.now())
	if err != nil {
		return entity.Verdict{}, fmt.Errorf("%s: %w", op, err)
	}

	return verdict, nil
}

// AdmitAndRecord evaluates every window and appends a tick only when the client
// is allowed. The repository makes the check and the append atomic per client,
// so concurrent completions cannot both slip under a limit, even when several
// service replicas share the store.
func (l *RateLimiter) AdmitAndRecord(ctx context.Context, clientID string) (entity.Verdict, error) {
	const op = "usecase.RateLimiter.AdmitAndRecord"

	tick := entity.ClientViewTick{ClientID: clientID, OccurredAt: l.now()}

	if !l.enabled {
		if err := l.repo.AppendTick(ctx, tick); err != nil {
			return entity.Verdict{}, fmt.Errorf("%s: failed to append tick: %w", op, err)
		}
		return entity.Allowed(), nil
	}

	verdict, err := l.repo.AdmitTick(ctx, tick, l.windows)
	if err != nil {
		return entity.Verdict{}, fmt.Errorf("%s: %w", op, err)
	}

	if !verdict.Allowed {
		l.logger.Warn("client exceeded view limit",
			slog.String("client_id", clientID),
			slog.String("window", verdict.Window.Name),
			slog.Int64("count", verdict.Count),
		)
	}

	return verdict, nil
}

// Stats reports how many ticks the client has in each configured window.
func (l *RateLimiter) Stats(ctx context.Context, clientID string) ([]entity.WindowCount, error) {
	const op = "usecase.RateLimiter.Stats"

	now := l.now()
	stats := make([]entity.WindowCount, 0, len(l.windows))

	for _, w := range l.windows {
		count, err := l.repo.CountTicksSince(ctx, clientID, now.Add(-w.Duration))
		if err != nil {
			return nil, fmt.Errorf("%s: failed to count ticks: %w", op, err)
		}
		stats = append(stats, entity.WindowCount{Window: w, Count: count})
	}

	return stats, nil
}

// Sweep deletes ticks older than the retention horizon. It is safe to run at any cadence.
func (l *RateLimiter) Sweep(ctx context.Context) (int64, error) {
	const op = "usecase.RateLimiter.Sweep"

	deleted, err := l.repo.DeleteTicksBefore(ctx, l.now().Add(-l.retention))
	if err != nil {
		return 0, fmt.Errorf("%s: failed to delete ticks: %w", op, err)
	}

	l.logger.Info("swept client view ticks", slog.Int64("deleted", deleted), slog.Duration("retention", l.retention))

	return deleted, nil
}

func (l *RateLimiter) evaluate(ctx context.Context, clientID string, now time.Time) (entity.Verdict, error) {
	return entity.EvaluateWindows(l.windows, now, func(since time.Time) (int64, error) {
		return l.repo.CountTicksSince(ctx, clientID, since)
	})
}
