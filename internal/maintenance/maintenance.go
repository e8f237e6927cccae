// Package maintenance runs the periodic housekeeping jobs of the service on a cron schedule.
// Every job is idempotent, so a skipped or repeated run does no harm.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const defaultJobTimeout = 10 * time.Minute

// JobFunc performs one run and reports how many entries it touched.
type JobFunc func(ctx context.Context) (int64, error)

type jobRecorder interface {
	JobRun(job string, affected int64, err error)
}

// Scheduler wraps a cron instance whose jobs share the lifetime of Run's context.
type Scheduler struct {
	c        *cron.Cron
	logger   *slog.Logger
	recorder jobRecorder
	timeout  time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewScheduler(logger *slog.Logger, recorder jobRecorder) *Scheduler {
	cl := cronLogger{logger: logger}
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		c: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		), cron.WithLogger(cl)),
		logger:   logger,
		recorder: recorder,
		timeout:  defaultJobTimeout,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Add registers fn under schedule. Standard five-field expressions and descriptors
// such as "@every 1h" are accepted.
func (s *Scheduler) Add(name, schedule string, fn JobFunc) error {
	const op = "maintenance.Scheduler.Add"

	if _, err := s.c.AddFunc(schedule, func() { s.runJob(name, fn) }); err != nil {
		return fmt.Errorf("%s: invalid schedule %q for job %s: %w", op, schedule, name, err)
	}

	s.logger.Info("maintenance job scheduled", slog.String("job", name), slog.String("schedule", schedule))

	return nil
}

// Run starts the scheduler and blocks until ctx is done. In-flight jobs are
// cancelled and awaited before Run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	s.c.Start()
	s.logger.Info("maintenance scheduler started", slog.Int("jobs", len(s.c.Entries())))

	<-ctx.Done()

	s.cancel()
	<-s.c.Stop().Done()

	s.logger.Info("maintenance scheduler stopped")

	return nil
}

func (s *Scheduler) runJob(name string, fn JobFunc) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	affected, err := fn(ctx)

	if s.recorder != nil {
		s.recorder.JobRun(name, affected, err)
	}

	if err != nil {
		s.logger.Error("maintenance job failed",
			slog.String("job", name),
			slog.Duration("took", time.Since(start)),
			slog.Any("err", err),
		)
		return
	}

	s.logger.Info("maintenance job finished",
		slog.String("job", name),
		slog.Int64("affected", affected),
		slog.Duration("took", time.Since(start)),
	)
}

// cronLogger routes the scheduler's own messages to slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
