package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
	"github.com/myusername/tennis-stats-scraper/pkg/scraper"
)

// ErrCycleInProgress is returned when a cycle is requested while another is running
var ErrCycleInProgress = errors.New("fetch cycle already running")

// CycleRunner runs one fetch cycle
type CycleRunner interface {
	Run(ctx context.Context) (*models.Snapshot, error)
}

// SchedulerConfig configures a Scheduler
type SchedulerConfig struct {
	Runner   CycleRunner
	Schedule string
	Location *time.Location
	// MaxAttempts bounds how often a cycle is retried after transient failures
	MaxAttempts int
	RetryDelay  time.Duration
	// CycleTimeout bounds one attempt; zero means no limit
	CycleTimeout time.Duration
	Logger       *zap.Logger
}

// Scheduler triggers fetch cycles on a cron schedule, one at a time
type Scheduler struct {
	cfg    SchedulerConfig
	cron   *cron.Cron
	logger *zap.SugaredLogger
	sleep  func(ctx context.Context, d time.Duration) error

	// running is held by whichever caller owns the current cycle
	running atomic.Bool
}

// NewScheduler creates a Scheduler and registers its cycle job
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 30 * time.Second
	}

	s := &Scheduler{
		cfg:    cfg,
		logger: cfg.Logger.Sugar(),
		sleep:  sleepContext,
	}

	cronLog := cronLogger{s.logger}
	s.cron = cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := s.cron.AddFunc(cfg.Schedule, s.scheduledRun); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// Start runs the cron loop in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Infow("Scheduler started", "schedule", s.cfg.Schedule, "location", s.cfg.Location.String())
}

// Stop halts scheduling and waits for a running cycle to finish or ctx to end
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out with a cycle still running")
	}
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) scheduledRun() {
	_, err := s.RunWithRetry(context.Background())
	switch {
	case errors.Is(err, ErrCycleInProgress):
		s.logger.Info("Skipping scheduled fetch cycle, previous cycle still running")
	case err != nil:
		s.logger.Errorw("Scheduled fetch cycle failed", "error", err)
	}
}

// RunWithRetry runs a cycle, retrying it in full after transient failures with
// exponential backoff. Other failures are returned at once. Only one cycle runs
// at a time across scheduled and direct calls; an overlapping call returns
// ErrCycleInProgress without touching the runner.
func (s *Scheduler) RunWithRetry(ctx context.Context) (*models.Snapshot, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer s.running.Store(false)

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		snapshot, err := s.runOnce(ctx)
		if err == nil {
			return snapshot, nil
		}
		lastErr = err

		if !scraper.IsTransient(err) || attempt == s.cfg.MaxAttempts {
			break
		}

		delay := s.cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
		s.logger.Warnw("Transient failure, retrying fetch cycle",
			"attempt", attempt,
			"max_attempts", s.cfg.MaxAttempts,
			"delay", delay,
			"error", err,
		)
		if err := s.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (s *Scheduler) runOnce(ctx context.Context) (*models.Snapshot, error) {
	if s.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CycleTimeout)
		defer cancel()
	}
	return s.cfg.Runner.Run(ctx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
