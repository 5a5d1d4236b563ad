// Package scheduler runs the staging jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/dutyroster/internal/model"
	"github.com/dukerupert/dutyroster/internal/staging"
)

const (
	DefaultWeeklySpec = "0 6 * * 1"
	DefaultDailySpec  = "1 6 * * *"
	defaultTimeout    = 2 * time.Minute
)

// Stager is the pair of idempotent staging operations the jobs call.
type Stager interface {
	StageWeek(ctx context.Context, ref time.Time) (staging.WeekResult, error)
	StageDay(ctx context.Context, date time.Time) (staging.DayResult, error)
}

type Config struct {
	// WeeklySpec and DailySpec are standard five-field cron expressions.
	WeeklySpec string
	DailySpec  string
	Location   *time.Location
	// RunOnStart runs both jobs once when the scheduler starts.
	RunOnStart bool
	// Timeout bounds a single job run.
	Timeout time.Duration
}

type Scheduler struct {
	cron   *cron.Cron
	stager Stager
	cfg    Config
	now    func() time.Time
	logger *slog.Logger
	weekly cron.EntryID
	daily  cron.EntryID

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New validates the cron expressions and registers both jobs. Nothing runs
// until Start.
func New(stager Stager, cfg Config, logger *slog.Logger) (*Scheduler, error) {
	if cfg.WeeklySpec == "" {
		cfg.WeeklySpec = DefaultWeeklySpec
	}
	if cfg.DailySpec == "" {
		cfg.DailySpec = DefaultDailySpec
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	cronLog := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		stager: stager,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
		ctx:    context.Background(),
	}

	var err error
	s.weekly, err = s.cron.AddFunc(cfg.WeeklySpec, func() { s.RunWeekly(s.jobContext()) })
	if err != nil {
		return nil, fmt.Errorf("schedule weekly staging %q: %w", cfg.WeeklySpec, err)
	}
	s.daily, err = s.cron.AddFunc(cfg.DailySpec, func() { s.RunDaily(s.jobContext()) })
	if err != nil {
		return nil, fmt.Errorf("schedule daily staging %q: %w", cfg.DailySpec, err)
	}
	return s, nil
}

// Start launches the cron loop. Jobs run with a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("staging scheduler started",
		"weekly", s.cfg.WeeklySpec, "daily", s.cfg.DailySpec, "location", s.cfg.Location.String(),
		"next_weekly", s.cron.Entry(s.weekly).Next, "next_daily", s.cron.Entry(s.daily).Next)

	if s.cfg.RunOnStart {
		s.logger.Info("running staging on start")
		s.RunWeekly(s.jobContext())
		s.RunDaily(s.jobContext())
	}
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.logger.Info("staging scheduler stopped")
}

func (s *Scheduler) jobContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) today() time.Time {
	return model.Day(s.now().In(s.cfg.Location))
}

// RunWeekly stages the current week.
func (s *Scheduler) RunWeekly(ctx context.Context) (staging.WeekResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	res, err := s.stager.StageWeek(ctx, s.today())
	if err != nil {
		s.logger.Error("weekly staging failed", "week", res.Week, "error", err)
	}
	return res, err
}

// RunDaily stages today.
func (s *Scheduler) RunDaily(ctx context.Context) (staging.DayResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	today := s.today()
	res, err := s.stager.StageDay(ctx, today)
	if err != nil {
		s.logger.Error("daily staging failed", "date", model.FormatDate(today), "error", err)
		return res, err
	}
	s.logger.Info("daily staging finished", "date", model.FormatDate(today), "outcome", res.Outcome)
	return res, nil
}
