package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/lotto-ledger/lotto"
	"github.com/Digital-Creators-Team/lotto-ledger/metrics"
)

// Conductor runs a draw.
type Conductor interface {
	ConductDraw(ctx context.Context, fixed ...int) (*lotto.Draw, error)
}

// Scheduler triggers random draws on a cron schedule. Overlapping runs are
// skipped.
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	ledger   Conductor
	timeout  time.Duration
	logger   zerolog.Logger
}

// New parses spec (standard five-field cron or descriptors such as
// "@daily") and prepares a stopped scheduler.
func New(spec string, ledger Conductor, logger zerolog.Logger) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid draw schedule %q: %w", spec, err)
	}

	logger = logger.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		schedule: schedule,
		ledger:   ledger,
		timeout:  time.Minute,
		logger:   logger,
	}
	s.cron.Schedule(schedule, cron.FuncJob(s.run))
	return s, nil
}

// Start begins firing draws in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Time("next", s.Next(time.Now())).Msg("Draw scheduler started")
}

// Stop prevents new runs and waits for a running draw, or for ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns the first scheduled draw after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t)
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	draw, err := s.ledger.ConductDraw(ctx)
	metrics.RecordScheduledDraw(err == nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Scheduled draw failed")
		return
	}
	s.logger.Info().Int("draw", draw.Number()).Msg("Scheduled draw conducted")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
