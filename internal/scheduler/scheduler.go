package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// StepFunc is invoked once per interval with a 1-based step counter.
type StepFunc func(ctx context.Context, step int, at time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval time.Duration
	// MaxSteps stops the loop after that many steps. Zero runs until cancelled.
	MaxSteps     int
	StartupDelay time.Duration
	// Immediate runs the first step without waiting a full interval.
	Immediate bool
}

// Scheduler drives fixed-interval execution of simulation steps.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler instance.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks, invoking step at each interval until ctx is cancelled or the
// step budget is spent. Step errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context, step StepFunc) error {
	if s.opts.StartupDelay > 0 {
		if err := sleep(ctx, s.opts.StartupDelay); err != nil {
			return err
		}
	}

	delay := s.opts.Interval
	if s.opts.Immediate {
		delay = 0
	}

	for n := 1; s.opts.MaxSteps == 0 || n <= s.opts.MaxSteps; n++ {
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = s.opts.Interval

		at := time.Now().UTC()
		s.logger.Debug().Int("step", n).Time("at", at).Msg("executing simulation step")
		if err := step(ctx, n, at); err != nil {
			s.logger.Error().Err(err).Int("step", n).Msg("step execution failed")
		}
	}

	s.logger.Info().Int("steps", s.opts.MaxSteps).Msg("step budget reached")
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
