package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

// Scheduler triggers a generation run on every tick until the context is done.
type Scheduler struct {
	log      *slog.Logger
	interval time.Duration
	runner   GenerationRunner
}

func NewScheduler(log *slog.Logger, interval time.Duration, runner GenerationRunner) *Scheduler {
	return &Scheduler{
		log:      log,
		interval: interval,
		runner:   runner,
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.log.InfoContext(ctx, "scheduled generation disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.log.DebugContext(ctx, "generation cycle started")
			s.generate(ctx)

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Scheduler) generate(ctx context.Context) {
	status, err := s.runner.Run(ctx)

	switch {
	case errors.Is(err, domain.ErrGenerationInProgress):
		s.log.DebugContext(ctx, "generation cycle skipped", slog.String("status", status))
	case err != nil:
		s.log.ErrorContext(ctx, "generation cycle failed",
			slog.String("status", status),
			slog.String("err", err.Error()),
		)
	default:
		s.log.InfoContext(ctx, "generation cycle finished", slog.String("status", status))
	}
}
