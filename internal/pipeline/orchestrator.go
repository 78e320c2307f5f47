package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

const (
	statusInProgress      = "Course generation is already in progress."
	statusSuccessFormat   = "✅ Successfully generated and saved course: %s"
	statusGenerateFailure = "❌ Failed to generate course: %v"
	statusSaveFailure     = "❌ Failed to save course: %v"
)

type Orchestrator struct {
	log         *slog.Logger
	aggregator  *Aggregator
	synthesizer *Synthesizer
	writer      *Writer
	locker      RunLocker
}

func NewOrchestrator(
	log *slog.Logger,
	aggregator *Aggregator,
	synthesizer *Synthesizer,
	writer *Writer,
	locker RunLocker,
) *Orchestrator {
	return &Orchestrator{
		log:         log,
		aggregator:  aggregator,
		synthesizer: synthesizer,
		writer:      writer,
		locker:      locker,
	}
}

// Run performs one generation run and returns its terminal status line. The error is
// non-nil whenever the status reports a failure.
func (o *Orchestrator) Run(ctx context.Context) (string, error) {
	unlock, err := o.locker.Lock(ctx)
	if errors.Is(err, domain.ErrGenerationInProgress) {
		o.log.InfoContext(ctx, "generation run skipped, another run holds the lock")
		return statusInProgress, err
	}
	if err != nil {
		return fmt.Sprintf(statusGenerateFailure, err), fmt.Errorf("failed to acquire generation lock: %w", err)
	}
	defer unlock()

	o.log.InfoContext(ctx, "retrieving pending documents for processing")

	records, err := o.aggregator.Pending(ctx)
	if err != nil {
		return fmt.Sprintf(statusGenerateFailure, err), err
	}

	if len(records) == 0 {
		o.log.InfoContext(ctx, "no pending documents")
		return domain.NoPendingDocuments, nil
	}

	o.log.InfoContext(ctx, "fetching and combining content", slog.Int("pending", len(records)))

	aggregation, err := o.aggregator.Aggregate(ctx, records)
	if err != nil {
		return fmt.Sprintf(statusGenerateFailure, err), err
	}

	if aggregation.Text == domain.NoPendingDocuments {
		return domain.NoPendingDocuments, nil
	}

	if aggregation.Empty() {
		err := fmt.Errorf("%w: %d of %d failed", domain.ErrNothingExtracted, len(aggregation.Failed), len(records))
		o.log.ErrorContext(ctx, "nothing to synthesize", slog.String("err", err.Error()))
		return fmt.Sprintf(statusGenerateFailure, err), err
	}

	o.log.InfoContext(ctx, "generating categories and quizzes")

	draft, err := o.synthesizer.Synthesize(ctx, aggregation.Text)
	if err != nil {
		o.log.ErrorContext(ctx, "course synthesis failed", slog.String("err", err.Error()))
		return fmt.Sprintf(statusGenerateFailure, err), err
	}

	o.log.InfoContext(ctx, "saving generated course")

	if _, err := o.writer.Persist(ctx, draft, aggregation.Succeeded); err != nil {
		o.log.ErrorContext(ctx, "course persistence failed", slog.String("err", err.Error()))
		return fmt.Sprintf(statusSaveFailure, err), err
	}

	return fmt.Sprintf(statusSuccessFormat, draft.CourseTitle), nil
}
