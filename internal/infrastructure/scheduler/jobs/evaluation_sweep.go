// Package jobs contains the scheduled background jobs.
package jobs

import (
	"context"
	"log/slog"
)

// Sweeper requests an evaluation pass in every active session. The
// session manager implements it.
type Sweeper interface {
	TriggerAll(reason string)
}

// EvaluationSweepJob periodically re-evaluates achievements for all
// active sessions. User actions already trigger evaluation; the sweep
// exists for predicates that turn true with no action at all, like a
// streak completing when the clock crosses midnight.
type EvaluationSweepJob struct {
	sweeper Sweeper
	logger  *slog.Logger
}

// NewEvaluationSweepJob creates the sweep job.
func NewEvaluationSweepJob(sweeper Sweeper, logger *slog.Logger) *EvaluationSweepJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &EvaluationSweepJob{
		sweeper: sweeper,
		logger:  logger,
	}
}

// Name returns the job name.
func (j *EvaluationSweepJob) Name() string {
	return "evaluation_sweep"
}

// Run triggers a debounced evaluation pass in every active session.
func (j *EvaluationSweepJob) Run(_ context.Context) error {
	j.sweeper.TriggerAll("sweep")
	j.logger.Debug("evaluation sweep triggered")
	return nil
}
