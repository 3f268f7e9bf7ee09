package importer

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// BatchOutcome is what became of one scheduled batch. Err is set when the
// batch did not run to completion.
type BatchOutcome struct {
	Batch  Batch
	Result *BatchResult
	Err    error
}

// Scheduler runs the batches of one group with bounded concurrency and
// returns when every batch of the group has finished. Outcomes follow the
// order of batches.
type Scheduler interface {
	RunGroup(ctx context.Context, jobID uuid.UUID, batches []Batch) ([]BatchOutcome, error)
}

// BatchRunner processes a single batch.
type BatchRunner interface {
	Process(ctx context.Context, jobID uuid.UUID, batch Batch) (*BatchResult, error)
}

// LocalScheduler runs batches on goroutines of the current process.
type LocalScheduler struct {
	runner BatchRunner
	limit  int
}

var _ Scheduler = (*LocalScheduler)(nil)

func NewLocalScheduler(runner BatchRunner, maxConcurrent int) *LocalScheduler {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &LocalScheduler{runner: runner, limit: maxConcurrent}
}

func (s *LocalScheduler) RunGroup(ctx context.Context, jobID uuid.UUID, batches []Batch) ([]BatchOutcome, error) {
	outcomes := make([]BatchOutcome, len(batches))

	// a failed batch must not cancel its siblings, so no errgroup context
	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, b := range batches {
		g.Go(func() error {
			result, err := s.runner.Process(ctx, jobID, b)
			outcomes[i] = BatchOutcome{Batch: b, Result: result, Err: err}
			return nil
		})
	}
	return outcomes, g.Wait()
}
