package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lthibault/jitterbug/v2"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"

	"github.com/kubev2v/coach-importer/internal/importer"
)

const DefaultPollInterval = 500 * time.Millisecond

type riverClient interface {
	InsertMany(ctx context.Context, params []river.InsertManyParams) ([]*rivertype.JobInsertResult, error)
	JobGet(ctx context.Context, id int64) (*rivertype.JobRow, error)
}

// RiverScheduler runs every batch of a group as a job of the batch queue and
// polls until all of them are finalized. The queue's worker count bounds the
// concurrency. A failed poll is retried; only the context ends the wait early.
type RiverScheduler struct {
	client       riverClient
	pollInterval time.Duration
	log          *zap.SugaredLogger
}

var _ importer.Scheduler = (*RiverScheduler)(nil)

func NewRiverScheduler(client riverClient, pollInterval time.Duration) *RiverScheduler {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &RiverScheduler{
		client:       client,
		pollInterval: pollInterval,
		log:          zap.S().Named("river_scheduler"),
	}
}

func (s *RiverScheduler) RunGroup(ctx context.Context, jobID uuid.UUID, batches []importer.Batch) ([]importer.BatchOutcome, error) {
	if len(batches) == 0 {
		return []importer.BatchOutcome{}, nil
	}

	params := make([]river.InsertManyParams, 0, len(batches))
	for _, b := range batches {
		params = append(params, river.InsertManyParams{Args: BatchArgs{ImportJobID: jobID, Batch: b}})
	}
	inserted, err := s.client.InsertMany(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue batches: %w", err)
	}
	if len(inserted) != len(batches) {
		return nil, fmt.Errorf("enqueued %d batches out of %d", len(inserted), len(batches))
	}

	outcomes := make([]importer.BatchOutcome, len(batches))
	pending := make(map[int]int64, len(batches))
	for i, r := range inserted {
		pending[i] = r.Job.ID
	}

	ticker := jitterbug.New(s.pollInterval, &jitterbug.Norm{Stdev: s.pollInterval / 10, Mean: 0})
	defer ticker.Stop()

	for {
		for i, id := range pending {
			row, err := s.client.JobGet(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				// the batch keeps running in river, ask again on the next tick
				s.log.Warnw("failed to get batch job", "job_id", jobID, "batch_job_id", id, "error", err)
				continue
			}
			if outcome, done := toOutcome(batches[i], row); done {
				outcomes[i] = outcome
				delete(pending, i)
			}
		}
		if len(pending) == 0 {
			return outcomes, nil
		}
		s.log.Debugw("waiting on batches", "job_id", jobID, "pending", len(pending))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// toOutcome reports whether the batch job is finalized and, if so, what it
// produced.
func toOutcome(b importer.Batch, row *rivertype.JobRow) (importer.BatchOutcome, bool) {
	switch row.State {
	case rivertype.JobStateCompleted:
		output := row.Output()
		if output == nil {
			return importer.BatchOutcome{Batch: b, Err: fmt.Errorf("batch job %d completed without output", row.ID)}, true
		}
		var result importer.BatchResult
		if err := json.Unmarshal(output, &result); err != nil {
			return importer.BatchOutcome{Batch: b, Err: fmt.Errorf("failed to decode output of batch job %d: %w", row.ID, err)}, true
		}
		return importer.BatchOutcome{Batch: b, Result: &result}, true
	case rivertype.JobStateDiscarded, rivertype.JobStateCancelled:
		err := fmt.Errorf("batch job %d %s", row.ID, row.State)
		if len(row.Errors) > 0 {
			err = fmt.Errorf("batch job %d %s: %s", row.ID, row.State, row.Errors[len(row.Errors)-1].Error)
		}
		return importer.BatchOutcome{Batch: b, Err: err}, true
	default:
		return importer.BatchOutcome{}, false
	}
}
