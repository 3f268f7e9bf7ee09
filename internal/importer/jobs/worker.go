package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"go.uber.org/zap"

	"github.com/kubev2v/coach-importer/internal/importer"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
)

// ImportWorker runs the orchestrator for one import job. Its batches are
// scheduled on the batch queue of the client that is running it.
type ImportWorker struct {
	river.WorkerDefaults[ImportArgs]
	store        store.Store
	downloader   importer.Downloader
	opts         importer.Options
	pollInterval time.Duration
}

func NewImportWorker(s store.Store, downloader importer.Downloader, opts importer.Options, pollInterval time.Duration) *ImportWorker {
	return &ImportWorker{
		store:        s,
		downloader:   downloader,
		opts:         opts,
		pollInterval: pollInterval,
	}
}

func (w *ImportWorker) Timeout(job *river.Job[ImportArgs]) time.Duration {
	return ImportJobTimeout
}

func (w *ImportWorker) Work(ctx context.Context, job *river.Job[ImportArgs]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := zap.S().Named("import_worker")

	current, err := w.store.ImportJob().Get(ctx, job.Args.ImportJobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return river.JobCancel(fmt.Errorf("import job %s not found", job.Args.ImportJobID))
		}
		return err
	}
	restart := model.TransitionRestart.Allows(current.Status)
	if current.Status.IsTerminal() && !restart {
		log.Infow("import job already finished", "job_id", current.ID, "status", current.Status, "attempt", job.Attempt)
		return nil
	}

	var runOpts []importer.RunOption
	if restart {
		runOpts = append(runOpts, importer.AsRestart())
	}

	scheduler := NewRiverScheduler(river.ClientFromContext[pgx.Tx](ctx), w.pollInterval)
	orchestrator := importer.NewOrchestrator(w.store.ImportJob(), w.downloader, scheduler, w.opts)

	summary, err := orchestrator.Run(ctx, job.Args.ImportJobID, job.Args.FileURL, runOpts...)
	if err != nil {
		log.Errorw("import attempt failed", "job_id", job.Args.ImportJobID, "attempt", job.Attempt, "error", err)
		return err
	}

	return river.RecordOutput(ctx, summary)
}

// BatchWorker processes one batch. Its BatchResult is recorded as the job
// output for the scheduler waiting on it.
type BatchWorker struct {
	river.WorkerDefaults[BatchArgs]
	runner importer.BatchRunner
}

func NewBatchWorker(runner importer.BatchRunner) *BatchWorker {
	return &BatchWorker{runner: runner}
}

func (w *BatchWorker) Timeout(job *river.Job[BatchArgs]) time.Duration {
	return BatchJobTimeout
}

func (w *BatchWorker) Work(ctx context.Context, job *river.Job[BatchArgs]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := w.runner.Process(ctx, job.Args.ImportJobID, job.Args.Batch)
	if err != nil {
		return err
	}

	return river.RecordOutput(ctx, result)
}
