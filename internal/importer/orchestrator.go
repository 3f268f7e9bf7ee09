package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kubev2v/coach-importer/internal/spreadsheet"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
	"github.com/kubev2v/coach-importer/pkg/metrics"
	"go.uber.org/zap"
)

const (
	DefaultBatchSize     = 50
	DefaultGroupSize     = 20
	DefaultMaxErrorLog   = 1000
	DefaultSummaryErrors = 100
)

// Downloader fetches the workbook an import job points at.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

type Options struct {
	BatchSize     int
	GroupSize     int
	MaxErrorLog   int
	SummaryErrors int
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.GroupSize <= 0 {
		o.GroupSize = DefaultGroupSize
	}
	if o.MaxErrorLog <= 0 {
		o.MaxErrorLog = DefaultMaxErrorLog
	}
	if o.SummaryErrors <= 0 {
		o.SummaryErrors = DefaultSummaryErrors
	}
	return o
}

// Summary reports a run that went through all the groups. Success is false
// only for a run that ended on a fatal error; Status tells whether any row
// made it.
type Summary struct {
	Success      bool                  `json:"success"`
	Status       model.ImportJobStatus `json:"status"`
	Processed    int                   `json:"processed"`
	SuccessCount int                   `json:"successCount"`
	ErrorCount   int                   `json:"errorCount"`
	Warnings     int                   `json:"warnings"`
	Errors       []model.RowError      `json:"errors"`
}

type runConfig struct {
	restart bool
}

type RunOption func(*runConfig)

// AsRestart resumes a job a previous attempt already moved out of pending.
// Its counters are reset before the run.
func AsRestart() RunOption {
	return func(c *runConfig) { c.restart = true }
}

// Orchestrator drives one import job from its source file to its final status.
type Orchestrator struct {
	jobs       store.ImportJob
	downloader Downloader
	scheduler  Scheduler
	opts       Options
	now        func() time.Time
	log        *zap.SugaredLogger
}

func NewOrchestrator(jobs store.ImportJob, downloader Downloader, scheduler Scheduler, opts Options) *Orchestrator {
	return &Orchestrator{
		jobs:       jobs,
		downloader: downloader,
		scheduler:  scheduler,
		opts:       opts.withDefaults(),
		now:        time.Now,
		log:        zap.S().Named("orchestrator"),
	}
}

// Run imports the workbook at fileURL for the job. A fatal error marks the job
// failed and is returned so the caller can retry the whole job.
func (o *Orchestrator) Run(ctx context.Context, jobID uuid.UUID, fileURL string, opts ...RunOption) (*Summary, error) {
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	started := o.now()
	transition := model.TransitionStart
	transitionOpts := []store.TransitionOption{store.WithStartedAt(started)}
	if cfg.restart {
		transition = model.TransitionRestart
		transitionOpts = append(transitionOpts, store.WithResetCounters())
	}
	if _, err := o.jobs.Transition(ctx, jobID, transition, transitionOpts...); err != nil {
		return nil, fmt.Errorf("failed to start import job %s: %w", jobID, err)
	}
	o.log.Infow("import started", "job_id", jobID, "file_url", fileURL, "restart", cfg.restart)

	summary, err := o.run(ctx, jobID, fileURL)
	if err != nil {
		o.fail(ctx, jobID, err)
		metrics.ObserveImportJobMetric(string(model.ImportJobStatusFailed), o.now().Sub(started).Seconds())
		return nil, err
	}

	metrics.ObserveImportJobMetric(string(summary.Status), o.now().Sub(started).Seconds())
	o.log.Infow("import finished", "job_id", jobID, "status", summary.Status, "success", summary.SuccessCount, "errors", summary.ErrorCount)
	return summary, nil
}

func (o *Orchestrator) run(ctx context.Context, jobID uuid.UUID, fileURL string) (*Summary, error) {
	content, err := o.downloader.Download(ctx, fileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", fileURL, err)
	}

	workbook, err := spreadsheet.Read(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", fileURL, err)
	}

	read := workbook.All()
	filtered := FilterRows(read)
	rows, dropped := Deduplicate(filtered)
	if dropped > 0 {
		o.log.Warnw("rows without unique id skipped", "job_id", jobID, "count", dropped)
	}
	o.log.Infow("workbook read", "job_id", jobID, "sheets", len(workbook.Sheets), "rows", len(read), "kept", len(filtered), "unique", len(rows))

	if err := o.jobs.SetTotalRows(ctx, jobID, len(rows)); err != nil {
		return nil, fmt.Errorf("failed to store total rows: %w", err)
	}

	totals := &aggregate{log: []model.RowError{}}
	groups := SplitGroups(SplitBatches(rows, o.opts.BatchSize), o.opts.GroupSize)
	for i, group := range groups {
		outcomes, err := o.scheduler.RunGroup(ctx, jobID, group)
		if err != nil {
			o.log.Errorw("group failed", "job_id", jobID, "group", i, "error", err)
			outcomes = failedOutcomes(group, err)
		}
		for _, outcome := range outcomes {
			totals.add(outcome)
		}
		o.log.Debugw("group done", "job_id", jobID, "group", i+1, "of", len(groups))
	}

	transition := model.TransitionComplete
	if totals.success == 0 {
		transition = model.TransitionFail
	}
	job, err := o.jobs.Transition(ctx, jobID, transition,
		store.WithCompletedAt(o.now()),
		store.WithCounts(totals.success, totals.errors),
		store.WithErrorLog(head(totals.log, o.opts.MaxErrorLog)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store final status: %w", err)
	}

	return &Summary{
		Success:      true,
		Status:       job.Status,
		Processed:    totals.success + totals.errors,
		SuccessCount: totals.success,
		ErrorCount:   totals.errors,
		Warnings:     totals.warnings,
		Errors:       head(totals.log, o.opts.SummaryErrors),
	}, nil
}

// fail records a fatal error on the job. The write is done even when ctx is
// already cancelled.
func (o *Orchestrator) fail(ctx context.Context, jobID uuid.UUID, cause error) {
	o.log.Errorw("import failed", "job_id", jobID, "error", cause)

	_, err := o.jobs.Transition(context.WithoutCancel(ctx), jobID, model.TransitionFail,
		store.WithCompletedAt(o.now()),
		store.WithErrorLog([]model.RowError{{Row: 0, Error: cause.Error()}}),
	)
	if err != nil {
		o.log.Errorw("failed to mark import job as failed", "job_id", jobID, "error", err)
	}
}

type aggregate struct {
	success  int
	errors   int
	warnings int
	log      []model.RowError
}

func (a *aggregate) add(o BatchOutcome) {
	if o.Err != nil || o.Result == nil {
		metrics.IncreaseBatchesTotalMetric(metrics.ResultError)
		cause := "no result"
		if o.Err != nil {
			cause = o.Err.Error()
		}
		a.errors += len(o.Batch.Rows)
		a.log = append(a.log, model.RowError{
			Row:   o.Batch.Offset + 1,
			Error: fmt.Sprintf("batch %d failed, its %d rows were not imported: %s", o.Batch.Index+1, len(o.Batch.Rows), cause),
		})
		return
	}

	metrics.IncreaseBatchesTotalMetric(metrics.ResultSuccess)
	a.success += o.Result.SuccessCount
	a.errors += o.Result.ErrorCount
	a.warnings += len(o.Result.Warnings)
	a.log = append(a.log, o.Result.Errors...)
}

func failedOutcomes(batches []Batch, err error) []BatchOutcome {
	outcomes := make([]BatchOutcome, 0, len(batches))
	for _, b := range batches {
		outcomes = append(outcomes, BatchOutcome{Batch: b, Err: err})
	}
	return outcomes
}

// SplitBatches cuts rows into batches of at most size rows.
func SplitBatches(rows []spreadsheet.CoachRow, size int) []Batch {
	batches := make([]Batch, 0, (len(rows)+size-1)/size)
	for offset := 0; offset < len(rows); offset += size {
		end := min(offset+size, len(rows))
		batches = append(batches, Batch{Index: len(batches), Offset: offset, Rows: rows[offset:end]})
	}
	return batches
}

// SplitGroups cuts batches into groups of at most size batches.
func SplitGroups(batches []Batch, size int) [][]Batch {
	groups := make([][]Batch, 0, (len(batches)+size-1)/size)
	for start := 0; start < len(batches); start += size {
		groups = append(groups, batches[start:min(start+size, len(batches))])
	}
	return groups
}

func head[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
