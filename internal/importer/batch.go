package importer

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/google/uuid"
	"github.com/kubev2v/coach-importer/internal/normalize"
	"github.com/kubev2v/coach-importer/internal/spreadsheet"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
	"github.com/kubev2v/coach-importer/pkg/metrics"
	"go.uber.org/zap"
)

// Batch is a slice of the deduplicated rows of an import. Offset is the
// position of the first row in the whole run, so row numbers in the error log
// are stable whatever the batch size.
type Batch struct {
	Index  int                    `json:"index"`
	Offset int                    `json:"offset"`
	Rows   []spreadsheet.CoachRow `json:"rows"`
}

type BatchResult struct {
	SuccessCount int              `json:"successCount"`
	ErrorCount   int              `json:"errorCount"`
	Errors       []model.RowError `json:"errors"`
	Warnings     []string         `json:"warnings,omitempty"`
}

// BatchProcessor runs the resolver over the rows of a batch, one at a time.
// A failing row never stops the batch.
type BatchProcessor struct {
	resolver Resolver
	jobs     store.ImportJob
	log      *zap.SugaredLogger
}

func NewBatchProcessor(resolver Resolver, jobs store.ImportJob) *BatchProcessor {
	return &BatchProcessor{
		resolver: resolver,
		jobs:     jobs,
		log:      zap.S().Named("batch"),
	}
}

func (p *BatchProcessor) Process(ctx context.Context, jobID uuid.UUID, batch Batch) (*BatchResult, error) {
	result := &BatchResult{Errors: []model.RowError{}}

	for i, row := range batch.Rows {
		res, err := p.resolve(ctx, row)
		if err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, newRowError(batch.Offset+i+1, row, err))
			p.log.Debugw("row failed", "job_id", jobID, "batch", batch.Index, "sheet", row.SheetName, "sheet_row", row.SourceRow, "error", err)
			continue
		}
		result.SuccessCount++
		result.Warnings = append(result.Warnings, res.Warnings...)
	}

	// one statement for both counters: concurrent batches cannot interleave
	if err := p.jobs.IncrementCounters(ctx, jobID, result.SuccessCount, result.ErrorCount); err != nil {
		return nil, fmt.Errorf("failed to update progress of import job %s: %w", jobID, err)
	}

	metrics.IncreaseRowsTotalMetric(metrics.ResultSuccess, result.SuccessCount)
	metrics.IncreaseRowsTotalMetric(metrics.ResultError, result.ErrorCount)

	p.log.Infow("batch processed", "job_id", jobID, "batch", batch.Index, "rows", len(batch.Rows), "success", result.SuccessCount, "errors", result.ErrorCount)
	return result, nil
}

func (p *BatchProcessor) resolve(ctx context.Context, row spreadsheet.CoachRow) (res *Resolution, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("panic while resolving row", "panic", r, "stack", string(debug.Stack()))
			res, err = nil, fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return p.resolver.Resolve(ctx, row)
}

func newRowError(n int, row spreadsheet.CoachRow, err error) model.RowError {
	e := model.RowError{
		Row:      n,
		Error:    err.Error(),
		UniqueID: normalize.NullifyEmptyString(row.UniqueID),
		School:   normalize.NullifyEmptyString(row.School),
	}
	if name := row.CoachName(); name != "" {
		e.CoachName = &name
	}
	return e
}
