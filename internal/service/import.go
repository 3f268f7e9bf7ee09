package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kubev2v/coach-importer/internal/importer/jobs"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
	"github.com/kubev2v/coach-importer/pkg/log"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Enqueuer hands an import job over to the workers.
type Enqueuer interface {
	InsertImport(ctx context.Context, args jobs.ImportArgs) (int64, error)
}

type ImportService struct {
	store store.Store
	queue Enqueuer
}

func NewImportService(s store.Store, queue Enqueuer) *ImportService {
	return &ImportService{store: s, queue: queue}
}

// ImportDetails is an import job together with the queue job running it, when
// the queue still knows about it.
type ImportDetails struct {
	Job   model.ImportJob
	Queue *store.QueueJobRow
}

// CreateImport records a pending job for fileURL and enqueues it. A job that
// could not be enqueued is removed.
func (s *ImportService) CreateImport(ctx context.Context, fileURL string) (*model.ImportJob, error) {
	logger := log.FromContext(ctx, "import_service")

	job, err := s.store.ImportJob().Create(ctx, model.ImportJob{FileURL: fileURL})
	if err != nil {
		return nil, fmt.Errorf("failed to create import job: %w", err)
	}

	queueID, err := s.queue.InsertImport(ctx, jobs.ImportArgs{ImportJobID: job.ID, FileURL: job.FileURL})
	if err != nil {
		logger.Errorw("failed to enqueue import job", "job_id", job.ID, "error", err)
		if delErr := s.store.ImportJob().Delete(context.WithoutCancel(ctx), job.ID); delErr != nil {
			logger.Errorw("failed to remove import job", "job_id", job.ID, "error", delErr)
		}
		return nil, NewErrImportNotQueued(job.ID, err)
	}

	logger.Infow("import job created", "job_id", job.ID, "queue_job_id", queueID, "file_url", fileURL)
	return job, nil
}

func (s *ImportService) GetImport(ctx context.Context, id uuid.UUID) (*ImportDetails, error) {
	job, err := s.store.ImportJob().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrImportJobNotFound(id)
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}

	details := &ImportDetails{Job: *job}

	row, err := s.store.QueueJob().LatestForImport(ctx, jobs.ImportJobKind, id)
	switch {
	case err == nil:
		details.Queue = row
	case errors.Is(err, store.ErrRecordNotFound):
		// finished queue jobs are pruned after a while
	default:
		log.FromContext(ctx, "import_service").Warnw("failed to read queue job", "job_id", id, "error", err)
	}

	return details, nil
}

func (s *ImportService) ListImports(ctx context.Context, filter *ImportFilter) (model.ImportJobList, error) {
	if filter == nil {
		filter = NewImportFilter()
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, NewErrInvalidFilter("limit and offset must not be negative")
	}

	storeFilter := store.NewImportJobQueryFilter()
	if len(filter.Statuses) > 0 {
		storeFilter = storeFilter.ByStatus(filter.Statuses...)
	}
	if filter.FileURL != "" {
		storeFilter = storeFilter.ByFileURL(filter.FileURL)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	opts := store.NewImportJobQueryOptions().
		WithSortOrder(store.SortByCreatedTimeDesc).
		WithLimit(min(limit, maxListLimit)).
		WithOffset(filter.Offset)

	jobList, err := s.store.ImportJob().List(ctx, storeFilter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	return jobList, nil
}

type ImportFilterFunc func(f *ImportFilter)

type ImportFilter struct {
	Statuses []model.ImportJobStatus
	FileURL  string
	Limit    int
	Offset   int
}

func NewImportFilter(filters ...ImportFilterFunc) *ImportFilter {
	f := &ImportFilter{}
	for _, fn := range filters {
		fn(f)
	}
	return f
}

func WithStatus(statuses ...model.ImportJobStatus) ImportFilterFunc {
	return func(f *ImportFilter) {
		f.Statuses = append(f.Statuses, statuses...)
	}
}

func WithFileURL(fileURL string) ImportFilterFunc {
	return func(f *ImportFilter) {
		f.FileURL = fileURL
	}
}

func WithPage(limit, offset int) ImportFilterFunc {
	return func(f *ImportFilter) {
		f.Limit = limit
		f.Offset = offset
	}
}
