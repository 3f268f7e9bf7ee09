package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
)

type ImportJob interface {
	Create(ctx context.Context, job model.ImportJob) (*model.ImportJob, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ImportJob, error)
	List(ctx context.Context, filter *ImportJobQueryFilter, opts *ImportJobQueryOptions) (model.ImportJobList, error)
	Transition(ctx context.Context, id uuid.UUID, t model.Transition, opts ...TransitionOption) (*model.ImportJob, error)
	SetTotalRows(ctx context.Context, id uuid.UUID, total int) error
	IncrementCounters(ctx context.Context, id uuid.UUID, success, errors int) error
	CountByStatus(ctx context.Context) (map[model.ImportJobStatus]int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TransitionOption sets additional columns in the statement that changes the
// job status.
type TransitionOption func(map[string]any)

func WithStartedAt(t time.Time) TransitionOption {
	return func(m map[string]any) { m["started_at"] = t }
}

func WithCompletedAt(t time.Time) TransitionOption {
	return func(m map[string]any) { m["completed_at"] = t }
}

// WithCounts overwrites the counters with their final values.
func WithCounts(success, errors int) TransitionOption {
	return func(m map[string]any) {
		m["success_count"] = success
		m["error_count"] = errors
	}
}

func WithErrorLog(entries []model.RowError) TransitionOption {
	return func(m map[string]any) { m["error_log"] = model.NewErrorLog(entries) }
}

// WithResetCounters clears the progress of a previous attempt.
func WithResetCounters() TransitionOption {
	return func(m map[string]any) {
		m["success_count"] = 0
		m["error_count"] = 0
		m["total_rows"] = nil
		m["error_log"] = nil
		m["completed_at"] = nil
	}
}

type ImportJobStore struct {
	db *gorm.DB
}

// Make sure we conform to ImportJob interface
var _ ImportJob = (*ImportJobStore)(nil)

func NewImportJobStore(db *gorm.DB) ImportJob {
	return &ImportJobStore{db: db}
}

func (s *ImportJobStore) Create(ctx context.Context, job model.ImportJob) (*model.ImportJob, error) {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = model.ImportJobStatusPending
	}
	if err := s.getDB(ctx).Create(&job).Error; err != nil {
		return nil, wrapWriteError(err)
	}
	return &job, nil
}

func (s *ImportJobStore) Get(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	job := model.ImportJob{}
	if err := s.getDB(ctx).First(&job, "id = ?", id).Error; err != nil {
		return nil, wrapReadError(err)
	}
	return &job, nil
}

func (s *ImportJobStore) List(ctx context.Context, filter *ImportJobQueryFilter, opts *ImportJobQueryOptions) (model.ImportJobList, error) {
	var jobs model.ImportJobList
	tx := s.getDB(ctx).Model(&jobs)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	if err := tx.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

// Transition moves the job to t.To() only when its current status is one t
// starts from. The check and the write are a single conditional update.
func (s *ImportJobStore) Transition(ctx context.Context, id uuid.UUID, t model.Transition, opts ...TransitionOption) (*model.ImportJob, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown transition", ErrInvalidTransition)
	}

	values := map[string]any{"status": t.To()}
	for _, opt := range opts {
		opt(values)
	}

	result := s.getDB(ctx).
		Model(&model.ImportJob{}).
		Where("id = ? AND status IN ?", id, t.From()).
		Updates(values)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: cannot %s job %s in status %s", ErrInvalidTransition, t, id, current.Status)
	}

	return s.Get(ctx, id)
}

func (s *ImportJobStore) SetTotalRows(ctx context.Context, id uuid.UUID, total int) error {
	result := s.getDB(ctx).Model(&model.ImportJob{}).Where("id = ?", id).Update("total_rows", total)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// IncrementCounters adds to the job counters in one statement so concurrent
// batches never lose an update.
func (s *ImportJobStore) IncrementCounters(ctx context.Context, id uuid.UUID, success, errors int) error {
	result := s.getDB(ctx).
		Model(&model.ImportJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"success_count": gorm.Expr("success_count + ?", success),
			"error_count":   gorm.Expr("error_count + ?", errors),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *ImportJobStore) CountByStatus(ctx context.Context) (map[model.ImportJobStatus]int64, error) {
	var rows []struct {
		Status model.ImportJobStatus
		Total  int64
	}
	err := s.getDB(ctx).
		Model(&model.ImportJob{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ImportJobStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// Delete removes a job that never started. Jobs past pending are kept for
// their history.
func (s *ImportJobStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.getDB(ctx).
		Where("id = ? AND status = ?", id, model.ImportJobStatusPending).
		Delete(&model.ImportJob{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		return ErrInvalidTransition
	}
	return nil
}

func (s *ImportJobStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
