package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/riverqueue/river/rivertype"
	"gorm.io/gorm"
)

// QueueJobRow is the part of a river_job row the service reports on.
type QueueJobRow struct {
	ID       int64              `gorm:"column:id;primaryKey"`
	Kind     string             `gorm:"column:kind"`
	State    rivertype.JobState `gorm:"column:state"`
	Attempt  int                `gorm:"column:attempt"`
	ArgsJSON []byte             `gorm:"column:args"`
}

func (QueueJobRow) TableName() string {
	return "river_job"
}

// QueueJob reads the job queue table to tell how the queued work of an import
// is doing.
type QueueJob interface {
	LatestForImport(ctx context.Context, kind string, importJobID uuid.UUID) (*QueueJobRow, error)
}

type QueueJobStore struct {
	db *gorm.DB
}

var _ QueueJob = (*QueueJobStore)(nil)

func NewQueueJobStore(db *gorm.DB) QueueJob {
	return &QueueJobStore{db: db}
}

// LatestForImport finds the most recent queue job of the kind whose args
// reference the import job. Returns ErrRecordNotFound when there is none.
func (s *QueueJobStore) LatestForImport(ctx context.Context, kind string, importJobID uuid.UUID) (*QueueJobRow, error) {
	var row QueueJobRow
	result := s.getDB(ctx).
		Where("kind = ?", kind).
		Where("args->>'importJobId' = ?", importJobID.String()).
		Order("id DESC").
		Limit(1).
		Find(&row)
	if result.Error != nil {
		return nil, fmt.Errorf("querying queue job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return &row, nil
}

func (s *QueueJobStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
