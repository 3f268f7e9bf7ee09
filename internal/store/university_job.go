package store

import (
	"context"
	"time"

	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
)

type UniversityJob interface {
	FindOpen(ctx context.Context, coachID, universityID uint) (*model.UniversityJob, error)
	// CloseOpenElsewhere ends every open job of the coach at a university
	// other than universityID and returns how many were closed.
	CloseOpenElsewhere(ctx context.Context, coachID, universityID uint, at time.Time) (int64, error)
	Create(ctx context.Context, job model.UniversityJob) (*model.UniversityJob, error)
	Update(ctx context.Context, id uint, changes map[string]any) error
}

type UniversityJobStore struct {
	db *gorm.DB
}

var _ UniversityJob = (*UniversityJobStore)(nil)

func NewUniversityJobStore(db *gorm.DB) UniversityJob {
	return &UniversityJobStore{db: db}
}

func (s *UniversityJobStore) FindOpen(ctx context.Context, coachID, universityID uint) (*model.UniversityJob, error) {
	j := model.UniversityJob{}
	err := s.getDB(ctx).
		Where("coach_id = ? AND university_id = ? AND end_date IS NULL", coachID, universityID).
		First(&j).Error
	if err != nil {
		return nil, wrapReadError(err)
	}
	return &j, nil
}

func (s *UniversityJobStore) CloseOpenElsewhere(ctx context.Context, coachID, universityID uint, at time.Time) (int64, error) {
	result := s.getDB(ctx).
		Model(&model.UniversityJob{}).
		Where("coach_id = ? AND university_id <> ? AND end_date IS NULL", coachID, universityID).
		Update("end_date", at)
	return result.RowsAffected, result.Error
}

func (s *UniversityJobStore) Create(ctx context.Context, job model.UniversityJob) (*model.UniversityJob, error) {
	if err := s.getDB(ctx).Create(&job).Error; err != nil {
		return nil, wrapWriteError(err)
	}
	return &job, nil
}

func (s *UniversityJobStore) Update(ctx context.Context, id uint, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	result := s.getDB(ctx).Model(&model.UniversityJob{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return wrapWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *UniversityJobStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
