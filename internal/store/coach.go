package store

import (
	"context"

	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
)

type Coach interface {
	GetByEmail(ctx context.Context, email string) (*model.Coach, error)
	GetByJobWorkEmail(ctx context.Context, email string) (*model.Coach, error)
	ListWithOpenJob(ctx context.Context, universityID, programID uint) ([]model.Coach, error)
	Create(ctx context.Context, coach model.Coach) (*model.Coach, error)
	Update(ctx context.Context, id uint, changes map[string]any) error
}

type CoachStore struct {
	db *gorm.DB
}

var _ Coach = (*CoachStore)(nil)

func NewCoachStore(db *gorm.DB) Coach {
	return &CoachStore{db: db}
}

func (s *CoachStore) GetByEmail(ctx context.Context, email string) (*model.Coach, error) {
	c := model.Coach{}
	if err := s.getDB(ctx).Where("email = ?", email).First(&c).Error; err != nil {
		return nil, wrapReadError(err)
	}
	return &c, nil
}

// GetByJobWorkEmail returns the coach of the most recent job, open or closed,
// registered with the work email.
func (s *CoachStore) GetByJobWorkEmail(ctx context.Context, email string) (*model.Coach, error) {
	c := model.Coach{}
	err := s.getDB(ctx).
		Joins("JOIN university_jobs ON university_jobs.coach_id = coaches.id").
		Where("university_jobs.work_email = ?", email).
		Order("university_jobs.id DESC").
		First(&c).Error
	if err != nil {
		return nil, wrapReadError(err)
	}
	return &c, nil
}

// ListWithOpenJob returns the coaches holding an open job for the program of
// the university.
func (s *CoachStore) ListWithOpenJob(ctx context.Context, universityID, programID uint) ([]model.Coach, error) {
	var coaches []model.Coach
	err := s.getDB(ctx).
		Joins("JOIN university_jobs ON university_jobs.coach_id = coaches.id").
		Where("university_jobs.university_id = ? AND university_jobs.program_id = ? AND university_jobs.end_date IS NULL", universityID, programID).
		Order("coaches.id").
		Find(&coaches).Error
	if err != nil {
		return nil, err
	}
	return coaches, nil
}

func (s *CoachStore) Create(ctx context.Context, coach model.Coach) (*model.Coach, error) {
	if err := s.getDB(ctx).Create(&coach).Error; err != nil {
		return nil, wrapWriteError(err)
	}
	return &coach, nil
}

func (s *CoachStore) Update(ctx context.Context, id uint, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	result := s.getDB(ctx).Model(&model.Coach{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return wrapWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *CoachStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
