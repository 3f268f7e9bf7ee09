package store

import (
	"context"
	"fmt"

	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
)

type Responsibility interface {
	// Replace deletes the responsibilities of the job and inserts the given
	// ones in a single transaction. It joins the transaction carried by ctx.
	Replace(ctx context.Context, jobID uint, responsibilities []model.CoachResponsibility) error
}

type ResponsibilityStore struct {
	db *gorm.DB
}

var _ Responsibility = (*ResponsibilityStore)(nil)

func NewResponsibilityStore(db *gorm.DB) Responsibility {
	return &ResponsibilityStore{db: db}
}

func (s *ResponsibilityStore) Replace(ctx context.Context, jobID uint, responsibilities []model.CoachResponsibility) error {
	return withTransaction(ctx, s.db, func(ctx context.Context) error {
		tx := s.getDB(ctx)
		if err := tx.Where("job_id = ?", jobID).Delete(&model.CoachResponsibility{}).Error; err != nil {
			return fmt.Errorf("failed to delete existing responsibilities: %w", err)
		}

		if len(responsibilities) == 0 {
			return nil
		}

		for i := range responsibilities {
			responsibilities[i].JobID = jobID
		}
		if err := tx.Create(&responsibilities).Error; err != nil {
			return wrapWriteError(err)
		}
		return nil
	})
}

func (s *ResponsibilityStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
