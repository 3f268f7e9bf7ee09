package store

import (
	"context"

	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
)

type Program interface {
	Find(ctx context.Context, universityID uint, gender string) (*model.Program, error)
	Create(ctx context.Context, program model.Program) (*model.Program, error)
	Update(ctx context.Context, id uint, changes map[string]any) error
}

type ProgramStore struct {
	db *gorm.DB
}

var _ Program = (*ProgramStore)(nil)

func NewProgramStore(db *gorm.DB) Program {
	return &ProgramStore{db: db}
}

func (s *ProgramStore) Find(ctx context.Context, universityID uint, gender string) (*model.Program, error) {
	p := model.Program{}
	if err := s.getDB(ctx).Where("university_id = ? AND gender = ?", universityID, gender).First(&p).Error; err != nil {
		return nil, wrapReadError(err)
	}
	return &p, nil
}

func (s *ProgramStore) Create(ctx context.Context, program model.Program) (*model.Program, error) {
	if err := s.getDB(ctx).Create(&program).Error; err != nil {
		return nil, wrapWriteError(err)
	}
	return &program, nil
}

func (s *ProgramStore) Update(ctx context.Context, id uint, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	result := s.getDB(ctx).Model(&model.Program{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return wrapWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *ProgramStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
