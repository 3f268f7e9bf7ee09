package store

import (
	"context"

	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
)

type University interface {
	FindByNameState(ctx context.Context, name string, state *string) (*model.University, error)
	Create(ctx context.Context, university model.University) (*model.University, error)
	Update(ctx context.Context, id uint, changes map[string]any) error
}

type UniversityStore struct {
	db *gorm.DB
}

var _ University = (*UniversityStore)(nil)

func NewUniversityStore(db *gorm.DB) University {
	return &UniversityStore{db: db}
}

// FindByNameState matches the name exactly. A nil state only matches
// universities stored without a state.
func (s *UniversityStore) FindByNameState(ctx context.Context, name string, state *string) (*model.University, error) {
	tx := s.getDB(ctx).Where("name = ?", name)
	if state == nil {
		tx = tx.Where("state IS NULL")
	} else {
		tx = tx.Where("state = ?", *state)
	}

	u := model.University{}
	if err := tx.Order("id").First(&u).Error; err != nil {
		return nil, wrapReadError(err)
	}
	return &u, nil
}

func (s *UniversityStore) Create(ctx context.Context, university model.University) (*model.University, error) {
	if err := s.getDB(ctx).Create(&university).Error; err != nil {
		return nil, wrapWriteError(err)
	}
	return &university, nil
}

func (s *UniversityStore) Update(ctx context.Context, id uint, changes map[string]any) error {
	if len(changes) == 0 {
		return nil
	}
	result := s.getDB(ctx).Model(&model.University{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return wrapWriteError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *UniversityStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
