package store

import (
	"context"

	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
)

type Event interface {
	ListByNames(ctx context.Context, names []string) ([]model.Event, error)
}

type EventStore struct {
	db *gorm.DB
}

var _ Event = (*EventStore)(nil)

func NewEventStore(db *gorm.DB) Event {
	return &EventStore{db: db}
}

// ListByNames returns the events named in names, ordered as in names.
func (s *EventStore) ListByNames(ctx context.Context, names []string) ([]model.Event, error) {
	if len(names) == 0 {
		return []model.Event{}, nil
	}

	var found []model.Event
	if err := s.getDB(ctx).Where("name IN ?", names).Find(&found).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]model.Event, len(found))
	for _, e := range found {
		byName[e.Name] = e
	}
	events := make([]model.Event, 0, len(found))
	for _, n := range names {
		if e, ok := byName[n]; ok {
			events = append(events, e)
			delete(byName, n)
		}
	}
	return events, nil
}

func (s *EventStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
