package store

import (
	"context"

	"github.com/kubev2v/coach-importer/internal/normalize"
	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	ImportJob() ImportJob
	University() University
	Affiliation() Affiliation
	Program() Program
	Coach() Coach
	UniversityJob() UniversityJob
	Responsibility() Responsibility
	Event() Event
	QueueJob() QueueJob
	InitialMigration() error
	Seed() error
	Close() error
}

type DataStore struct {
	db             *gorm.DB
	importJob      ImportJob
	university     University
	affiliation    Affiliation
	program        Program
	coach          Coach
	universityJob  UniversityJob
	responsibility Responsibility
	event          Event
	queueJob       QueueJob
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		importJob:      NewImportJobStore(db),
		university:     NewUniversityStore(db),
		affiliation:    NewAffiliationStore(db),
		program:        NewProgramStore(db),
		coach:          NewCoachStore(db),
		universityJob:  NewUniversityJobStore(db),
		responsibility: NewResponsibilityStore(db),
		event:          NewEventStore(db),
		queueJob:       NewQueueJobStore(db),
		db:             db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) ImportJob() ImportJob {
	return s.importJob
}

func (s *DataStore) University() University {
	return s.university
}

func (s *DataStore) Affiliation() Affiliation {
	return s.affiliation
}

func (s *DataStore) Program() Program {
	return s.program
}

func (s *DataStore) Coach() Coach {
	return s.coach
}

func (s *DataStore) UniversityJob() UniversityJob {
	return s.universityJob
}

func (s *DataStore) Responsibility() Responsibility {
	return s.responsibility
}

func (s *DataStore) Event() Event {
	return s.event
}

func (s *DataStore) QueueJob() QueueJob {
	return s.queueJob
}

// InitialMigration creates the pipeline tables from the gorm models. It is used
// with sqlite; postgres schemas are owned by the SQL migrations.
func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(
		&model.ImportJob{},
		&model.GoverningBody{},
		&model.Division{},
		&model.Conference{},
		&model.University{},
		&model.UniversityDivision{},
		&model.UniversityConference{},
		&model.Program{},
		&model.Event{},
		&model.Coach{},
		&model.UniversityJob{},
		&model.CoachResponsibility{},
	)
}

// Seed inserts the division and event reference rows the importer matches
// against. Existing rows are left untouched.
func (s *DataStore) Seed() error {
	divisions := make([]model.Division, 0)
	for _, name := range normalize.KnownDivisions() {
		divisions = append(divisions, model.Division{Name: name})
	}
	events := make([]model.Event, 0)
	for _, name := range normalize.KnownEventNames() {
		events = append(events, model.Event{Name: name})
	}

	return WithTransaction(context.Background(), s, func(ctx context.Context) error {
		onConflict := clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}
		if err := getDB(ctx, s.db).Clauses(onConflict).Create(&divisions).Error; err != nil {
			return err
		}
		return getDB(ctx, s.db).Clauses(onConflict).Create(&events).Error
	})
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func getDB(ctx context.Context, db *gorm.DB) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
