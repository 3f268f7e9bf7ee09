package store

import (
	"context"
	"time"

	"github.com/kubev2v/coach-importer/internal/store/model"
	"gorm.io/gorm"
)

// Affiliation reads the division and conference reference tables and manages
// the time-ranged links of universities to them. Reference rows are never
// written by the importer.
type Affiliation interface {
	DivisionByName(ctx context.Context, name string) (*model.Division, error)
	ConferenceByName(ctx context.Context, name string) (*model.Conference, error)
	OpenDivisionLink(ctx context.Context, universityID, divisionID uint) (*model.UniversityDivision, error)
	LinkDivision(ctx context.Context, universityID, divisionID uint, start time.Time) error
	OpenConferenceLink(ctx context.Context, universityID, conferenceID uint) (*model.UniversityConference, error)
	LinkConference(ctx context.Context, universityID, conferenceID uint, start time.Time) error
}

type AffiliationStore struct {
	db *gorm.DB
}

var _ Affiliation = (*AffiliationStore)(nil)

func NewAffiliationStore(db *gorm.DB) Affiliation {
	return &AffiliationStore{db: db}
}

func (s *AffiliationStore) DivisionByName(ctx context.Context, name string) (*model.Division, error) {
	d := model.Division{}
	if err := s.getDB(ctx).Where("name = ?", name).First(&d).Error; err != nil {
		return nil, wrapReadError(err)
	}
	return &d, nil
}

func (s *AffiliationStore) ConferenceByName(ctx context.Context, name string) (*model.Conference, error) {
	c := model.Conference{}
	if err := s.getDB(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, wrapReadError(err)
	}
	return &c, nil
}

func (s *AffiliationStore) OpenDivisionLink(ctx context.Context, universityID, divisionID uint) (*model.UniversityDivision, error) {
	link := model.UniversityDivision{}
	err := s.getDB(ctx).
		Where("university_id = ? AND division_id = ? AND end_date IS NULL", universityID, divisionID).
		First(&link).Error
	if err != nil {
		return nil, wrapReadError(err)
	}
	return &link, nil
}

func (s *AffiliationStore) LinkDivision(ctx context.Context, universityID, divisionID uint, start time.Time) error {
	link := model.UniversityDivision{UniversityID: universityID, DivisionID: divisionID, StartDate: start}
	return wrapWriteError(s.getDB(ctx).Create(&link).Error)
}

func (s *AffiliationStore) OpenConferenceLink(ctx context.Context, universityID, conferenceID uint) (*model.UniversityConference, error) {
	link := model.UniversityConference{}
	err := s.getDB(ctx).
		Where("university_id = ? AND conference_id = ? AND end_date IS NULL", universityID, conferenceID).
		First(&link).Error
	if err != nil {
		return nil, wrapReadError(err)
	}
	return &link, nil
}

func (s *AffiliationStore) LinkConference(ctx context.Context, universityID, conferenceID uint, start time.Time) error {
	link := model.UniversityConference{UniversityID: universityID, ConferenceID: conferenceID, StartDate: start}
	return wrapWriteError(s.getDB(ctx).Create(&link).Error)
}

func (s *AffiliationStore) getDB(ctx context.Context) *gorm.DB {
	return getDB(ctx, s.db)
}
