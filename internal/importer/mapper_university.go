package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/kubev2v/coach-importer/internal/normalize"
	"github.com/kubev2v/coach-importer/internal/spreadsheet"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
)

func universityFromRow(row spreadsheet.CoachRow) model.University {
	sat := normalize.PercentileRange(row.SATRange)
	act := normalize.PercentileRange(row.ACTRange)

	u := model.University{
		State:                normalize.NullifyEmptyString(row.State),
		City:                 normalize.NullifyEmptyString(row.City),
		Region:               normalize.NullifyEmptyString(row.Region),
		CitySize:             normalize.NullifyEmptyString(row.CitySize),
		Control:              normalize.NullifyEmptyString(row.Control),
		ReligiousAffiliation: normalize.NullifyEmptyString(row.ReligiousAffiliation),
		AverageGPA:           normalize.ToFloat(row.AverageGPA),
		SATMin:               sat.Min,
		SATMax:               sat.Max,
		ACTMin:               act.Min,
		ACTMax:               act.Max,
		AcceptanceRate:       normalize.PercentageToDecimal(row.AcceptanceRate),
		InStateCost:          normalize.CurrencyToInteger(row.InStateCost),
		OutOfStateCost:       normalize.CurrencyToInteger(row.OutOfStateCost),
		Enrollment:           normalize.ToInteger(row.Enrollment),
		NationalRanking:      normalize.ToInteger(row.NationalRanking),
		ExternalID:           normalize.NullifyEmptyString(row.ExternalID),
	}
	if name := normalize.NullifyEmptyString(row.School); name != nil {
		u.Name = *name
	}
	return u
}

func programFromRow(row spreadsheet.CoachRow, universityID uint) model.Program {
	return model.Program{
		UniversityID:  universityID,
		Gender:        string(normalize.GenderFromSport(row.Sport)),
		TeamURL:       normalize.NullifyEmptyString(row.TeamURL),
		TeamTwitter:   normalize.NullifyEmptyString(row.TeamTwitter),
		TeamInstagram: normalize.NullifyEmptyString(row.TeamInstagram),
	}
}

func (m *Mapper) upsertUniversity(ctx context.Context, u model.University) (*model.University, bool, error) {
	universities := m.store.University()
	return upsert("university",
		func() (*model.University, error) { return universities.FindByNameState(ctx, u.Name, u.State) },
		func() (*model.University, error) { return universities.Create(ctx, u) },
		func(existing *model.University) error { return universities.Update(ctx, existing.ID, u.Changes()) },
	)
}

func (m *Mapper) upsertProgram(ctx context.Context, p model.Program) (*model.Program, bool, error) {
	programs := m.store.Program()
	return upsert("program",
		func() (*model.Program, error) { return programs.Find(ctx, p.UniversityID, p.Gender) },
		func() (*model.Program, error) { return programs.Create(ctx, p) },
		func(existing *model.Program) error { return programs.Update(ctx, existing.ID, p.Changes()) },
	)
}

// linkDivision links the university to the division named after the sheet.
// Divisions are reference data: a missing one is a warning.
func (m *Mapper) linkDivision(ctx context.Context, res *Resolution, universityID uint, sheet string) error {
	name := normalize.DivisionName(sheet)
	affiliations := m.store.Affiliation()

	division, err := affiliations.DivisionByName(ctx, name)
	if errors.Is(err, store.ErrRecordNotFound) {
		m.warn(res, fmt.Sprintf("division %q not found, university not linked", name), "division", name, "university_id", universityID)
		return nil
	}
	if err != nil {
		return ClassifyError("division link", err)
	}

	_, err = affiliations.OpenDivisionLink(ctx, universityID, division.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return ClassifyError("division link", err)
	}

	err = affiliations.LinkDivision(ctx, universityID, division.ID, m.now())
	if errors.Is(err, store.ErrDuplicateKey) {
		// linked concurrently by another batch
		return nil
	}
	return ClassifyError("division link", err)
}

// linkConference links the university to an existing conference. Conferences
// need a governing body the sheet does not carry, so they are never created.
func (m *Mapper) linkConference(ctx context.Context, res *Resolution, universityID uint, name string) error {
	affiliations := m.store.Affiliation()

	conference, err := affiliations.ConferenceByName(ctx, name)
	if errors.Is(err, store.ErrRecordNotFound) {
		m.warn(res, fmt.Sprintf("conference %q not found, university not linked", name), "conference", name, "university_id", universityID)
		return nil
	}
	if err != nil {
		return ClassifyError("conference link", err)
	}

	_, err = affiliations.OpenConferenceLink(ctx, universityID, conference.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return ClassifyError("conference link", err)
	}

	err = affiliations.LinkConference(ctx, universityID, conference.ID, m.now())
	if errors.Is(err, store.ErrDuplicateKey) {
		return nil
	}
	return ClassifyError("conference link", err)
}
