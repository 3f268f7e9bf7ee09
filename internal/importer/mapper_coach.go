package importer

import (
	"context"
	"errors"

	"github.com/kubev2v/coach-importer/internal/normalize"
	"github.com/kubev2v/coach-importer/internal/spreadsheet"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
)

const defaultJobTitle = "Coach"

func coachFromRow(row spreadsheet.CoachRow, email string) model.Coach {
	c := model.Coach{
		Email:   &email,
		Phone:   normalize.NullifyEmptyString(row.Phone),
		Twitter: normalize.NullifyEmptyString(row.Twitter),
	}
	if v := normalize.NullifyEmptyString(row.FirstName); v != nil {
		c.FirstName = *v
	}
	if v := normalize.NullifyEmptyString(row.LastName); v != nil {
		c.LastName = *v
	}
	return c
}

func (m *Mapper) jobFromRow(row spreadsheet.CoachRow, email string, coachID, universityID, programID uint) model.UniversityJob {
	j := model.UniversityJob{
		CoachID:      coachID,
		UniversityID: universityID,
		ProgramID:    &programID,
		Title:        defaultJobTitle,
		WorkEmail:    &email,
		WorkPhone:    normalize.NullifyEmptyString(row.Phone),
		Scope:        normalize.NullifyEmptyString(row.Scope),
		StartDate:    m.now(),
	}
	if title := normalize.NullifyEmptyString(row.Position); title != nil {
		j.Title = *title
	}
	if hired := normalize.ParseDate(row.HireDate); hired != nil {
		j.StartDate = *hired
	}
	return j
}

func (m *Mapper) upsertCoach(ctx context.Context, c model.Coach, universityID, programID uint) (*model.Coach, bool, error) {
	coaches := m.store.Coach()
	return upsert("coach",
		func() (*model.Coach, error) { return m.findCoach(ctx, c, universityID, programID) },
		func() (*model.Coach, error) { return coaches.Create(ctx, c) },
		func(existing *model.Coach) error { return coaches.Update(ctx, existing.ID, c.Changes()) },
	)
}

// findCoach matches, in order, the coach email, the work email of any job,
// then the full name among coaches holding an open job with the program.
func (m *Mapper) findCoach(ctx context.Context, c model.Coach, universityID, programID uint) (*model.Coach, error) {
	coaches := m.store.Coach()

	found, err := coaches.GetByEmail(ctx, *c.Email)
	if !errors.Is(err, store.ErrRecordNotFound) {
		return found, err
	}

	found, err = coaches.GetByJobWorkEmail(ctx, *c.Email)
	if !errors.Is(err, store.ErrRecordNotFound) {
		return found, err
	}

	name := normalize.FoldName(c.FirstName + " " + c.LastName)
	if name == "" {
		return nil, store.ErrRecordNotFound
	}

	candidates, err := coaches.ListWithOpenJob(ctx, universityID, programID)
	if err != nil {
		return nil, err
	}
	for i := range candidates {
		if normalize.FoldName(candidates[i].FirstName+" "+candidates[i].LastName) == name {
			return &candidates[i], nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (m *Mapper) upsertJob(ctx context.Context, j model.UniversityJob) (*model.UniversityJob, bool, error) {
	jobs := m.store.UniversityJob()
	return upsert("job",
		func() (*model.UniversityJob, error) { return jobs.FindOpen(ctx, j.CoachID, j.UniversityID) },
		func() (*model.UniversityJob, error) { return jobs.Create(ctx, j) },
		func(existing *model.UniversityJob) error { return jobs.Update(ctx, existing.ID, j.Changes()) },
	)
}

// replaceResponsibilities swaps the job responsibilities for the event groups
// found in text. Each group carries the first mentioned event belonging to it.
func (m *Mapper) replaceResponsibilities(ctx context.Context, jobID uint, text string) error {
	groups := normalize.EventGroupsFromText(text)
	if len(groups) == 0 {
		groups = []normalize.EventGroup{normalize.Combined}
	}

	events, err := m.store.Event().ListByNames(ctx, normalize.SpecificEventNamesFromText(text))
	if err != nil {
		return ClassifyError("responsibilities", err)
	}

	responsibilities := make([]model.CoachResponsibility, 0, len(groups))
	for _, g := range groups {
		r := model.CoachResponsibility{JobID: jobID, EventGroup: string(g)}
		for _, e := range events {
			if group, ok := normalize.EventGroupOfEventName(e.Name); ok && group == g {
				r.EventID = &e.ID
				break
			}
		}
		responsibilities = append(responsibilities, r)
	}

	if err := m.store.Responsibility().Replace(ctx, jobID, responsibilities); err != nil {
		return ClassifyError("responsibilities", err)
	}
	return nil
}
