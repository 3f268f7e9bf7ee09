package importer

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kubev2v/coach-importer/internal/normalize"
	"github.com/kubev2v/coach-importer/internal/spreadsheet"
	"github.com/kubev2v/coach-importer/internal/store"
	"go.uber.org/zap"
)

var ErrMissingSchool = errors.New("missing school")

// Resolver writes one spreadsheet row to the store.
type Resolver interface {
	Resolve(ctx context.Context, row spreadsheet.CoachRow) (*Resolution, error)
}

// Resolution tells what a row resolved to. Warnings are lookups that missed
// without failing the row.
type Resolution struct {
	UniversityID      uint
	ProgramID         uint
	CoachID           uint
	JobID             uint
	UniversityCreated bool
	CoachCreated      bool
	JobCreated        bool
	ClosedJobs        int64
	Warnings          []string
}

// Mapper resolves rows into universities, programs, coaches, jobs and
// responsibilities. Every step selects then writes; there is no transaction
// spanning the row.
type Mapper struct {
	store    store.Store
	validate *validator.Validate
	now      func() time.Time
	log      *zap.SugaredLogger
}

var _ Resolver = (*Mapper)(nil)

func NewMapper(s store.Store) *Mapper {
	return &Mapper{
		store:    s,
		validate: validator.New(),
		now:      time.Now,
		log:      zap.S().Named("mapper"),
	}
}

func (m *Mapper) Resolve(ctx context.Context, row spreadsheet.CoachRow) (*Resolution, error) {
	// nothing is written for a row without a usable email
	email, err := m.email(row)
	if err != nil {
		return nil, err
	}
	school := normalize.NullifyEmptyString(row.School)
	if school == nil {
		return nil, ErrMissingSchool
	}

	res := &Resolution{}

	university, created, err := m.upsertUniversity(ctx, universityFromRow(row))
	if err != nil {
		return nil, err
	}
	res.UniversityID = university.ID
	res.UniversityCreated = created

	if err := m.linkDivision(ctx, res, university.ID, row.Division); err != nil {
		return nil, err
	}

	if conference := normalize.NullifyEmptyString(row.Conference); conference != nil {
		if err := m.linkConference(ctx, res, university.ID, *conference); err != nil {
			return nil, err
		}
	}

	program, _, err := m.upsertProgram(ctx, programFromRow(row, university.ID))
	if err != nil {
		return nil, err
	}
	res.ProgramID = program.ID

	coach, created, err := m.upsertCoach(ctx, coachFromRow(row, email), university.ID, program.ID)
	if err != nil {
		return nil, err
	}
	res.CoachID = coach.ID
	res.CoachCreated = created

	closed, err := m.store.UniversityJob().CloseOpenElsewhere(ctx, coach.ID, university.ID, m.now())
	if err != nil {
		return nil, ClassifyError("job", err)
	}
	res.ClosedJobs = closed

	job, created, err := m.upsertJob(ctx, m.jobFromRow(row, email, coach.ID, university.ID, program.ID))
	if err != nil {
		return nil, err
	}
	res.JobID = job.ID
	res.JobCreated = created

	if text := normalize.NullifyEmptyString(row.Responsibilities); text != nil {
		if err := m.replaceResponsibilities(ctx, job.ID, *text); err != nil {
			return nil, err
		}
	}

	return res, nil
}

func (m *Mapper) email(row spreadsheet.CoachRow) (string, error) {
	email := normalize.NormalizeEmail(row.Email)
	if email == nil {
		return "", ErrMissingEmail
	}
	if err := m.validate.Var(*email, "email"); err != nil {
		return "", ErrInvalidEmail
	}
	return *email, nil
}

func (m *Mapper) warn(res *Resolution, msg string, keysAndValues ...any) {
	res.Warnings = append(res.Warnings, msg)
	m.log.Warnw(msg, keysAndValues...)
}

// upsert selects a record, updating it when found and creating it otherwise.
// A create that loses a race against a concurrent writer is retried once as
// an update.
func upsert[T any](name string, find func() (*T, error), create func() (*T, error), update func(existing *T) error) (*T, bool, error) {
	existing, err := find()
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return nil, false, ClassifyError(name, err)
	}

	if existing == nil {
		created, err := create()
		if err == nil {
			return created, true, nil
		}
		if !errors.Is(err, store.ErrDuplicateKey) {
			return nil, false, ClassifyError(name, err)
		}

		var ferr error
		existing, ferr = find()
		if ferr != nil {
			return nil, false, ClassifyError(name, err)
		}
	}

	if err := update(existing); err != nil {
		return nil, false, ClassifyError(name, err)
	}
	return existing, false, nil
}
