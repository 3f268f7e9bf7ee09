package model

import "time"

type GoverningBody struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null;uniqueIndex:governing_bodies_name_key"`
}

type Division struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null;uniqueIndex:divisions_name_key"`
}

type Conference struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	Name            string `gorm:"not null;uniqueIndex:conferences_name_key"`
	GoverningBodyID uint   `gorm:"not null"`
}

type University struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
	Name                 string    `gorm:"not null;uniqueIndex:universities_name_state_key"`
	State                *string   `gorm:"uniqueIndex:universities_name_state_key"`
	City                 *string
	Region               *string
	CitySize             *string
	Control              *string
	ReligiousAffiliation *string
	AverageGPA           *float64 `gorm:"column:average_gpa"`
	SATMin               *int     `gorm:"column:sat_min"`
	SATMax               *int     `gorm:"column:sat_max"`
	ACTMin               *int     `gorm:"column:act_min"`
	ACTMax               *int     `gorm:"column:act_max"`
	AcceptanceRate       *float64
	InStateCost          *int
	OutOfStateCost       *int
	Enrollment           *int
	NationalRanking      *int
	ExternalID           *string `gorm:"column:external_id;index:universities_external_id_idx"`
}

// Changes returns the columns of u holding a value. Absent values are left
// out so an update never clears stored data.
func (u University) Changes() map[string]any {
	c := map[string]any{}
	setIfPresent(c, "city", u.City)
	setIfPresent(c, "region", u.Region)
	setIfPresent(c, "city_size", u.CitySize)
	setIfPresent(c, "control", u.Control)
	setIfPresent(c, "religious_affiliation", u.ReligiousAffiliation)
	setIfPresent(c, "average_gpa", u.AverageGPA)
	setIfPresent(c, "sat_min", u.SATMin)
	setIfPresent(c, "sat_max", u.SATMax)
	setIfPresent(c, "act_min", u.ACTMin)
	setIfPresent(c, "act_max", u.ACTMax)
	setIfPresent(c, "acceptance_rate", u.AcceptanceRate)
	setIfPresent(c, "in_state_cost", u.InStateCost)
	setIfPresent(c, "out_of_state_cost", u.OutOfStateCost)
	setIfPresent(c, "enrollment", u.Enrollment)
	setIfPresent(c, "national_ranking", u.NationalRanking)
	setIfPresent(c, "external_id", u.ExternalID)
	return c
}

// UniversityDivision links a university to a division for a period of time.
// An open link has no end date.
type UniversityDivision struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	UniversityID uint      `gorm:"not null;uniqueIndex:university_divisions_open_idx,where:end_date IS NULL"`
	DivisionID   uint      `gorm:"not null;uniqueIndex:university_divisions_open_idx"`
	StartDate    time.Time `gorm:"not null"`
	EndDate      *time.Time
}

type UniversityConference struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	UniversityID uint      `gorm:"not null;uniqueIndex:university_conferences_open_idx,where:end_date IS NULL"`
	ConferenceID uint      `gorm:"not null;uniqueIndex:university_conferences_open_idx"`
	StartDate    time.Time `gorm:"not null"`
	EndDate      *time.Time
}

type Program struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
	UniversityID  uint      `gorm:"not null;uniqueIndex:programs_university_gender_key"`
	Gender        string    `gorm:"not null;type:VARCHAR(10);uniqueIndex:programs_university_gender_key"`
	TeamURL       *string   `gorm:"column:team_url"`
	TeamTwitter   *string
	TeamInstagram *string
}

func (p Program) Changes() map[string]any {
	c := map[string]any{}
	setIfPresent(c, "team_url", p.TeamURL)
	setIfPresent(c, "team_twitter", p.TeamTwitter)
	setIfPresent(c, "team_instagram", p.TeamInstagram)
	return c
}

type Event struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null;uniqueIndex:events_name_key"`
}

type Coach struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	FirstName string    `gorm:"not null"`
	LastName  string    `gorm:"not null"`
	Email     *string   `gorm:"uniqueIndex:coaches_email_key"`
	Phone     *string
	Twitter   *string
}

func (c Coach) Changes() map[string]any {
	m := map[string]any{}
	if c.FirstName != "" {
		m["first_name"] = c.FirstName
	}
	if c.LastName != "" {
		m["last_name"] = c.LastName
	}
	setIfPresent(m, "email", c.Email)
	setIfPresent(m, "phone", c.Phone)
	setIfPresent(m, "twitter", c.Twitter)
	return m
}

// UniversityJob is a coach's employment at a university. A coach holds at
// most one open job per university.
type UniversityJob struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	CoachID      uint      `gorm:"not null;index:university_jobs_coach_idx;uniqueIndex:university_jobs_open_coach_university_idx,where:end_date IS NULL"`
	UniversityID uint      `gorm:"not null;uniqueIndex:university_jobs_open_coach_university_idx"`
	ProgramID    *uint
	Title        string  `gorm:"not null"`
	WorkEmail    *string `gorm:"index:university_jobs_work_email_idx"`
	WorkPhone    *string
	Scope        *string
	StartDate    time.Time `gorm:"not null"`
	EndDate      *time.Time
}

func (j UniversityJob) Changes() map[string]any {
	c := map[string]any{}
	if j.Title != "" {
		c["title"] = j.Title
	}
	setIfPresent(c, "program_id", j.ProgramID)
	setIfPresent(c, "work_email", j.WorkEmail)
	setIfPresent(c, "work_phone", j.WorkPhone)
	setIfPresent(c, "scope", j.Scope)
	return c
}

type CoachResponsibility struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	JobID      uint   `gorm:"not null;index:coach_responsibilities_job_idx"`
	EventGroup string `gorm:"not null;type:VARCHAR(20)"`
	EventID    *uint
}

func setIfPresent[T any](m map[string]any, column string, v *T) {
	if v != nil {
		m[column] = *v
	}
}
