package spreadsheet

import "strings"

// CoachRow is one staff record as read from a sheet. Every value is the raw
// cell text; typing happens in the normalize package.
type CoachRow struct {
	UniqueID *string `json:"uniqueId,omitempty"`
	Removed  *string `json:"removed,omitempty"`

	Conference           *string `json:"conference,omitempty"`
	School               *string `json:"school,omitempty"`
	State                *string `json:"state,omitempty"`
	City                 *string `json:"city,omitempty"`
	Region               *string `json:"region,omitempty"`
	CitySize             *string `json:"citySize,omitempty"`
	Control              *string `json:"control,omitempty"`
	ReligiousAffiliation *string `json:"religiousAffiliation,omitempty"`
	AverageGPA           *string `json:"averageGpa,omitempty"`
	SATRange             *string `json:"satRange,omitempty"`
	ACTRange             *string `json:"actRange,omitempty"`
	AcceptanceRate       *string `json:"acceptanceRate,omitempty"`
	InStateCost          *string `json:"inStateCost,omitempty"`
	OutOfStateCost       *string `json:"outOfStateCost,omitempty"`
	Enrollment           *string `json:"enrollment,omitempty"`
	NationalRanking      *string `json:"nationalRanking,omitempty"`
	ExternalID           *string `json:"externalId,omitempty"`

	Sport         *string `json:"sport,omitempty"`
	TeamURL       *string `json:"teamUrl,omitempty"`
	TeamTwitter   *string `json:"teamTwitter,omitempty"`
	TeamInstagram *string `json:"teamInstagram,omitempty"`

	FirstName        *string `json:"firstName,omitempty"`
	LastName         *string `json:"lastName,omitempty"`
	Position         *string `json:"position,omitempty"`
	Email            *string `json:"email,omitempty"`
	Phone            *string `json:"phone,omitempty"`
	Twitter          *string `json:"twitter,omitempty"`
	Responsibilities *string `json:"responsibilities,omitempty"`
	HireDate         *string `json:"hireDate,omitempty"`
	Scope            *string `json:"scope,omitempty"`

	// Extra holds cells under headers that are not mapped to a field.
	Extra map[string]*string `json:"extra,omitempty"`

	// Division and SheetName both carry the originating sheet name: the first
	// is resolved to a division, the second is kept as provenance.
	Division  string `json:"division"`
	SheetName string `json:"sheetName"`
	SourceRow int    `json:"sourceRow"`
}

// CoachName returns "First Last" or an empty string.
func (r CoachRow) CoachName() string {
	parts := make([]string, 0, 2)
	for _, p := range []*string{r.FirstName, r.LastName} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	return strings.Join(parts, " ")
}

type setter func(r *CoachRow, v *string)

// columns maps lower-cased header text to the field it fills.
var columns = map[string]setter{}

func register(s setter, headers ...string) {
	for _, h := range headers {
		columns[strings.ToLower(h)] = s
	}
}

func init() {
	register(func(r *CoachRow, v *string) { r.UniqueID = v }, "Unique ID", "UniqueID", "ID")
	register(func(r *CoachRow, v *string) { r.Removed = v }, "Removed", "Removed?")
	register(func(r *CoachRow, v *string) { r.Conference = v }, "Conference")
	register(func(r *CoachRow, v *string) { r.School = v }, "School", "School Name", "University")
	register(func(r *CoachRow, v *string) { r.State = v }, "State")
	register(func(r *CoachRow, v *string) { r.City = v }, "City")
	register(func(r *CoachRow, v *string) { r.Region = v }, "Region")
	register(func(r *CoachRow, v *string) { r.CitySize = v }, "Size of City", "City Size")
	register(func(r *CoachRow, v *string) { r.Control = v }, "Public/Private", "Private/Public")
	register(func(r *CoachRow, v *string) { r.ReligiousAffiliation = v }, "Religious Affiliation", "Religion")
	register(func(r *CoachRow, v *string) { r.AverageGPA = v }, "Avg GPA", "Average GPA")
	register(func(r *CoachRow, v *string) { r.SATRange = v }, "SAT", "SAT Range", "SAT 25-75")
	register(func(r *CoachRow, v *string) { r.ACTRange = v }, "ACT", "ACT Range", "ACT 25-75")
	register(func(r *CoachRow, v *string) { r.AcceptanceRate = v }, "Acceptance Rate", "Admission Rate")
	register(func(r *CoachRow, v *string) { r.InStateCost = v }, "In-State Tuition", "In State Cost")
	register(func(r *CoachRow, v *string) { r.OutOfStateCost = v }, "Out-of-State Tuition", "Out of State Cost")
	register(func(r *CoachRow, v *string) { r.Enrollment = v }, "Undergrad Enrollment", "Enrollment")
	register(func(r *CoachRow, v *string) { r.NationalRanking = v }, "US News Ranking", "National Ranking")
	register(func(r *CoachRow, v *string) { r.ExternalID = v }, "IPEDS ID", "NCES ID")
	register(func(r *CoachRow, v *string) { r.Sport = v }, "Sport", "Sport Code", "Gender")
	register(func(r *CoachRow, v *string) { r.TeamURL = v }, "Team Website", "Team URL")
	register(func(r *CoachRow, v *string) { r.TeamTwitter = v }, "Team Twitter")
	register(func(r *CoachRow, v *string) { r.TeamInstagram = v }, "Team Instagram")
	register(func(r *CoachRow, v *string) { r.FirstName = v }, "First Name", "First")
	register(func(r *CoachRow, v *string) { r.LastName = v }, "Last Name", "Last")
	register(func(r *CoachRow, v *string) { r.Position = v }, "Position", "Title")
	register(func(r *CoachRow, v *string) { r.Email = v }, "Email", "Email Address")
	register(func(r *CoachRow, v *string) { r.Phone = v }, "Phone", "Office Phone")
	register(func(r *CoachRow, v *string) { r.Twitter = v }, "Twitter", "Coach Twitter")
	register(func(r *CoachRow, v *string) { r.Responsibilities = v }, "Responsibilities", "Event Specialty", "Events")
	register(func(r *CoachRow, v *string) { r.HireDate = v }, "Hire Date", "Start Date")
	register(func(r *CoachRow, v *string) { r.Scope = v }, "Scope", "Coaching Scope")
}

// set stores a cell under the field mapped to header, or in Extra. An empty
// cell never clears a value an alias column already filled.
func (r *CoachRow) set(header string, v *string) {
	key := strings.ToLower(strings.TrimSpace(header))
	if key == "" {
		return
	}
	if s, ok := columns[key]; ok {
		if v != nil {
			s(r, v)
		}
		return
	}
	if r.Extra == nil {
		r.Extra = make(map[string]*string)
	}
	r.Extra[strings.TrimSpace(header)] = v
}
