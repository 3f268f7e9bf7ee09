package model

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ImportJobStatus string

// Import job status constants
const (
	ImportJobStatusPending    ImportJobStatus = "pending"
	ImportJobStatusProcessing ImportJobStatus = "processing"
	ImportJobStatusCompleted  ImportJobStatus = "completed"
	ImportJobStatusFailed     ImportJobStatus = "failed"
)

func (s ImportJobStatus) IsTerminal() bool {
	return s == ImportJobStatusCompleted || s == ImportJobStatusFailed
}

// Transition is a permitted status change. Only the values declared below exist;
// the zero value is rejected by the store.
type Transition struct {
	name string
	from []ImportJobStatus
	to   ImportJobStatus
}

var (
	TransitionStart    = Transition{name: "start", from: []ImportJobStatus{ImportJobStatusPending}, to: ImportJobStatusProcessing}
	TransitionComplete = Transition{name: "complete", from: []ImportJobStatus{ImportJobStatusProcessing}, to: ImportJobStatusCompleted}
	TransitionFail     = Transition{name: "fail", from: []ImportJobStatus{ImportJobStatusProcessing}, to: ImportJobStatusFailed}
	// TransitionRestart is taken when the queue redelivers a job that already
	// started, either after a crash or after a failed attempt.
	TransitionRestart = Transition{name: "restart", from: []ImportJobStatus{ImportJobStatusProcessing, ImportJobStatusFailed}, to: ImportJobStatusProcessing}
)

func (t Transition) From() []ImportJobStatus { return slices.Clone(t.from) }
func (t Transition) To() ImportJobStatus { return t.to }
func (t Transition) String() string { return t.name }

func (t Transition) Valid() bool {
	return t.name != "" && len(t.from) > 0 && t.to != ""
}

func (t Transition) Allows(current ImportJobStatus) bool {
	return slices.Contains(t.from, current)
}

// RowError is one entry of an import job error log.
type RowError struct {
	Row       int     `json:"row"`
	Error     string  `json:"error"`
	UniqueID  *string `json:"uniqueId,omitempty"`
	CoachName *string `json:"coachName,omitempty"`
	School    *string `json:"school,omitempty"`
}

type ImportJob struct {
	ID           uuid.UUID                      `gorm:"primaryKey;column:id;type:VARCHAR(255);"`
	CreatedAt    time.Time                      `gorm:"not null"`
	UpdatedAt    time.Time                      `gorm:"not null"`
	FileURL      string                         `gorm:"column:file_url;not null;type:TEXT"`
	Status       ImportJobStatus                `gorm:"not null;type:VARCHAR(20);index:import_jobs_status_idx"`
	TotalRows    *int                           `gorm:"column:total_rows"`
	SuccessCount int                            `gorm:"column:success_count;not null;default:0"`
	ErrorCount   int                            `gorm:"column:error_count;not null;default:0"`
	ErrorLog     *datatypes.JSONSlice[RowError] `gorm:"column:error_log"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

type ImportJobList []ImportJob

// Errors returns the error log, empty when there is none.
func (j ImportJob) Errors() []RowError {
	if j.ErrorLog == nil {
		return []RowError{}
	}
	return []RowError(*j.ErrorLog)
}

func (j ImportJob) String() string {
	val, _ := json.Marshal(j)
	return string(val)
}

// NewErrorLog wraps entries for storage; an empty log is stored as NULL.
func NewErrorLog(entries []RowError) *datatypes.JSONSlice[RowError] {
	if len(entries) == 0 {
		return nil
	}
	log := datatypes.JSONSlice[RowError](entries)
	return &log
}
