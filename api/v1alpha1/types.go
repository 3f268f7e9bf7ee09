package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

type ImportJobStatus string

const (
	ImportJobStatusPending    ImportJobStatus = "pending"
	ImportJobStatusProcessing ImportJobStatus = "processing"
	ImportJobStatusCompleted  ImportJobStatus = "completed"
	ImportJobStatusFailed     ImportJobStatus = "failed"
)

// ImportJobCreate is the body of POST /api/v1/imports.
type ImportJobCreate struct {
	FileUrl string `json:"fileUrl" validate:"required,file_url"`
}

type RowError struct {
	Row       int     `json:"row"`
	Error     string  `json:"error"`
	UniqueId  *string `json:"uniqueId,omitempty"`
	CoachName *string `json:"coachName,omitempty"`
	School    *string `json:"school,omitempty"`
}

// QueueInfo describes the queue job running an import.
type QueueInfo struct {
	JobId   int64  `json:"jobId"`
	State   string `json:"state"`
	Attempt int    `json:"attempt"`
}

type ImportJob struct {
	Id              uuid.UUID       `json:"id"`
	FileUrl         string          `json:"fileUrl"`
	Status          ImportJobStatus `json:"status"`
	TotalRows       *int            `json:"totalRows,omitempty"`
	SuccessCount    int             `json:"successCount"`
	ErrorCount      int             `json:"errorCount"`
	Errors          []RowError      `json:"errors"`
	ErrorsTruncated bool            `json:"errorsTruncated"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	CompletedAt     *time.Time      `json:"completedAt,omitempty"`
	Queue           *QueueInfo      `json:"queue,omitempty"`
}

type ImportJobList []ImportJob

type Error struct {
	Message   string  `json:"message"`
	RequestId *string `json:"requestId,omitempty"`
}
