package jobs

import (
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/kubev2v/coach-importer/internal/importer"
)

const (
	ImportQueue = "imports"
	BatchQueue  = "import_batches"

	ImportJobKind = "coach_import"
	BatchJobKind  = "coach_import_batch"

	ImportJobTimeout = 2 * time.Hour
	BatchJobTimeout  = 10 * time.Minute

	DefaultMaxAttempts = 3
	// a retried batch would count its rows twice
	BatchMaxAttempts = 1
)

// ImportArgs is stored in river_job.args. The importJobId key is what the
// store looks jobs up by.
type ImportArgs struct {
	ImportJobID uuid.UUID `json:"importJobId"`
	FileURL     string    `json:"fileUrl"`
}

func (ImportArgs) Kind() string {
	return ImportJobKind
}

func (ImportArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       ImportQueue,
		MaxAttempts: DefaultMaxAttempts,
	}
}

type BatchArgs struct {
	ImportJobID uuid.UUID      `json:"importJobId"`
	Batch       importer.Batch `json:"batch"`
}

func (BatchArgs) Kind() string {
	return BatchJobKind
}

func (BatchArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       BatchQueue,
		MaxAttempts: BatchMaxAttempts,
	}
}
