package service

import (
	"fmt"

	"github.com/google/uuid"
)

type ErrResourceNotFound struct {
	error
}

func NewErrResourceNotFound(id uuid.UUID, resourceType string) *ErrResourceNotFound {
	return &ErrResourceNotFound{fmt.Errorf("%s %s not found", resourceType, id)}
}

func NewErrImportJobNotFound(id uuid.UUID) *ErrResourceNotFound {
	return NewErrResourceNotFound(id, "import job")
}

type ErrImportNotQueued struct {
	error
}

func NewErrImportNotQueued(id uuid.UUID, cause error) *ErrImportNotQueued {
	return &ErrImportNotQueued{fmt.Errorf("import job %s could not be queued: %w", id, cause)}
}

type ErrInvalidFilter struct {
	error
}

func NewErrInvalidFilter(format string, args ...any) *ErrInvalidFilter {
	return &ErrInvalidFilter{fmt.Errorf(format, args...)}
}
