package mappers

import (
	api "github.com/kubev2v/coach-importer/api/v1alpha1"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
)

// ImportJobToApi maps a job and at most maxErrors entries of its error log.
func ImportJobToApi(j model.ImportJob, maxErrors int) api.ImportJob {
	entries := j.Errors()
	truncated := len(entries) > maxErrors
	if truncated {
		entries = entries[:maxErrors]
	}

	errs := make([]api.RowError, 0, len(entries))
	for _, e := range entries {
		errs = append(errs, api.RowError{
			Row:       e.Row,
			Error:     e.Error,
			UniqueId:  e.UniqueID,
			CoachName: e.CoachName,
			School:    e.School,
		})
	}

	return api.ImportJob{
		Id:              j.ID,
		FileUrl:         j.FileURL,
		Status:          api.StringToImportJobStatus(string(j.Status)),
		TotalRows:       j.TotalRows,
		SuccessCount:    j.SuccessCount,
		ErrorCount:      j.ErrorCount,
		Errors:          errs,
		ErrorsTruncated: truncated,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
		StartedAt:       j.StartedAt,
		CompletedAt:     j.CompletedAt,
	}
}

func ImportJobWithQueueToApi(j model.ImportJob, queue *store.QueueJobRow, maxErrors int) api.ImportJob {
	job := ImportJobToApi(j, maxErrors)
	if queue != nil {
		job.Queue = &api.QueueInfo{
			JobId:   queue.ID,
			State:   string(queue.State),
			Attempt: queue.Attempt,
		}
	}
	return job
}

// ImportJobListToApi leaves the error logs out of the list.
func ImportJobListToApi(jobs model.ImportJobList) api.ImportJobList {
	list := make(api.ImportJobList, 0, len(jobs))
	for _, j := range jobs {
		list = append(list, ImportJobToApi(j, 0))
	}
	return list
}
