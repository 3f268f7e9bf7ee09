package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	coachImporter = "coach_importer"

	// Import metrics
	importRowsTotal         = "import_rows_total"
	importBatchesTotal      = "import_batches_total"
	importJobsTotal         = "import_jobs_total"
	importJobDurationSecond = "import_job_duration_seconds"

	// Labels
	resultLabel = "result"
	statusLabel = "status"

	ResultSuccess = "success"
	ResultError   = "error"
)

var resultLabels = []string{
	resultLabel,
}

var statusLabels = []string{
	statusLabel,
}

/**
* Metrics definition
**/
var importRowsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: coachImporter,
		Name:      importRowsTotal,
		Help:      "number of imported rows by result",
	},
	resultLabels,
)

var importBatchesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: coachImporter,
		Name:      importBatchesTotal,
		Help:      "number of processed batches by result; a failed batch did not run to completion",
	},
	resultLabels,
)

var importJobsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: coachImporter,
		Name:      importJobsTotal,
		Help:      "number of finished import jobs by final status",
	},
	statusLabels,
)

var importJobDurationMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: coachImporter,
		Name:      importJobDurationSecond,
		Help:      "time spent running an import job",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	},
	statusLabels,
)

func IncreaseRowsTotalMetric(result string, count int) {
	if count <= 0 {
		return
	}
	labels := prometheus.Labels{
		resultLabel: result,
	}
	importRowsTotalMetric.With(labels).Add(float64(count))
}

func IncreaseBatchesTotalMetric(result string) {
	labels := prometheus.Labels{
		resultLabel: result,
	}
	importBatchesTotalMetric.With(labels).Inc()
}

func ObserveImportJobMetric(status string, seconds float64) {
	labels := prometheus.Labels{
		statusLabel: status,
	}
	importJobsTotalMetric.With(labels).Inc()
	importJobDurationMetric.With(labels).Observe(seconds)
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(importRowsTotalMetric)
	prometheus.MustRegister(importBatchesTotalMetric)
	prometheus.MustRegister(importJobsTotalMetric)
	prometheus.MustRegister(importJobDurationMetric)
}
