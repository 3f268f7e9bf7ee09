package metrics

import (
	"context"
	"fmt"

	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type importJobCollector struct {
	store        store.Store
	jobsByStatus *prometheus.Desc
}

// NewImportJobCollector reports how many import jobs sit in each status. The
// store is queried on every scrape.
func NewImportJobCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_%s", coachImporter, name)
	}

	return &importJobCollector{
		store: s,
		jobsByStatus: prometheus.NewDesc(
			fqName("import_jobs_by_status"),
			"Number of import jobs in each status.",
			[]string{statusLabel},
			prometheus.Labels{},
		),
	}
}

func (c *importJobCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.jobsByStatus
}

// Collect implements Collector.
func (c *importJobCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.store.ImportJob().CountByStatus(context.Background())
	if err != nil {
		zap.S().Named("import_collector").Errorf("failed to collect import job statistics: %s", err)
		return
	}
	for status, total := range counts {
		ch <- prometheus.MustNewConstMetric(c.jobsByStatus, prometheus.GaugeValue, float64(total), string(status))
	}
}
