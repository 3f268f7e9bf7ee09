package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/kubev2v/coach-importer/internal/config"
	"github.com/kubev2v/coach-importer/internal/importer"
	"github.com/kubev2v/coach-importer/internal/store"
)

type Client struct {
	*river.Client[pgx.Tx]
	maxAttempts int
}

// NewClient registers the import and batch workers. Batches run on their own
// queue so an import job waiting on its batches never starves them.
func NewClient(pool *pgxpool.Pool, s store.Store, downloader importer.Downloader, cfg *config.Config) (*Client, error) {
	opts := importer.Options{
		BatchSize:     cfg.Import.BatchSize,
		GroupSize:     cfg.Import.GroupSize,
		MaxErrorLog:   cfg.Import.MaxErrorLog,
		SummaryErrors: cfg.Import.SummaryErrors,
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewImportWorker(s, downloader, opts, cfg.Import.PollInterval))
	river.AddWorker(workers, NewBatchWorker(importer.NewBatchProcessor(importer.NewMapper(s), s.ImportJob())))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			ImportQueue: {MaxWorkers: 2},
			BatchQueue:  {MaxWorkers: max(cfg.Import.MaxConcurrentBatches, 1)},
		},
		Workers: workers,

		CancelledJobRetentionPeriod: 24 * time.Hour,
		CompletedJobRetentionPeriod: 24 * time.Hour,
		DiscardedJobRetentionPeriod: 7 * 24 * time.Hour,
	})
	if err != nil {
		return nil, err
	}

	maxAttempts := cfg.Import.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Client{Client: riverClient, maxAttempts: maxAttempts}, nil
}

// InsertImport enqueues the run of an import job and returns the river job id.
func (c *Client) InsertImport(ctx context.Context, args ImportArgs) (int64, error) {
	result, err := c.Insert(ctx, args, &river.InsertOpts{
		Queue:       ImportQueue,
		MaxAttempts: c.maxAttempts,
	})
	if err != nil {
		return 0, err
	}
	return result.Job.ID, nil
}
