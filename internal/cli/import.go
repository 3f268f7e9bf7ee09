package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/kubev2v/coach-importer/internal/importer"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
	"github.com/kubev2v/coach-importer/pkg/download"
)

const (
	jsonFormat  = "json"
	yamlFormat  = "yaml"
	tableFormat = "table"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat, tableFormat}
)

// ImportOptions runs one import in the current process, without the job
// queue. Batches run on local goroutines.
type ImportOptions struct {
	GlobalOptions

	Output        string
	BatchSize     int
	GroupSize     int
	MaxConcurrent int
}

func DefaultImportOptions() *ImportOptions {
	return &ImportOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        tableFormat,
	}
}

func NewCmdImport() *cobra.Command {
	o := DefaultImportOptions()
	cmd := &cobra.Command{
		Use:   "import FILE_URL",
		Short: "Import a coach workbook and print the summary.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *ImportOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
	fs.IntVar(&o.BatchSize, "batch-size", o.BatchSize, "Rows per batch. Overrides COACH_IMPORTER_BATCH_SIZE.")
	fs.IntVar(&o.GroupSize, "group-size", o.GroupSize, "Batches per group. Overrides COACH_IMPORTER_GROUP_SIZE.")
	fs.IntVar(&o.MaxConcurrent, "max-concurrent", o.MaxConcurrent, "Batches running at once. Overrides COACH_IMPORTER_MAX_CONCURRENT_BATCHES.")
}

func (o *ImportOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}

	cfg := o.Config()
	if o.BatchSize > 0 {
		cfg.Import.BatchSize = o.BatchSize
	}
	if o.GroupSize > 0 {
		cfg.Import.GroupSize = o.GroupSize
	}
	if o.MaxConcurrent > 0 {
		cfg.Import.MaxConcurrentBatches = o.MaxConcurrent
	}
	return nil
}

func (o *ImportOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}

	if strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("file url must not be empty")
	}

	if !funk.ContainsString(legalOutputTypes, o.Output) {
		return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
	}

	if o.BatchSize < 0 || o.GroupSize < 0 || o.MaxConcurrent < 0 {
		return fmt.Errorf("batch size, group size and max concurrent must not be negative")
	}

	return nil
}

func (o *ImportOptions) Run(ctx context.Context, args []string) error {
	cfg := o.Config()

	db, err := store.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("initializing data store: %w", err)
	}
	s := store.NewStore(db)
	defer s.Close()

	// sqlite databases are not covered by the sql migrations
	if cfg.Database.Type != "pgsql" {
		if err := s.InitialMigration(); err != nil {
			return fmt.Errorf("running initial migration: %w", err)
		}
		if err := s.Seed(); err != nil {
			return fmt.Errorf("seeding reference data: %w", err)
		}
	}

	downloader, err := download.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating downloader: %w", err)
	}

	job, err := s.ImportJob().Create(ctx, model.ImportJob{FileURL: args[0]})
	if err != nil {
		return fmt.Errorf("creating import job: %w", err)
	}
	zap.S().Named("cli").Infow("import job created", "job_id", job.ID, "file_url", job.FileURL)

	scheduler := importer.NewLocalScheduler(
		importer.NewBatchProcessor(importer.NewMapper(s), s.ImportJob()),
		cfg.Import.MaxConcurrentBatches,
	)
	orchestrator := importer.NewOrchestrator(s.ImportJob(), downloader, scheduler, importer.Options{
		BatchSize:     cfg.Import.BatchSize,
		GroupSize:     cfg.Import.GroupSize,
		MaxErrorLog:   cfg.Import.MaxErrorLog,
		SummaryErrors: cfg.Import.SummaryErrors,
	})

	summary, err := orchestrator.Run(ctx, job.ID, job.FileURL)
	if err != nil {
		return fmt.Errorf("import job %s failed: %w", job.ID, err)
	}

	return printSummary(cmdOutput, job.ID.String(), summary, o.Output)
}
