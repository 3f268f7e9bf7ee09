package service_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/riverqueue/river/rivertype"
	"gorm.io/gorm"

	"github.com/kubev2v/coach-importer/internal/config"
	"github.com/kubev2v/coach-importer/internal/importer/jobs"
	"github.com/kubev2v/coach-importer/internal/service"
	"github.com/kubev2v/coach-importer/internal/service/mappers"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
)

const (
	createRiverJobTableStm = "CREATE TABLE IF NOT EXISTS river_job (id INTEGER PRIMARY KEY, kind TEXT, state TEXT, attempt INTEGER, args TEXT);"
	insertRiverJobStm      = "INSERT INTO river_job (id, kind, state, attempt, args) VALUES (%d, '%s', '%s', %d, '{\"importJobId\":\"%s\"}');"
)

type fakeQueue struct {
	inserted []jobs.ImportArgs
	err      error
}

func (f *fakeQueue) InsertImport(_ context.Context, args jobs.ImportArgs) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = append(f.inserted, args)
	return int64(len(f.inserted)), nil
}

var _ = Describe("import service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		queue  *fakeQueue
		srv    *service.ImportService
		ctx = context.TODO()
	)

	BeforeAll(func() {
		cfg := config.NewDefault()
		cfg.Database.Type = "sqlite"
		cfg.Database.Name = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())
		s = store.NewStore(db)
		gormdb = db
		Expect(s.InitialMigration()).To(Succeed())
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		queue = &fakeQueue{}
		srv = service.NewImportService(s, queue)
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM import_jobs;")
		gormdb.Exec("DROP TABLE IF EXISTS river_job;")
	})

	Context("create", func() {
		It("creates a pending job and enqueues it", func() {
			job, err := srv.CreateImport(ctx, "s3://staff/d1.xlsx")
			Expect(err).To(BeNil())
			Expect(job.Status).To(Equal(model.ImportJobStatusPending))

			Expect(queue.inserted).To(HaveLen(1))
			Expect(queue.inserted[0].ImportJobID).To(Equal(job.ID))
			Expect(queue.inserted[0].FileURL).To(Equal("s3://staff/d1.xlsx"))
		})

		It("removes the job when it cannot be enqueued", func() {
			queue.err = errors.New("connection refused")

			_, err := srv.CreateImport(ctx, "s3://staff/d1.xlsx")
			Expect(err).NotTo(BeNil())
			var notQueued *service.ErrImportNotQueued
			Expect(errors.As(err, &notQueued)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("connection refused"))

			jobList, err := s.ImportJob().List(ctx, nil, nil)
			Expect(err).To(BeNil())
			Expect(jobList).To(BeEmpty())
		})
	})

	Context("get", func() {
		It("returns a not found error", func() {
			_, err := srv.GetImport(ctx, uuid.New())
			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})

		It("returns the job without queue information when there is none", func() {
			job, err := srv.CreateImport(ctx, "https://files.example.com/d1.xlsx")
			Expect(err).To(BeNil())

			details, err := srv.GetImport(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(details.Job.ID).To(Equal(job.ID))
			Expect(details.Queue).To(BeNil())
		})

		It("reports the latest queue job", func() {
			job, err := srv.CreateImport(ctx, "https://files.example.com/d1.xlsx")
			Expect(err).To(BeNil())

			Expect(gormdb.Exec(createRiverJobTableStm).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertRiverJobStm, 1, jobs.ImportJobKind, "discarded", 3, uuid.NewString())).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertRiverJobStm, 2, jobs.ImportJobKind, "retryable", 1, job.ID)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertRiverJobStm, 3, jobs.ImportJobKind, "running", 2, job.ID)).Error).To(BeNil())
			Expect(gormdb.Exec(fmt.Sprintf(insertRiverJobStm, 4, jobs.BatchJobKind, "completed", 1, job.ID)).Error).To(BeNil())

			details, err := srv.GetImport(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(details.Queue).NotTo(BeNil())
			Expect(details.Queue.ID).To(Equal(int64(3)))
			Expect(details.Queue.State).To(Equal(rivertype.JobStateRunning))
			Expect(details.Queue.Attempt).To(Equal(2))

			apiJob := mappers.ImportJobWithQueueToApi(details.Job, details.Queue, 10)
			Expect(apiJob.Queue.State).To(Equal("running"))
		})
	})

	Context("list", func() {
		It("filters by status and pages", func() {
			a, err := srv.CreateImport(ctx, "a.xlsx")
			Expect(err).To(BeNil())
			_, err = srv.CreateImport(ctx, "b.xlsx")
			Expect(err).To(BeNil())
			_, err = srv.CreateImport(ctx, "c.xlsx")
			Expect(err).To(BeNil())
			_, err = s.ImportJob().Transition(ctx, a.ID, model.TransitionStart)
			Expect(err).To(BeNil())

			jobList, err := srv.ListImports(ctx, service.NewImportFilter(service.WithStatus(model.ImportJobStatusProcessing)))
			Expect(err).To(BeNil())
			Expect(jobList).To(HaveLen(1))
			Expect(jobList[0].ID).To(Equal(a.ID))

			jobList, err = srv.ListImports(ctx, service.NewImportFilter(service.WithStatus(model.ImportJobStatusPending), service.WithPage(1, 1)))
			Expect(err).To(BeNil())
			Expect(jobList).To(HaveLen(1))

			jobList, err = srv.ListImports(ctx, service.NewImportFilter(service.WithFileURL("c.xlsx")))
			Expect(err).To(BeNil())
			Expect(jobList).To(HaveLen(1))

			jobList, err = srv.ListImports(ctx, nil)
			Expect(err).To(BeNil())
			Expect(jobList).To(HaveLen(3))
		})

		It("refuses a negative page", func() {
			_, err := srv.ListImports(ctx, service.NewImportFilter(service.WithPage(-1, 0)))
			var invalid *service.ErrInvalidFilter
			Expect(errors.As(err, &invalid)).To(BeTrue())
		})
	})
})
