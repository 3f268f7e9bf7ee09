package importer_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/kubev2v/coach-importer/internal/importer"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
)

type fakeDownloader struct {
	content []byte
	err     error
	urls    []string
}

func (f *fakeDownloader) Download(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.content, f.err
}

type failingScheduler struct {
	err error
}

func (f failingScheduler) RunGroup(_ context.Context, _ uuid.UUID, _ []importer.Batch) ([]importer.BatchOutcome, error) {
	return nil, f.err
}

var _ = Describe("Orchestrator", Ordered, func() {
	var (
		s          store.Store
		gormdb     *gorm.DB
		downloader *fakeDownloader
		ctx = context.TODO()
	)

	const fileURL = "https://files.example.com/staff.xlsx"

	BeforeAll(func() {
		s, gormdb = newTestStore()
	})

	AfterAll(func() {
		s.Close()
	})

	BeforeEach(func() {
		downloader = &fakeDownloader{}
	})

	AfterEach(func() {
		cleanTables(gormdb)
	})

	newJob := func() *model.ImportJob {
		job, err := s.ImportJob().Create(ctx, model.ImportJob{FileURL: fileURL})
		Expect(err).To(BeNil())
		return job
	}

	newOrchestrator := func(opts importer.Options) *importer.Orchestrator {
		scheduler := importer.NewLocalScheduler(importer.NewBatchProcessor(importer.NewMapper(s), s.ImportJob()), 4)
		return importer.NewOrchestrator(s.ImportJob(), downloader, scheduler, opts)
	}

	Context("complete run", func() {
		It("imports the last occurrence of every unique id", func() {
			downloader.content = buildWorkbook(map[string][][]string{
				"D1": {
					{"u-1", "", "Alpha University", "OH", "Women's Track & Field", "Ann", "Lee", "Assistant Coach", "ann@alpha.edu", "Sprints"},
					{"u-2", "", "Beta College", "IN", "Men's Track & Field", "Bob", "Ray", "Assistant Coach", "bob@beta.edu", "Distance"},
				},
				"Readme": {
					{"not", "a", "data", "sheet"},
				},
				"D2": {
					{"u-1", "", "Alpha University", "OH", "Women's Track & Field", "Ann", "Lee", "Head Coach", "ann@alpha.edu", "Sprints"},
				},
			}, "D1", "Readme", "D2")
			job := newJob()

			summary, err := newOrchestrator(importer.Options{}).Run(ctx, job.ID, fileURL)
			Expect(err).To(BeNil())
			Expect(downloader.urls).To(Equal([]string{fileURL}))

			Expect(summary.Success).To(BeTrue())
			Expect(summary.Status).To(Equal(model.ImportJobStatusCompleted))
			Expect(summary.Processed).To(Equal(2))
			Expect(summary.SuccessCount).To(Equal(2))
			Expect(summary.ErrorCount).To(BeZero())
			Expect(summary.Errors).To(BeEmpty())

			stored, err := s.ImportJob().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(model.ImportJobStatusCompleted))
			Expect(*stored.TotalRows).To(Equal(2))
			Expect(stored.SuccessCount).To(Equal(2))
			Expect(stored.ErrorCount).To(BeZero())
			Expect(stored.StartedAt).NotTo(BeNil())
			Expect(stored.CompletedAt).NotTo(BeNil())
			Expect(stored.Errors()).To(BeEmpty())

			Expect(count(gormdb, "SELECT COUNT(*) FROM coaches")).To(Equal(2))
			Expect(count(gormdb, "SELECT COUNT(*) FROM university_jobs WHERE title = 'Head Coach'")).To(Equal(1))
			Expect(count(gormdb, "SELECT COUNT(*) FROM university_jobs WHERE title = 'Assistant Coach'")).To(Equal(1))
		})

		It("logs failing rows with their position", func() {
			downloader.content = buildWorkbook(map[string][][]string{
				"D1": {
					{"u-1", "", "Alpha University", "OH", "Women's Track & Field", "Ann", "Lee", "Assistant Coach", "ann@alpha.edu", ""},
					{"u-2", "", "Beta College", "IN", "Women's Track & Field", "Bob", "Ray", "Assistant Coach", "", ""},
					{"u-3", "", "Gamma State", "MI", "Women's Track & Field", "Cal", "Poe", "Assistant Coach", "cal@gamma.edu", ""},
				},
			}, "D1")
			job := newJob()

			summary, err := newOrchestrator(importer.Options{BatchSize: 1, GroupSize: 2}).Run(ctx, job.ID, fileURL)
			Expect(err).To(BeNil())
			Expect(summary.Status).To(Equal(model.ImportJobStatusCompleted))
			Expect(summary.SuccessCount).To(Equal(2))
			Expect(summary.ErrorCount).To(Equal(1))
			Expect(summary.Errors).To(HaveLen(1))
			Expect(summary.Errors[0].Row).To(Equal(2))
			Expect(summary.Errors[0].Error).To(Equal("missing email"))
			Expect(*summary.Errors[0].UniqueID).To(Equal("u-2"))
			Expect(*summary.Errors[0].CoachName).To(Equal("Bob Ray"))

			stored, err := s.ImportJob().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(stored.SuccessCount).To(Equal(2))
			Expect(stored.ErrorCount).To(Equal(1))
			Expect(stored.Errors()).To(HaveLen(1))
		})

		It("caps the error log and the summary", func() {
			sheet := [][]string{}
			for _, id := range []string{"u-1", "u-2", "u-3", "u-4"} {
				sheet = append(sheet, []string{id, "", "Alpha University", "OH", "Women's Track & Field", "Ann", id, "Assistant Coach", "", ""})
			}
			sheet = append(sheet, []string{"u-5", "", "Alpha University", "OH", "Women's Track & Field", "Ann", "Lee", "Assistant Coach", "ann@alpha.edu", ""})
			downloader.content = buildWorkbook(map[string][][]string{"D1": sheet}, "D1")
			job := newJob()

			summary, err := newOrchestrator(importer.Options{MaxErrorLog: 3, SummaryErrors: 2}).Run(ctx, job.ID, fileURL)
			Expect(err).To(BeNil())
			Expect(summary.ErrorCount).To(Equal(4))
			Expect(summary.Errors).To(HaveLen(2))

			stored, err := s.ImportJob().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(stored.ErrorCount).To(Equal(4))
			Expect(stored.Errors()).To(HaveLen(3))
		})
	})

	Context("no row imported", func() {
		It("marks the job failed when every row fails", func() {
			downloader.content = buildWorkbook(map[string][][]string{
				"D1": {
					{"u-1", "", "Alpha University", "OH", "Women's Track & Field", "Ann", "Lee", "Assistant Coach", "not-an-email", ""},
				},
			}, "D1")
			job := newJob()

			summary, err := newOrchestrator(importer.Options{}).Run(ctx, job.ID, fileURL)
			Expect(err).To(BeNil())
			Expect(summary.Success).To(BeTrue())
			Expect(summary.Status).To(Equal(model.ImportJobStatusFailed))
			Expect(summary.ErrorCount).To(Equal(1))

			stored, err := s.ImportJob().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(model.ImportJobStatusFailed))
		})

		It("counts the rows of a batch that could not run as errors", func() {
			downloader.content = buildWorkbook(map[string][][]string{
				"D1": {
					{"u-1", "", "Alpha University", "OH", "Women's Track & Field", "Ann", "Lee", "Assistant Coach", "ann@alpha.edu", ""},
					{"u-2", "", "Beta College", "IN", "Women's Track & Field", "Bob", "Ray", "Assistant Coach", "bob@beta.edu", ""},
					{"u-3", "", "Gamma State", "MI", "Women's Track & Field", "Cal", "Poe", "Assistant Coach", "cal@gamma.edu", ""},
				},
			}, "D1")
			job := newJob()

			o := importer.NewOrchestrator(s.ImportJob(), downloader, failingScheduler{err: errors.New("queue unavailable")}, importer.Options{BatchSize: 2})
			summary, err := o.Run(ctx, job.ID, fileURL)
			Expect(err).To(BeNil())
			Expect(summary.Status).To(Equal(model.ImportJobStatusFailed))
			Expect(summary.SuccessCount).To(BeZero())
			Expect(summary.ErrorCount).To(Equal(3))
			Expect(summary.Errors).To(HaveLen(2))
			Expect(summary.Errors[0].Row).To(Equal(1))
			Expect(summary.Errors[1].Row).To(Equal(3))
			Expect(summary.Errors[1].Error).To(ContainSubstring("queue unavailable"))
		})
	})

	Context("fatal errors", func() {
		It("fails the job when the file cannot be downloaded", func() {
			downloader.err = errors.New("404 not found")
			job := newJob()

			summary, err := newOrchestrator(importer.Options{}).Run(ctx, job.ID, fileURL)
			Expect(err).To(MatchError(ContainSubstring("404 not found")))
			Expect(summary).To(BeNil())

			stored, err := s.ImportJob().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(model.ImportJobStatusFailed))
			Expect(stored.CompletedAt).NotTo(BeNil())
			Expect(stored.Errors()).To(HaveLen(1))
			Expect(stored.Errors()[0].Row).To(BeZero())
			Expect(stored.Errors()[0].Error).To(ContainSubstring("404 not found"))
		})

		It("fails the job when the file is not a workbook", func() {
			downloader.content = []byte("name,email\nann,ann@alpha.edu\n")
			job := newJob()

			_, err := newOrchestrator(importer.Options{}).Run(ctx, job.ID, fileURL)
			Expect(err).NotTo(BeNil())

			stored, err := s.ImportJob().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(stored.Status).To(Equal(model.ImportJobStatusFailed))
		})

		It("refuses to start a job twice", func() {
			downloader.content = buildWorkbook(map[string][][]string{"D1": {}}, "D1")
			job := newJob()
			_, err := s.ImportJob().Transition(ctx, job.ID, model.TransitionStart)
			Expect(err).To(BeNil())

			_, err = newOrchestrator(importer.Options{}).Run(ctx, job.ID, fileURL)
			Expect(err).To(MatchError(store.ErrInvalidTransition))
			Expect(downloader.urls).To(BeEmpty())
		})
	})

	Context("restart", func() {
		It("resets the counters of a failed attempt", func() {
			downloader.content = buildWorkbook(map[string][][]string{
				"D1": {
					{"u-1", "", "Alpha University", "OH", "Women's Track & Field", "Ann", "Lee", "Assistant Coach", "ann@alpha.edu", ""},
				},
			}, "D1")
			job := newJob()
			_, err := s.ImportJob().Transition(ctx, job.ID, model.TransitionStart)
			Expect(err).To(BeNil())
			Expect(s.ImportJob().IncrementCounters(ctx, job.ID, 7, 3)).To(Succeed())
			_, err = s.ImportJob().Transition(ctx, job.ID, model.TransitionFail)
			Expect(err).To(BeNil())

			summary, err := newOrchestrator(importer.Options{}).Run(ctx, job.ID, fileURL, importer.AsRestart())
			Expect(err).To(BeNil())
			Expect(summary.Status).To(Equal(model.ImportJobStatusCompleted))

			stored, err := s.ImportJob().Get(ctx, job.ID)
			Expect(err).To(BeNil())
			Expect(stored.SuccessCount).To(Equal(1))
			Expect(stored.ErrorCount).To(BeZero())
		})
	})
})
