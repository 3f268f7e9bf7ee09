package v1alpha1_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	api "github.com/kubev2v/coach-importer/api/v1alpha1"
	"github.com/kubev2v/coach-importer/internal/config"
	handlers "github.com/kubev2v/coach-importer/internal/handlers/v1alpha1"
	"github.com/kubev2v/coach-importer/internal/importer/jobs"
	"github.com/kubev2v/coach-importer/internal/service"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/internal/store/model"
	"github.com/kubev2v/coach-importer/pkg/middleware"
	"github.com/kubev2v/coach-importer/pkg/requestid"
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

func strPtr(s string) *string { return &s }

var _ = Describe("import handler", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		queue  *fakeQueue
		router chi.Router
		ctx = context.TODO()
	)

	do := func(method, target string, body []byte) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

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
		h := handlers.NewImportHandler(service.NewImportService(s, queue), 2)
		router = chi.NewRouter()
		router.Use(middleware.RequestID)
		router.Route("/api/v1", h.Routes)
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM import_jobs;")
	})

	Context("create", func() {
		It("accepts a valid file url", func() {
			body, _ := json.Marshal(api.ImportJobCreate{FileUrl: "s3://staff/d1.xlsx"})
			rec := do(http.MethodPost, "/api/v1/imports", body)
			Expect(rec.Code).To(Equal(http.StatusAccepted))

			var job api.ImportJob
			Expect(json.Unmarshal(rec.Body.Bytes(), &job)).To(Succeed())
			Expect(job.Status).To(Equal(api.ImportJobStatusPending))
			Expect(job.FileUrl).To(Equal("s3://staff/d1.xlsx"))
			Expect(job.Errors).To(BeEmpty())

			Expect(queue.inserted).To(HaveLen(1))
			Expect(queue.inserted[0].ImportJobID).To(Equal(job.Id))
		})

		It("rejects an invalid file url", func() {
			body, _ := json.Marshal(api.ImportJobCreate{FileUrl: "ftp://staff/d1.xlsx"})
			rec := do(http.MethodPost, "/api/v1/imports", body)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			var apiErr api.Error
			Expect(json.Unmarshal(rec.Body.Bytes(), &apiErr)).To(Succeed())
			Expect(apiErr.Message).To(ContainSubstring("FileUrl"))
			Expect(apiErr.RequestId).NotTo(BeNil())
			Expect(*apiErr.RequestId).To(Equal(rec.Header().Get(requestid.HeaderName)))
			Expect(queue.inserted).To(BeEmpty())
		})

		It("rejects a malformed body", func() {
			rec := do(http.MethodPost, "/api/v1/imports", []byte("{"))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns service unavailable when the job cannot be queued", func() {
			queue.err = errors.New("connection refused")
			body, _ := json.Marshal(api.ImportJobCreate{FileUrl: "https://files.example.com/d1.xlsx"})
			rec := do(http.MethodPost, "/api/v1/imports", body)
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

			jobList, err := s.ImportJob().List(ctx, nil, nil)
			Expect(err).To(BeNil())
			Expect(jobList).To(BeEmpty())
		})
	})

	Context("get", func() {
		It("returns the counts and the first errors", func() {
			job, err := s.ImportJob().Create(ctx, model.ImportJob{FileURL: "d1.xlsx"})
			Expect(err).To(BeNil())
			_, err = s.ImportJob().Transition(ctx, job.ID, model.TransitionStart)
			Expect(err).To(BeNil())
			_, err = s.ImportJob().Transition(ctx, job.ID, model.TransitionComplete,
				store.WithCounts(7, 3),
				store.WithCompletedAt(time.Now()),
				store.WithErrorLog([]model.RowError{
					{Row: 2, Error: "missing email", UniqueID: strPtr("u-2")},
					{Row: 5, Error: "missing school"},
					{Row: 9, Error: "invalid division"},
				}))
			Expect(err).To(BeNil())

			rec := do(http.MethodGet, "/api/v1/imports/"+job.ID.String(), nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var got api.ImportJob
			Expect(json.Unmarshal(rec.Body.Bytes(), &got)).To(Succeed())
			Expect(got.Status).To(Equal(api.ImportJobStatusCompleted))
			Expect(got.SuccessCount).To(Equal(7))
			Expect(got.ErrorCount).To(Equal(3))
			Expect(got.Errors).To(HaveLen(2))
			Expect(got.Errors[0].Row).To(Equal(2))
			Expect(*got.Errors[0].UniqueId).To(Equal("u-2"))
			Expect(got.ErrorsTruncated).To(BeTrue())
			Expect(got.CompletedAt).NotTo(BeNil())
		})

		It("returns not found for an unknown job", func() {
			rec := do(http.MethodGet, "/api/v1/imports/"+uuid.NewString(), nil)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("returns bad request for an invalid id", func() {
			rec := do(http.MethodGet, "/api/v1/imports/not-a-uuid", nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("list", func() {
		BeforeEach(func() {
			for _, f := range []string{"a.xlsx", "b.xlsx", "c.xlsx"} {
				_, err := s.ImportJob().Create(ctx, model.ImportJob{FileURL: f})
				Expect(err).To(BeNil())
			}
		})

		It("lists every job", func() {
			rec := do(http.MethodGet, "/api/v1/imports", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var list api.ImportJobList
			Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
			Expect(list).To(HaveLen(3))
		})

		It("filters and pages", func() {
			rec := do(http.MethodGet, "/api/v1/imports?status=pending,processing&limit=2&offset=0", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			var list api.ImportJobList
			Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
			Expect(list).To(HaveLen(2))

			rec = do(http.MethodGet, "/api/v1/imports?status=completed", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
			Expect(list).To(BeEmpty())

			rec = do(http.MethodGet, "/api/v1/imports?fileUrl=b.xlsx", nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
			Expect(list).To(HaveLen(1))
			Expect(list[0].FileUrl).To(Equal("b.xlsx"))
		})

		It("rejects invalid parameters", func() {
			Expect(do(http.MethodGet, "/api/v1/imports?status=done", nil).Code).To(Equal(http.StatusBadRequest))
			Expect(do(http.MethodGet, "/api/v1/imports?limit=abc", nil).Code).To(Equal(http.StatusBadRequest))
			Expect(do(http.MethodGet, "/api/v1/imports?limit=501", nil).Code).To(Equal(http.StatusBadRequest))
			Expect(do(http.MethodGet, "/api/v1/imports?offset=-1", nil).Code).To(Equal(http.StatusBadRequest))
		})
	})
})
