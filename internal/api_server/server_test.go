package apiserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	api "github.com/kubev2v/coach-importer/api/v1alpha1"
	apiserver "github.com/kubev2v/coach-importer/internal/api_server"
	"github.com/kubev2v/coach-importer/internal/config"
	"github.com/kubev2v/coach-importer/internal/importer/jobs"
	"github.com/kubev2v/coach-importer/internal/service"
	"github.com/kubev2v/coach-importer/internal/store"
	"github.com/kubev2v/coach-importer/pkg/requestid"
)

type fakeQueue struct{}

func (fakeQueue) InsertImport(context.Context, jobs.ImportArgs) (int64, error) { return 1, nil }

var _ = Describe("router", Ordered, func() {
	var (
		s   store.Store
		reg *prometheus.Registry
		srv *httptest.Server
	)

	BeforeAll(func() {
		cfg := config.NewDefault()
		cfg.Database.Type = "sqlite"
		cfg.Database.Name = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())

		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())
		s = store.NewStore(db)
		Expect(s.InitialMigration()).To(Succeed())

		reg = prometheus.NewRegistry()
		srv = httptest.NewServer(apiserver.NewRouter(service.NewImportService(s, fakeQueue{}), 10, reg))
	})

	AfterAll(func() {
		srv.Close()
		s.Close()
	})

	It("answers the health check", func() {
		resp, err := http.Get(srv.URL + "/health")
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get(requestid.HeaderName)).NotTo(BeEmpty())
	})

	It("serves the import endpoints and records the requests", func() {
		body, _ := json.Marshal(api.ImportJobCreate{FileUrl: "https://files.example.com/d1.xlsx"})
		resp, err := http.Post(srv.URL+"/api/v1/imports", "application/json", bytes.NewReader(body))
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusAccepted))

		var job api.ImportJob
		Expect(json.NewDecoder(resp.Body).Decode(&job)).To(Succeed())

		getResp, err := http.Get(srv.URL + "/api/v1/imports/" + job.Id.String())
		Expect(err).To(BeNil())
		defer getResp.Body.Close()
		Expect(getResp.StatusCode).To(Equal(http.StatusOK))

		count, err := testutil.GatherAndCount(reg, "coach_importer_http_requests_total")
		Expect(err).To(BeNil())
		Expect(count).To(BeNumerically(">=", 2))
	})

	It("propagates the caller's request id", func() {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/imports/"+uuid.NewString(), nil)
		req.Header.Set(requestid.HeaderName, "req-42")
		resp, err := http.DefaultClient.Do(req)
		Expect(err).To(BeNil())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		Expect(resp.Header.Get(requestid.HeaderName)).To(Equal("req-42"))

		var apiErr api.Error
		Expect(json.NewDecoder(resp.Body).Decode(&apiErr)).To(Succeed())
		Expect(*apiErr.RequestId).To(Equal("req-42"))
	})
})
