package download_test

import (
	"context"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubev2v/coach-importer/internal/config"
	"github.com/kubev2v/coach-importer/pkg/download"
)

func testData() []byte {
	data := make([]byte, 100)
	_, err := rand.Read(data)
	Expect(err).To(BeNil())
	return data
}

var _ = Describe("download manager", func() {
	var manager *download.Manager

	BeforeEach(func() {
		manager = download.NewManager(time.Second).
			Register(download.NewHttpFetcher(), "http", "https").
			Register(download.NewFileFetcher(), "file")
	})

	Context("http", func() {
		It("downloads ok", func() {
			data := testData()
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/staff.xlsx"))
				_, _ = w.Write(data)
			}))
			defer ts.Close()

			content, err := manager.Download(context.TODO(), ts.URL+"/staff.xlsx")
			Expect(err).To(BeNil())
			Expect(content).To(Equal(data))
		})

		It("fails on a non 200 status", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer ts.Close()

			_, err := manager.Download(context.TODO(), ts.URL+"/missing.xlsx")
			Expect(err).To(MatchError(ContainSubstring("status code: 404")))
		})

		It("fails when the body is shorter than announced", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Length", strconv.Itoa(200))
				_, _ = w.Write(testData())
			}))
			defer ts.Close()

			_, err := manager.Download(context.TODO(), ts.URL)
			Expect(err).ToNot(BeNil())
		})

		It("gives up after the timeout", func() {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}))
			defer ts.Close()

			_, err := download.NewManager(50*time.Millisecond).
				Register(download.NewHttpFetcher(), "http").
				Download(context.TODO(), ts.URL)
			Expect(err).To(MatchError(ContainSubstring("context deadline exceeded")))
		})
	})

	Context("file", func() {
		var path string
		var data []byte

		BeforeEach(func() {
			data = testData()
			path = filepath.Join(GinkgoT().TempDir(), "staff.xlsx")
			Expect(os.WriteFile(path, data, 0o600)).To(Succeed())
		})

		It("reads a plain path", func() {
			content, err := manager.Download(context.TODO(), path)
			Expect(err).To(BeNil())
			Expect(content).To(Equal(data))
		})

		It("reads a file url", func() {
			content, err := manager.Download(context.TODO(), (&url.URL{Scheme: "file", Path: path}).String())
			Expect(err).To(BeNil())
			Expect(content).To(Equal(data))
		})

		It("fails on a missing file", func() {
			_, err := manager.Download(context.TODO(), path+".missing")
			Expect(err).To(MatchError(ContainSubstring("failed to open file")))
		})

		It("refuses a directory", func() {
			_, err := manager.Download(context.TODO(), filepath.Dir(path))
			Expect(err).To(MatchError(ContainSubstring("is a directory")))
		})
	})

	Context("locators", func() {
		It("refuses an unknown scheme", func() {
			_, err := manager.Download(context.TODO(), "ftp://files.example.com/staff.xlsx")
			Expect(err).To(MatchError(download.ErrUnsupportedScheme))
		})

		It("refuses an empty locator", func() {
			_, err := manager.Download(context.TODO(), "  ")
			Expect(err).To(MatchError(ContainSubstring("empty file url")))
		})

		It("does not serve s3 without an endpoint", func() {
			m, err := download.NewFromConfig(config.NewDefault())
			Expect(err).To(BeNil())

			_, err = m.Download(context.TODO(), "s3://staff/2024/d1.xlsx")
			Expect(err).To(MatchError(download.ErrUnsupportedScheme))
		})
	})

	Context("minio", func() {
		It("requires a bucket and a key", func() {
			fetcher, err := download.NewMinioFetcher(download.WithEndpoint("localhost:9000"), download.WithSSL(false))
			Expect(err).To(BeNil())
			Expect(fetcher.Type()).To(Equal("minio"))

			u, err := url.Parse("s3://staff")
			Expect(err).To(BeNil())
			err = fetcher.Get(context.TODO(), u, nil)
			Expect(err).To(MatchError(ContainSubstring("must be s3://bucket/key")))
		})

		It("is registered for s3 when an endpoint is configured", func() {
			cfg := config.NewDefault()
			cfg.S3.Endpoint = "localhost:9000"
			cfg.S3.UseSSL = false

			_, err := download.NewFromConfig(cfg)
			Expect(err).To(BeNil())
		})
	})
})
