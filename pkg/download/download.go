package download

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/kubev2v/coach-importer/internal/config"
)

var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// Fetcher copies the object a url points at into dst.
type Fetcher interface {
	Get(ctx context.Context, u *url.URL, dst io.Writer) error
	Type() string
}

// Manager picks the fetcher registered for the scheme of a locator. A locator
// without scheme is a local path.
type Manager struct {
	fetchers map[string]Fetcher
	timeout  time.Duration
}

func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		fetchers: map[string]Fetcher{},
		timeout:  timeout,
	}
}

// NewFromConfig registers the http and file fetchers, and the s3 one when an
// endpoint is configured.
func NewFromConfig(cfg *config.Config) (*Manager, error) {
	m := NewManager(cfg.Import.DownloadTimeout).
		Register(NewHttpFetcher(), "http", "https").
		Register(NewFileFetcher(), "file")

	if cfg.S3.Endpoint == "" {
		return m, nil
	}

	s3, err := NewMinioFetcher(
		WithEndpoint(cfg.S3.Endpoint),
		WithAccessKey(cfg.S3.AccessKey),
		WithSecretKey(cfg.S3.SecretKey),
		WithSSL(cfg.S3.UseSSL),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create s3 client")
	}
	return m.Register(s3, "s3"), nil
}

func (m *Manager) Register(fetcher Fetcher, schemes ...string) *Manager {
	for _, s := range schemes {
		m.fetchers[s] = fetcher
	}
	return m
}

func (m *Manager) Download(ctx context.Context, locator string) ([]byte, error) {
	u, err := parseLocator(locator)
	if err != nil {
		return nil, err
	}

	fetcher, ok := m.fetchers[u.Scheme]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedScheme, "%q", u.Scheme)
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	zap.S().Named("download").Infow("downloading file", "url", u.Redacted(), "fetcher_type", fetcher.Type())

	var buf bytes.Buffer
	if err := fetcher.Get(ctx, u, &buf); err != nil {
		return nil, errors.Wrapf(err, "%s download failed", fetcher.Type())
	}
	return buf.Bytes(), nil
}

func parseLocator(locator string) (*url.URL, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, errors.New("empty file url")
	}

	u, err := url.Parse(locator)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid file url %q", locator)
	}
	if u.Scheme == "" {
		return &url.URL{Scheme: "file", Path: locator}, nil
	}
	u.Scheme = strings.ToLower(u.Scheme)
	return u, nil
}

// counter counts the bytes written through it.
type counter struct {
	written int64
	w       io.Writer
}

func (c *counter) Write(p []byte) (n int, err error) {
	n, err = c.w.Write(p)
	c.written += int64(n)
	return
}

func copyAll(dst io.Writer, src io.Reader, expected int64) error {
	c := &counter{w: dst}
	if _, err := io.Copy(c, src); err != nil {
		return err
	}
	if expected > 0 && c.written != expected {
		return fmt.Errorf("failed to download the entire file. expected bytes %d received %d", expected, c.written)
	}
	return nil
}
