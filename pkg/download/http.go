package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type HttpFetcher struct {
	client *http.Client
}

func NewHttpFetcher() *HttpFetcher {
	return &HttpFetcher{client: http.DefaultClient}
}

func (h *HttpFetcher) Get(ctx context.Context, u *url.URL, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download %q, status code: %d", u.Redacted(), resp.StatusCode)
	}

	return copyAll(dst, resp.Body, resp.ContentLength)
}

func (h *HttpFetcher) Type() string {
	return "http"
}
