package download

import (
	"context"
	"io"
	"net/url"
	"os"

	"github.com/pkg/errors"
)

type FileFetcher struct{}

func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

func (f *FileFetcher) Get(ctx context.Context, u *url.URL, dst io.Writer) error {
	path := u.Path
	if path == "" {
		// file:relative/path
		path = u.Opaque
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return errors.Errorf("%s is a directory", path)
	}

	return copyAll(dst, file, info.Size())
}

func (f *FileFetcher) Type() string {
	return "file"
}
