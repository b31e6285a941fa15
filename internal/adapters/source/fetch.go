package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	perr "zayavki/internal/platform/errors"
)

// Fetcher opens the raw payload at a location
type Fetcher interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// FileFetcher reads from the local filesystem
type FileFetcher struct{}

// Open implements Fetcher
func (FileFetcher) Open(_ context.Context, location string) (io.ReadCloser, error) {
	f, err := os.Open(strings.TrimPrefix(location, "file://"))
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSource, "open dataset file")
	}
	return f, nil
}

// HTTPFetcher downloads over http(s)
type HTTPFetcher struct {
	Client *http.Client
}

// NewHTTPFetcherWithTimeout creates an HTTPFetcher with a client timeout
func NewHTTPFetcherWithTimeout(d time.Duration) *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{Timeout: d}}
}

// Open implements Fetcher
func (f *HTTPFetcher) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSource, "build dataset request")
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeSource, "fetch dataset")
	}
	if resp.StatusCode != http.StatusOK {
		if cerr := resp.Body.Close(); cerr != nil {
			return nil, perr.Sourcef("dataset: unexpected status %d for %s; error closing body: %v", resp.StatusCode, location, cerr)
		}
		return nil, perr.Sourcef("dataset: unexpected status %d for %s", resp.StatusCode, location)
	}
	return resp.Body, nil
}

// AutoFetcher routes http(s) locations to HTTP and everything else to the filesystem
type AutoFetcher struct {
	File FileFetcher
	HTTP *HTTPFetcher
}

// Open implements Fetcher
func (a AutoFetcher) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if isURL(location) {
		h := a.HTTP
		if h == nil {
			h = &HTTPFetcher{}
		}
		return h.Open(ctx, location)
	}
	return a.File.Open(ctx, location)
}

func isURL(loc string) bool {
	l := strings.ToLower(loc)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// String is used in logs
func (a AutoFetcher) String() string { return fmt.Sprintf("auto(http=%v)", a.HTTP != nil) }
