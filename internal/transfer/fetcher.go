package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/averden/mediapull/internal/utils"
)

// RangeFetcher issues single GET requests against a resolved URL, optionally
// constrained to a byte range. It knows nothing about chunking and does not
// retry; transport errors propagate unmodified.
type RangeFetcher struct {
	client utils.HTTPDoer
}

func NewRangeFetcher(client utils.HTTPDoer) *RangeFetcher {
	return &RangeFetcher{client: client}
}

// Open starts a streaming whole-file GET. The caller owns the returned body.
func (f *RangeFetcher) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Connection", "keep-alive")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// FetchRange retrieves the inclusive byte range [start, end] in one request
// and returns the body bytes.
func (f *RangeFetcher) FetchRange(ctx context.Context, url string, start, end int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))
	req.Header.Set("Connection", "keep-alive")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
