package utils

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// rateLimitedReadCloser throttles reads from an HTTP response body so a
// transfer cannot exceed the configured bytes/sec cap.
type rateLimitedReadCloser struct {
	ctx     context.Context
	rc      io.ReadCloser
	limiter *rate.Limiter
}

func NewRateLimitedReadCloser(ctx context.Context, rc io.ReadCloser, limiter *rate.Limiter) io.ReadCloser {
	return &rateLimitedReadCloser{ctx: ctx, rc: rc, limiter: limiter}
}

func (r *rateLimitedReadCloser) Read(p []byte) (int, error) {
	// Never ask the limiter for more than its burst in one go.
	if burst := r.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	n, err := r.rc.Read(p)
	if n > 0 {
		if werr := r.limiter.WaitN(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (r *rateLimitedReadCloser) Close() error {
	return r.rc.Close()
}
