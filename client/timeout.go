package client

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Timeout returns a middleware that bounds the whole logical request,
// redirect follow-ups and retries included, with a deadline. A non-positive
// duration delegates unchanged.
func Timeout(d time.Duration) Middleware {
	return MiddlewareFunc(func(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
		if d <= 0 {
			return next.Run(req, ext)
		}
		ctx, cancel := context.WithTimeout(req.Context(), d)
		resp, err := next.Run(req.WithContext(ctx), ext)
		if err != nil {
			cancel()
			return nil, err
		}
		// The body outlives this middleware; tie the context to its closure.
		resp.Body = &cancelBody{body: resp.Body, cancel: cancel}
		return resp, nil
	})
}

type cancelBody struct {
	body   io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Read(p []byte) (int, error) { return b.body.Read(p) }

func (b *cancelBody) Close() error {
	b.cancel()
	return b.body.Close()
}
