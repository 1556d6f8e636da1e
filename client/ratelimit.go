package client

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimit returns a middleware that blocks until the limiter grants a slot
// before delegating. Context cancellation while waiting aborts the request.
func RateLimit(limiter *rate.Limiter) Middleware {
	return MiddlewareFunc(func(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
		if err := limiter.Wait(req.Context()); err != nil {
			return nil, NewInternalError(err)
		}
		return next.Run(req, ext)
	})
}
