package client

import (
	"net/http"

	"github.com/gaborage/go-relay/trace"
)

// RequestID returns a middleware that stamps the X-Request-ID header on every
// outbound request, taking the ID from the request context when present and
// generating a fresh one otherwise. An ID already set on the request wins.
func RequestID() Middleware {
	return RequestIDWithHeader(trace.HeaderXRequestID)
}

// RequestIDWithHeader is RequestID with a custom header name.
func RequestIDWithHeader(header string) Middleware {
	if header == "" {
		header = trace.HeaderXRequestID
	}
	return MiddlewareFunc(func(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
		if req.Header.Get(header) == "" {
			req.Header.Set(header, trace.EnsureID(req.Context()))
		}
		return next.Run(req, ext)
	})
}
