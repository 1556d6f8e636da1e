package client

import (
	"net/http"
	"time"

	"github.com/gaborage/go-relay/logger"
)

// Logging returns a middleware that logs every request and its outcome
// through the structured logger. Sensitive header values (Cookie,
// Authorization and friends) are redacted by the logger itself.
func Logging(log logger.Logger) Middleware {
	return MiddlewareFunc(func(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
		start := time.Now()
		log.Info().
			Str("direction", "outbound").
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Interface("headers", req.Header).
			Msg("client request")

		resp, err := next.Run(req, ext)
		if err != nil {
			log.Error().
				Err(err).
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Dur("elapsed", time.Since(start)).
				Msg("client request failed")
			return nil, err
		}

		log.Info().
			Str("direction", "inbound").
			Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("client response")
		return resp, nil
	})
}
