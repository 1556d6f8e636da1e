package client

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gaborage/go-relay/logger"
)

// maxDrainBytes bounds how much of an intermediate redirect body is read
// before the connection is released for reuse.
const maxDrainBytes = 4 << 10

// autoRedirect follows redirection-class (3xx) responses up to a configured
// cap. Redirected requests are issued directly against the transport; they do
// not re-enter earlier middlewares.
type autoRedirect struct {
	max int
	log logger.Logger
}

func newAutoRedirect(max int, log logger.Logger) *autoRedirect {
	if log == nil {
		log = logger.Nop()
	}
	return &autoRedirect{max: max, log: log}
}

func isRedirect(status int) bool {
	return status >= 300 && status < 400
}

func (m *autoRedirect) Handle(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
	// Capture the origin request before delegating; the body must be
	// replayable for 307/308 follow-ups.
	originMethod := req.Method
	originHeaders := req.Header.Clone()
	originURL := req.URL
	originLength := req.ContentLength
	getBody := req.GetBody
	ctx := req.Context()
	transport := next.Transport()

	resp, err := next.Run(req, ext)
	if err != nil {
		return nil, err
	}

	redirects := 0
	current := originURL
	for isRedirect(resp.StatusCode) {
		if redirects >= m.max {
			return nil, NewTooManyRedirectsError(current.String(), redirects)
		}

		location := resp.Header.Get("Location")
		if location == "" {
			return nil, NewRedirectMissingError(resp.StatusCode)
		}
		target, perr := url.Parse(location)
		if perr != nil {
			return nil, NewRedirectInvalidError(location)
		}
		if target.Host == "" {
			// Relative target: resolve against the origin's scheme and
			// authority.
			target = originURL.ResolveReference(target)
		}

		// 307 and 308 preserve the origin method and body; every other 3xx
		// downgrades to GET with an empty body.
		method := http.MethodGet
		var body io.Reader
		preserve := resp.StatusCode == http.StatusTemporaryRedirect || resp.StatusCode == http.StatusPermanentRedirect
		if preserve {
			method = originMethod
			if getBody != nil {
				rc, berr := getBody()
				if berr != nil {
					return nil, NewInternalError(berr)
				}
				body = rc
			}
		}

		drainBody(resp)

		redirected, rerr := http.NewRequestWithContext(ctx, method, target.String(), body)
		if rerr != nil {
			return nil, NewRequestBuildError("failed to build redirect request", rerr)
		}
		redirected.Header = originHeaders.Clone()
		if preserve && getBody != nil {
			redirected.GetBody = getBody
			redirected.ContentLength = originLength
		}

		m.log.Debug().
			Int("status", resp.StatusCode).
			Str("method", method).
			Str("url", target.String()).
			Int("redirects", redirects).
			Msg("following redirect")

		resp, err = transport.RoundTrip(redirected)
		if err != nil {
			return nil, NewTransportError("redirect execution failed", err)
		}
		redirects++
		current = target
	}

	return resp, nil
}

// drainBody releases an intermediate response body so the underlying
// connection can be reused.
func drainBody(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
}
