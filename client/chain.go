package client

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gaborage/go-relay/cookie"
	"github.com/gaborage/go-relay/logger"
)

// Next drives the middlewares not yet run for one request and performs the
// terminal transport call. It carries a narrowing view of the remaining
// chain: each hop sees only the middlewares after it.
//
// When a cookie store is attached, the Cookie header is resolved before every
// hop and Set-Cookie response headers are recorded after it, so a middleware
// that re-runs the tail of the chain always works with fresh cookie state.
type Next struct {
	transport   http.RoundTripper
	middlewares []Middleware
	cookies     cookie.Store
	log         logger.Logger
}

func newNext(transport http.RoundTripper, middlewares []Middleware, cookies cookie.Store, log logger.Logger) Next {
	if log == nil {
		log = logger.Nop()
	}
	return Next{
		transport:   transport,
		middlewares: middlewares,
		cookies:     cookies,
		log:         log,
	}
}

// Transport returns the raw transport handle, for middlewares that must
// bypass the rest of the chain when re-issuing requests.
func (n Next) Transport() http.RoundTripper {
	return n.transport
}

// Run passes the request to the next middleware in the chain, or performs the
// terminal transport call when no middlewares remain.
func (n Next) Run(req *http.Request, ext *Extensions) (*http.Response, error) {
	if len(n.middlewares) == 0 {
		return n.RunTerminal(req)
	}

	current := n.middlewares[0]
	rest := n
	rest.middlewares = n.middlewares[1:]

	n.setCookieHeader(req)
	resp, err := current.Handle(req, ext, rest)
	if err != nil {
		return nil, err
	}
	n.storeCookies(resp, req.URL)
	return resp, nil
}

// RunTerminal executes the request against the transport directly, skipping
// every remaining middleware permanently.
func (n Next) RunTerminal(req *http.Request) (*http.Response, error) {
	n.setCookieHeader(req)

	resp, err := n.transport.RoundTrip(req)
	if err != nil {
		return nil, NewTransportError("request execution failed", err)
	}
	n.storeCookies(resp, req.URL)
	return resp, nil
}

// setCookieHeader resolves the stored cookies matching the request URL into a
// single Cookie header. Any manually set Cookie header is overwritten when
// the store has matches.
func (n Next) setCookieHeader(req *http.Request) {
	if n.cookies == nil || req.URL == nil {
		return
	}
	values := n.cookies.HeaderValues(req.URL)
	if len(values) == 0 {
		return
	}
	header := strings.Join(values, "; ")
	n.log.Debug().Str("url", req.URL.String()).Msg("setting cookie header")
	req.Header.Set("Cookie", header)
}

// storeCookies records every Set-Cookie header from the response. The origin
// is the response's own request URL when available, since the response may
// come from a redirected location.
func (n Next) storeCookies(resp *http.Response, fallback *url.URL) {
	if n.cookies == nil || resp == nil {
		return
	}
	cookies := resp.Cookies()
	if len(cookies) == 0 {
		return
	}
	origin := fallback
	if resp.Request != nil && resp.Request.URL != nil {
		origin = resp.Request.URL
	}
	if origin == nil {
		return
	}
	n.log.Debug().Int("count", len(cookies)).Str("origin", origin.String()).Msg("storing response cookies")
	n.cookies.SetCookies(cookies, origin)
}
