package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/gaborage/go-relay/cookie"
	"github.com/gaborage/go-relay/retry"
)

// RequestBuilder accumulates per-request configuration and drives the
// middleware chain on Send. Builders are single-use and not safe for
// concurrent access.
type RequestBuilder struct {
	client       *Client
	method       string
	rawURL       string
	headers      http.Header
	query        url.Values
	body         []byte
	bodyReader   io.Reader
	cookies      cookie.Store
	policy       retry.Policy
	maxRedirects int // -1 inherits the client cap
	middlewares  []Middleware
	ext          *Extensions
	err          error
}

func newRequestBuilder(c *Client, method, rawURL string) *RequestBuilder {
	return &RequestBuilder{
		client:       c,
		method:       method,
		rawURL:       rawURL,
		headers:      make(http.Header),
		cookies:      c.cookies,
		policy:       c.retryPolicy,
		maxRedirects: -1,
		ext:          NewExtensions(),
	}
}

// Header sets a request header.
func (rb *RequestBuilder) Header(key, value string) *RequestBuilder {
	rb.headers.Set(key, value)
	return rb
}

// Headers sets all given request headers.
func (rb *RequestBuilder) Headers(headers map[string]string) *RequestBuilder {
	for key, value := range headers {
		rb.headers.Set(key, value)
	}
	return rb
}

// Query adds a query parameter to the request URL.
func (rb *RequestBuilder) Query(key, value string) *RequestBuilder {
	if rb.query == nil {
		rb.query = make(url.Values)
	}
	rb.query.Add(key, value)
	return rb
}

// Body sets a buffered request body. Buffered bodies are replayable, so
// retry and 307/308 redirects can re-send them.
func (rb *RequestBuilder) Body(body []byte) *RequestBuilder {
	rb.body = body
	rb.bodyReader = nil
	return rb
}

// BodyReader sets a streaming request body. A streaming body cannot be
// replayed: retry degrades to a single attempt and 307/308 redirects are
// followed with an empty body.
func (rb *RequestBuilder) BodyReader(r io.Reader) *RequestBuilder {
	rb.bodyReader = r
	rb.body = nil
	return rb
}

// JSON marshals v as the request body and sets the Content-Type header.
func (rb *RequestBuilder) JSON(v any) *RequestBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		rb.err = err
		return rb
	}
	rb.headers.Set("Content-Type", "application/json")
	return rb.Body(data)
}

// BasicAuth sets the Authorization header to HTTP basic authentication.
func (rb *RequestBuilder) BasicAuth(username, password string) *RequestBuilder {
	auth := username + ":" + password
	rb.headers.Set("Authorization", "Basic "+basicAuthEncode(auth))
	return rb
}

// BearerAuth sets the Authorization header to a bearer token.
func (rb *RequestBuilder) BearerAuth(token string) *RequestBuilder {
	rb.headers.Set("Authorization", "Bearer "+token)
	return rb
}

// CookieStore attaches a cookie store for this request, overriding the
// client's store.
func (rb *RequestBuilder) CookieStore(store cookie.Store) *RequestBuilder {
	rb.cookies = store
	return rb
}

// RetryPolicy sets a custom retry policy for this request.
func (rb *RequestBuilder) RetryPolicy(policy retry.Policy) *RequestBuilder {
	rb.policy = policy
	return rb
}

// RetryTimes enables exponential-backoff retrying up to n times for this
// request. Zero disables retries.
func (rb *RequestBuilder) RetryTimes(n int) *RequestBuilder {
	if n <= 0 {
		rb.policy = nil
		return rb
	}
	rb.policy = retry.Times(n)
	return rb
}

// MaxRedirects overrides the client's redirect cap for this request. Zero
// disables redirect-following.
func (rb *RequestBuilder) MaxRedirects(n int) *RequestBuilder {
	rb.maxRedirects = n
	return rb
}

// Use appends a per-request middleware. Per-request middlewares execute
// after the client's global middlewares.
func (rb *RequestBuilder) Use(m Middleware) *RequestBuilder {
	rb.middlewares = append(rb.middlewares, m)
	return rb
}

// Extension stores a value in the request's extensions bag, where any
// middleware in the chain can read it.
func (rb *RequestBuilder) Extension(key, value any) *RequestBuilder {
	rb.ext.Set(key, value)
	return rb
}

// Send assembles the middleware list and executes the request. The final
// list is: client middlewares, request middlewares, redirect handling (when
// a cap is set), retry handling (when a policy is set), then the transport.
func (rb *RequestBuilder) Send(ctx context.Context) (*http.Response, error) {
	if rb.err != nil {
		return nil, NewRequestBuildError("invalid request", rb.err)
	}

	req, err := rb.buildRequest(ctx)
	if err != nil {
		return nil, err
	}

	middlewares := make([]Middleware, 0, len(rb.client.middlewares)+len(rb.middlewares)+2)
	middlewares = append(middlewares, rb.client.middlewares...)
	middlewares = append(middlewares, rb.middlewares...)

	maxRedirects := rb.maxRedirects
	if maxRedirects < 0 {
		maxRedirects = rb.client.maxRedirects
	}
	if maxRedirects > 0 {
		middlewares = append(middlewares, newAutoRedirect(maxRedirects, rb.client.log))
	}
	if rb.policy != nil {
		middlewares = append(middlewares, newAutoRetry(rb.policy, rb.client.log))
	}

	next := newNext(rb.client.transport, middlewares, rb.cookies, rb.client.log)
	return next.Run(req, rb.ext)
}

// buildRequest constructs the *http.Request with a replayable body when the
// body is buffered.
func (rb *RequestBuilder) buildRequest(ctx context.Context) (*http.Request, error) {
	target := rb.rawURL
	if len(rb.query) > 0 {
		u, err := url.Parse(rb.rawURL)
		if err != nil {
			return nil, NewRequestBuildError("invalid url", err)
		}
		q := u.Query()
		for key, values := range rb.query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
		target = u.String()
	}

	var body io.Reader
	switch {
	case rb.body != nil:
		body = bytes.NewReader(rb.body)
	case rb.bodyReader != nil:
		body = rb.bodyReader
	}

	req, err := http.NewRequestWithContext(ctx, rb.method, target, body)
	if err != nil {
		return nil, NewRequestBuildError("failed to create request", err)
	}
	for key, values := range rb.headers {
		req.Header[key] = values
	}
	return req, nil
}

func basicAuthEncode(auth string) string {
	return base64.StdEncoding.EncodeToString([]byte(auth))
}
