package client

import (
	"net/http"

	"github.com/gaborage/go-relay/cookie"
	"github.com/gaborage/go-relay/logger"
	"github.com/gaborage/go-relay/retry"
)

// DefaultMaxRedirects is the redirect cap applied when none is configured.
const DefaultMaxRedirects = 0

// Client assembles the middleware pipeline for every request it issues. Its
// configuration is immutable after construction; a Client is safe for
// concurrent use by any number of goroutines. The only shared mutable state
// is the attached cookie store, which synchronizes internally.
type Client struct {
	transport    http.RoundTripper
	log          logger.Logger
	middlewares  []Middleware
	maxRedirects int
	retryPolicy  retry.Policy
	cookies      cookie.Store
}

// NewClient creates a Client around the given transport with defaults: no
// redirects followed, no retries, no cookie store. A nil transport selects
// http.DefaultTransport.
//
// When redirect-following is enabled the transport must not follow redirects
// on its own (pass a bare Transport, not an http.Client).
func NewClient(transport http.RoundTripper) *Client {
	return NewBuilder(transport).Build()
}

// Builder provides a fluent interface for configuring a Client.
type Builder struct {
	transport    http.RoundTripper
	log          logger.Logger
	middlewares  []Middleware
	maxRedirects int
	retryPolicy  retry.Policy
	cookies      cookie.Store
}

// NewBuilder creates a Client builder around the given transport.
func NewBuilder(transport http.RoundTripper) *Builder {
	return &Builder{
		transport:    transport,
		maxRedirects: DefaultMaxRedirects,
	}
}

// WithLogger sets the structured logger used by the client and the built-in
// middlewares.
func (b *Builder) WithLogger(log logger.Logger) *Builder {
	b.log = log
	return b
}

// WithMaxRedirects sets the global redirect cap passed to every request.
// Individual requests may override it.
func (b *Builder) WithMaxRedirects(n int) *Builder {
	b.maxRedirects = n
	return b
}

// WithRetryPolicy sets the global retry policy applied to every request.
func (b *Builder) WithRetryPolicy(policy retry.Policy) *Builder {
	b.retryPolicy = policy
	return b
}

// WithRetryTimes sets a global exponential-backoff policy allowing n retries.
// Zero disables retries.
func (b *Builder) WithRetryTimes(n int) *Builder {
	if n <= 0 {
		b.retryPolicy = nil
		return b
	}
	b.retryPolicy = retry.Times(n)
	return b
}

// WithCookieStore attaches a cookie store shared by every request.
func (b *Builder) WithCookieStore(store cookie.Store) *Builder {
	b.cookies = store
	return b
}

// WithMiddleware appends a global middleware. Global middlewares execute
// before per-request middlewares.
func (b *Builder) WithMiddleware(m Middleware) *Builder {
	b.middlewares = append(b.middlewares, m)
	return b
}

// Build creates the Client with the configured options.
func (b *Builder) Build() *Client {
	transport := b.transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	log := b.log
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		transport:    transport,
		log:          log,
		middlewares:  b.middlewares,
		maxRedirects: b.maxRedirects,
		retryPolicy:  b.retryPolicy,
		cookies:      b.cookies,
	}
}

// Get returns a request builder for a GET request
func (c *Client) Get(url string) *RequestBuilder {
	return c.Request(http.MethodGet, url)
}

// Post returns a request builder for a POST request
func (c *Client) Post(url string) *RequestBuilder {
	return c.Request(http.MethodPost, url)
}

// Put returns a request builder for a PUT request
func (c *Client) Put(url string) *RequestBuilder {
	return c.Request(http.MethodPut, url)
}

// Patch returns a request builder for a PATCH request
func (c *Client) Patch(url string) *RequestBuilder {
	return c.Request(http.MethodPatch, url)
}

// Delete returns a request builder for a DELETE request
func (c *Client) Delete(url string) *RequestBuilder {
	return c.Request(http.MethodDelete, url)
}

// Head returns a request builder for a HEAD request
func (c *Client) Head(url string) *RequestBuilder {
	return c.Request(http.MethodHead, url)
}

// Request returns a request builder for the given method and URL.
func (c *Client) Request(method, url string) *RequestBuilder {
	return newRequestBuilder(c, method, url)
}
