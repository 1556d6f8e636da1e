package client

import "net/http"

// Middleware is a unit of request/response interception. A middleware may
// rewrite the request before delegating, post-process the response, short-
// circuit without delegating, or delegate more than once (the redirect and
// retry middlewares re-run the tail of the chain repeatedly).
type Middleware interface {
	Handle(req *http.Request, ext *Extensions, next Next) (*http.Response, error)
}

// MiddlewareFunc adapts a function to the Middleware interface.
type MiddlewareFunc func(req *http.Request, ext *Extensions, next Next) (*http.Response, error)

// Handle calls f.
func (f MiddlewareFunc) Handle(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
	return f(req, ext, next)
}

// Extensions is an open key-value side channel threaded through the whole
// chain, letting middlewares communicate out-of-band without changing the
// request or response types. One instance exists per logical request and is
// discarded when Send returns; it is not safe for concurrent use.
type Extensions struct {
	values map[any]any
}

// NewExtensions creates an empty extensions bag.
func NewExtensions() *Extensions {
	return &Extensions{values: make(map[any]any)}
}

// Set stores a value under the given key, replacing any prior value.
func (e *Extensions) Set(key, value any) {
	if e.values == nil {
		e.values = make(map[any]any)
	}
	e.values[key] = value
}

// Get returns the value stored under the key, if any.
func (e *Extensions) Get(key any) (any, bool) {
	v, ok := e.values[key]
	return v, ok
}

// Delete removes the value stored under the key.
func (e *Extensions) Delete(key any) {
	delete(e.values, key)
}
