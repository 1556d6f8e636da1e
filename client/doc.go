// Package client implements a per-request middleware pipeline around a
// caller-supplied HTTP transport. The pipeline composes automatic cookie
// handling, automatic redirect-following and automatic retry-with-backoff,
// and accepts arbitrary user middlewares at the client and request level.
//
// The transport is any http.RoundTripper; connection pooling, TLS and wire
// framing stay its concern. When redirects are handled here the transport
// must not follow redirects itself.
//
// Execution order for one request: global middlewares, per-request
// middlewares, redirect handling, retry handling, transport. Retry sits
// closest to the transport so that a failed redirect loop is itself subject
// to the retry policy.
package client
