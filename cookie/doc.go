// Package cookie implements a concurrent, domain- and path-indexed cookie
// store with RFC 6265-style domain matching and expiry handling.
//
// The store is shared by any number of in-flight requests. Cookies are read
// before each request hop and recorded from every Set-Cookie response header
// by the client chain; the store can also be seeded and inspected directly.
package cookie
