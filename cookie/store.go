package cookie

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// Store is the capability consumed by the client chain: record cookies from a
// response origin and serialize the cookies that match an outgoing URL.
type Store interface {
	// SetCookies records cookies observed for the given origin URL.
	SetCookies(cookies []*http.Cookie, origin *url.URL)

	// HeaderValues returns the serialized "name=value" pairs for every stored
	// cookie matching the URL's host, path and scheme.
	HeaderValues(u *url.URL) []string
}

// Options controls matching and filtering behavior of a Jar.
type Options struct {
	// MatchDomainOnly stores and matches cookies by domain alone, ignoring
	// the path component entirely.
	MatchDomainOnly bool

	// SkipExpiryCheck disables eviction of expired cookies on store and read.
	SkipExpiryCheck bool

	// IgnoreSecure returns Secure cookies even for non-https URLs.
	IgnoreSecure bool
}

// Entry is one stored cookie together with its reconstructed origin URL. The
// origin scheme is inferred from the Secure flag, not from the request that
// stored it.
type Entry struct {
	Cookie *http.Cookie
	Origin string
}

// Jar is the default Store implementation: a three-level map keyed by
// case-folded domain, then path, then cookie name. At most one cookie exists
// per (domain, path, name); storing again replaces the prior value.
//
// All methods are safe for arbitrary concurrent callers. The lock is never
// held across a network call.
type Jar struct {
	mu    sync.RWMutex
	store map[string]map[string]map[string]*http.Cookie
	opts  Options
}

var _ Store = (*Jar)(nil)

// NewJar creates an empty Jar with the given options.
func NewJar(opts Options) *Jar {
	return &Jar{
		store: make(map[string]map[string]map[string]*http.Cookie),
		opts:  opts,
	}
}

// NewSecureJar creates a Jar with path matching, expiry checking and Secure
// filtering all enabled.
func NewSecureJar() *Jar {
	return NewJar(Options{})
}

// domainMatch reports whether a request host is covered by a cookie domain.
//
// Match: the host equals the domain; or the domain leads with "." and the
// host ends with the domain minus its dot; or the host ends with "."+domain.
// The relation is one-directional: a host narrower than the cookie domain
// matches, a cookie domain narrower than the host does not.
func domainMatch(cookieDomain, host string) bool {
	cookieDomain = strings.ToLower(cookieDomain)
	host = strings.ToLower(host)

	if cookieDomain == host {
		return true
	}
	if strings.HasPrefix(cookieDomain, ".") {
		return strings.HasSuffix(host, cookieDomain[1:])
	}
	return strings.HasSuffix(host, "."+cookieDomain)
}

// effectiveDomain resolves the domain a cookie is filed under: the explicit
// cookie domain when present, else the origin host.
func effectiveDomain(c *http.Cookie, origin *url.URL) string {
	domain := strings.TrimSpace(c.Domain)
	if domain == "" {
		domain = origin.Hostname()
	}
	return strings.ToLower(domain)
}

// requestPath normalizes a URL path for use as a path bucket key.
func requestPath(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return u.Path
}

// SetCookies records cookies for an origin URL, applying the store rules:
// http-only cookies from non-http(s) origins are rejected; expired cookies
// (past Expires, or a Max-Age demanding immediate deletion) evict any stored
// match; a positive Max-Age is normalized into an absolute Expires.
func (j *Jar) SetCookies(cookies []*http.Cookie, origin *url.URL) {
	for _, c := range cookies {
		if c.HttpOnly && origin.Scheme != "http" && origin.Scheme != "https" {
			continue
		}

		stored := cloneCookie(c)
		if !j.opts.SkipExpiryCheck {
			switch {
			case !stored.Expires.IsZero():
				if !time.Now().Before(stored.Expires) {
					j.Remove(stored, origin)
					continue
				}
			case stored.MaxAge < 0:
				j.Remove(stored, origin)
				continue
			case stored.MaxAge > 0:
				// Normalize max-age into an absolute expiry so a single
				// comparison rule covers both attributes.
				stored.Expires = time.Now().Add(time.Duration(stored.MaxAge) * time.Second)
				stored.MaxAge = 0
			}
		}

		domain := effectiveDomain(stored, origin)
		if domain == "" {
			continue
		}
		path := j.cookiePath(stored, origin)

		j.mu.Lock()
		paths, ok := j.store[domain]
		if !ok {
			paths = make(map[string]map[string]*http.Cookie)
			j.store[domain] = paths
		}
		names, ok := paths[path]
		if !ok {
			names = make(map[string]*http.Cookie)
			paths[path] = names
		}
		names[stored.Name] = stored
		j.mu.Unlock()
	}
}

// HeaderValues returns "name=value" pairs for all cookies matching the URL.
// Expired cookies are swept first unless expiry checking is disabled. Secure
// cookies are skipped for non-https URLs unless secure filtering is disabled.
// The result is sorted for deterministic header construction.
func (j *Jar) HeaderValues(u *url.URL) []string {
	if u == nil || u.Hostname() == "" {
		return nil
	}
	if !j.opts.SkipExpiryCheck {
		j.RemoveExpired()
	}

	host := u.Hostname()
	path := "" // domain-only sentinel
	if !j.opts.MatchDomainOnly {
		path = requestPath(u)
	}

	j.mu.RLock()
	var values []string
	for domain, paths := range j.store {
		if !domainMatch(domain, host) {
			continue
		}
		for _, c := range paths[path] {
			if !j.opts.IgnoreSecure && c.Secure && u.Scheme != "https" {
				continue
			}
			values = append(values, c.Name+"="+c.Value)
		}
	}
	j.mu.RUnlock()

	sort.Strings(values)
	return values
}

// Remove deletes the named cookie from every domain bucket matching the
// cookie's resolved domain, scoped to the resolved path unless the store
// matches on domain alone.
func (j *Jar) Remove(c *http.Cookie, origin *url.URL) {
	domain := effectiveDomain(c, origin)
	if domain == "" {
		return
	}
	path := j.cookiePath(c, origin)

	j.mu.Lock()
	for stored, paths := range j.store {
		if !domainMatch(stored, domain) {
			continue
		}
		if names, ok := paths[path]; ok {
			delete(names, c.Name)
		}
	}
	j.mu.Unlock()
}

// RemoveExpired evicts every stored cookie whose expiry has passed and drops
// buckets left empty by the sweep.
func (j *Jar) RemoveExpired() {
	now := time.Now()

	j.mu.Lock()
	for domain, paths := range j.store {
		for path, names := range paths {
			for name, c := range names {
				if !c.Expires.IsZero() && !now.Before(c.Expires) {
					delete(names, name)
				}
			}
			if len(names) == 0 {
				delete(paths, path)
			}
		}
		if len(paths) == 0 {
			delete(j.store, domain)
		}
	}
	j.mu.Unlock()
}

// SetCookieStrings seeds the jar from raw Set-Cookie header lines attributed
// to the given origin URL. Malformed lines are dropped.
func (j *Jar) SetCookieStrings(headers []string, originURL string) error {
	origin, err := url.Parse(originURL)
	if err != nil {
		return err
	}
	j.SetCookies(ParseSetCookieHeaders(headers), origin)
	return nil
}

// Export returns a copy of every stored cookie with a reconstructed origin
// URL. The origin scheme is https for Secure cookies and http otherwise.
func (j *Jar) Export() []Entry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var entries []Entry
	for domain, paths := range j.store {
		for path, names := range paths {
			for _, c := range names {
				scheme := "http"
				if c.Secure {
					scheme = "https"
				}
				entries = append(entries, Entry{
					Cookie: cloneCookie(c),
					Origin: scheme + "://" + domain + path,
				})
			}
		}
	}
	return entries
}

// Len reports the number of stored cookies.
func (j *Jar) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()

	n := 0
	for _, paths := range j.store {
		for _, names := range paths {
			n += len(names)
		}
	}
	return n
}

// cookiePath resolves the path bucket for a cookie: the empty sentinel in
// domain-only mode, else the explicit cookie path, else the origin path.
func (j *Jar) cookiePath(c *http.Cookie, origin *url.URL) string {
	if j.opts.MatchDomainOnly {
		return ""
	}
	if c.Path != "" {
		return c.Path
	}
	return requestPath(origin)
}

func cloneCookie(c *http.Cookie) *http.Cookie {
	clone := *c
	return &clone
}
