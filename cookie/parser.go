package cookie

import "net/http"

// ParseSetCookieHeaders parses raw Set-Cookie header values. Malformed
// headers are dropped rather than reported.
func ParseSetCookieHeaders(headers []string) []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(headers))
	for _, h := range headers {
		c, err := http.ParseSetCookie(h)
		if err != nil {
			continue
		}
		cookies = append(cookies, c)
	}
	return cookies
}
