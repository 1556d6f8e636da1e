package config

import (
	"net/http"

	"github.com/gaborage/go-relay/client"
	"github.com/gaborage/go-relay/cookie"
	"github.com/gaborage/go-relay/logger"
	"github.com/gaborage/go-relay/retry"
)

// NewClient assembles a ready-to-use client from the configuration: logger,
// cookie store, retry policy, redirect cap and overall timeout. A nil
// transport falls back to http.DefaultTransport.
func (c *Config) NewClient(transport http.RoundTripper) *client.Client {
	log := logger.New(c.Log.Level, c.Log.Pretty)

	b := client.NewBuilder(transport).
		WithLogger(log).
		WithMaxRedirects(c.Client.MaxRedirects)

	if c.Client.Timeout > 0 {
		b = b.WithMiddleware(client.Timeout(c.Client.Timeout))
	}

	if c.Client.Retry.MaxAttempts > 0 {
		b = b.WithRetryPolicy(&retry.ExponentialBackoff{
			MaxRetries:   c.Client.Retry.MaxAttempts,
			InitialDelay: c.Client.Retry.InitialDelay,
			MaxDelay:     c.Client.Retry.MaxDelay,
			MaxElapsed:   c.Client.Retry.MaxElapsed,
		})
	}

	if c.Client.Cookies.Enabled {
		b = b.WithCookieStore(cookie.NewJar(cookie.Options{
			MatchDomainOnly: c.Client.Cookies.MatchDomainOnly,
			SkipExpiryCheck: c.Client.Cookies.SkipExpiryCheck,
			IgnoreSecure:    c.Client.Cookies.IgnoreSecure,
		}))
	}

	return b.Build()
}
