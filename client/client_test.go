package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-relay/cookie"
)

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(nil)
	require.NotNil(t, c)
	assert.Equal(t, http.DefaultTransport, c.transport)
	assert.Zero(t, c.maxRedirects)
	assert.Nil(t, c.retryPolicy)
}

func TestBuilderConfiguration(t *testing.T) {
	t.Run("with max redirects", func(t *testing.T) {
		c := NewBuilder(nil).WithMaxRedirects(7).Build()
		assert.Equal(t, 7, c.maxRedirects)
	})

	t.Run("with retry times", func(t *testing.T) {
		c := NewBuilder(nil).WithRetryTimes(3).Build()
		assert.NotNil(t, c.retryPolicy)
	})

	t.Run("retry times zero disables", func(t *testing.T) {
		c := NewBuilder(nil).WithRetryTimes(3).WithRetryTimes(0).Build()
		assert.Nil(t, c.retryPolicy)
	})

	t.Run("with cookie store", func(t *testing.T) {
		jar := cookie.NewSecureJar()
		c := NewBuilder(nil).WithCookieStore(jar).Build()
		assert.NotNil(t, c.cookies)
	})

	t.Run("with middleware", func(t *testing.T) {
		m := MiddlewareFunc(func(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
			return next.Run(req, ext)
		})
		c := NewBuilder(nil).WithMiddleware(m).Build()
		assert.Len(t, c.middlewares, 1)
	})
}

func TestClientVerbs(t *testing.T) {
	c := NewClient(nil)
	cases := map[string]*RequestBuilder{
		http.MethodGet:    c.Get("https://example.com"),
		http.MethodPost:   c.Post("https://example.com"),
		http.MethodPut:    c.Put("https://example.com"),
		http.MethodPatch:  c.Patch("https://example.com"),
		http.MethodDelete: c.Delete("https://example.com"),
		http.MethodHead:   c.Head("https://example.com"),
	}
	for method, rb := range cases {
		assert.Equal(t, method, rb.method)
	}
}

func TestSendEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v", r.URL.Query().Get("k"))

		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "world", payload["hello"])

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	}))
	defer server.Close()

	c := NewClient(server.Client().Transport)
	resp, err := c.Post(server.URL).
		Query("k", "v").
		JSON(map[string]string{"hello": "world"}).
		Send(context.Background())
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "created", string(body))
}

func TestSendBasicAuth(t *testing.T) {
	var user, pass string
	var ok bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok = r.BasicAuth()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.Client().Transport)
	resp, err := c.Get(server.URL).BasicAuth("alice", "wonder").Send(context.Background())
	require.NoError(t, err)
	resp.Body.Close()

	require.True(t, ok)
	assert.Equal(t, "alice", user)
	assert.Equal(t, "wonder", pass)
}

func TestSendCookiesAcrossRequests(t *testing.T) {
	var profileCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, _ *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc123", Path: "/"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/profile", func(w http.ResponseWriter, r *http.Request) {
		profileCookie = r.Header.Get("Cookie")
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	jar := cookie.NewSecureJar()
	c := NewBuilder(server.Client().Transport).WithCookieStore(jar).Build()

	resp, err := c.Get(server.URL + "/login").Send(context.Background())
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = c.Get(server.URL + "/profile").Send(context.Background())
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "session=abc123", profileCookie)
}

func TestSendFollowsRedirectsEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("done"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewBuilder(server.Client().Transport).WithMaxRedirects(3).Build()
	resp, err := c.Get(server.URL + "/start").Send(context.Background())
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "done", string(body))
}

func TestSendRedirectCapDisabledByDefault(t *testing.T) {
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		resp := newResponse(req, http.StatusFound, "")
		resp.Header.Set("Location", "/next")
		return resp, nil
	})

	// No cap configured: the 3xx response is returned untouched.
	c := NewClient(transport)
	resp, err := c.Get("https://example.com/start").Send(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestSendPerRequestOverrides(t *testing.T) {
	t.Run("redirect cap override", func(t *testing.T) {
		calls := 0
		c := NewClient(redirectChainTransport(1, &calls))
		resp, err := c.Get("https://example.com/hop/0").MaxRedirects(2).Send(context.Background())
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 2, calls)
	})

	t.Run("retry disabled per request", func(t *testing.T) {
		calls := 0
		transport := roundTripperFunc(func(_ *http.Request) (*http.Response, error) {
			calls++
			return nil, errors.New("connection reset")
		})
		c := NewBuilder(transport).WithRetryPolicy(immediately(5)).Build()

		_, err := c.Get("https://example.com").RetryTimes(0).Send(context.Background())
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("cookie store per request", func(t *testing.T) {
		jar := cookie.NewSecureJar()
		var seen string
		transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Get("Cookie")
			return newResponse(req, http.StatusOK, ""), nil
		})
		require.NoError(t, jar.SetCookieStrings([]string{"k=v; path=/"}, "https://example.com"))

		c := NewClient(transport)
		resp, err := c.Get("https://example.com/").CookieStore(jar).Send(context.Background())
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, "k=v", seen)
	})
}

func TestSendPerRequestMiddlewareOrder(t *testing.T) {
	var calls []string
	tag := func(name string) Middleware {
		return MiddlewareFunc(func(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
			calls = append(calls, name)
			return next.Run(req, ext)
		})
	}
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, ""), nil
	})

	c := NewBuilder(transport).WithMiddleware(tag("global")).Build()
	resp, err := c.Get("https://example.com").Use(tag("request")).Send(context.Background())
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{"global", "request"}, calls)
}

func TestSendExtensionReachesMiddleware(t *testing.T) {
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return newResponse(req, http.StatusOK, ""), nil
	})

	var got any
	probe := MiddlewareFunc(func(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
		got, _ = ext.Get("tenant")
		return next.Run(req, ext)
	})

	c := NewClient(transport)
	resp, err := c.Get("https://example.com").Use(probe).Extension("tenant", "acme").Send(context.Background())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "acme", got)
}

func TestSendInvalidJSONBody(t *testing.T) {
	c := NewClient(nil)
	_, err := c.Post("https://example.com").JSON(make(chan int)).Send(context.Background())
	require.Error(t, err)
	assert.True(t, IsErrorType(err, RequestBuildError))
}

func TestSendInvalidURL(t *testing.T) {
	c := NewClient(nil)
	_, err := c.Get("://bad").Send(context.Background())
	require.Error(t, err)
	assert.True(t, IsErrorType(err, RequestBuildError))
}

func TestSendBufferedBodyIsReplayable(t *testing.T) {
	var got *http.Request
	transport := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		got = req
		return newResponse(req, http.StatusOK, ""), nil
	})

	c := NewClient(transport)
	resp, err := c.Post("https://example.com").Body([]byte("data")).Send(context.Background())
	require.NoError(t, err)
	resp.Body.Close()

	require.NotNil(t, got)
	require.NotNil(t, got.GetBody, "buffered bodies must be replayable")
	rc, err := got.GetBody()
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "data", string(data))
}
