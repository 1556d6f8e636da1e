package client

import (
	"net/http"
	"time"

	"github.com/gaborage/go-relay/logger"
	"github.com/gaborage/go-relay/retry"
)

// autoRetry re-executes failed requests according to a retry policy. Retried
// requests are issued directly against the transport; they do not re-enter
// the chain. A request whose body cannot be replayed degrades to a single
// pass-through.
type autoRetry struct {
	policy retry.Policy
	log    logger.Logger
}

func newAutoRetry(policy retry.Policy, log logger.Logger) *autoRetry {
	if log == nil {
		log = logger.Nop()
	}
	return &autoRetry{policy: policy, log: log}
}

func (m *autoRetry) Handle(req *http.Request, ext *Extensions, next Next) (*http.Response, error) {
	if req.Body != nil && req.GetBody == nil {
		// Streaming body: nothing to replay.
		return next.Run(req, ext)
	}

	// Keep a body-less clone of the origin request; each re-execution gets a
	// fresh body from GetBody.
	origin := req.Clone(req.Context())
	origin.Body = nil

	transport := next.Transport()
	start := time.Now()
	attempt := 0

	resp, err := next.Run(req, ext)
	for {
		if err == nil {
			return resp, nil
		}
		// A redirect cap exceeded is a terminal application-level outcome;
		// more attempts would not change it.
		if IsErrorType(err, TooManyRedirectsError) {
			return nil, err
		}

		attempt++
		resumeAt, ok := m.policy.ShouldRetry(start, attempt)
		if !ok {
			return nil, err
		}

		if wait := time.Until(resumeAt); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-req.Context().Done():
				timer.Stop()
				return nil, NewTransportError("retry aborted", req.Context().Err())
			case <-timer.C:
			}
		}

		replay, cerr := replayRequest(origin)
		if cerr != nil {
			return nil, err
		}

		m.log.Debug().
			Int("attempt", attempt).
			Str("url", replay.URL.String()).
			Msg("retrying request")

		resp, err = transport.RoundTrip(replay)
		if err != nil {
			err = NewTransportError("request execution failed", err)
		}
	}
}

// replayRequest clones the origin request and regenerates its body.
func replayRequest(origin *http.Request) (*http.Request, error) {
	clone := origin.Clone(origin.Context())
	if clone.GetBody != nil {
		body, err := clone.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}
