package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// statusError carries the HTTP status of a failed response through the breaker.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string { return fmt.Sprintf("%v: %d", e.err, e.code) }
func (e *statusError) Unwrap() error { return e.err }

// callerCanceled marks a transport error caused by the caller's own context,
// which says nothing about the health of the upstream.
type callerCanceled struct{ err error }

func (e *callerCanceled) Error() string { return e.err.Error() }
func (e *callerCanceled) Unwrap() error { return e.err }

func newBreaker(st gobreaker.Settings) *gobreaker.CircuitBreaker {
	if st.IsSuccessful == nil {
		st.IsSuccessful = func(err error) bool {
			var cc *callerCanceled
			return err == nil || errors.As(err, &cc)
		}
	}
	return gobreaker.NewCircuitBreaker(st)
}

// doRequest executes req exactly once behind cb. Transport errors, 429 and
// 5xx count against the breaker unless ctx ended first; other non-2xx statuses are returned as a
// *statusError without tripping it. On success the caller owns resp.Body.
func doRequest(ctx context.Context, client *http.Client, cb *gobreaker.CircuitBreaker, req *http.Request) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			if ctx.Err() != nil {
				return nil, &callerCanceled{err: stripURL(execErr)}
			}
			return nil, stripURL(execErr)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			return nil, &statusError{code: resp.StatusCode, err: errRateLimited}
		case resp.StatusCode >= 500:
			resp.Body.Close()
			return nil, &statusError{code: resp.StatusCode, err: errServerError}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &statusError{code: resp.StatusCode, err: errUnexpected}
	}
	return resp, nil
}

// stripURL drops the request URL from transport errors so credentials in
// the query string never reach logs.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
