package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// UserAgent identifies betterbib to the metadata services.
const UserAgent = "betterbib (https://github.com/matsen/betterbib)"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// RateLimitTransport wraps rt so that every request waits for the limiter.
func RateLimitTransport(l *rate.Limiter, rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if l == nil {
		return rt
	}
	return requests.RoundTripFunc(func(req *http.Request) (*http.Response, error) {
		if err := l.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
		return rt.RoundTrip(req)
	})
}

// NewHTTPClient returns an HTTP client limited to rps requests per second.
// A non-positive rps disables rate limiting.
func NewHTTPClient(timeout time.Duration, rps float64) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var l *rate.Limiter
	if rps > 0 {
		l = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: RateLimitTransport(l, nil),
	}
}

// checkStatus converts non-2xx responses into an HTTPError carrying the
// start of the response body.
func checkStatus(name string) requests.ResponseHandler {
	return func(resp *http.Response) error {
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		msg := http.StatusText(resp.StatusCode)
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		if s := strings.TrimSpace(string(snippet)); s != "" {
			msg = s
		}
		return &HTTPError{Source: name, StatusCode: resp.StatusCode, Message: msg}
	}
}

// FetchJSON performs a single GET request built by b and returns the JSON
// body. Every failure, including a malformed body, is an *HTTPError.
// There is no retry.
func FetchJSON(ctx context.Context, name string, b *requests.Builder) (string, error) {
	var body string
	err := b.
		Accept("application/json").
		UserAgent(UserAgent).
		AddValidator(checkStatus(name)).
		ToString(&body).
		Fetch(ctx)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return "", httpErr
		}
		return "", &HTTPError{Source: name, Message: err.Error()}
	}
	if !gjson.Valid(body) {
		return "", &HTTPError{Source: name, Message: "malformed JSON response"}
	}
	return body, nil
}
