// Package httpx is the shared client for read-only calls to third-party JSON
// APIs. It owns the per-upstream circuit breaker, outbound rate limiting,
// request timeout, and the error taxonomy adapters rely on: a 404 becomes
// ErrNotFound (callers degrade to sentinels), any other non-2xx becomes a
// StatusError, and transport failures are wrapped. Nothing retries within a
// cycle; the next scheduled cycle is the retry.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	json "github.com/goccy/go-json"

	"github.com/pdwk/pdwk-dev/internal/metrics"
)

// ErrNotFound reports that the resource does not exist or the feature is not
// applicable for the requested entity. Callers map it to "N/A" sentinels
// rather than treating it as a transient failure.
var ErrNotFound = errors.New("resource not found")

// StatusError is a non-2xx upstream response other than 404.
type StatusError struct {
	Host string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.Host, e.Code)
}

// Options configures a Client for one upstream host.
type Options struct {
	// Name labels the breaker and metrics, e.g. "lastfm" or "github".
	Name          string
	UserAgent     string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
}

// Client issues GET requests against one upstream API.
type Client struct {
	name      string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]byte]
}

// New builds a Client with its own breaker and limiter.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 5
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 10
	}

	metrics.BreakerState.WithLabelValues(opts.Name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// A 404 is a valid answer, not an upstream outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		name:      opts.Name,
		userAgent: opts.UserAgent,
		http:      &http.Client{Timeout: opts.Timeout},
		limiter:   rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RateBurst),
		breaker:   breaker,
	}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// GetJSON fetches url and decodes the response body into out. The extra
// headers are applied on top of the User-Agent.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, out any) error {
	body, err := c.get(ctx, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.name, err)
	}
	return nil
}

// GetRaw fetches url and returns the raw response body. Used by the relay
// endpoint, which forwards upstream JSON untouched.
func (c *Client) GetRaw(ctx context.Context, url string, header http.Header) ([]byte, error) {
	return c.get(ctx, url, header)
}

func (c *Client) get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, url, header)
	})
	c.count(err)
	return body, err
}

func (c *Client) do(ctx context.Context, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.name, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", c.name, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Host: c.name, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.name, err)
	}
	return body, nil
}

func (c *Client) count(err error) {
	outcome := "ok"
	var statusErr *StatusError
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		outcome = "not_found"
	case errors.As(err, &statusErr):
		outcome = "status"
	default:
		outcome = "transport"
	}
	metrics.UpstreamRequests.WithLabelValues(c.name, outcome).Inc()
}
