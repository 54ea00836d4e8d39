package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Alias1177/ExplosionScreener/internal/metrics"
)

// Client is a wrapper for HTTP client with rate limiting and bounded retries
type Client struct {
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
	headers    map[string]string
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Client
type ClientOptions struct {
	Timeout        time.Duration
	RequestsPerSec float64
	Burst          int
	MaxRetries     int
	RetryDelay     time.Duration
	Headers        map[string]string
	Component      string
}

// NewClient creates a new HTTP client with rate limiting
func NewClient(opts ClientOptions) *Client {
	// Set default values if not provided
	if opts.Timeout == 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.RequestsPerSec == 0 {
		opts.RequestsPerSec = 10
	}
	if opts.Burst == 0 {
		opts.Burst = int(opts.RequestsPerSec)
		if opts.Burst < 1 {
			opts.Burst = 1
		}
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Component == "" {
		opts.Component = "http_client"
	}

	return &Client{
		HTTPClient: &http.Client{
			Timeout: opts.Timeout,
		},
		Limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSec), opts.Burst),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		headers:    opts.Headers,
		logger:     log.With().Str("component", opts.Component).Logger(),
	}
}

// GetJSON performs a GET request and returns the raw JSON body.
// A failed attempt is retried up to MaxRetries times with a constant delay.
// Client errors (4xx other than 429) are not retried.
func (c *Client) GetJSON(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempts := 0

	operation := func() error {
		attempts++

		// Wait for rate limiter
		if err := c.Limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			statusErr := &HTTPStatusError{StatusCode: resp.StatusCode}
			if !statusErr.Retryable() {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response body: %w", err)
		}
		if !json.Valid(b) {
			return errors.New("response is not valid JSON")
		}
		body = b
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.retryDelay), uint64(c.maxRetries)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		metrics.RecordUpstream("retry")
		c.logger.Warn().Err(err).
			Str("url", url).
			Int("attempt", attempts).
			Dur("retry_in", wait).
			Msg("Request failed, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		metrics.RecordUpstream("failure")
		c.logger.Error().Err(err).Str("url", url).Int("attempts", attempts).Msg("Request failed")
		return nil, &FetchError{URL: url, Attempts: attempts, Err: err}
	}

	metrics.RecordUpstream("success")
	return body, nil
}

// FetchError is returned once the retry budget for a request is exhausted
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// HTTPStatusError represents an error due to a non-200 HTTP status code
type HTTPStatusError struct {
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("non-200 status code: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether the status is worth another attempt
func (e *HTTPStatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}
