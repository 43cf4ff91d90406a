package httputil

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/tidemark/pkg/logger"
)

// Client is an HTTP client wrapper with rate limiting, retry logic and logging
// ⭐ SSOT: all outbound HTTP requests go through this client
type Client struct {
	httpClient  *http.Client
	logger      *logger.Logger
	limiter     *rate.Limiter
	retryConfig RetryConfig
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Enabled      bool
}

// New creates a new HTTP client. requestsPerSec bounds the sustained request
// rate; burst capacity is one request.
func New(log *logger.Logger, timeout time.Duration, requestsPerSec float64) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  log,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		retryConfig: RetryConfig{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     10 * time.Second,
			Enabled:      true,
		},
	}
}

// WithRetry configures retry behavior
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	c.retryConfig.Enabled = true
	return c
}

// DisableRetry disables automatic retry
func (c *Client) DisableRetry() *Client {
	c.retryConfig.Enabled = false
	return c
}

// Get performs a GET request with the given headers
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req)
}

// do executes the request honoring the rate limiter and retrying on
// transient failures with exponential backoff.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var resp *http.Response
	var err error

	attempts := 1
	if c.retryConfig.Enabled {
		attempts += c.retryConfig.MaxRetries
	}

	delay := c.retryConfig.InitialDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		resp, err = c.httpClient.Do(req)

		if err == nil && resp.StatusCode < http.StatusInternalServerError {
			c.logger.WithFields(map[string]interface{}{
				"method":   req.Method,
				"url":      req.URL.String(),
				"status":   resp.StatusCode,
				"duration": time.Since(start),
				"attempt":  attempt,
			}).Debug("HTTP request")
			return resp, nil
		}

		// Drain and close before retrying so the connection can be reused
		if resp != nil {
			resp.Body.Close()
		}

		if attempt == attempts {
			break
		}

		c.logger.WithFields(map[string]interface{}{
			"url":     req.URL.String(),
			"attempt": attempt,
			"error":   errString(err, resp),
		}).Warn("HTTP request failed, retrying")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.retryConfig.MaxDelay {
			delay = c.retryConfig.MaxDelay
		}
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", attempts, err)
	}
	return nil, fmt.Errorf("request failed after %d attempts: status %d", attempts, resp.StatusCode)
}

func errString(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	return "unknown"
}
