package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/dqs/pkg/config"
	"github.com/wonny/dqs/pkg/logger"
	"github.com/wonny/dqs/pkg/redis"
)

// ErrTooLarge is returned when a response body exceeds the read limit
var ErrTooLarge = errors.New("response body exceeds size limit")

// StatusError reports a non-2xx response after retries
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client is an HTTP client with local request pacing, optional shared
// (Redis) rate limiting, retry with exponential backoff and logging.
type Client struct {
	httpClient  *http.Client
	logger      *logger.Logger
	retryConfig RetryConfig
	pacer       *rate.Limiter

	sharedLimiter *redis.RateLimiter
	sharedKey     string
	sharedLimit   redis.Limit
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// New creates a client from the fetch section of config
func New(cfg config.FetchConfig, log *logger.Logger) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.WithComponent("httputil"),
		retryConfig: RetryConfig{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
		},
		pacer: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// WithRetry overrides retry behavior
func (c *Client) WithRetry(maxRetries int, initialDelay time.Duration) *Client {
	c.retryConfig.MaxRetries = maxRetries
	c.retryConfig.InitialDelay = initialDelay
	return c
}

// WithRateLimiter adds a quota shared across processes through Redis
func (c *Client) WithRateLimiter(limiter *redis.RateLimiter, key string, l redis.Limit) *Client {
	c.sharedLimiter = limiter
	c.sharedKey = key
	c.sharedLimit = l
	return c
}

// Download GETs url and returns at most maxBytes of body.
// Responses larger than maxBytes fail with ErrTooLarge.
func (c *Client) Download(ctx context.Context, url string, maxBytes int64) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > maxBytes {
		return nil, ErrTooLarge
	}
	return body, nil
}

// Get performs a paced GET with retries. The caller closes the body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	start := time.Now()
	log := c.logger.WithField("url", url)

	resp, err := c.doWithRetry(ctx, url)
	if err != nil {
		log.WithError(err).WithField("duration", time.Since(start).String()).Error("HTTP request failed")
		return nil, err
	}

	log.WithFields(map[string]interface{}{
		"status_code": resp.StatusCode,
		"duration":    time.Since(start).String(),
	}).Debug("HTTP request completed")

	return resp, nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.pacer.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}
	if c.sharedLimiter != nil {
		if err := c.sharedLimiter.Wait(ctx, c.sharedKey, c.sharedLimit); err != nil {
			return fmt.Errorf("shared rate limit wait failed: %w", err)
		}
	}
	return nil
}

// doWithRetry retries transport errors and retryable statuses with
// exponential backoff
func (c *Client) doWithRetry(ctx context.Context, url string) (*http.Response, error) {
	delay := c.retryConfig.InitialDelay

	for attempt := 0; ; attempt++ {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create GET request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err == nil && !IsRetryableStatus(resp.StatusCode) {
			return resp, nil
		}
		if attempt >= c.retryConfig.MaxRetries {
			if err != nil {
				return nil, err
			}
			return resp, nil
		}
		if resp != nil {
			_ = resp.Body.Close()
		}

		c.logger.WithFields(map[string]interface{}{
			"attempt": attempt + 1,
			"delay":   delay.String(),
			"url":     url,
		}).Warn("Retrying HTTP request")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.retryConfig.MaxDelay {
			delay = c.retryConfig.MaxDelay
		}
	}
}

// IsRetryableStatus reports whether a status is worth retrying
func IsRetryableStatus(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
