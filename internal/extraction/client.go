package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"curator/internal/media"
	"curator/internal/services"
)

const (
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
)

// ErrCredentialsExpired is returned when the underlying service reports
// an authentication-class failure. Callers must abort batch work and
// re-authenticate rather than retry per item.
var ErrCredentialsExpired = errors.New("extraction: credentials expired")

// Client wraps a services.Extractor with bounded linear-backoff retries.
// It holds no per-identity state and is safe for concurrent use.
type Client struct {
	extractor services.Extractor

	maxAttempts int
	baseDelay   time.Duration
	sleeper     func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithMaxAttempts overrides the retry bound (defaults to 3).
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithBaseDelay overrides the backoff base (defaults to 1s).
func WithBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		if delay >= 0 {
			c.baseDelay = delay
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a retrying extraction client.
func NewClient(extractor services.Extractor, opts ...Option) *Client {
	client := &Client{
		extractor:   extractor,
		maxAttempts: defaultRetryAttempts,
		baseDelay:   defaultRetryBaseDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Extract probes one identity for capture metadata. Transient capacity
// failures are retried up to the attempt bound with delays of
// 0, base, 2*base, ... before successive attempts. Authentication
// failures are mapped to ErrCredentialsExpired; everything else fails
// on the first attempt.
func (c *Client) Extract(ctx context.Context, identity string) (media.Metadata, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		// No delay before the first attempt; strictly increasing after.
		if attempt > 1 {
			if err := c.sleep(ctx, time.Duration(attempt-1)*c.baseDelay); err != nil {
				return media.Metadata{}, err
			}
		}

		meta, err := c.extractor.Extract(ctx, identity)
		if err == nil {
			return meta, nil
		}

		switch services.ClassOf(err) {
		case services.ClassAuth:
			return media.Metadata{}, fmt.Errorf("%w: %v", ErrCredentialsExpired, err)
		case services.ClassTransient:
			lastErr = err
		default:
			return media.Metadata{}, err
		}
	}
	return media.Metadata{}, fmt.Errorf("extraction: gave up after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
