package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Config contains retry configuration
type Config struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// InitialInterval is the wait before the first retry
	InitialInterval time.Duration
	// MaxInterval caps the backoff
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry
	Multiplier float64
	// JitterFactor is the ± fraction applied to each interval
	JitterFactor float64
}

// DefaultConfig returns exponential backoff of 1s, 2s, 4s capped at 10s
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      3,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Constant returns a config that waits the same interval between attempts
func Constant(maxRetries int, interval time.Duration) *Config {
	return &Config{
		MaxRetries:      maxRetries,
		InitialInterval: interval,
		MaxInterval:     interval,
		Multiplier:      1,
	}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError stops the retry loop immediately
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks an error as not retryable
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Do runs op until it succeeds, returns a permanent error, the context
// ends, or the retries are used up. The returned error wraps the last
// failure.
func Do(ctx context.Context, config *Config, op Operation) error {
	if config == nil {
		config = DefaultConfig()
	}

	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("retry canceled after %d attempts: %w", attempt, errors.Join(ctx.Err(), lastErr))
			case <-time.After(interval(config, attempt-1)):
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var permErr *PermanentError
		if errors.As(lastErr, &permErr) {
			return permErr.Err
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", config.MaxRetries+1, lastErr)
}

// interval is initial * multiplier^attempt with jitter, capped at MaxInterval
func interval(config *Config, attempt int) time.Duration {
	multiplier := config.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}

	d := float64(config.InitialInterval) * math.Pow(multiplier, float64(attempt))
	if config.JitterFactor > 0 {
		jitter := d * math.Min(config.JitterFactor, 1)
		d += (rand.Float64()*2 - 1) * jitter
	}
	if config.MaxInterval > 0 && d > float64(config.MaxInterval) {
		d = float64(config.MaxInterval)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
