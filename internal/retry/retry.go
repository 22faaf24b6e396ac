// Package retry provides a generic retry-with-backoff combinator for
// transient collaborator failures.
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Default retry configuration
const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 2 * time.Second
	DefaultMultiplier  = 2.0
)

// Policy describes how an operation is retried. The zero value is not
// usable; start from DefaultPolicy.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Multiplier  float64
	Logger      *slog.Logger
	// Name identifies the operation in log output.
	Name string
}

// DefaultPolicy returns the standard policy: 3 attempts, 2s initial delay,
// 2x backoff.
func DefaultPolicy(name string, logger *slog.Logger) Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
		Multiplier:  DefaultMultiplier,
		Logger:      logger,
		Name:        name,
	}
}

// Do runs op, retrying on errors for which retryable returns true. The delay
// between attempts grows by the policy multiplier. Non-retryable errors and
// context cancellation abort immediately; the last error is returned after
// the final attempt.
func Do[T any](ctx context.Context, p Policy, retryable func(error) bool, op func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	delay := p.Delay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}
		if !retryable(err) {
			return zero, err
		}

		lastErr = err
		if attempt == p.MaxAttempts {
			p.Logger.Error("operation failed after retries",
				"operation", p.Name, "attempts", p.MaxAttempts, "error", err)
			break
		}

		p.Logger.Warn("operation failed, retrying",
			"operation", p.Name,
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	return zero, lastErr
}
