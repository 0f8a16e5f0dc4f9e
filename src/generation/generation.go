// Package generation holds the retry and timeout policy shared by the
// script and audio generation stages, together with the error types the
// orchestrator converts into a failed job.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aipod/src/log"
)

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2
	// DefaultRetryDelay is the fixed delay between attempts.
	DefaultRetryDelay = 5 * time.Second
	// ScriptTimeout bounds one script generation attempt.
	ScriptTimeout = 180 * time.Second
	// AudioTimeout bounds one full audio synthesis attempt.
	AudioTimeout = 600 * time.Second
)

// TimeoutError reports that every attempt of an operation exceeded its
// wall-clock budget.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.Timeout)
}

// FailedError reports that every attempt of an operation raised.
type FailedError struct {
	Op       string
	Attempts int
	Err      error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("failed to %s after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *FailedError) Unwrap() error {
	return e.Err
}

// Policy describes how a stage call is bounded and retried.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
	Timeout    time.Duration
}

// ScriptPolicy returns the default policy for script generation.
func ScriptPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, Delay: DefaultRetryDelay, Timeout: ScriptTimeout}
}

// AudioPolicy returns the default policy for audio synthesis.
func AudioPolicy() Policy {
	return Policy{MaxRetries: DefaultMaxRetries, Delay: DefaultRetryDelay, Timeout: AudioTimeout}
}

// Do runs fn with a per-attempt timeout, retrying on both timeouts and
// provider errors with a fixed delay between attempts. On exhaustion it
// returns a TimeoutError when the last attempt timed out, otherwise a
// FailedError wrapping the last error.
func Do[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	timedOut := false

	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Info("retrying operation", "op", op, "attempt", attempt, "max_retries", p.MaxRetries)
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
		out, err := fn(attemptCtx)
		cancel()

		if err == nil {
			return out, nil
		}

		timedOut = errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
		lastErr = err
		log.Error(err, "operation attempt failed", "op", op, "attempt", attempt+1, "timed_out", timedOut)

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
	}

	if timedOut {
		return zero, &TimeoutError{Op: op, Timeout: p.Timeout}
	}
	return zero, &FailedError{Op: op, Attempts: p.MaxRetries + 1, Err: lastErr}
}
