// Package retry provides bounded retries with capped exponential backoff
// for calls to external services.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/mediaforge/mediaforge/internal/logger"
)

// MaxDelay caps the backoff delay between attempts.
const MaxDelay = 30 * time.Second

// Classifier reports whether an error is transient and worth retrying.
// Anything it rejects is surfaced immediately without further attempts.
type Classifier func(error) bool

// Executor runs operations with bounded retries. The zero value is not
// usable; construct with New.
type Executor struct {
	maxAttempts int
	baseDelay   time.Duration
	classify    Classifier
	sleep       func(time.Duration)
}

// New creates an executor with the default transient-error classifier.
func New(maxAttempts int, baseDelay time.Duration) *Executor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Executor{
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		classify:    IsTransient,
		sleep:       time.Sleep,
	}
}

// WithClassifier returns a copy of the executor using the given classifier.
// Boundary layers supply classifiers built on their own typed errors.
func (e *Executor) WithClassifier(c Classifier) *Executor {
	clone := *e
	clone.classify = c
	return &clone
}

// WithSleep returns a copy of the executor using the given sleep function.
func (e *Executor) WithSleep(sleep func(time.Duration)) *Executor {
	clone := *e
	clone.sleep = sleep
	return &clone
}

// Delay returns the backoff delay before the given retry, capped at MaxDelay.
// Attempts are numbered from 1.
func Delay(baseDelay time.Duration, attempt int) time.Duration {
	d := baseDelay << (attempt - 1)
	if d > MaxDelay || d <= 0 {
		return MaxDelay
	}
	return d
}

// Do runs op up to maxAttempts times, waiting between attempts. Fatal errors
// are returned immediately. On exhaustion the last error is wrapped with the
// operation name and the attempt count.
func (e *Executor) Do(ctx context.Context, name string, op func() error) error {
	var lastErr error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if !e.classify(lastErr) {
			logger.Debugf("%s: non-retryable error on attempt %d: %v", name, attempt, lastErr)
			return lastErr
		}

		if attempt < e.maxAttempts {
			delay := Delay(e.baseDelay, attempt)
			logger.Warnf("%s: attempt %d/%d failed, retrying in %s: %v", name, attempt, e.maxAttempts, delay, lastErr)
			e.sleep(delay)
		}
	}

	return fmt.Errorf("%s: giving up after %d attempts: %w", name, e.maxAttempts, lastErr)
}

// DoValue runs op like Do and returns its value on success.
func DoValue[T any](ctx context.Context, e *Executor, name string, op func() (T, error)) (T, error) {
	var result T
	err := e.Do(ctx, name, func() error {
		var opErr error
		result, opErr = op()
		return opErr
	})
	return result, err
}

// IsTransient is the default classifier. It retries connection resets,
// refused connections, unresolvable hosts, and timeouts; everything else,
// notably authentication failures, is fatal.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsNotFound || dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
