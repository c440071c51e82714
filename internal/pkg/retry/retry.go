// Package retry provides a bounded retry policy with exponential backoff.
package retry

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"time"

	"refund-settlement-engine/internal/pkg/errs"
)

var ErrExhausted = errs.New("retry attempts exhausted")

// Policy bounds how often an operation may run.
// MaxAttempts counts every run, including the first one.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether an error is worth another attempt.
	// nil means every error is retryable.
	Retryable func(error) bool
	// OnRetry is called before sleeping for the next attempt.
	OnRetry func(attempt int, wait time.Duration, err error)
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Allow reports whether another run is permitted after done runs.
func (p Policy) Allow(done int) error {
	if done >= p.attempts() {
		return ErrExhausted
	}
	return nil
}

// Remaining returns how many runs are left after done runs.
func (p Policy) Remaining(done int) int {
	left := p.attempts() - done
	if left < 0 {
		return 0
	}
	return left
}

// Backoff returns the wait before the retry following the given zero-based attempt.
func (p Policy) Backoff(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	wait := time.Duration(1<<attempt) * p.BaseDelay
	if p.MaxDelay > 0 && wait > p.MaxDelay {
		wait = p.MaxDelay
	}
	return wait + time.Duration(cryptoRandInt63n(int64(wait/5)))
}

func (p Policy) retryable(err error) bool {
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts
// run out, or ctx is done. The last error is returned unchanged.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var (
		zero T
		err  error
	)
	total := p.attempts()
	for attempt := 0; attempt < total; attempt++ {
		var out T
		out, err = fn(ctx, attempt)
		if err == nil {
			return out, nil
		}
		if attempt == total-1 || !p.retryable(err) {
			return zero, err
		}

		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, wait, err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}
	return zero, err
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- masked to a positive value
	return int64(uval) % n
}
